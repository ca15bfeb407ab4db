// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the compliance backend.
//
// The backend generates marketing content, checks uploaded documents against
// the active rule set, rewrites violating passages, and exposes the admin
// and rule-management endpoints used by the rules and content commands.
//
// # Key Types
//
//   - Client: HTTP client for the backend, safe for concurrent use
//   - ClientError: Categorized error with HTTP status and flattened detail
//   - GenerateResponse, DocumentCheckResponse, RewriteResponse: agent results
//   - Rule, ContentSubmission: admin and rule-management records
//
// # Usage
//
//	client := api.NewClientWithConfig(&api.ClientConfig{BaseURL: cfg.API.BaseURL})
//	resp, err := client.GenerateContent(ctx, api.GenerateRequest{
//	    Prompt: "Write a tagline for a term plan",
//	    UserID: userID,
//	})
//	if api.IsNotRunning(err) {
//	    ...
//	}
//
// Every request is rate limited on the client side and carries an
// X-Request-ID header when the context holds one (see WithRequestID).
package api
