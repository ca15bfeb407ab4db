// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the session-scoped conversation log.
//
// A Conversation is an ordered, append-only list of Messages. The only
// mutation of an existing position is replacing a trailing pending
// placeholder once the operation it stands for has resolved. The log is kept
// in memory and discarded when the process exits.
//
// # Key Types
//
//   - Conversation: Ordered turn log with pending-placeholder handling
//   - Message: One turn, with role, kind, content and parsed blocks
//   - Role: Message role (user, system)
//   - Kind: What produced the turn (prompt, upload, result, report, ...)
//
// # Usage
//
//	conv := model.NewConversation()
//	conv.Append(model.NewUserMessage(model.KindPrompt, "Write a tagline"))
//	pending, _ := conv.AppendPending("Generating content...")
//	...
//	conv.ReplacePending(model.NewResultMessage(model.KindResult, text, analysis))
package model
