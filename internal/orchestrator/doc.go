// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package orchestrator sequences requests against the compliance backend and
// keeps the conversation log consistent.
//
// At most one operation is in flight. Starting an operation is split in two
// phases so that a UI can show the user turn immediately:
//
//  1. SubmitPrompt, SubmitDocument, Regenerate or SubmitRewrite checks the
//     guards, moves the state out of Idle, appends the user turn and a
//     pending placeholder, and returns an Operation.
//  2. Operation.Run performs the backend call, replaces the placeholder with
//     the result or an error turn, and returns the state to Idle.
//
// Every returned Operation must be Run exactly once; until then the
// orchestrator stays busy.
//
// # Usage
//
//	orch := orchestrator.New(client, model.NewConversation(), orchestrator.Config{})
//	op, err := orch.SubmitPrompt(orchestrator.Identity{UserID: uid}, "Write a tagline")
//	if err != nil {
//	    return err // ErrBusy, ErrEmptyInput, ErrPromptTooShort, ...
//	}
//	turn := op.Run(ctx)
package orchestrator
