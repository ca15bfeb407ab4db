// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system shared by the TUI and
// the line-mode REPL.
//
// Input that starts with / is parsed as a command and dispatched to its
// handler; anything else is submitted to the orchestrator as a prompt.
// Commands that start a backend request return the started Operation for
// the front end to run.
//
// # Key Types
//
//   - Registry: Command registry with all available commands
//   - Context: Orchestrator, identity and export options for handlers
//   - Result: What the front end should do next
//   - Completer: Tab completion for commands and file arguments
//
// # Built-in Commands
//
//   - /upload <path>: Check a document for violations
//   - /regen [turn]: Regenerate a response
//   - /rewrite [turn] <violation>: Propose a compliant passage
//   - /enhancer [on|off]: Toggle the prompt enhancer
//   - /export [markdown|json] [dir]: Export the conversation
//   - /clear, /help, /quit
//
// # Usage
//
//	res, err := registry.Execute(ctx, input)
//	if err != nil {
//	    return err
//	}
//	if res.Operation != nil {
//	    res.Operation.Run(context.Background())
//	}
package commands
