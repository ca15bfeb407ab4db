// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the comply command line.
//
// The root command opens the full-screen TUI. The other commands reach the
// same backend without it:
//
//	comply chat                    Line-based session with the TUI's commands
//	comply ask <prompt>            Generate content and print the result
//	comply check <file>            Check a document, optionally --rewrite N
//	comply rewrite <id> <text>     Rewrite a passage of a submission
//	comply rules ...               Rule administration
//	comply content ...             Submission review
//	comply config ...              Settings in ~/.comply/config.toml
//	comply status                  Backend health
//	comply version
//
// Global flags --config, --user, --api and --log-level override the
// configuration for one run. --json switches command output to a JSON
// envelope and --no-color disables colors.
//
// # Output
//
// Human-readable output goes to stdout and logs to stderr (the TUI and the
// chat session log to the log file instead). Result turns are rendered as
// markdown with glamour on a terminal and printed as plain markdown when
// piped.
//
// # Exit Codes
//
//	0  success
//	1  general error
//	2  invalid usage or input
//	3  invalid configuration
//	5  backend not reachable
//	6  violations found (--strict)
//	7  not found
//	8  timeout
package cli
