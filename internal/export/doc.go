// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a comply session transcript to disk.
//
// # Key Types
//
//   - Snapshot: Point-in-time copy of a conversation, pending turns excluded
//   - Exporter: Converts a snapshot to one output format
//   - Options: Output directory and what to include
//
// # Supported Formats
//
//   - Markdown: YAML frontmatter, one section per turn, rule summaries
//   - JSON: The snapshot with each turn's analysis attached
//
// # Usage
//
//	opts := export.DefaultOptions()
//	opts.OpenAfterExport = false
//	path, err := export.ExportConversation(conv, "markdown", opts)
package export
