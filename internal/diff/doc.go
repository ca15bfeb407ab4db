// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff computes word-level changes between a flagged passage and
// its compliant rewrite.
//
// The comparison is a longest-common-subsequence over whitespace-separated
// words, which keeps short marketing passages readable where a line diff
// would mark the whole sentence as replaced.
//
// # Key Types
//
//   - Op: kind of an edit (equal, insert, delete)
//   - Edit: run of consecutive words with the same op
//   - Diff: edits plus word counts
//
// # Usage
//
//	d := diff.Words("Returns are guaranteed.", "Returns are not guaranteed.")
//	fmt.Println(diff.FormatInline(d)) // Returns are {+not+} guaranteed.
//	fmt.Println(d.Summary())          // +1 words
package diff
