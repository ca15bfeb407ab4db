// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package document parses loosely formatted generated text into a typed block tree.
//
// Generated content arrives as semi-structured text: paragraphs separated by
// blank lines, "-" / "•" / "*" bullet lists, "1." numbered lists, headings
// written either as "# Title" or as a paragraph wrapped in "**", and inline
// "**bold**" spans. This package turns that text into a Document that the UI
// can render without re-inspecting the raw string.
//
// # Key Types
//
//   - Document: Ordered list of Block values
//   - Block: Tagged union of Heading, Paragraph, BulletList, NumberedList
//   - Span: Smallest unit of inline text, plain or emphasized
//
// # Classification
//
// Each blank-line separated candidate is classified exactly once, in this
// priority order: bullet list, numbered list, heading, paragraph. A single
// matching line is enough to make a candidate a list, so prose containing a
// line that starts with a dash is rendered as a list. This matches what the
// generation backend produces in practice and is intentionally not "fixed".
//
// # Usage
//
//	doc := document.Parse("**Summary**\n\n- one\n- two")
//	for _, b := range doc {
//	    switch b := b.(type) {
//	    case document.Heading:
//	        fmt.Println("#", b.Text)
//	    case document.BulletList:
//	        fmt.Println(len(b.Items), "items")
//	    }
//	}
//
// Parsing never fails and never panics; unrecognised shapes degrade to
// paragraphs.
package document
