// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package document

import "strings"

// EmphasisDelimiter marks both ends of an emphasized span.
const EmphasisDelimiter = "**"

// Span is a run of inline text.
type Span struct {
	Text       string `json:"text"`
	Emphasized bool   `json:"emphasized,omitempty"`
}

// ParseInline splits a line of text into plain and emphasized spans.
//
// Each "**...**" pair yields an emphasized span with the delimiters stripped.
// A pair never spans a line break. An opening delimiter without a partner is
// kept as literal text. Adjacent plain text is merged into a single span and
// empty pairs ("****") produce nothing.
func ParseInline(line string) []Span {
	var spans []Span
	var plain strings.Builder

	flush := func() {
		if plain.Len() > 0 {
			spans = append(spans, Span{Text: plain.String()})
			plain.Reset()
		}
	}

	rest := line
	for {
		open := strings.Index(rest, EmphasisDelimiter)
		if open < 0 {
			plain.WriteString(rest)
			break
		}

		after := rest[open+len(EmphasisDelimiter):]
		end := strings.Index(after, EmphasisDelimiter)
		if end < 0 || strings.ContainsAny(after[:end], "\r\n") {
			// Unmatched on this line: keep the opener as literal text.
			plain.WriteString(rest[:open+len(EmphasisDelimiter)])
			rest = after
			continue
		}

		plain.WriteString(rest[:open])
		if inner := after[:end]; inner != "" {
			flush()
			spans = append(spans, Span{Text: inner, Emphasized: true})
		}
		rest = after[end+len(EmphasisDelimiter):]
	}
	flush()

	return spans
}

// PlainText joins the text of spans, dropping emphasis.
func PlainText(spans []Span) string {
	var sb strings.Builder
	for _, s := range spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}
