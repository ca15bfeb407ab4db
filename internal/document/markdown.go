// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package document

import (
	"strconv"
	"strings"
)

// Markdown renders a document back to canonical markdown.
// Headings become "## " lines, lists use "- " and "N. " markers and
// emphasized spans are re-wrapped in "**". Blocks are separated by a blank
// line.
func Markdown(doc Document) string {
	parts := make([]string, 0, len(doc))
	for _, b := range doc {
		switch b := b.(type) {
		case Heading:
			parts = append(parts, "## "+b.Text)
		case Paragraph:
			parts = append(parts, InlineMarkdown(b.Spans))
		case BulletList:
			lines := make([]string, len(b.Items))
			for i, item := range b.Items {
				lines[i] = "- " + InlineMarkdown(item)
			}
			parts = append(parts, strings.Join(lines, "\n"))
		case NumberedList:
			lines := make([]string, len(b.Items))
			for i, item := range b.Items {
				lines[i] = strconv.Itoa(i+1) + ". " + InlineMarkdown(item)
			}
			parts = append(parts, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(parts, "\n\n")
}

// InlineMarkdown renders spans with emphasis delimiters restored.
func InlineMarkdown(spans []Span) string {
	var sb strings.Builder
	for _, s := range spans {
		if s.Emphasized {
			sb.WriteString(EmphasisDelimiter)
			sb.WriteString(s.Text)
			sb.WriteString(EmphasisDelimiter)
			continue
		}
		sb.WriteString(s.Text)
	}
	return sb.String()
}
