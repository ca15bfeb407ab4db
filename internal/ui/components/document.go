// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/comply-tui/internal/document"
	"github.com/jeranaias/comply-tui/internal/ui/styles"
	"github.com/jeranaias/comply-tui/internal/util"
)

// BulletMarker prefixes bullet list items.
const BulletMarker = "•"

// =============================================================================
// DOCUMENT RENDERING
// =============================================================================

// RenderDocument renders parsed blocks wrapped to width. Blocks are
// separated by a blank line; list items get a hanging indent.
func RenderDocument(doc document.Document, width int, theme *styles.Theme) string {
	parts := make([]string, 0, len(doc))
	for _, b := range doc {
		switch b := b.(type) {
		case document.Heading:
			parts = append(parts, wrap(theme.DocHeading.Render(b.Text), width))
		case document.Paragraph:
			parts = append(parts, wrap(RenderSpans(b.Spans, theme), width))
		case document.BulletList:
			parts = append(parts, renderList(b.Items, width, theme, func(int) string {
				return BulletMarker
			}))
		case document.NumberedList:
			parts = append(parts, renderList(b.Items, width, theme, func(i int) string {
				return strconv.Itoa(i+1) + "."
			}))
		}
	}
	return strings.Join(parts, "\n\n")
}

// RenderSpans renders inline spans with emphasis.
func RenderSpans(spans []document.Span, theme *styles.Theme) string {
	var sb strings.Builder
	for _, s := range spans {
		if s.Emphasized {
			sb.WriteString(theme.DocEmphasis.Render(s.Text))
		} else {
			sb.WriteString(theme.DocParagraph.Render(s.Text))
		}
	}
	return sb.String()
}

func renderList(items []document.Item, width int, theme *styles.Theme, marker func(int) string) string {
	markerWidth := 0
	for i := range items {
		markerWidth = maxInt(markerWidth, util.StringWidth(marker(i)))
	}
	gutter := lipgloss.NewStyle().Width(markerWidth + 1)
	bodyWidth := maxInt(width-markerWidth-1, minContentWidth)

	lines := make([]string, 0, len(items))
	for i, item := range items {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			gutter.Render(theme.ListMarker.Render(marker(i))),
			wrap(RenderSpans(item, theme), bodyWidth),
		))
	}
	return strings.Join(lines, "\n")
}
