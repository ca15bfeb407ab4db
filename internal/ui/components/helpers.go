// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import "github.com/charmbracelet/lipgloss"

// minContentWidth is the narrowest width content is wrapped to.
const minContentWidth = 20

// wrap word-wraps s, which may already contain styling, to width columns.
func wrap(s string, width int) string {
	if width < minContentWidth {
		width = minContentWidth
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
