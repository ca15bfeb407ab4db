// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/comply-tui/internal/ui/styles"
)

// HelpEntry is one line of the command reference.
type HelpEntry struct {
	Usage       string
	Description string
}

// HelpView renders the command reference box.
func HelpView(title string, entries []HelpEntry, width int, theme *styles.Theme) string {
	lines := []string{theme.HeaderTitle.Render(title), ""}
	descWidth := maxInt(width-32, minContentWidth)
	for _, e := range entries {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			theme.HelpCommand.Render(e.Usage),
			theme.HelpDesc.Render(wrap(e.Description, descWidth)),
		))
	}
	return theme.HelpBox.Render(strings.Join(lines, "\n"))
}
