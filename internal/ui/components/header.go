// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/jeranaias/comply-tui/internal/ui/styles"
	"github.com/jeranaias/comply-tui/internal/util"
)

// Header shows the application title and the backend in use.
type Header struct {
	Title    string
	Subtitle string
	Width    int
	theme    *styles.Theme
}

// NewHeader creates a header.
func NewHeader(title, subtitle string, theme *styles.Theme) *Header {
	return &Header{Title: title, Subtitle: subtitle, Width: 80, theme: theme}
}

// View renders the header, dropping the subtitle when it does not fit.
func (h *Header) View() string {
	inner := maxInt(h.Width-2, 1)
	title := util.TruncateWidth(h.Title, inner)
	line := h.theme.HeaderTitle.Render(title)

	if h.Subtitle != "" {
		room := inner - util.StringWidth(title) - 2
		if room >= 8 {
			line += "  " + h.theme.HeaderSubtitle.Render(util.TruncateWidth(h.Subtitle, room))
		}
	}
	return h.theme.Header.Width(maxInt(h.Width, 1)).Render(line)
}
