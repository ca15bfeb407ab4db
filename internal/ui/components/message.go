// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/comply-tui/internal/model"
	"github.com/jeranaias/comply-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE VIEW
// =============================================================================

// MessageView renders a single conversation turn.
type MessageView struct {
	Message *model.Message

	// Index is the turn number shown in the header, starting at 1.
	Index int

	Width         int
	ShowRules     bool
	ShowTimestamp bool

	// Spinner is the current spinner frame for pending turns.
	Spinner string

	theme *styles.Theme
}

// NewMessageView creates a view for msg with default settings.
func NewMessageView(msg *model.Message, index int, theme *styles.Theme) *MessageView {
	return &MessageView{
		Message:       msg,
		Index:         index,
		Width:         80,
		ShowRules:     true,
		ShowTimestamp: true,
		theme:         theme,
	}
}

// View renders the turn.
func (v *MessageView) View() string {
	if v.Message == nil {
		return ""
	}
	return v.header() + "\n" + v.body()
}

func (v *MessageView) header() string {
	msg := v.Message
	label := v.theme.SystemLabel
	if msg.Role == model.RoleUser {
		label = v.theme.UserLabel
	}
	parts := []string{
		v.theme.TurnIndex.Render(fmt.Sprintf("#%d", v.Index)),
		label.Render(msg.Role.DisplayName()),
	}
	if v.ShowTimestamp && !msg.Timestamp.IsZero() {
		parts = append(parts, v.theme.Timestamp.Render(msg.Timestamp.Format("15:04:05")))
	}
	return strings.Join(parts, " ")
}

// innerWidth is the text width inside a bubble: margin, border and padding
// take eight columns.
func (v *MessageView) innerWidth() int {
	return maxInt(v.Width-8, minContentWidth)
}

func (v *MessageView) body() string {
	msg := v.Message
	switch {
	case msg.Pending:
		spinner := v.Spinner
		if spinner == "" {
			spinner = styles.StatusIndicators.Pending
		}
		return v.theme.Spinner.Render(spinner) + " " + v.theme.PendingText.Render(msg.Content)
	case msg.IsError:
		return v.theme.ErrorBubble.Render(
			wrap(styles.StatusIndicators.Error+" "+msg.Content, v.innerWidth()))
	case msg.Role == model.RoleUser:
		return v.theme.UserBubble.Render(wrap(msg.Content, v.innerWidth()))
	default:
		return v.theme.SystemBubble.Render(v.systemContent())
	}
}

func (v *MessageView) systemContent() string {
	msg := v.Message
	width := v.innerWidth()

	var sections []string
	if len(msg.Blocks) > 0 {
		sections = append(sections, RenderDocument(msg.Blocks, width, v.theme))
	} else if !msg.IsEmpty() {
		sections = append(sections, wrap(msg.Content, width))
	}

	if badge := OverlayBadge(msg.Analysis, msg.Overlay, v.theme); badge != "" {
		lines := []string{badge}
		if v.ShowRules {
			lines = append(lines, RuleLines(msg.Overlay, width, v.theme)...)
		}
		if n := len(msg.Violations()); n > 0 && msg.Analysis.HasSubmission() {
			lines = append(lines, v.theme.Timestamp.Render(
				fmt.Sprintf("/rewrite %d <1-%d> proposes a compliant version", v.Index, n)))
		}
		sections = append(sections, lipgloss.JoinVertical(lipgloss.Left, lines...))
	}
	return strings.Join(sections, "\n\n")
}
