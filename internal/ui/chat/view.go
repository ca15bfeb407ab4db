// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/comply-tui/internal/ui/components"
	"github.com/jeranaias/comply-tui/internal/ui/styles"
	"github.com/jeranaias/comply-tui/internal/util"
)

const (
	appTitle = "comply"

	// maxVisibleCompletions bounds the completion list above the input.
	maxVisibleCompletions = 6
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// renderChat renders the complete chat view.
// Layout: header + messages (viewport) + [completions] + input + status.
// The viewport height is set by layout() from the same render functions.
func (m Model) renderChat() string {
	body := m.viewport.View()
	if m.showHelp {
		body = lipgloss.Place(m.width, m.viewport.Height,
			lipgloss.Center, lipgloss.Center, m.renderHelp())
	}

	parts := []string{m.renderHeader(), body}
	if popup := m.renderCompletions(); popup != "" {
		parts = append(parts, popup)
	}
	parts = append(parts, m.renderInput(), m.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderConversation renders every turn for the viewport.
func (m Model) renderConversation() string {
	msgs := m.orch.Conversation().Messages()
	if len(msgs) == 0 {
		return m.renderWelcome()
	}

	spin := m.spinner.View()
	rendered := make([]string, len(msgs))
	for i, msg := range msgs {
		v := components.NewMessageView(msg, i+1, m.theme)
		v.Width = m.viewport.Width
		v.ShowRules = m.showRules
		v.Spinner = spin
		rendered[i] = v.View()
	}
	return strings.Join(rendered, "\n\n")
}

func (m Model) renderWelcome() string {
	lines := []string{
		m.theme.HeaderTitle.Render("Compliance-checked content generation"),
		"",
		m.theme.HelpDesc.Render("Type a prompt and press Enter to generate content that is checked against the active rules."),
		m.theme.HelpDesc.Render("Use /upload <path> to check a PDF, DOCX or TXT document, and /help for all commands."),
	}
	width := maxInt(m.viewport.Width-4, 20)
	return lipgloss.NewStyle().Width(width).Padding(1, 2).Render(strings.Join(lines, "\n"))
}

// =============================================================================
// FIXED PARTS
// =============================================================================

func (m Model) renderHeader() string {
	h := components.NewHeader(appTitle, m.subtitle, m.theme)
	h.Width = m.width
	return h.View()
}

// renderInput shows the spinner in place of the prompt while a request runs.
func (m Model) renderInput() string {
	in := m.input
	if m.orch.Busy() {
		in.Prompt = m.spinner.View() + " "
	}
	return m.theme.InputContainer.Width(maxInt(m.width, 1)).Render(in.View())
}

func (m Model) renderStatusBar() string {
	sb := components.NewStatusBar(m.theme)
	sb.State = m.orch.State()
	sb.Spinner = m.spinner.View()
	sb.PromptEnhancer = m.orch.PromptEnhancer()
	sb.Turns = m.orch.Conversation().Len()
	sb.UserID = m.cmdCtx.Identity.UserID
	sb.Width = m.width
	if m.notice != "" {
		sb.Notice = m.notice
		if m.noticeIsError {
			sb.Notice = styles.StatusIndicators.Error + " " + m.notice
		}
	}
	return sb.View()
}

// renderCompletions lists the completions around the selected one.
func (m Model) renderCompletions() string {
	if !m.completions.Active() {
		return ""
	}

	comps := m.completions.Completions
	start := 0
	if m.completions.Selected >= maxVisibleCompletions {
		start = m.completions.Selected - maxVisibleCompletions + 1
	}
	end := start + maxVisibleCompletions
	if end > len(comps) {
		end = len(comps)
	}

	width := maxInt(m.width-4, 10)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		c := comps[i]
		text := c.Display
		if c.Description != "" {
			text += "  " + c.Description
		}
		text = util.TruncateWidth(text, width-2)
		if i == m.completions.Selected {
			lines = append(lines, m.theme.ShortcutKey.Render("> "+text))
		} else {
			lines = append(lines, m.theme.ShortcutDesc.Render("  "+text))
		}
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines, "\n"))
}

func (m Model) renderHelp() string {
	var entries []components.HelpEntry
	for _, cmd := range m.registry.Visible() {
		entries = append(entries, components.HelpEntry{Usage: cmd.Usage, Description: cmd.Description})
	}
	for _, b := range m.keys.HelpBindings() {
		h := b.Help()
		entries = append(entries, components.HelpEntry{Usage: h.Key, Description: h.Desc})
	}
	return components.HelpView("Commands and keys", entries, minInt(m.width-4, 100), m.theme)
}

// =============================================================================
// HELPERS
// =============================================================================

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
