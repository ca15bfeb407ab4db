// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/comply-tui/internal/compliance"
)

func TestNewTheme_ForcedModes(t *testing.T) {
	dark := NewTheme(ModeDark)
	require.NotNil(t, dark)
	assert.True(t, dark.IsDark)

	light := NewTheme("LIGHT")
	assert.False(t, light.IsDark)
}

func TestThemeInitStyles(t *testing.T) {
	theme := NewTheme(ModeDark)

	tests := []struct {
		name  string
		style lipgloss.Style
	}{
		{"UserBubble", theme.UserBubble},
		{"SystemBubble", theme.SystemBubble},
		{"ErrorBubble", theme.ErrorBubble},
		{"DocHeading", theme.DocHeading},
		{"StatusBar", theme.StatusBar},
		{"HelpBox", theme.HelpBox},
	}
	for _, tt := range tests {
		assert.Contains(t, tt.style.Render("test"), "test", tt.name)
	}
}

func TestTheme_StatusStyle(t *testing.T) {
	theme := NewTheme(ModeDark)

	assert.Equal(t, theme.StatusCompliant, theme.StatusStyle("compliant"))
	assert.Equal(t, theme.StatusViolations, theme.StatusStyle(" VIOLATIONS "))
	assert.Equal(t, theme.StatusPending, theme.StatusStyle("Pending"))
	assert.Equal(t, theme.Unknown, theme.StatusStyle("archived"))
}

func TestTheme_SeverityStyle(t *testing.T) {
	theme := NewTheme(ModeDark)

	assert.Equal(t, theme.SeverityHigh, theme.SeverityStyle("critical"))
	assert.Equal(t, theme.SeverityMedium, theme.SeverityStyle("Medium"))
	assert.Equal(t, theme.SeverityLow, theme.SeverityStyle("low"))
	assert.Equal(t, theme.Unknown, theme.SeverityStyle(""))
}

func TestTheme_RuleStyle(t *testing.T) {
	theme := NewTheme(ModeDark)

	assert.Equal(t, theme.RuleViolated, theme.RuleStyle(compliance.RuleTrigger{Status: compliance.RuleViolated}))
	assert.Equal(t, theme.RuleTriggered, theme.RuleStyle(compliance.RuleTrigger{Status: compliance.RuleTriggered}))
}

func TestTheme_LayoutMode(t *testing.T) {
	theme := NewTheme(ModeDark)

	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
	}
	for _, tt := range tests {
		theme.SetSize(tt.width, 40)
		assert.Equal(t, tt.want, theme.GetLayoutMode(), "width %d", tt.width)
	}
}

func TestRenderIndicators(t *testing.T) {
	assert.True(t, strings.Contains(RenderSuccess("saved"), "[OK] saved"))
	assert.True(t, strings.Contains(RenderError("failed"), "[X] failed"))
	assert.True(t, strings.Contains(RenderWarning("careful"), "[!] careful"))
	assert.True(t, strings.Contains(RenderInfo("note"), "[i] note"))
}
