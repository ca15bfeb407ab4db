// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/comply-tui/internal/compliance"
	"github.com/jeranaias/comply-tui/internal/document"
	"github.com/jeranaias/comply-tui/internal/model"
	"github.com/jeranaias/comply-tui/internal/orchestrator"
	"github.com/jeranaias/comply-tui/internal/ui/styles"
)

func testTheme() *styles.Theme {
	return styles.NewTheme(styles.ModeDark)
}

// squash collapses padding so assertions can ignore layout spaces.
func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func sampleRules() []compliance.RuleTrigger {
	return []compliance.RuleTrigger{
		{RuleID: "r1", RuleText: "Mention opt-out rights", Category: "privacy", Severity: "low", Status: compliance.RuleTriggered},
		{RuleID: "r2", RuleText: "No guaranteed returns", Category: "finance", Severity: "high", Status: compliance.RuleViolated},
		{RuleID: "r3", RuleText: "", Category: "", Severity: "", Status: compliance.RuleViolated},
	}
}

// =============================================================================
// DOCUMENT
// =============================================================================

func TestRenderDocument(t *testing.T) {
	doc := document.Parse("**Title**\n\nHello **world** there.\n\n- one\n- two\n\n1. first\n2. second")

	out := RenderDocument(doc, 60, testTheme())

	assert.Contains(t, out, "Title")
	assert.Contains(t, squash(out), "Hello world there.")
	assert.Contains(t, squash(out), BulletMarker+" one")
	assert.Contains(t, squash(out), BulletMarker+" two")
	assert.Contains(t, squash(out), "1. first")
	assert.Contains(t, squash(out), "2. second")
	assert.NotContains(t, out, "**")
}

func TestRenderDocument_WrapsToWidth(t *testing.T) {
	text := strings.Repeat("compliance review text ", 20)
	doc := document.Parse(text + "\n\n- " + text)

	out := RenderDocument(doc, 30, testTheme())
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 30, line)
	}
}

func TestRenderDocument_Empty(t *testing.T) {
	assert.Empty(t, RenderDocument(nil, 40, testTheme()))
}

// =============================================================================
// OVERLAY
// =============================================================================

func TestOverlayBadge(t *testing.T) {
	theme := testTheme()
	analysis := &compliance.AnalysisResult{
		ComplianceStatus: compliance.StatusViolations,
		RulesTriggered:   sampleRules(),
	}

	badge := OverlayBadge(analysis, compliance.BuildOverlay(analysis.RulesTriggered), theme)
	assert.Equal(t, "Status: VIOLATIONS · Rules: 3 triggered (2 violations)", badge)

	assert.Empty(t, OverlayBadge(nil, compliance.Overlay{}, theme))

	empty := &compliance.AnalysisResult{}
	assert.Equal(t, "Status: PENDING · Rules: none triggered", OverlayBadge(empty, compliance.Overlay{}, theme))
}

func TestRuleLines_ViolatedFirst(t *testing.T) {
	lines := RuleLines(compliance.BuildOverlay(sampleRules()), 80, testTheme())

	require.Len(t, lines, 3)
	assert.Equal(t, "[X] [FINANCE · HIGH] No guaranteed returns", lines[0])
	assert.Equal(t, "[X] r3", lines[1])
	assert.Equal(t, "[i] [PRIVACY · LOW] Mention opt-out rights", lines[2])
}

func TestRuleLines_Truncates(t *testing.T) {
	rules := []compliance.RuleTrigger{{
		RuleText: strings.Repeat("very long rule text ", 10),
		Category: "brand voice", Severity: "medium", Status: compliance.RuleViolated,
	}}

	for _, width := range []int{10, 30, 50} {
		for _, line := range RuleLines(compliance.BuildOverlay(rules), width, testTheme()) {
			assert.LessOrEqual(t, lipgloss.Width(line), width)
		}
	}
}

// =============================================================================
// MESSAGE
// =============================================================================

func TestMessageView_Pending(t *testing.T) {
	msg := model.NewPendingMessage("Analyzing document...")
	v := NewMessageView(msg, 2, testTheme())
	v.Spinner = "*"

	out := v.View()
	assert.Contains(t, out, "#2 Comply")
	assert.Contains(t, out, "* Analyzing document...")
}

func TestMessageView_Error(t *testing.T) {
	v := NewMessageView(model.NewErrorMessage("backend unavailable"), 1, testTheme())
	v.ShowTimestamp = false

	out := v.View()
	assert.True(t, strings.HasPrefix(out, "#1 Comply\n"))
	assert.Contains(t, squash(out), "[X] Error: backend unavailable")
}

func TestMessageView_User(t *testing.T) {
	v := NewMessageView(model.NewUserMessage(model.KindPrompt, "Draft a **launch** email"), 1, testTheme())

	out := v.View()
	assert.Contains(t, out, "You")
	// User text is shown as typed.
	assert.Contains(t, out, "Draft a **launch** email")
}

func TestMessageView_SystemWithViolations(t *testing.T) {
	page := 3
	analysis := &compliance.AnalysisResult{
		ComplianceStatus: compliance.StatusViolations,
		SubmissionID:     "sub-9",
		RulesTriggered:   sampleRules(),
		Violations:       []compliance.Violation{{ChunkText: "guaranteed 20% returns", PageNumber: &page}},
	}
	msg := model.NewResultMessage(model.KindReport, "**Document Compliance: VIOLATIONS**\n\nOne passage.", analysis)

	v := NewMessageView(msg, 4, testTheme())
	out := squash(v.View())

	assert.Contains(t, out, "Document Compliance: VIOLATIONS")
	assert.Contains(t, out, "Status: VIOLATIONS · Rules: 3 triggered (2 violations)")
	assert.Contains(t, out, "[FINANCE · HIGH] No guaranteed returns")
	assert.Contains(t, out, "/rewrite 4 <1-1> proposes a compliant version")

	v.ShowRules = false
	assert.NotContains(t, squash(v.View()), "No guaranteed returns")
}

func TestMessageView_NoRewriteHintWithoutSubmission(t *testing.T) {
	analysis := &compliance.AnalysisResult{
		ComplianceStatus: compliance.StatusViolations,
		Violations:       []compliance.Violation{{ChunkText: "x"}},
	}
	msg := model.NewResultMessage(model.KindReport, "Report", analysis)

	assert.NotContains(t, NewMessageView(msg, 1, testTheme()).View(), "/rewrite")
}

// =============================================================================
// HEADER AND STATUS BAR
// =============================================================================

func TestHeader_View(t *testing.T) {
	h := NewHeader("comply", "http://127.0.0.1:8000", testTheme())
	h.Width = 60
	assert.Contains(t, h.View(), "comply  http://127.0.0.1:8000")

	h.Width = 12
	assert.NotContains(t, h.View(), "http")
}

func TestStatusBar_States(t *testing.T) {
	bar := NewStatusBar(testTheme())
	bar.Width = 120
	bar.Turns = 3
	bar.PromptEnhancer = true
	bar.UserID = "00000000-0000-0000-0000-000000000001"

	out := bar.View()
	assert.Contains(t, out, "[OK] Ready")
	assert.Contains(t, out, "enhancer on")
	assert.Contains(t, out, "3 turns")
	assert.Contains(t, out, "user 00000000")

	bar.State = orchestrator.Analyzing
	bar.Spinner = "|"
	assert.Contains(t, bar.View(), "| Analyzing document...")
}

func TestStatusBar_FitsWidth(t *testing.T) {
	bar := NewStatusBar(testTheme())
	bar.Notice = "Exported to /tmp/comply_session.md"

	for _, width := range []int{8, 20, 40, 200} {
		bar.Width = width
		out := bar.View()
		assert.Equal(t, 1, lipgloss.Height(out), "width %d", width)
		assert.LessOrEqual(t, lipgloss.Width(out), width)
	}

	bar.Width = 24
	assert.NotContains(t, bar.View(), "ctrl+c")
}

func TestHelpView(t *testing.T) {
	out := HelpView("Commands", []HelpEntry{
		{Usage: "/upload <path>", Description: "Check a document"},
		{Usage: "/clear", Description: "Start over"},
	}, 80, testTheme())

	assert.Contains(t, out, "Commands")
	assert.Contains(t, squash(out), "/upload <path> Check a document")
	assert.Contains(t, squash(out), "/clear Start over")
}
