// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/comply-tui/internal/compliance"
	"github.com/jeranaias/comply-tui/internal/ui/styles"
	"github.com/jeranaias/comply-tui/internal/util"
)

const badgeSeparator = " · "

// OverlayBadge renders the one-line compliance summary of a turn, e.g.
// "Status: VIOLATIONS · Rules: 3 triggered (2 violations)". It is empty
// when the turn has no analysis.
func OverlayBadge(analysis *compliance.AnalysisResult, overlay compliance.Overlay, theme *styles.Theme) string {
	if analysis == nil {
		return ""
	}
	status := string(analysis.ComplianceStatus)
	label := compliance.DisplayLabel(status)
	if label == "" {
		label = compliance.DisplayLabel(string(compliance.StatusPending))
		status = string(compliance.StatusPending)
	}

	parts := []string{
		theme.OverlaySummary.Render("Status: ") + theme.StatusStyle(status).Render(label),
	}
	if summary := overlay.Summary(); summary != "" {
		parts = append(parts, theme.OverlaySummary.Render(summary))
	} else {
		parts = append(parts, theme.OverlaySummary.Render("Rules: none triggered"))
	}
	return strings.Join(parts, theme.OverlaySummary.Render(badgeSeparator))
}

// RuleLines renders one line per rule, violated rules first, each truncated
// to width. Violated rules carry the error indicator so the distinction
// survives without color.
func RuleLines(overlay compliance.Overlay, width int, theme *styles.Theme) []string {
	lines := make([]string, 0, overlay.Total)
	for _, group := range [][]compliance.RuleTrigger{overlay.Violated, overlay.TriggeredOnly} {
		for _, r := range group {
			lines = append(lines, ruleLine(r, width, theme))
		}
	}
	return lines
}

func ruleLine(r compliance.RuleTrigger, width int, theme *styles.Theme) string {
	indicator := styles.StatusIndicators.Info
	if r.IsViolated() {
		indicator = styles.StatusIndicators.Error
	}
	tag := compliance.RuleTag(r)
	text := util.CollapseSpace(r.RuleText)
	if text == "" {
		text = r.RuleID
	}

	// Measure the plain line, then style the pieces that survived.
	plain := indicator + " "
	if tag != "" {
		plain += tag + " "
	}
	room := width - util.StringWidth(plain)
	if room < 1 {
		return util.TruncateWidth(indicator+" "+tag, width)
	}
	text = util.TruncateWidth(text, room)

	line := theme.RuleStyle(r).Render(indicator) + " "
	if tag != "" {
		line += theme.SeverityStyle(r.Severity).Render(tag) + " "
	}
	return line + theme.RuleStyle(r).Render(text)
}
