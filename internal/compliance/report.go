// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package compliance

import (
	"fmt"
	"strings"

	"github.com/jeranaias/comply-tui/internal/util"
)

// MaxExcerptRunes bounds the passage excerpt shown for each violation.
const MaxExcerptRunes = 280

// Report is the input to BuildReport.
type Report struct {
	Filename       string
	Status         Status
	Violations     []Violation
	RulesTriggered []RuleTrigger
}

// BuildReport renders a document analysis as text that the document parser
// understands: headings in "**...**" form, paragraphs, and bullet lists.
// Server-provided strings are folded onto one line so they cannot change
// the block structure.
func BuildReport(r Report) string {
	var blocks []string
	add := func(s string) {
		if s != "" {
			blocks = append(blocks, s)
		}
	}

	status := DisplayLabel(string(r.Status))
	if status == "" {
		status = DisplayLabel(string(StatusPending))
	}
	add(heading("Document Compliance: " + status))
	add(summaryLine(r))

	if len(r.Violations) == 0 {
		if r.Status == StatusCompliant {
			add("No violations found. The document is compliant.")
		} else {
			add("No violating passages were reported.")
		}
	}

	for i, v := range r.Violations {
		add(heading(violationTitle(i+1, v)))
		if excerpt := util.TruncateRunes(util.CollapseSpace(v.ChunkText), MaxExcerptRunes); excerpt != "" {
			add(fmt.Sprintf("Excerpt: \"%s\"", excerpt))
		}
		if len(v.ViolatedRules) == 0 {
			add("No rule details were returned for this passage.")
			continue
		}
		add(ruleList(v.ViolatedRules, false))
	}

	if len(r.RulesTriggered) > 0 {
		add(heading("Rules Triggered"))
		add(ruleList(r.RulesTriggered, true))
	}

	return strings.Join(blocks, "\n\n")
}

// RewriteText renders a compliant rewrite returned by the backend.
func RewriteText(text string) string {
	return heading("Compliant Version") + "\n\n" + strings.TrimSpace(text)
}

func heading(s string) string {
	return "**" + strings.ReplaceAll(util.CollapseSpace(s), "**", "") + "**"
}

func summaryLine(r Report) string {
	var parts []string
	if name := util.CollapseSpace(r.Filename); name != "" {
		parts = append(parts, "File: "+name)
	}
	overlay := BuildOverlay(r.RulesTriggered)
	parts = append(parts,
		fmt.Sprintf("Rules triggered: %d", overlay.Total),
		fmt.Sprintf("Violations found: %d", len(r.Violations)),
	)
	return strings.Join(parts, " · ")
}

func violationTitle(n int, v Violation) string {
	title := fmt.Sprintf("Violation %d", n)
	if v.PageNumber != nil {
		title += fmt.Sprintf(" · Page %d", *v.PageNumber)
	}
	if v.Section != nil {
		if s := util.CollapseSpace(*v.Section); s != "" {
			title += " · " + s
		}
	}
	return title
}

func ruleList(rules []RuleTrigger, withStatus bool) string {
	lines := make([]string, 0, len(rules))
	for _, r := range rules {
		tag := RuleTag(r)
		if label := DisplayLabel(string(r.Status)); withStatus && label != "" {
			if tag == "" {
				tag = "[" + label + "]"
			} else {
				tag = strings.TrimSuffix(tag, "]") + " · " + label + "]"
			}
		}
		text := util.CollapseSpace(r.RuleText)
		if text == "" {
			text = r.RuleID
		}
		line := strings.TrimSpace(tag + " " + text)
		if line == "" {
			line = "(unnamed rule)"
		}
		lines = append(lines, "- "+line)
	}
	return strings.Join(lines, "\n")
}
