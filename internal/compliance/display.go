// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package compliance

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var upper = cases.Upper(language.Und)

// DisplayLabel upper-cases a category, severity or status for display.
// The stored value is left untouched.
func DisplayLabel(s string) string {
	return upper.String(strings.TrimSpace(s))
}

// StyleKey turns a category or severity into a key for style lookups,
// e.g. "Brand Voice" becomes "brand_voice".
func StyleKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

// Level is a coarse display grouping of severities.
type Level int

const (
	LevelUnknown Level = iota
	LevelLow
	LevelMedium
	LevelHigh
)

// SeverityLevel maps a severity string to a display level. Unrecognized
// severities map to LevelUnknown.
func SeverityLevel(severity string) Level {
	switch StyleKey(severity) {
	case "low":
		return LevelLow
	case "medium":
		return LevelMedium
	case "high", "critical":
		return LevelHigh
	default:
		return LevelUnknown
	}
}

// RuleTag renders the bracketed "[CATEGORY · SEVERITY]" prefix used when a
// rule is listed. Empty parts are skipped.
func RuleTag(r RuleTrigger) string {
	var parts []string
	for _, p := range []string{r.Category, r.Severity} {
		if l := DisplayLabel(p); l != "" {
			parts = append(parts, l)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "[" + strings.Join(parts, " · ") + "]"
}
