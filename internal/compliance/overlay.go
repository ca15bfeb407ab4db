// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package compliance

import "fmt"

// Overlay is a read-only summary of the rules attached to a turn.
type Overlay struct {
	// Total counts every rule, violated ones included.
	Total int

	// Violated holds the rules with status "violated", in input order.
	Violated []RuleTrigger

	// TriggeredOnly holds the remaining rules, in input order.
	TriggeredOnly []RuleTrigger

	HasViolations bool
}

// BuildOverlay groups rules into violated and triggered-only subsets.
// A nil slice is treated as empty.
func BuildOverlay(rules []RuleTrigger) Overlay {
	o := Overlay{Total: len(rules)}
	for _, r := range rules {
		if r.IsViolated() {
			o.Violated = append(o.Violated, r)
		} else {
			o.TriggeredOnly = append(o.TriggeredOnly, r)
		}
	}
	o.HasViolations = len(o.Violated) > 0
	return o
}

// Summary returns a one-line description such as
// "Rules: 3 triggered (2 violations)". It is empty when no rules fired.
func (o Overlay) Summary() string {
	if o.Total == 0 {
		return ""
	}
	s := fmt.Sprintf("Rules: %d triggered", o.Total)
	if o.HasViolations {
		s += fmt.Sprintf(" (%d %s)", len(o.Violated), plural(len(o.Violated), "violation", "violations"))
	}
	return s
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
