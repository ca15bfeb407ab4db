// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package compliance holds the rule-violation domain types and the pure
// transformations applied to them before display.
//
// # Key Types
//
//   - RuleTrigger: One rule associated with generated or analyzed content
//   - Violation: A passage of an uploaded document and the rules it broke
//   - AnalysisResult: Status, triggered rules and submission ID of a response
//   - Overlay: Derived counts and violation subsets for a turn
//
// Category, severity and status values are opaque strings owned by the
// backend. They are stored and compared verbatim; only the Display helpers
// change their case.
//
// # Usage
//
//	overlay := compliance.BuildOverlay(result.RulesTriggered)
//	if overlay.HasViolations {
//	    fmt.Println(overlay.Summary())
//	}
//
//	text := compliance.BuildReport(compliance.Report{
//	    Status:         check.ComplianceStatus,
//	    Violations:     check.Violations,
//	    RulesTriggered: check.RulesTriggered,
//	})
package compliance
