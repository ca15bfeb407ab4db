// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package compliance

// =============================================================================
// STATUS TYPES
// =============================================================================

// Status is the overall compliance verdict for a submission.
type Status string

const (
	StatusCompliant  Status = "compliant"
	StatusViolations Status = "violations"
	StatusPending    Status = "pending"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// RuleStatus records whether a rule was merely triggered or actually violated.
// Every violated rule is also a triggered rule.
type RuleStatus string

const (
	RuleTriggered RuleStatus = "triggered"
	RuleViolated  RuleStatus = "violated"
)

// Severity levels used by the backend. Values are not restricted to these.
const (
	SeverityLow    = "LOW"
	SeverityMedium = "MEDIUM"
	SeverityHigh   = "HIGH"
)

// =============================================================================
// RULE TYPES
// =============================================================================

// RuleTrigger is a compliance rule instance attached to a submission.
type RuleTrigger struct {
	RuleID   string     `json:"rule_id"`
	RuleText string     `json:"rule_text"`
	Category string     `json:"category"`
	Severity string     `json:"severity"`
	Status   RuleStatus `json:"status"`
}

// IsViolated reports whether the rule was violated.
func (r RuleTrigger) IsViolated() bool {
	return r.Status == RuleViolated
}

// Violation is a passage of an analyzed document together with the rules it
// violated.
type Violation struct {
	ChunkText     string        `json:"chunk_text"`
	ViolatedRules []RuleTrigger `json:"violated_rules"`
	PageNumber    *int          `json:"page_number,omitempty"`
	Section       *string       `json:"section,omitempty"`
}

// AnalysisResult is the compliance metadata attached to a system turn.
type AnalysisResult struct {
	ComplianceStatus Status        `json:"compliance_status"`
	RulesTriggered   []RuleTrigger `json:"rules_triggered"`
	SubmissionID     string        `json:"submission_id"`

	// Violations is set for document analyses only.
	Violations []Violation `json:"violations,omitempty"`
}

// HasSubmission reports whether the result can be referenced by follow-up
// calls such as rewrites.
func (a *AnalysisResult) HasSubmission() bool {
	return a != nil && a.SubmissionID != ""
}
