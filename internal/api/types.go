// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"time"

	"github.com/jeranaias/comply-tui/internal/compliance"
)

// =============================================================================
// AGENT TYPES
// =============================================================================

// GenerateRequest is the body of POST /agent/generate.
type GenerateRequest struct {
	Prompt            string `json:"prompt"`
	UsePromptEnhancer bool   `json:"use_prompt_enhancer"`
	UserID            string `json:"user_id"`
}

// GenerateResponse is the result of a content generation.
type GenerateResponse struct {
	SubmissionID     string                   `json:"submission_id"`
	FinalContent     string                   `json:"final_content"`
	ComplianceStatus compliance.Status        `json:"compliance_status"`
	RulesTriggered   []compliance.RuleTrigger `json:"rules_triggered"`
	CreatedAt        time.Time                `json:"created_at"`
}

// Analysis returns the compliance metadata of the response.
func (r *GenerateResponse) Analysis() *compliance.AnalysisResult {
	return &compliance.AnalysisResult{
		ComplianceStatus: r.ComplianceStatus,
		RulesTriggered:   nonNilRules(r.RulesTriggered),
		SubmissionID:     r.SubmissionID,
	}
}

// Upload is a document to be checked.
type Upload struct {
	Filename string
	Data     []byte
}

// DocumentCheckResponse is the result of POST /agent/check-document.
type DocumentCheckResponse struct {
	SubmissionID     string                   `json:"submission_id"`
	ComplianceStatus compliance.Status        `json:"compliance_status"`
	Violations       []compliance.Violation   `json:"violations"`
	RulesTriggered   []compliance.RuleTrigger `json:"rules_triggered"`
}

// Analysis returns the compliance metadata of the response, violations
// included.
func (r *DocumentCheckResponse) Analysis() *compliance.AnalysisResult {
	violations := r.Violations
	if violations == nil {
		violations = []compliance.Violation{}
	}
	return &compliance.AnalysisResult{
		ComplianceStatus: r.ComplianceStatus,
		RulesTriggered:   nonNilRules(r.RulesTriggered),
		SubmissionID:     r.SubmissionID,
		Violations:       violations,
	}
}

// Report renders the response as a document for display.
func (r *DocumentCheckResponse) Report(filename string) string {
	return compliance.BuildReport(compliance.Report{
		Filename:       filename,
		Status:         r.ComplianceStatus,
		Violations:     r.Violations,
		RulesTriggered: r.RulesTriggered,
	})
}

// RewriteRequest is the body of POST /agent/rewrite.
type RewriteRequest struct {
	SubmissionID  string `json:"submission_id"`
	ViolationText string `json:"violation_text"`
}

// RewriteResponse holds the compliant version of a passage.
type RewriteResponse struct {
	CompliantText string `json:"compliant_text"`
}

// =============================================================================
// RULE TYPES
// =============================================================================

// Rule is a compliance rule as managed by super admins.
type Rule struct {
	RuleID    string    `json:"rule_id"`
	RuleText  string    `json:"rule_text"`
	Category  string    `json:"category"`
	Severity  string    `json:"severity"`
	IsActive  bool      `json:"is_active"`
	Version   int       `json:"version"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RuleCreate is the body for creating a rule.
type RuleCreate struct {
	RuleText string `json:"rule_text"`
	Category string `json:"category"`
	Severity string `json:"severity"`
}

// RuleUpdate is the body for updating a rule. Nil fields are left unchanged;
// the backend stores the result as a new version.
type RuleUpdate struct {
	RuleText *string `json:"rule_text,omitempty"`
	Category *string `json:"category,omitempty"`
	Severity *string `json:"severity,omitempty"`
}

// RuleActionResponse is returned by activate and deactivate.
type RuleActionResponse struct {
	Message string `json:"message"`
	Rule    Rule   `json:"rule"`
}

// ExtractRulesResponse is returned when rules are extracted from a PDF.
type ExtractRulesResponse struct {
	Message string `json:"message"`
	Rules   []Rule `json:"rules"`
}

// DuplicateMatch is an existing rule similar to a candidate.
type DuplicateMatch struct {
	RuleID          string  `json:"rule_id"`
	RuleText        string  `json:"rule_text"`
	SimilarityScore float64 `json:"similarity_score"`
	MatchType       string  `json:"match_type"`
}

// DuplicateCheckResponse is the result of a duplicate check.
type DuplicateCheckResponse struct {
	IsDuplicate bool             `json:"is_duplicate"`
	Matches     []DuplicateMatch `json:"matches"`
}

// =============================================================================
// ADMIN TYPES
// =============================================================================

// ContentSubmission is a generated or checked submission awaiting review.
// Fields absent from the list endpoint are left empty.
type ContentSubmission struct {
	SubmissionID     string                   `json:"submission_id"`
	UserID           string                   `json:"user_id,omitempty"`
	InputType        string                   `json:"input_type"`
	InputReference   string                   `json:"input_reference,omitempty"`
	FinalContent     string                   `json:"final_content,omitempty"`
	ComplianceStatus compliance.Status        `json:"compliance_status"`
	RulesTriggered   []compliance.RuleTrigger `json:"rules_triggered,omitempty"`
	ApprovalStatus   *string                  `json:"approval_status,omitempty"`
	ApprovedBy       *string                  `json:"approved_by,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
}

// Approval values for ApprovalRequest.Status.
const (
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// ApprovalRequest is the body of the approve and reject endpoints.
type ApprovalRequest struct {
	AdminID string  `json:"admin_id"`
	Status  string  `json:"status"`
	Notes   *string `json:"notes,omitempty"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	Database    string `json:"database,omitempty"`
	LLMProvider string `json:"llm_provider,omitempty"`
	VectorDB    string `json:"vector_db,omitempty"`
}

func nonNilRules(rules []compliance.RuleTrigger) []compliance.RuleTrigger {
	if rules == nil {
		return []compliance.RuleTrigger{}
	}
	return rules
}
