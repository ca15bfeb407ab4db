// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// =============================================================================
// ADMIN OPERATIONS
// =============================================================================

// ListContent returns submissions, newest first.
func (c *Client) ListContent(ctx context.Context, limit, offset int) ([]ContentSubmission, error) {
	query := url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}
	var out []ContentSubmission
	if err := c.doJSON(ctx, http.MethodGet, "/admin/content", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetContent returns the full record of one submission.
func (c *Client) GetContent(ctx context.Context, submissionID string) (*ContentSubmission, error) {
	var out ContentSubmission
	if err := c.doJSON(ctx, http.MethodGet, "/admin/content/"+url.PathEscape(submissionID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ApproveContent marks a submission approved.
func (c *Client) ApproveContent(ctx context.Context, submissionID, adminID string, notes *string) (*MessageResponse, error) {
	return c.review(ctx, submissionID, "approve", ApprovalRequest{AdminID: adminID, Status: ApprovalApproved, Notes: notes})
}

// RejectContent marks a submission rejected.
func (c *Client) RejectContent(ctx context.Context, submissionID, adminID string, notes *string) (*MessageResponse, error) {
	return c.review(ctx, submissionID, "reject", ApprovalRequest{AdminID: adminID, Status: ApprovalRejected, Notes: notes})
}

func (c *Client) review(ctx context.Context, submissionID, action string, req ApprovalRequest) (*MessageResponse, error) {
	var out MessageResponse
	path := "/admin/content/" + url.PathEscape(submissionID) + "/" + action
	if err := c.doJSON(ctx, http.MethodPost, path, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// =============================================================================
// RULE OPERATIONS
// =============================================================================

// ListRules returns the rule set. Inactive rules are included on request.
func (c *Client) ListRules(ctx context.Context, includeInactive bool) ([]Rule, error) {
	query := url.Values{"include_inactive": {strconv.FormatBool(includeInactive)}}
	var out []Rule
	if err := c.doJSON(ctx, http.MethodGet, "/super-admin/rules", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateRule adds a rule on behalf of createdBy.
func (c *Client) CreateRule(ctx context.Context, rule RuleCreate, createdBy string) (*Rule, error) {
	query := url.Values{"created_by": {createdBy}}
	var out Rule
	if err := c.doJSON(ctx, http.MethodPost, "/super-admin/rules", query, rule, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRule stores a new version of a rule.
func (c *Client) UpdateRule(ctx context.Context, ruleID string, update RuleUpdate, updatedBy string) (*Rule, error) {
	query := url.Values{"updated_by": {updatedBy}}
	var out Rule
	if err := c.doJSON(ctx, http.MethodPut, "/super-admin/rules/"+url.PathEscape(ruleID), query, update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ActivateRule re-enables a rule.
func (c *Client) ActivateRule(ctx context.Context, ruleID, actorID string) (*RuleActionResponse, error) {
	return c.ruleAction(ctx, ruleID, "activate", actorID)
}

// DeactivateRule disables a rule without deleting it.
func (c *Client) DeactivateRule(ctx context.Context, ruleID, actorID string) (*RuleActionResponse, error) {
	return c.ruleAction(ctx, ruleID, "deactivate", actorID)
}

func (c *Client) ruleAction(ctx context.Context, ruleID, action, actorID string) (*RuleActionResponse, error) {
	query := url.Values{"actor_id": {actorID}}
	var out RuleActionResponse
	path := "/super-admin/rules/" + url.PathEscape(ruleID) + "/" + action
	if err := c.doJSON(ctx, http.MethodPost, path, query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckDuplicate looks for existing rules similar to ruleText.
func (c *Client) CheckDuplicate(ctx context.Context, ruleText string) (*DuplicateCheckResponse, error) {
	body := struct {
		RuleText string `json:"rule_text"`
	}{ruleText}
	var out DuplicateCheckResponse
	if err := c.doJSON(ctx, http.MethodPost, "/super-admin/rules/check-duplicate", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExtractRules uploads a PDF of guidelines and returns the rules created
// from it.
func (c *Client) ExtractRules(ctx context.Context, doc Upload, createdBy string) (*ExtractRulesResponse, error) {
	body, contentType, err := multipartBody("file", doc)
	if err != nil {
		return nil, err
	}
	query := url.Values{"created_by": {createdBy}}
	var out ExtractRulesResponse
	if err := c.do(ctx, http.MethodPost, "/super-admin/rules/extract", query, body, contentType, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
