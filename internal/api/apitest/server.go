// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package apitest provides an in-memory compliance backend for tests.
//
// The server implements the agent, admin and rule routes with canned
// behavior that tests can override through the exported hooks. It records
// every request so tests can assert on what the client sent.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jeranaias/comply-tui/internal/api"
	"github.com/jeranaias/comply-tui/internal/compliance"
)

// MinPromptLength mirrors the backend's prompt validation.
const MinPromptLength = 5

// Request is a recorded request.
type Request struct {
	Method    string
	Path      string
	Query     string
	RequestID string
	Body      []byte

	// Filename and FileData are set for multipart uploads.
	Filename string
	FileData []byte
}

// Server is a fake backend backed by httptest.
type Server struct {
	*httptest.Server

	// Hooks replace the default behavior of the agent routes. A returned
	// error is written as a 500 with the error text as detail.
	Generate func(req api.GenerateRequest) (*api.GenerateResponse, error)
	Check    func(userID string, doc api.Upload) (*api.DocumentCheckResponse, error)
	Rewrite  func(req api.RewriteRequest) (*api.RewriteResponse, error)

	mu          sync.Mutex
	requests    []Request
	rules       map[string]*api.Rule
	submissions map[string]*api.ContentSubmission
	seq         int
}

// NewServer starts a fake backend. Call Close when done.
func NewServer() *Server {
	s := &Server{
		rules:       make(map[string]*api.Rule),
		submissions: make(map[string]*api.ContentSubmission),
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, api.HealthResponse{Status: "healthy", Database: "connected"})
	})

	r.Route("/agent", func(r chi.Router) {
		r.Post("/generate", s.handleGenerate)
		r.Post("/check-document", s.handleCheck)
		r.Post("/rewrite", s.handleRewrite)
	})

	r.Route("/admin/content", func(r chi.Router) {
		r.Get("/", s.handleListContent)
		r.Get("/{id}", s.handleGetContent)
		r.Post("/{id}/approve", s.handleReview(api.ApprovalApproved))
		r.Post("/{id}/reject", s.handleReview(api.ApprovalRejected))
	})

	r.Route("/super-admin/rules", func(r chi.Router) {
		r.Get("/", s.handleListRules)
		r.Post("/", s.handleCreateRule)
		r.Post("/check-duplicate", s.handleCheckDuplicate)
		r.Post("/extract", s.handleExtractRules)
		r.Put("/{id}", s.handleUpdateRule)
		r.Post("/{id}/activate", s.handleRuleActive(true))
		r.Post("/{id}/deactivate", s.handleRuleActive(false))
	})

	s.Server = httptest.NewServer(r)
	return s
}

// Requests returns a copy of the recorded requests.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// CountPath returns how many requests hit path.
func (s *Server) CountPath(path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Path == path {
			n++
		}
	}
	return n
}

// AddRule seeds a rule and returns it.
func (s *Server) AddRule(text, category, severity string) api.Rule {
	s.mu.Lock()
	defer s.mu.Unlock()
	rule := s.newRuleLocked(api.RuleCreate{RuleText: text, Category: category, Severity: severity}, "seed")
	return *rule
}

// AddSubmission seeds a submission and returns its ID.
func (s *Server) AddSubmission(sub api.ContentSubmission) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.SubmissionID == "" {
		sub.SubmissionID = s.nextIDLocked("sub")
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	s.submissions[sub.SubmissionID] = &sub
	return sub.SubmissionID
}

// Rule returns a stored rule.
func (s *Server) Rule(id string) (api.Rule, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules[id]
	if !ok {
		return api.Rule{}, false
	}
	return *r, true
}

// =============================================================================
// AGENT HANDLERS
// =============================================================================

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req api.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if len([]rune(req.Prompt)) < MinPromptLength {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"detail": []map[string]interface{}{{
				"loc":  []interface{}{"body", "prompt"},
				"msg":  fmt.Sprintf("String should have at least %d characters", MinPromptLength),
				"type": "string_too_short",
			}},
		})
		return
	}

	if s.Generate != nil {
		resp, err := s.Generate(req)
		s.respond(w, resp, err)
		return
	}

	s.mu.Lock()
	id := s.nextIDLocked("sub")
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, api.GenerateResponse{
		SubmissionID:     id,
		FinalContent:     "**Generated**\n\n" + req.Prompt,
		ComplianceStatus: compliance.StatusCompliant,
		RulesTriggered:   []compliance.RuleTrigger{},
		CreatedAt:        time.Now().UTC(),
	})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "user_id is required")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "file is required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	if n := len(s.requests); n > 0 {
		s.requests[n-1].Filename = header.Filename
		s.requests[n-1].FileData = data
	}
	s.mu.Unlock()

	doc := api.Upload{Filename: header.Filename, Data: data}
	if s.Check != nil {
		resp, err := s.Check(userID, doc)
		s.respond(w, resp, err)
		return
	}

	s.mu.Lock()
	id := s.nextIDLocked("sub")
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, api.DocumentCheckResponse{
		SubmissionID:     id,
		ComplianceStatus: compliance.StatusCompliant,
		Violations:       []compliance.Violation{},
		RulesTriggered:   []compliance.RuleTrigger{},
	})
}

func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request) {
	var req api.RewriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if s.Rewrite != nil {
		resp, err := s.Rewrite(req)
		s.respond(w, resp, err)
		return
	}
	writeJSON(w, http.StatusOK, api.RewriteResponse{CompliantText: "Compliant: " + req.ViolationText})
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

func (s *Server) handleListContent(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]api.ContentSubmission, 0, len(s.submissions))
	for _, sub := range s.submissions {
		out = append(out, *sub)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetContent(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	sub, ok := s.submissions[chi.URLParam(r, "id")]
	var out api.ContentSubmission
	if ok {
		out = *sub
	}
	s.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusNotFound, "Submission not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleReview(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.ApprovalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		s.mu.Lock()
		sub, ok := s.submissions[chi.URLParam(r, "id")]
		if ok {
			approval, by := status, req.AdminID
			sub.ApprovalStatus = &approval
			sub.ApprovedBy = &by
		}
		s.mu.Unlock()

		if !ok {
			writeDetail(w, http.StatusNotFound, "Submission not found")
			return
		}
		writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Content " + status})
	}
}

// =============================================================================
// RULE HANDLERS
// =============================================================================

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	s.mu.Lock()
	out := make([]api.Rule, 0, len(s.rules))
	for _, rule := range s.rules {
		if rule.IsActive || includeInactive {
			out = append(out, *rule)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].RuleID < out[j].RuleID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var req api.RuleCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if len(req.RuleText) < 10 {
		writeDetail(w, http.StatusUnprocessableEntity, "rule_text must be at least 10 characters")
		return
	}

	s.mu.Lock()
	rule := *s.newRuleLocked(req, r.URL.Query().Get("created_by"))
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, rule)
}

func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	var req api.RuleUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.mu.Lock()
	rule, ok := s.rules[chi.URLParam(r, "id")]
	var out api.Rule
	if ok {
		if req.RuleText != nil {
			rule.RuleText = *req.RuleText
		}
		if req.Category != nil {
			rule.Category = *req.Category
		}
		if req.Severity != nil {
			rule.Severity = *req.Severity
		}
		rule.Version++
		rule.UpdatedAt = time.Now().UTC()
		out = *rule
	}
	s.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusNotFound, "Rule not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRuleActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		rule, ok := s.rules[chi.URLParam(r, "id")]
		var out api.Rule
		if ok {
			rule.IsActive = active
			out = *rule
		}
		s.mu.Unlock()

		if !ok {
			writeDetail(w, http.StatusNotFound, "Rule not found")
			return
		}
		msg := "Rule deactivated"
		if active {
			msg = "Rule activated"
		}
		writeJSON(w, http.StatusOK, api.RuleActionResponse{Message: msg, Rule: out})
	}
}

// handleExtractRules creates one rule per non-empty line of the upload.
func (s *Server) handleExtractRules(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "file is required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	createdBy := r.URL.Query().Get("created_by")
	resp := api.ExtractRulesResponse{Rules: []api.Rule{}}
	s.mu.Lock()
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		rule := s.newRuleLocked(api.RuleCreate{RuleText: line, Category: "extracted", Severity: "MEDIUM"}, createdBy)
		resp.Rules = append(resp.Rules, *rule)
	}
	s.mu.Unlock()
	resp.Message = fmt.Sprintf("Extracted %d rules", len(resp.Rules))
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCheckDuplicate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RuleText string `json:"rule_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	resp := api.DuplicateCheckResponse{Matches: []api.DuplicateMatch{}}
	s.mu.Lock()
	for _, rule := range s.rules {
		if strings.EqualFold(strings.TrimSpace(rule.RuleText), strings.TrimSpace(req.RuleText)) {
			resp.IsDuplicate = true
			resp.Matches = append(resp.Matches, api.DuplicateMatch{
				RuleID:          rule.RuleID,
				RuleText:        rule.RuleText,
				SimilarityScore: 1,
				MatchType:       "exact",
			})
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := Request{
			Method:    r.Method,
			Path:      r.URL.Path,
			Query:     r.URL.RawQuery,
			RequestID: r.Header.Get(api.RequestIDHeader),
		}
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") && r.Body != nil {
			body, _ := io.ReadAll(r.Body)
			r.Body.Close()
			req.Body = body
			r.Body = io.NopCloser(strings.NewReader(string(body)))
		}

		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) respond(w http.ResponseWriter, resp interface{}, err error) {
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) newRuleLocked(req api.RuleCreate, createdBy string) *api.Rule {
	now := time.Now().UTC()
	rule := &api.Rule{
		RuleID:    s.nextIDLocked("rule"),
		RuleText:  req.RuleText,
		Category:  req.Category,
		Severity:  req.Severity,
		IsActive:  true,
		Version:   1,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.rules[rule.RuleID] = rule
	return rule
}

func (s *Server) nextIDLocked(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%04d", prefix, s.seq)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
