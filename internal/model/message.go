// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/comply-tui/internal/compliance"
	"github.com/jeranaias/comply-tui/internal/document"
	"github.com/jeranaias/comply-tui/internal/util"
)

// ErrorPrefix marks the content of error turns.
const ErrorPrefix = "Error: "

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser   Role = "user"
	RoleSystem Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleSystem:
		return "Comply"
	default:
		return string(r)
	}
}

// =============================================================================
// KIND TYPE
// =============================================================================

// Kind records which operation produced a turn.
type Kind string

const (
	KindPrompt         Kind = "prompt"
	KindUpload         Kind = "upload"
	KindRewriteRequest Kind = "rewrite_request"
	KindResult         Kind = "result"
	KindReport         Kind = "report"
	KindRewrite        Kind = "rewrite"
	KindError          Kind = "error"
	KindPending        Kind = "pending"
)

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single turn in a conversation. Messages are not modified
// after they are appended.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string `json:"content"`

	// Filename is set on upload turns.
	Filename string `json:"filename,omitempty"`

	// Pending marks the placeholder for an in-flight operation.
	Pending bool `json:"-"`

	// IsError marks error turns. Their content is never parsed.
	IsError bool `json:"is_error,omitempty"`

	// Blocks is the parsed form of Content for system result turns.
	Blocks document.Document `json:"-"`

	// Analysis and Overlay are set on turns produced from a backend response.
	Analysis *compliance.AnalysisResult `json:"analysis,omitempty"`
	Overlay  compliance.Overlay         `json:"-"`

	// RequestID correlates the turn with the request that produced it.
	RequestID string `json:"request_id,omitempty"`
}

// NewMessage creates a message with a generated ID.
func NewMessage(role Role, kind Kind, content string) *Message {
	return &Message{
		ID:        generateID(),
		Role:      role,
		Kind:      kind,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a user turn.
func NewUserMessage(kind Kind, content string) *Message {
	return NewMessage(RoleUser, kind, content)
}

// NewUploadMessage creates the user turn describing a document upload.
func NewUploadMessage(filename string) *Message {
	msg := NewUserMessage(KindUpload, "Uploaded document: "+filename)
	msg.Filename = filename
	return msg
}

// NewResultMessage creates a system turn from backend text. The text is
// parsed into blocks and the overlay is built from the analysis rules.
// A nil analysis is allowed.
func NewResultMessage(kind Kind, content string, analysis *compliance.AnalysisResult) *Message {
	msg := NewMessage(RoleSystem, kind, content)
	msg.Blocks = document.Parse(content)
	msg.Analysis = analysis
	if analysis != nil {
		msg.Overlay = compliance.BuildOverlay(analysis.RulesTriggered)
	}
	return msg
}

// NewErrorMessage creates an error turn. The description is stored verbatim
// after the error prefix.
func NewErrorMessage(description string) *Message {
	msg := NewMessage(RoleSystem, KindError, ErrorPrefix+strings.TrimSpace(description))
	msg.IsError = true
	return msg
}

// NewPendingMessage creates the placeholder shown while an operation runs.
func NewPendingMessage(label string) *Message {
	msg := NewMessage(RoleSystem, KindPending, label)
	msg.Pending = true
	return msg
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// IsPrompt reports whether the message is a user prompt that can be replayed.
func (m *Message) IsPrompt() bool {
	return m != nil && m.Role == RoleUser && m.Kind == KindPrompt
}

// HasViolations reports whether the turn carries violated rules.
func (m *Message) HasViolations() bool {
	return m != nil && m.Overlay.HasViolations
}

// Violations returns the document violations attached to the turn.
func (m *Message) Violations() []compliance.Violation {
	if m == nil || m.Analysis == nil {
		return nil
	}
	return m.Analysis.Violations
}

// Preview returns a single-line, truncated preview of the content.
func (m *Message) Preview(maxLen int) string {
	return util.TruncateRunes(util.CollapseSpace(m.Content), maxLen)
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return strings.TrimSpace(m.Content) == ""
}

func generateID() string {
	return "msg_" + uuid.NewString()
}
