// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import "errors"

// =============================================================================
// STATE
// =============================================================================

// State is the orchestrator's current activity.
type State int

const (
	Idle State = iota
	Generating
	Analyzing
	Rewriting
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Generating:
		return "generating"
	case Analyzing:
		return "analyzing"
	case Rewriting:
		return "rewriting"
	default:
		return "unknown"
	}
}

// BusyLabel is the text shown while the state is active.
func (s State) BusyLabel() string {
	switch s {
	case Generating:
		return "Generating content..."
	case Analyzing:
		return "Analyzing document..."
	case Rewriting:
		return "Rewriting..."
	default:
		return ""
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// Guard errors. None of them leave a trace in the conversation except
// ErrPromptTooShort, which is also reported as an error turn.
var (
	ErrBusy            = errors.New("another request is in progress")
	ErrEmptyInput      = errors.New("input is empty")
	ErrPromptTooShort  = errors.New("prompt is too short")
	ErrMissingIdentity = errors.New("user id is required")
	ErrNotRegenerable  = errors.New("turn cannot be regenerated")
	ErrNotRewritable   = errors.New("turn has no violation to rewrite")
)

// Identity identifies the caller on whose behalf requests are made.
type Identity struct {
	UserID string
}

func (i Identity) validate() error {
	if i.UserID == "" {
		return ErrMissingIdentity
	}
	return nil
}
