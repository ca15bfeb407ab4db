// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend client.
type ClientError struct {
	Type    ErrorType
	Message string

	// Status is the HTTP status code, or 0 when no response was received.
	Status int

	Cause error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeConnection
	ErrTypeInvalidResponse
	ErrTypeValidation
	ErrTypeNotFound
	ErrTypeRateLimited
	ErrTypeServer
)

// String returns a short name for the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeNotRunning:
		return "not_running"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeConnection:
		return "connection"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	case ErrTypeValidation:
		return "validation"
	case ErrTypeNotFound:
		return "not_found"
	case ErrTypeRateLimited:
		return "rate_limited"
	case ErrTypeServer:
		return "server"
	default:
		return "unknown"
	}
}

// Sentinel errors for easy checking.
var (
	ErrNotRunning = &ClientError{Type: ErrTypeNotRunning, Message: "compliance backend is not reachable"}
	ErrTimeout    = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
)

// Is reports whether target is the sentinel for e's type, so
// errors.Is(err, ErrTimeout) holds for every timeout.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	return ok && (t == ErrNotRunning || t == ErrTimeout) && t.Type == e.Type
}

// IsNotRunning checks if an error indicates the backend could not be reached.
func IsNotRunning(err error) bool {
	return hasType(err, ErrTypeNotRunning)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	return hasType(err, ErrTypeTimeout)
}

// IsValidation checks if the backend rejected the request body.
func IsValidation(err error) bool {
	return hasType(err, ErrTypeValidation)
}

// IsNotFound checks if the requested record does not exist.
func IsNotFound(err error) bool {
	return hasType(err, ErrTypeNotFound)
}

// StatusCode returns the HTTP status attached to err, or 0.
func StatusCode(err error) int {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Status
	}
	return 0
}

func hasType(err error, t ErrorType) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == t
	}
	return false
}

// =============================================================================
// RESPONSE ERRORS
// =============================================================================

// statusError builds the error for a non-2xx response.
func statusError(status int, body []byte) *ClientError {
	msg := detailMessage(body)
	if msg == "" {
		msg = fmt.Sprintf("request failed: %d %s", status, http.StatusText(status))
	}

	errType := ErrTypeUnknown
	switch {
	case status == http.StatusNotFound:
		errType = ErrTypeNotFound
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		errType = ErrTypeValidation
	case status == http.StatusTooManyRequests:
		errType = ErrTypeRateLimited
	case status >= 500:
		errType = ErrTypeServer
	}
	return &ClientError{Type: errType, Message: msg, Status: status}
}

type validationDetail struct {
	Loc []interface{} `json:"loc"`
	Msg string        `json:"msg"`
}

// detailMessage extracts the "detail" field of an error body. A string is
// returned as is; a list of validation entries is flattened to
// "loc.path: msg, loc.path: msg".
func detailMessage(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var details []validationDetail
	if err := json.Unmarshal(envelope.Detail, &details); err == nil {
		parts := make([]string, 0, len(details))
		for _, d := range details {
			loc := make([]string, len(d.Loc))
			for i, l := range d.Loc {
				loc[i] = fmt.Sprint(l)
			}
			if len(loc) == 0 {
				parts = append(parts, d.Msg)
				continue
			}
			parts = append(parts, strings.Join(loc, ".")+": "+d.Msg)
		}
		return strings.Join(parts, ", ")
	}

	return strings.TrimSpace(string(envelope.Detail))
}
