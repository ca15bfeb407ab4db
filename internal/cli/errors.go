// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Structured errors and exit codes for comply CLI.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/jeranaias/comply-tui/internal/api"
	"github.com/jeranaias/comply-tui/internal/config"
	"github.com/jeranaias/comply-tui/internal/orchestrator"
	"github.com/jeranaias/comply-tui/internal/ui/styles"
)

// =============================================================================
// EXIT CODES - Specific codes for different error categories
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitNetworkError indicates the backend could not be reached
	ExitNetworkError = 5
	// ExitNonCompliant indicates a result with violations under --strict
	ExitNonCompliant = 6
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// ErrNonCompliant is returned by --strict commands when the backend
// reports violations.
var ErrNonCompliant = errors.New("content has compliance violations")

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "rules", "content")
	Action  string // Action being performed (e.g., "add", "approve")
	Err     error
}

func (e *CommandError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s %s: %v", e.Command, e.Action, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// UsageError represents an invalid argument value.
type UsageError struct {
	Field   string
	Value   string
	Reason  string
	Example string
}

func (e *UsageError) Error() string {
	msg := fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
	if e.Example != "" {
		msg += fmt.Sprintf(" (example: %s)", e.Example)
	}
	return msg
}

// TurnError is a request that ended in an error turn. Err is the backend
// error, when there was one.
type TurnError struct {
	Message string
	Err     error
}

func (e *TurnError) Error() string {
	return e.Message
}

func (e *TurnError) Unwrap() error {
	return e.Err
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError writes err to w, as JSON in jsonMode.
func DisplayError(w io.Writer, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		displayErrorJSON(w, err)
		return
	}
	fmt.Fprintf(w, "%s %s\n", color.New(color.FgRed, color.Bold).Sprint(styles.StatusIndicators.Error), err.Error())
}

func displayErrorJSON(w io.Writer, err error) {
	output := map[string]interface{}{
		"success":   false,
		"error":     err.Error(),
		"exit_code": ExitCode(err),
	}

	var cmdErr *CommandError
	var usageErr *UsageError
	var clientErr *api.ClientError
	switch {
	case errors.As(err, &usageErr):
		output["error_type"] = "usage_error"
		output["field"] = usageErr.Field
		output["value"] = usageErr.Value
	case errors.As(err, &clientErr):
		output["error_type"] = "api_error"
		output["kind"] = clientErr.Type.String()
		if clientErr.Status != 0 {
			output["status"] = clientErr.Status
		}
	case errors.As(err, &cmdErr):
		output["error_type"] = "command_error"
		output["command"] = cmdErr.Command
		output["action"] = cmdErr.Action
	default:
		output["error_type"] = "generic_error"
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(output)
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// ExitCode determines the exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	var configErr config.ValidateErrors
	switch {
	case errors.As(err, &usageErr),
		errors.Is(err, orchestrator.ErrEmptyInput),
		errors.Is(err, orchestrator.ErrPromptTooShort),
		errors.Is(err, orchestrator.ErrNotRewritable),
		api.IsValidation(err):
		return ExitUsageError
	case errors.As(err, &configErr):
		return ExitConfigError
	case errors.Is(err, ErrNonCompliant):
		return ExitNonCompliant
	case api.IsNotRunning(err):
		return ExitNetworkError
	case api.IsTimeout(err):
		return ExitTimeoutError
	case api.IsNotFound(err):
		return ExitNotFoundError
	}
	return ExitGeneralError
}
