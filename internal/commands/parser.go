// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"strconv"
	"strings"
	"unicode"
)

// =============================================================================
// PARSE RESULT
// =============================================================================

// ParseResult contains the result of parsing user input.
type ParseResult struct {
	// IsCommand is true if the input starts with /
	IsCommand bool

	// Command is the matched command (nil if not found)
	Command *Command

	// CommandName is the raw command name (e.g., "/help")
	CommandName string

	Args []string

	// RawInput is the trimmed input
	RawInput string
}

// =============================================================================
// PARSER
// =============================================================================

// Parser handles parsing of slash commands and their arguments.
type Parser struct {
	registry *Registry
}

// NewParser creates a new parser with the given registry.
func NewParser(registry *Registry) *Parser {
	return &Parser{registry: registry}
}

// Parse parses user input. IsCommand is false unless the input starts with /.
func (p *Parser) Parse(input string) ParseResult {
	input = strings.TrimSpace(input)
	result := ParseResult{RawInput: input}

	if !strings.HasPrefix(input, "/") {
		return result
	}
	result.IsCommand = true

	parts := splitCommandLine(input)
	if len(parts) == 0 {
		return result
	}
	result.CommandName = strings.ToLower(parts[0])
	result.Args = parts[1:]
	result.Command = p.registry.Get(result.CommandName)
	return result
}

// ParseArgs parses a raw argument string into individual arguments.
// Handles quoted strings with spaces.
func ParseArgs(input string) []string {
	return splitCommandLine(input)
}

// =============================================================================
// ARGUMENT PARSING
// =============================================================================

// splitCommandLine splits a command line into tokens, respecting quotes.
// Supports both single and double quotes for arguments with spaces.
func splitCommandLine(input string) []string {
	var tokens []string
	var current strings.Builder
	var inSingleQuote, inDoubleQuote, quoted bool

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		char := runes[i]

		switch {
		case char == '\'' && !inDoubleQuote:
			inSingleQuote = !inSingleQuote
			quoted = true

		case char == '"' && !inSingleQuote:
			inDoubleQuote = !inDoubleQuote
			quoted = true

		case char == '\\' && i+1 < len(runes) && (inDoubleQuote || inSingleQuote):
			next := runes[i+1]
			if next == '"' || next == '\'' || next == '\\' {
				current.WriteRune(next)
				i++
			} else {
				current.WriteRune(char)
			}

		case unicode.IsSpace(char) && !inSingleQuote && !inDoubleQuote:
			if current.Len() > 0 || quoted {
				tokens = append(tokens, current.String())
				current.Reset()
				quoted = false
			}

		default:
			current.WriteRune(char)
		}
	}

	if current.Len() > 0 || quoted {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// IsCommand returns true if the input appears to be a command.
func IsCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "/")
}

// ExtractCommandName extracts just the command name from input.
// e.g., "/upload report.pdf" -> "/upload"
func ExtractCommandName(input string) string {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return ""
	}
	end := strings.IndexFunc(input, unicode.IsSpace)
	if end == -1 {
		return input
	}
	return input[:end]
}

// ValidateArgs validates arguments against a command's argument definitions.
func ValidateArgs(cmd *Command, args []string) error {
	if cmd == nil {
		return nil
	}
	if len(args) > len(cmd.Args) {
		return &ValidationError{
			Command:  cmd.Name,
			Message:  "too many arguments",
			Got:      strings.Join(args[len(cmd.Args):], " "),
			Expected: cmd.Usage,
		}
	}

	for i, argDef := range cmd.Args {
		if i >= len(args) {
			if argDef.Required {
				return &ValidationError{
					Command:  cmd.Name,
					Arg:      argDef.Name,
					Message:  "required argument missing",
					Expected: cmd.Usage,
				}
			}
			continue
		}

		switch argDef.Type {
		case ArgTypeNumber:
			if n, err := strconv.Atoi(args[i]); err != nil || n < 1 {
				return &ValidationError{
					Command:  cmd.Name,
					Arg:      argDef.Name,
					Message:  "invalid number",
					Got:      args[i],
					Expected: "a number from 1",
				}
			}
		case ArgTypeEnum:
			if len(argDef.Values) > 0 && !containsFold(argDef.Values, args[i]) {
				// An optional leading enum may be skipped when the next
				// argument can take the value, as in "/export ./out".
				if !argDef.Required && i+1 < len(cmd.Args) && len(args) < len(cmd.Args) {
					continue
				}
				return &ValidationError{
					Command:  cmd.Name,
					Arg:      argDef.Name,
					Message:  "invalid value",
					Got:      args[i],
					Expected: strings.Join(argDef.Values, ", "),
				}
			}
		}
	}
	return nil
}

func containsFold(values []string, s string) bool {
	for _, v := range values {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// =============================================================================
// VALIDATION ERROR
// =============================================================================

// ValidationError represents an argument validation error.
type ValidationError struct {
	Command  string
	Arg      string
	Message  string
	Got      string
	Expected string
}

func (e *ValidationError) Error() string {
	msg := e.Command + ": " + e.Message
	if e.Arg != "" {
		msg += " for argument '" + e.Arg + "'"
	}
	if e.Got != "" {
		msg += " (got: " + e.Got + ")"
	}
	if e.Expected != "" {
		msg += " - expected: " + e.Expected
	}
	return msg
}
