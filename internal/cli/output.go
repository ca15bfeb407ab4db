// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// output.go - Rendering of turns, status lines and JSON for comply CLI.
//
// Result turns are rendered as markdown through glamour when stdout is a
// terminal. Piped output gets the plain markdown so it can be saved or
// processed further.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"

	"github.com/jeranaias/comply-tui/internal/document"
	"github.com/jeranaias/comply-tui/internal/model"
	"github.com/jeranaias/comply-tui/internal/ui/components"
	"github.com/jeranaias/comply-tui/internal/ui/styles"
)

// =============================================================================
// STATUS LINES
// =============================================================================

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	dimColor     = color.New(color.Faint)
	addedColor   = color.New(color.FgGreen)
	removedColor = color.New(color.FgRed, color.CrossedOut)
)

func printSuccess(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", successColor.Sprint(styles.StatusIndicators.Success), fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", warnColor.Sprint(styles.StatusIndicators.Warning), fmt.Sprintf(format, args...))
}

func printInfo(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", infoColor.Sprint(styles.StatusIndicators.Info), fmt.Sprintf(format, args...))
}

// =============================================================================
// TURN RENDERING
// =============================================================================

// turnPrinter writes conversation turns to a stream.
type turnPrinter struct {
	out       io.Writer
	theme     *styles.Theme
	width     int
	showRules bool
	markdown  *glamour.TermRenderer
}

// newTurnPrinter prepares a printer for out. Markdown rendering is only
// enabled when out is a terminal.
func newTurnPrinter(out io.Writer, themeMode string, showRules, noColor bool) *turnPrinter {
	p := &turnPrinter{
		out:       out,
		theme:     styles.NewTheme(themeMode),
		width:     terminalWidth(out),
		showRules: showRules,
	}
	if !isTerminal(out) || !colorsEnabled(out, noColor) {
		return p
	}

	style := "light"
	if p.theme.IsDark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(p.width-4),
	)
	if err == nil {
		p.markdown = r
	}
	return p
}

// renderMarkdown renders content for terminal display. Returns the original
// content if rendering fails or the renderer is unavailable.
func (p *turnPrinter) renderMarkdown(content string) string {
	if p.markdown == nil {
		return content
	}
	rendered, err := p.markdown.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// Print writes one turn followed by its compliance summary.
func (p *turnPrinter) Print(msg *model.Message, index int) {
	if msg == nil {
		return
	}

	switch {
	case msg.IsError:
		fmt.Fprintf(p.out, "%s %s\n", color.New(color.FgRed, color.Bold).Sprint(styles.StatusIndicators.Error),
			strings.TrimPrefix(msg.Content, model.ErrorPrefix))
		return
	case msg.Pending:
		fmt.Fprintln(p.out, dimColor.Sprint(msg.Content))
		return
	case msg.Role == model.RoleUser:
		fmt.Fprintf(p.out, "%s %s\n", infoColor.Sprint(">"), msg.Content)
		return
	}

	body := msg.Content
	if len(msg.Blocks) > 0 {
		body = document.Markdown(msg.Blocks)
	}
	fmt.Fprintln(p.out, strings.TrimRight(p.renderMarkdown(body), "\n"))

	badge := components.OverlayBadge(msg.Analysis, msg.Overlay, p.theme)
	if badge == "" {
		return
	}
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, badge)
	if p.showRules {
		for _, line := range components.RuleLines(msg.Overlay, p.width, p.theme) {
			fmt.Fprintln(p.out, "  "+line)
		}
	}
	if n := len(msg.Violations()); n > 0 && msg.Analysis.HasSubmission() && index > 0 {
		fmt.Fprintln(p.out, dimColor.Sprintf("/rewrite %d <1-%d> proposes a compliant version", index, n))
	}
}

// =============================================================================
// JSON OUTPUT
// =============================================================================

// JSONResponse is the envelope printed by --json.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the ISO8601 timestamp when the response was generated
	Timestamp string `json:"timestamp"`

	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print writes the response as indented JSON.
func (r *JSONResponse) Print(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// printJSON wraps data in a JSONResponse and writes it to w.
func printJSON(w io.Writer, command string, data interface{}) error {
	return NewJSONResponse(command, data).Print(w)
}
