// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection for comply CLI output.
//
// Colors and markdown rendering are only used when the output is a
// terminal. NO_COLOR (https://no-color.org/) and FORCE_COLOR override
// the detection.
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const (
	// DefaultTerminalWidth is the fallback width when detection fails
	DefaultTerminalWidth = 80

	// MinTerminalWidth is the minimum width we'll use for wrapping
	MinTerminalWidth = 40

	// maxRenderWidth caps markdown wrapping on very wide terminals.
	maxRenderWidth = 120
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// isTerminal reports whether w is a terminal. Buffers and pipes are not.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// isTerminalInput reports whether r is an interactive terminal.
func isTerminalInput(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w, or DefaultTerminalWidth when it is
// not a terminal.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return DefaultTerminalWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > maxRenderWidth {
		return maxRenderWidth
	}
	return width
}

// =============================================================================
// COLOR OUTPUT CONTROL
// =============================================================================

// colorsEnabled decides whether output to w is colored.
func colorsEnabled(w io.Writer, disabled bool) bool {
	if disabled || os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	return isTerminal(w)
}

// colorProfile returns the termenv profile for w.
func colorProfile(w io.Writer, disabled bool) termenv.Profile {
	if !colorsEnabled(w, disabled) {
		return termenv.Ascii
	}
	return termenv.NewOutput(w).ColorProfile()
}

// configureColor applies the color decision to fatih/color and lipgloss.
func configureColor(w io.Writer, disabled bool) {
	color.NoColor = !colorsEnabled(w, disabled)
	lipgloss.SetColorProfile(colorProfile(w, disabled))
}
