// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/comply-tui/internal/orchestrator"
	"github.com/jeranaias/comply-tui/internal/ui/styles"
	"github.com/jeranaias/comply-tui/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// StatusBar shows what the orchestrator is doing and a few session facts.
type StatusBar struct {
	State          orchestrator.State
	Spinner        string
	PromptEnhancer bool
	Turns          int
	UserID         string

	// Notice is a transient message, e.g. where an export was written.
	Notice string

	Width int
	theme *styles.Theme
}

// NewStatusBar creates a new StatusBar component.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{Width: 80, theme: theme}
}

type segment struct {
	text  string
	style lipgloss.Style
}

// View renders the bar. Segments are dropped from the right until the bar
// fits, and the state segment is truncated last.
func (s *StatusBar) View() string {
	segs := []segment{s.stateSegment()}
	if s.Notice != "" {
		segs = append(segs, segment{s.Notice, s.theme.InfoStyle})
	}
	enhancer := "off"
	if s.PromptEnhancer {
		enhancer = "on"
	}
	segs = append(segs,
		segment{"enhancer " + enhancer, s.theme.ShortcutDesc},
		segment{fmt.Sprintf("%d turns", s.Turns), s.theme.ShortcutDesc},
	)
	if s.UserID != "" {
		segs = append(segs, segment{"user " + shortID(s.UserID), s.theme.ShortcutDesc})
	}
	segs = append(segs, segment{"/help  ctrl+c quit", s.theme.ShortcutKey})

	const sep = "  │  "
	inner := maxInt(s.Width-2, 1)
	for len(segs) > 1 && plainWidth(segs, sep) > inner {
		segs = segs[:len(segs)-1]
	}
	if plainWidth(segs, sep) > inner {
		segs[0].text = util.TruncateWidth(segs[0].text, inner)
	}

	rendered := make([]string, len(segs))
	for i, seg := range segs {
		rendered[i] = seg.style.Render(seg.text)
	}
	return s.theme.StatusBar.Width(maxInt(s.Width, 1)).Render(
		strings.Join(rendered, s.theme.ShortcutDesc.Render(sep)))
}

func (s *StatusBar) stateSegment() segment {
	if s.State == orchestrator.Idle {
		return segment{styles.StatusIndicators.Success + " Ready", s.theme.StateIdle}
	}
	spinner := s.Spinner
	if spinner == "" {
		spinner = styles.StatusIndicators.Pending
	}
	return segment{spinner + " " + s.State.BusyLabel(), s.theme.StateBusy}
}

func plainWidth(segs []segment, sep string) int {
	w := 0
	for i, seg := range segs {
		if i > 0 {
			w += util.StringWidth(sep)
		}
		w += util.StringWidth(seg.text)
	}
	return w
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
