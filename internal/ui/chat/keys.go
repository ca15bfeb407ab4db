// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat interface. Letter keys
// always go to the input, so navigation uses non-printing keys only.
type KeyMap struct {
	Submit   key.Binding
	Complete key.Binding
	Prev     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Help     key.Binding
	Dismiss  key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the default key bindings for the chat interface.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send prompt or command"),
		),
		Complete: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "complete command or path"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-Tab", "previous completion"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp/C-u", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn/C-d", "scroll down"),
		),
		Top: key.NewBinding(
			key.WithKeys("ctrl+home"),
			key.WithHelp("C-Home", "go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("ctrl+end"),
			key.WithHelp("C-End", "go to bottom"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "toggle help"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "close help or completions"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
	}
}

// HelpBindings returns the bindings listed in the help overlay.
func (k KeyMap) HelpBindings() []key.Binding {
	return []key.Binding{k.Submit, k.Complete, k.PageUp, k.PageDown, k.Top, k.Bottom, k.Help, k.Dismiss, k.Quit}
}
