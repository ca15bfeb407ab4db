// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the interactive chat screen of the comply TUI.

The screen is a Bubble Tea model wrapped around an orchestrator. Prompts and
slash commands typed into the input go through the commands registry; a
command that starts a backend request hands back an Operation, which runs as
a tea.Cmd off the UI goroutine. The orchestrator appends every turn itself,
so the model only re-renders the conversation when an OperationDoneMsg
arrives.

# Key Components

## Model (model.go)

  - Input line with tab completion for commands and file paths
  - Viewport holding the rendered conversation
  - Spinner shown in the input prompt and on the pending turn while busy

## View Rendering (view.go)

Header, conversation, completion list, input and status bar, stacked
vertically. The help overlay replaces the conversation while open.

## Messages and Commands (messages.go, update.go)

OperationDoneMsg, NoticeMsg and the tea.Cmd factories that produce them.

# Usage

	m := chat.New(chat.Options{
	    Orchestrator: orch,
	    Identity:     orchestrator.Identity{UserID: cfg.User.ID},
	    ShowRules:    cfg.UI.ShowRules,
	}, styles.NewTheme(cfg.UI.Theme))
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
*/
package chat
