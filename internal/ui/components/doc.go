// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the rendering pieces of the comply TUI.

Components are plain structs with a View method, or pure render functions.
They take a *styles.Theme and never hold application state of their own.

# Display Components

RenderDocument (document.go) - Parsed blocks as wrapped, styled terminal text.
OverlayBadge, RuleLines (overlay.go) - Compliance status and triggered rules.
MessageView (message.go) - One conversation turn with its header.
Header (header.go) - Application title and backend location.
StatusBar (statusbar.go) - Orchestrator state, session facts, shortcuts.
HelpView (help.go) - Command reference overlay.

# Width Handling

Widths are terminal columns. Plain segments are measured with go-runewidth
before styling so that wide characters are never split.
*/
package components
