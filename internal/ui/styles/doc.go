// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the comply TUI.
//
// Colors are lipgloss AdaptiveColors that follow the terminal background.
// Theme bundles the styles used by the components and can be forced to a
// light or dark palette from configuration.
//
// # Compliance Colors
//
// Compliance status and rule severity each map to a color:
//
//	compliant  -> Emerald      high   -> Rose
//	violations -> Rose         medium -> Amber
//	pending    -> Amber        low    -> Sky
//
// Unknown values fall back to muted text. Status and severity are always
// rendered with their text label, never by color alone.
//
// # Usage
//
//	theme := styles.NewTheme(cfg.UI.Theme)
//	badge := theme.StatusStyle("violations").Render("VIOLATIONS")
package styles
