// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/comply-tui/internal/compliance"
)

// Theme modes accepted by NewTheme.
const (
	ModeAuto  = "auto"
	ModeDark  = "dark"
	ModeLight = "light"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App            lipgloss.Style
	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserBubble   lipgloss.Style
	SystemBubble lipgloss.Style
	ErrorBubble  lipgloss.Style
	UserLabel    lipgloss.Style
	SystemLabel  lipgloss.Style
	Timestamp    lipgloss.Style
	PendingText  lipgloss.Style
	TurnIndex    lipgloss.Style

	// ==========================================================================
	// DOCUMENT STYLES
	// ==========================================================================

	DocHeading   lipgloss.Style
	DocParagraph lipgloss.Style
	DocEmphasis  lipgloss.Style
	ListMarker   lipgloss.Style

	// ==========================================================================
	// COMPLIANCE STYLES
	// ==========================================================================

	StatusCompliant  lipgloss.Style
	StatusViolations lipgloss.Style
	StatusPending    lipgloss.Style
	SeverityHigh     lipgloss.Style
	SeverityMedium   lipgloss.Style
	SeverityLow      lipgloss.Style
	RuleViolated     lipgloss.Style
	RuleTriggered    lipgloss.Style
	OverlaySummary   lipgloss.Style
	Unknown          lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	StateIdle    lipgloss.Style
	StateBusy    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	Spinner      lipgloss.Style

	// ==========================================================================
	// OVERLAY STYLES
	// ==========================================================================

	HelpBox     lipgloss.Style
	HelpCommand lipgloss.Style
	HelpDesc    lipgloss.Style

	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	InfoStyle    lipgloss.Style
}

// NewTheme creates a theme. Mode "dark" or "light" forces the palette;
// anything else detects the terminal background.
func NewTheme(mode string) *Theme {
	colorProfile := termenv.ColorProfile()

	var isDark bool
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeDark:
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	case ModeLight:
		isDark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle().Padding(0, 1)

	t.Header = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Messages
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1).
		MarginLeft(4)

	t.SystemBubble = lipgloss.NewStyle().
		Foreground(SystemBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(SystemBubbleBorder).
		Padding(0, 1).
		MarginRight(4)

	t.ErrorBubble = lipgloss.NewStyle().
		Foreground(Rose).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Rose).
		BorderLeft(true).
		PaddingLeft(1)

	t.UserLabel = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.SystemLabel = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.PendingText = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.TurnIndex = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Documents
	t.DocHeading = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.DocParagraph = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.DocEmphasis = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.ListMarker = lipgloss.NewStyle().
		Foreground(Cyan)

	// Compliance
	t.StatusCompliant = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.StatusViolations = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.StatusPending = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.SeverityHigh = lipgloss.NewStyle().Foreground(Rose)
	t.SeverityMedium = lipgloss.NewStyle().Foreground(Amber)
	t.SeverityLow = lipgloss.NewStyle().Foreground(Sky)

	t.RuleViolated = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.RuleTriggered = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.OverlaySummary = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.Unknown = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.StateIdle = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.StateBusy = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)

	// Help overlay
	t.HelpBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(1, 2)

	t.HelpCommand = lipgloss.NewStyle().
		Foreground(Cyan).
		Width(24)

	t.HelpDesc = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.SuccessStyle = lipgloss.NewStyle().Foreground(SuccessHighContrast).Bold(true)
	t.ErrorStyle = lipgloss.NewStyle().Foreground(ErrorHighContrast).Bold(true)
	t.WarningStyle = lipgloss.NewStyle().Foreground(WarningHighContrast).Bold(true)
	t.InfoStyle = lipgloss.NewStyle().Foreground(InfoHighContrast).Bold(true)
}

// StatusStyle returns the style for a compliance status. Unknown statuses
// get the muted style.
func (t *Theme) StatusStyle(status string) lipgloss.Style {
	switch compliance.Status(compliance.StyleKey(status)) {
	case compliance.StatusCompliant:
		return t.StatusCompliant
	case compliance.StatusViolations:
		return t.StatusViolations
	case compliance.StatusPending:
		return t.StatusPending
	default:
		return t.Unknown
	}
}

// SeverityStyle returns the style for a rule severity.
func (t *Theme) SeverityStyle(severity string) lipgloss.Style {
	switch compliance.SeverityLevel(severity) {
	case compliance.LevelHigh:
		return t.SeverityHigh
	case compliance.LevelMedium:
		return t.SeverityMedium
	case compliance.LevelLow:
		return t.SeverityLow
	default:
		return t.Unknown
	}
}

// RuleStyle returns the style for a rule's status.
func (t *Theme) RuleStyle(r compliance.RuleTrigger) lipgloss.Style {
	if r.IsViolated() {
		return t.RuleViolated
	}
	return t.RuleTriggered
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // >= 100 columns
)
