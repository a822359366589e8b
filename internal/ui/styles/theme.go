// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
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

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER AND TAB STYLES
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	TabNew      lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLE STYLES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	AgentLabel      lipgloss.Style
	Timestamp       lipgloss.Style

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
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// AGENT OPS PANEL STYLES
	// ==========================================================================

	PanelBox      lipgloss.Style
	PanelTitle    lipgloss.Style
	PanelLabel    lipgloss.Style
	PanelValue    lipgloss.Style
	AgentActive   lipgloss.Style
	AgentInactive lipgloss.Style
	GuardrailPass lipgloss.Style
	GuardrailFail lipgloss.Style
	EventType     lipgloss.Style
	EventAgent    lipgloss.Style

	// ==========================================================================
	// SEAT MAP STYLES
	// ==========================================================================

	SeatAvailable lipgloss.Style
	SeatOccupied  lipgloss.Style
	SeatSelected  lipgloss.Style
	SeatCursor    lipgloss.Style
	SeatExitRow   lipgloss.Style
	SeatMapTitle  lipgloss.Style
	SeatMapLegend lipgloss.Style

	// ==========================================================================
	// RATING STYLES
	// ==========================================================================

	RatingStars lipgloss.Style
	RatingHint  lipgloss.Style

	// ==========================================================================
	// LOGIN AND ERROR STYLES
	// ==========================================================================

	LoginBox     lipgloss.Style
	LoginTitle   lipgloss.Style
	ErrorText    lipgloss.Style
	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()

	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Sky).
		Background(SurfaceDim).
		Padding(0, 2)
	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Sky)
	t.TabActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Sky).
		Padding(0, 1)
	t.TabInactive = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)
	t.TabNew = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 1)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1)
	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		Background(AssistantBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1)
	t.AgentLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)
	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.InputPrompt = lipgloss.NewStyle().
		Bold(true).
		Foreground(Sky)
	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.ShortcutKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(Sky)
	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.PanelBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.PanelTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Sky)
	t.PanelLabel = lipgloss.NewStyle().
		Foreground(TextSecondary)
	t.PanelValue = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.AgentActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)
	t.AgentInactive = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.GuardrailPass = lipgloss.NewStyle().
		Foreground(Emerald)
	t.GuardrailFail = lipgloss.NewStyle().
		Bold(true).
		Foreground(Rose)
	t.EventType = lipgloss.NewStyle().
		Bold(true).
		Foreground(Amber)
	t.EventAgent = lipgloss.NewStyle().
		Foreground(Purple)

	t.SeatAvailable = lipgloss.NewStyle().
		Foreground(SeatAvailableFg)
	t.SeatOccupied = lipgloss.NewStyle().
		Foreground(SeatOccupiedFg)
	t.SeatSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(SeatSelectedBg)
	t.SeatCursor = lipgloss.NewStyle().
		Bold(true).
		Background(SeatCursorBg)
	t.SeatExitRow = lipgloss.NewStyle().
		Foreground(SeatExitRowFg)
	t.SeatMapTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Sky)
	t.SeatMapLegend = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.RatingStars = lipgloss.NewStyle().
		Foreground(Amber)
	t.RatingHint = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.LoginBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Sky).
		Padding(1, 3)
	t.LoginTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Sky)
	t.ErrorText = lipgloss.NewStyle().
		Bold(true).
		Foreground(Rose)
	t.Spinner = lipgloss.NewStyle().
		Foreground(Sky)
	t.ThinkingText = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)
}

// SetSize updates the theme's layout dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}
