// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the skydesk TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/skydesk-tui/internal/ui/styles"
	"github.com/jeranaias/skydesk-tui/internal/util"
)

// =============================================================================
// CABIN LAYOUT
// =============================================================================

// CabinSection describes one block of rows with a common seat letter layout.
type CabinSection struct {
	Name      string
	FirstRow  int
	LastRow   int
	Letters   []string
	AisleGaps map[int]bool // gap after this letter index
}

// CabinLayout is the fixed single-aircraft cabin: business up front, an
// economy plus block, then economy.
var CabinLayout = []CabinSection{
	{
		Name:      "Business",
		FirstRow:  1,
		LastRow:   4,
		Letters:   []string{"A", "B", "C", "D"},
		AisleGaps: map[int]bool{1: true},
	},
	{
		Name:      "Economy Plus",
		FirstRow:  5,
		LastRow:   8,
		Letters:   []string{"A", "B", "C", "D", "E", "F"},
		AisleGaps: map[int]bool{2: true},
	},
	{
		Name:      "Economy",
		FirstRow:  9,
		LastRow:   24,
		Letters:   []string{"A", "B", "C", "D", "E", "F"},
		AisleGaps: map[int]bool{2: true},
	},
}

// occupiedSeats is the fixed occupancy for the demo aircraft.
var occupiedSeats = map[string]bool{
	"1A": true, "2B": true, "3C": true,
	"5A": true, "5F": true, "7B": true, "7E": true,
	"9A": true, "9F": true, "10C": true, "10D": true,
	"12A": true, "12F": true, "14B": true, "14E": true,
	"16A": true, "16F": true, "18C": true, "18D": true,
	"20A": true, "20F": true, "22B": true, "22E": true,
	"24A": true, "24F": true,
}

// exitRows have extra legroom and get a marker in the map.
var exitRows = map[int]bool{4: true, 16: true}

// SeatOccupied reports whether a seat is taken.
func SeatOccupied(seat string) bool {
	return occupiedSeats[seat]
}

// ExitRow reports whether a row is an exit row.
func ExitRow(row int) bool {
	return exitRows[row]
}

// sectionFor returns the cabin section containing a row, or nil.
func sectionFor(row int) *CabinSection {
	for i := range CabinLayout {
		if row >= CabinLayout[i].FirstRow && row <= CabinLayout[i].LastRow {
			return &CabinLayout[i]
		}
	}
	return nil
}

// =============================================================================
// SEAT MAP COMPONENT
// =============================================================================

// SeatMap is a cursor-navigable cabin grid. The cursor can land on occupied
// seats so the user can see who sits where, but Confirm refuses them.
type SeatMap struct {
	theme *styles.Theme

	cursorRow int
	cursorCol int

	// Selected is the confirmed seat, e.g. "12A". Empty until confirmed.
	Selected string
}

// NewSeatMap creates a seat map with the cursor on the first open seat.
func NewSeatMap(theme *styles.Theme) *SeatMap {
	sm := &SeatMap{
		theme:     theme,
		cursorRow: CabinLayout[0].FirstRow,
		cursorCol: 0,
	}
	if sm.currentSeat() != "" && SeatOccupied(sm.currentSeat()) {
		sm.MoveRight()
	}
	return sm
}

// currentSeat returns the seat id under the cursor.
func (sm *SeatMap) currentSeat() string {
	sec := sectionFor(sm.cursorRow)
	if sec == nil || sm.cursorCol >= len(sec.Letters) {
		return ""
	}
	return util.IntToString(sm.cursorRow) + sec.Letters[sm.cursorCol]
}

// CursorSeat returns the seat id under the cursor.
func (sm *SeatMap) CursorSeat() string {
	return sm.currentSeat()
}

// MoveUp moves the cursor one row toward the front of the aircraft.
func (sm *SeatMap) MoveUp() {
	if sm.cursorRow > CabinLayout[0].FirstRow {
		sm.cursorRow--
		sm.clampCol()
	}
}

// MoveDown moves the cursor one row toward the back.
func (sm *SeatMap) MoveDown() {
	last := CabinLayout[len(CabinLayout)-1].LastRow
	if sm.cursorRow < last {
		sm.cursorRow++
		sm.clampCol()
	}
}

// MoveLeft moves the cursor one seat left within the row.
func (sm *SeatMap) MoveLeft() {
	if sm.cursorCol > 0 {
		sm.cursorCol--
	}
}

// MoveRight moves the cursor one seat right within the row.
func (sm *SeatMap) MoveRight() {
	sec := sectionFor(sm.cursorRow)
	if sec != nil && sm.cursorCol < len(sec.Letters)-1 {
		sm.cursorCol++
	}
}

// clampCol keeps the cursor inside the row after crossing a section boundary
// (business rows are narrower than economy rows).
func (sm *SeatMap) clampCol() {
	sec := sectionFor(sm.cursorRow)
	if sec != nil && sm.cursorCol > len(sec.Letters)-1 {
		sm.cursorCol = len(sec.Letters) - 1
	}
}

// Confirm selects the seat under the cursor. Returns the seat id and true,
// or "" and false when the seat is occupied.
func (sm *SeatMap) Confirm() (string, bool) {
	seat := sm.currentSeat()
	if seat == "" || SeatOccupied(seat) {
		return "", false
	}
	sm.Selected = seat
	return seat, true
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the full cabin grid with legend.
func (sm *SeatMap) View() string {
	var sb strings.Builder

	sb.WriteString(sm.theme.SeatMapTitle.Render("Select a seat"))
	sb.WriteString("\n\n")

	for si, sec := range CabinLayout {
		if si > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(sm.theme.PanelLabel.Render(sec.Name))
		sb.WriteString("\n")

		for row := sec.FirstRow; row <= sec.LastRow; row++ {
			sb.WriteString(sm.renderRow(row, &sec))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	legend := "[ ] open  [x] taken  arrows move, enter selects, esc closes"
	sb.WriteString(sm.theme.SeatMapLegend.Render(legend))

	return sb.String()
}

func (sm *SeatMap) renderRow(row int, sec *CabinSection) string {
	var sb strings.Builder

	label := util.IntToString(row)
	sb.WriteString(sm.theme.PanelLabel.Render(padLeft(label, 3)))
	sb.WriteString(" ")

	for col, letter := range sec.Letters {
		seat := label + letter
		sb.WriteString(sm.renderSeat(seat, row == sm.cursorRow && col == sm.cursorCol))
		if sec.AisleGaps[col] {
			sb.WriteString("  ")
		}
	}

	if ExitRow(row) {
		sb.WriteString(" ")
		sb.WriteString(sm.theme.SeatExitRow.Render("< EXIT"))
	}
	return sb.String()
}

func (sm *SeatMap) renderSeat(seat string, underCursor bool) string {
	var cell string
	var style lipgloss.Style

	switch {
	case seat == sm.Selected:
		cell = "[#]"
		style = sm.theme.SeatSelected
	case SeatOccupied(seat):
		cell = "[x]"
		style = sm.theme.SeatOccupied
	default:
		cell = "[ ]"
		style = sm.theme.SeatAvailable
	}

	if underCursor {
		style = style.Inherit(sm.theme.SeatCursor)
	}
	return style.Render(cell)
}

// padLeft pads a string to a display width using go-runewidth.
func padLeft(s string, width int) string {
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	return strings.Repeat(" ", gap) + s
}
