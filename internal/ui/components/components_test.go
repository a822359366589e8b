// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/skydesk-tui/internal/model"
	"github.com/jeranaias/skydesk-tui/internal/ui/styles"
)

func TestSeatOccupancy(t *testing.T) {
	occupied := []string{"1A", "5F", "10C", "16A", "24F"}
	for _, seat := range occupied {
		if !SeatOccupied(seat) {
			t.Errorf("%s should be occupied", seat)
		}
	}
	open := []string{"1B", "4A", "12B", "24C"}
	for _, seat := range open {
		if SeatOccupied(seat) {
			t.Errorf("%s should be open", seat)
		}
	}
}

func TestExitRows(t *testing.T) {
	if !ExitRow(4) || !ExitRow(16) {
		t.Error("rows 4 and 16 are exit rows")
	}
	if ExitRow(1) || ExitRow(24) {
		t.Error("rows 1 and 24 are not exit rows")
	}
}

func TestSeatMapCursorStartsOnOpenSeat(t *testing.T) {
	sm := NewSeatMap(styles.NewTheme())
	// 1A is occupied; the cursor must not start there.
	if seat := sm.CursorSeat(); seat == "1A" || SeatOccupied(seat) {
		t.Errorf("cursor started on occupied seat %s", seat)
	}
}

func TestSeatMapConfirmRefusesOccupied(t *testing.T) {
	sm := NewSeatMap(styles.NewTheme())

	// Navigate back to 1A, which is occupied.
	sm.MoveLeft()
	if sm.CursorSeat() != "1A" {
		t.Fatalf("expected cursor on 1A, got %s", sm.CursorSeat())
	}
	if _, ok := sm.Confirm(); ok {
		t.Error("occupied seat must not confirm")
	}
	if sm.Selected != "" {
		t.Error("failed confirm must not select")
	}

	sm.MoveRight() // 1B, open
	seat, ok := sm.Confirm()
	if !ok || seat != "1B" {
		t.Errorf("Confirm = %q, %v", seat, ok)
	}
	if sm.Selected != "1B" {
		t.Errorf("Selected = %q", sm.Selected)
	}
}

func TestSeatMapColumnClampAcrossSections(t *testing.T) {
	sm := NewSeatMap(styles.NewTheme())

	// Move to an economy row and the rightmost seat (F), then back up into
	// business which only has A-D.
	for i := 0; i < 8; i++ {
		sm.MoveDown()
	}
	for i := 0; i < 6; i++ {
		sm.MoveRight()
	}
	if !strings.HasSuffix(sm.CursorSeat(), "F") {
		t.Fatalf("expected F column, got %s", sm.CursorSeat())
	}
	for i := 0; i < 8; i++ {
		sm.MoveUp()
	}
	if !strings.HasSuffix(sm.CursorSeat(), "D") {
		t.Errorf("cursor must clamp to D in business, got %s", sm.CursorSeat())
	}
}

func TestSeatMapViewMarksExitRows(t *testing.T) {
	sm := NewSeatMap(styles.NewTheme())
	view := sm.View()
	if strings.Count(view, "EXIT") != 2 {
		t.Errorf("expected 2 exit row markers, got %d", strings.Count(view, "EXIT"))
	}
}

func TestRatingSteps(t *testing.T) {
	r := NewRating(styles.NewTheme(), "m1", 0)
	if r.Score != model.MaxRating {
		t.Errorf("unrated picker starts at max, got %v", r.Score)
	}

	r.Decrease()
	if r.Score != 4.5 {
		t.Errorf("Score = %v after one decrease", r.Score)
	}
	for i := 0; i < 20; i++ {
		r.Decrease()
	}
	if r.Score != model.MinRating {
		t.Errorf("Score must floor at %v, got %v", model.MinRating, r.Score)
	}
	for i := 0; i < 20; i++ {
		r.Increase()
	}
	if r.Score != model.MaxRating {
		t.Errorf("Score must cap at %v, got %v", model.MaxRating, r.Score)
	}
}

func TestRenderStars(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{5.0, "*****"},
		{4.5, "****+"},
		{3.0, "***.."},
		{0.5, "+...."},
	}
	for _, tt := range tests {
		if got := RenderStars(tt.score); got != tt.want {
			t.Errorf("RenderStars(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestContextLabel(t *testing.T) {
	if got := ContextLabel("confirmation_number"); got != "Confirmation Number" {
		t.Errorf("ContextLabel = %q", got)
	}
	if got := ContextLabel("seat_number"); got != "Seat Number" {
		t.Errorf("ContextLabel = %q", got)
	}
}

func TestPanelRendersSessionState(t *testing.T) {
	theme := styles.NewTheme()
	panel := NewPanel(theme, 40)

	s := model.NewSession("Session 1")
	s.CurrentAgent = "Seat Booking"
	s.Agents = []model.Agent{
		{Name: "Triage", Description: "Routes requests"},
		{Name: "Seat Booking"},
	}
	s.Guardrails = []model.GuardrailCheck{
		{Name: "Relevance Guardrail", Passed: true},
		{Name: "Jailbreak Guardrail", Passed: false, Reasoning: "prompt injection"},
	}
	s.Context = map[string]any{"seat_number": "12A"}
	s.Events = []model.AgentEvent{
		{Type: model.EventHandoff, Agent: "Triage", Metadata: map[string]any{"target_agent": "Seat Booking"}},
	}

	view := panel.View(s)
	for _, want := range []string{"Triage", "Seat Booking", "Relevance Guardrail", "Seat Number", "12A", "handoff"} {
		if !strings.Contains(view, want) {
			t.Errorf("panel view missing %q", want)
		}
	}
}

func TestTabsHighlightActive(t *testing.T) {
	theme := styles.NewTheme()
	tabs := NewTabs(theme)

	a := model.NewSession("Session 1")
	b := model.NewSession("Session 2")
	view := tabs.View([]*model.Session{a, b}, a.ID, 80)

	if !strings.Contains(view, "Session 1") || !strings.Contains(view, "Session 2") {
		t.Errorf("tabs missing titles: %q", view)
	}
	if !strings.Contains(view, "+ new") {
		t.Error("tabs missing new-session hint")
	}
}
