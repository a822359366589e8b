// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/skydesk-tui/internal/model"
	"github.com/jeranaias/skydesk-tui/internal/ui/styles"
	"github.com/jeranaias/skydesk-tui/internal/util"
)

// =============================================================================
// STAR RATING COMPONENT
// =============================================================================

// Rating is a half-star score picker attached to an assistant message.
type Rating struct {
	theme *styles.Theme

	// MessageID is the message being rated.
	MessageID string

	// Score is the current pick, in half-star steps.
	Score float64
}

// NewRating creates a picker for a message, seeded from any prior rating.
func NewRating(theme *styles.Theme, messageID string, prior float64) *Rating {
	score := prior
	if score == 0 {
		score = model.MaxRating
	}
	return &Rating{
		theme:     theme,
		MessageID: messageID,
		Score:     score,
	}
}

// Increase raises the score one half-star step.
func (r *Rating) Increase() {
	if r.Score+model.RatingStep <= model.MaxRating {
		r.Score += model.RatingStep
	}
}

// Decrease lowers the score one half-star step.
func (r *Rating) Decrease() {
	if r.Score-model.RatingStep >= model.MinRating {
		r.Score -= model.RatingStep
	}
}

// View renders the picker inline: stars, numeric score and key hints.
func (r *Rating) View() string {
	stars := r.theme.RatingStars.Render(RenderStars(r.Score))
	score := r.theme.PanelValue.Render(util.FormatScore(r.Score) + "/5")
	hint := r.theme.RatingHint.Render("left/right adjust, enter submits, esc cancels")
	return stars + " " + score + "  " + hint
}

// RenderStars renders a score as a five-slot ASCII star row. Full stars are
// "*", half stars "+", empty slots ".".
func RenderStars(score float64) string {
	var sb strings.Builder
	for slot := 1; slot <= 5; slot++ {
		switch {
		case score >= float64(slot):
			sb.WriteString("*")
		case score >= float64(slot)-0.5:
			sb.WriteString("+")
		default:
			sb.WriteString(".")
		}
	}
	return sb.String()
}
