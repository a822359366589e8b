// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for sessions and messages.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// SeatMapSentinel is the assistant message content that signals the client to
// display the seat selection widget instead of rendering the text. It is
// filtered out of the visible message list.
const SeatMapSentinel = "DISPLAY_SEAT_MAP"

// Rating bounds. Ratings move in half-star increments.
const (
	MinRating  = 0.5
	MaxRating  = 5.0
	RatingStep = 0.5
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Agent"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single chat bubble.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string `json:"content"`

	// Agent that authored an assistant message.
	Agent string `json:"agent,omitempty"`

	// TraceID correlates an assistant message to a feedback target.
	TraceID string `json:"trace_id,omitempty"`

	// Rating is the user's feedback score in half-star steps from 0.5 to
	// 5.0. Zero means unrated. Once set it is only changed by a later
	// feedback submission on the same message.
	Rating float64 `json:"rating,omitempty"`
}

// NewMessage creates a new message with a generated client-side ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        GenerateID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates a new assistant message attributed to an agent,
// carrying the trace id shared by all messages of one exchange.
func NewAssistantMessage(content, agent, traceID string) *Message {
	msg := NewMessage(RoleAssistant, content)
	msg.Agent = agent
	msg.TraceID = traceID
	return msg
}

// IsSentinel reports whether the message is a client-side signal rather than
// displayable text.
func (m *Message) IsSentinel() bool {
	return m.Content == SeatMapSentinel
}

// Rated reports whether the user has submitted feedback for this message.
func (m *Message) Rated() bool {
	return m.Rating > 0
}

// ValidRating reports whether score is a legal half-star rating.
func ValidRating(score float64) bool {
	if score < MinRating || score > MaxRating {
		return false
	}
	steps := score / RatingStep
	return steps == float64(int(steps))
}

// =============================================================================
// ID GENERATION
// =============================================================================

// GenerateID creates a client-side message/session id: millisecond timestamp
// plus a random suffix. Time-ordered ids keep insertion order readable in the
// snapshot; the suffix guards against collisions when several messages arrive
// within the same millisecond.
func GenerateID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// Extremely unlikely; fall back to timestamp-only
		return strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + hex.EncodeToString(buf)
}
