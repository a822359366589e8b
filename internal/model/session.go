// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for sessions and messages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session holds one logical conversation thread with its message history and
// the agent/guardrail/context snapshot from the latest exchange.
//
// Invariants (owned by the session lifecycle controller):
//   - at most one exchange in flight per session (IsLoading gates boot and send)
//   - a session with Initialized == false never receives a user send
//   - ConversationID is set at most once from empty to a value by the merge
//     path; it is only replaced wholesale on restore
type Session struct {
	// Identity
	ID    string `json:"id"`
	Title string `json:"title"`

	// ConversationID is the server-assigned identifier. Empty until the
	// first successful exchange, then reused unchanged.
	ConversationID string `json:"conversation_id"`

	// OrderID links the session to a backing order (order-bound variant).
	OrderID string `json:"order_id,omitempty"`

	// Messages in insertion order, which is chronological order.
	// Append-only; ratings mutate existing entries in place.
	Messages []*Message `json:"messages"`

	// Events is the append-only operational trace.
	Events []AgentEvent `json:"events"`

	// Agents, CurrentAgent, Guardrails and Context mirror the latest
	// exchange and are replaced wholesale on each response.
	Agents       []Agent          `json:"agents"`
	CurrentAgent string           `json:"current_agent"`
	Guardrails   []GuardrailCheck `json:"guardrails"`
	Context      map[string]any   `json:"context"`

	// Lifecycle flags. IsLoading is transient and forced to false when a
	// session is loaded from a persisted snapshot.
	IsLoading   bool `json:"is_loading"`
	Initialized bool `json:"initialized"`

	CreatedAt time.Time `json:"created_at"`
}

// NewSession creates a fresh, un-booted session with a client-generated id.
func NewSession(title string) *Session {
	return &Session{
		ID:         uuid.NewString(),
		Title:      title,
		Messages:   make([]*Message, 0),
		Events:     make([]AgentEvent, 0),
		Agents:     make([]Agent, 0),
		Guardrails: make([]GuardrailCheck, 0),
		Context:    make(map[string]any),
		CreatedAt:  time.Now(),
	}
}

// NewSessionForOrder creates a session bound to an order. The title derives
// from the confirmation number and the context is seeded with the order's
// fields so the context panel is populated before the first exchange.
func NewSessionForOrder(order *Order) *Session {
	s := NewSession("Order " + order.ConfirmationNumber)
	s.OrderID = order.ID
	s.Context["confirmation_number"] = order.ConfirmationNumber
	s.Context["flight_number"] = order.FlightNumber
	s.Context["seat_number"] = order.SeatNumber
	if order.MealSelection != "" {
		s.Context["meal_selection"] = order.MealSelection
	}
	if order.Status != "" {
		s.Context["order_status"] = order.Status
	}
	return s
}

// =============================================================================
// MESSAGE ACCESS
// =============================================================================

// AppendMessage appends a message to the session.
func (s *Session) AppendMessage(msg *Message) {
	s.Messages = append(s.Messages, msg)
}

// FindMessage returns the message with the given id, or nil.
func (s *Session) FindMessage(id string) *Message {
	for _, msg := range s.Messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// LastAssistantMessage returns the most recent assistant message, or nil.
func (s *Session) LastAssistantMessage() *Message {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleAssistant {
			return s.Messages[i]
		}
	}
	return nil
}

// VisibleMessages returns the messages that should render as chat bubbles,
// excluding sentinel markers.
func (s *Session) VisibleMessages() []*Message {
	out := make([]*Message, 0, len(s.Messages))
	for _, msg := range s.Messages {
		if msg.IsSentinel() {
			continue
		}
		out = append(out, msg)
	}
	return out
}

// HasSeatMapTrigger reports whether any assistant message carries the seat
// map sentinel.
func (s *Session) HasSeatMapTrigger() bool {
	for _, msg := range s.Messages {
		if msg.Role == RoleAssistant && msg.IsSentinel() {
			return true
		}
	}
	return false
}

// OrderCanceled reports whether the session is bound to an order whose known
// status is canceled. The status lives in the context snapshot, which is kept
// in sync with the locally cached order list on every merge.
func (s *Session) OrderCanceled() bool {
	if s.OrderID == "" {
		return false
	}
	status, ok := s.Context["order_status"].(string)
	return ok && status == OrderStatusCanceled
}
