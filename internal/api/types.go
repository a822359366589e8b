// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the skydesk support backend.
//
// This file defines the wire schemas and the normalization that happens at
// the client boundary: fallback ids, boolean coercion and timestamp
// defaulting. The merge logic in the session controller never has to guess
// field presence: by the time a payload leaves this package it is a fully
// populated model value.
package api

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/skydesk-tui/internal/model"
)

// =============================================================================
// REQUEST SCHEMAS
// =============================================================================

// ChatRequest is the body of POST /api/chat. ConversationID carries the empty
// string sentinel until the server assigns an id on the boot exchange.
type ChatRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
	UserID         string `json:"user_id,omitempty"`
	OrderID        string `json:"order_id,omitempty"`
}

// FeedbackRequest is the body of POST /api/feedback.
type FeedbackRequest struct {
	TraceID string  `json:"trace_id"`
	Score   float64 `json:"score"`
	Comment string  `json:"comment,omitempty"`
}

// =============================================================================
// RESPONSE SCHEMAS
// =============================================================================

// ChatResponse is the body of a successful chat exchange.
type ChatResponse struct {
	ConversationID string             `json:"conversation_id"`
	CurrentAgent   string             `json:"current_agent"`
	Context        map[string]any     `json:"context"`
	Events         []EventPayload     `json:"events"`
	Agents         []AgentPayload     `json:"agents"`
	Guardrails     []GuardrailPayload `json:"guardrails"`
	Messages       []MessagePayload   `json:"messages"`
	TraceID        string             `json:"trace_id"`
	SessionTitle   string             `json:"session_title,omitempty"`
}

// MessagePayload is one assistant reply inside a chat response.
type MessagePayload struct {
	Content string `json:"content"`
	Agent   string `json:"agent"`
}

// EventPayload is one operational trace entry on the wire.
type EventPayload struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Agent     string         `json:"agent"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata"`
	Timestamp FlexTime       `json:"timestamp"`
}

// AgentPayload is one agent descriptor on the wire.
type AgentPayload struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Handoffs        []string `json:"handoffs"`
	InputGuardrails []string `json:"input_guardrails"`
}

// GuardrailPayload is one guardrail result on the wire. Passed arrives as
// whatever the backend felt like sending (bool, number, string) and is
// coerced here.
type GuardrailPayload struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Input     string   `json:"input"`
	Reasoning string   `json:"reasoning"`
	Passed    FlexBool `json:"passed"`
	Timestamp FlexTime `json:"timestamp"`
}

// SessionPayload is one entry of GET /api/sessions.
type SessionPayload struct {
	ConversationID string                  `json:"conversation_id"`
	CurrentAgent   string                  `json:"current_agent"`
	Context        map[string]any          `json:"context"`
	Events         []EventPayload          `json:"events"`
	Agents         []AgentPayload          `json:"agents"`
	Guardrails     []GuardrailPayload      `json:"guardrails"`
	Messages       []StoredMessagePayload  `json:"messages"`
	Title          string                  `json:"title,omitempty"`
}

// StoredMessagePayload is a message restored from the server's session store.
// Unlike MessagePayload it may carry a server-issued id, role and trace id.
type StoredMessagePayload struct {
	ID      string   `json:"id"`
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Agent   string   `json:"agent"`
	TraceID string   `json:"trace_id"`
	Rating  float64  `json:"rating"`
	Time    FlexTime `json:"timestamp"`
}

// OrderPayload is one order record on the wire. Numeric ids and seat numbers
// are coerced to strings.
type OrderPayload struct {
	ID                 FlexString `json:"id"`
	ConfirmationNumber string     `json:"confirmation_number"`
	FlightNumber       string     `json:"flight_number"`
	SeatNumber         FlexString `json:"seat_number"`
	MealSelection      string     `json:"meal_selection"`
	Status             string     `json:"status"`
}

// UserPayload is the login response.
type UserPayload struct {
	ID            FlexString `json:"id"`
	Username      string     `json:"username"`
	AccountNumber string     `json:"account_number"`
}

// =============================================================================
// FLEXIBLE SCALARS
// =============================================================================

// FlexTime accepts RFC 3339 strings, epoch milliseconds, or null. The zero
// value means "absent"; callers default it to time.Now at normalization.
type FlexTime struct {
	time.Time
}

// UnmarshalJSON implements lenient timestamp decoding.
func (t *FlexTime) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		t.Time = time.Time{}
		return nil
	}

	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
			if parsed, err := time.Parse(layout, str); err == nil {
				t.Time = parsed
				return nil
			}
		}
		// Unparseable timestamps are treated as absent, not fatal
		t.Time = time.Time{}
		return nil
	}

	var millis float64
	if err := json.Unmarshal(data, &millis); err != nil {
		t.Time = time.Time{}
		return nil
	}
	t.Time = time.UnixMilli(int64(millis))
	return nil
}

// OrNow returns the parsed time, or now when the timestamp was absent.
func (t FlexTime) OrNow() time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t.Time
}

// FlexBool coerces bool, number and string representations to a bool,
// mirroring the truthiness the backend's older clients relied on.
type FlexBool bool

// UnmarshalJSON implements lenient boolean decoding.
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch s {
	case "true":
		*b = true
		return nil
	case "false", "null", `""`, "0":
		*b = false
		return nil
	}

	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		parsed, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(str)))
		*b = FlexBool(err == nil && parsed)
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err != nil {
		*b = false
		return nil
	}
	*b = num != 0
	return nil
}

// FlexString coerces strings and numbers to a string.
type FlexString string

// UnmarshalJSON implements lenient string decoding.
func (s *FlexString) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*s = ""
		return nil
	}
	if raw[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = FlexString(num.String())
	return nil
}

// String returns the coerced value.
func (s FlexString) String() string {
	return string(s)
}

// =============================================================================
// NORMALIZATION TO MODEL TYPES
// =============================================================================

// ToModel converts a guardrail payload, assigning a fallback id and
// defaulting the timestamp to now when absent.
func (p GuardrailPayload) ToModel() model.GuardrailCheck {
	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}
	return model.GuardrailCheck{
		ID:        id,
		Name:      p.Name,
		Input:     p.Input,
		Reasoning: p.Reasoning,
		Passed:    bool(p.Passed),
		Timestamp: p.Timestamp.OrNow(),
	}
}

// ToModel converts an event payload, assigning a fallback id and defaulting
// the timestamp to now when absent.
func (p EventPayload) ToModel() model.AgentEvent {
	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}
	return model.AgentEvent{
		ID:        id,
		Type:      model.EventType(p.Type),
		Agent:     p.Agent,
		Content:   p.Content,
		Metadata:  p.Metadata,
		Timestamp: p.Timestamp.OrNow(),
	}
}

// ToModel converts an agent payload. Nil slices become empty slices so the
// panel never distinguishes "absent" from "none".
func (p AgentPayload) ToModel() model.Agent {
	a := model.Agent{
		Name:            p.Name,
		Description:     p.Description,
		Handoffs:        p.Handoffs,
		InputGuardrails: p.InputGuardrails,
	}
	if a.Handoffs == nil {
		a.Handoffs = []string{}
	}
	if a.InputGuardrails == nil {
		a.InputGuardrails = []string{}
	}
	return a
}

// NormalizeGuardrails converts a slice of guardrail payloads.
func NormalizeGuardrails(payloads []GuardrailPayload) []model.GuardrailCheck {
	out := make([]model.GuardrailCheck, 0, len(payloads))
	for _, p := range payloads {
		out = append(out, p.ToModel())
	}
	return out
}

// NormalizeEvents converts a slice of event payloads.
func NormalizeEvents(payloads []EventPayload) []model.AgentEvent {
	out := make([]model.AgentEvent, 0, len(payloads))
	for _, p := range payloads {
		out = append(out, p.ToModel())
	}
	return out
}

// NormalizeAgents converts a slice of agent payloads.
func NormalizeAgents(payloads []AgentPayload) []model.Agent {
	out := make([]model.Agent, 0, len(payloads))
	for _, p := range payloads {
		out = append(out, p.ToModel())
	}
	return out
}

// ToSession converts a server session record into a fully initialized local
// session: server-issued message ids are preserved, missing roles default to
// assistant, and the session arrives idle (initialized, not loading).
func (p SessionPayload) ToSession(fallbackTitle string) *model.Session {
	title := p.Title
	if title == "" {
		title = fallbackTitle
	}

	s := model.NewSession(title)
	s.ConversationID = p.ConversationID
	s.CurrentAgent = p.CurrentAgent
	s.Agents = NormalizeAgents(p.Agents)
	s.Guardrails = NormalizeGuardrails(p.Guardrails)
	s.Events = NormalizeEvents(p.Events)
	s.Initialized = true
	s.IsLoading = false

	if p.Context != nil {
		s.Context = p.Context
	}

	for _, mp := range p.Messages {
		msg := &model.Message{
			ID:        mp.ID,
			Role:      model.Role(mp.Role),
			Content:   mp.Content,
			Agent:     mp.Agent,
			TraceID:   mp.TraceID,
			Rating:    mp.Rating,
			Timestamp: mp.Time.OrNow(),
		}
		if msg.ID == "" {
			msg.ID = model.GenerateID()
		}
		if msg.Role == "" {
			msg.Role = model.RoleAssistant
		}
		s.Messages = append(s.Messages, msg)
	}

	return s
}

// ToModel converts an order payload.
func (p OrderPayload) ToModel() model.Order {
	return model.Order{
		ID:                 p.ID.String(),
		ConfirmationNumber: p.ConfirmationNumber,
		FlightNumber:       p.FlightNumber,
		SeatNumber:         p.SeatNumber.String(),
		MealSelection:      p.MealSelection,
		Status:             p.Status,
	}
}

// ToModel converts a user payload.
func (p UserPayload) ToModel() model.User {
	return model.User{
		ID:            p.ID.String(),
		Username:      p.Username,
		AccountNumber: p.AccountNumber,
	}
}
