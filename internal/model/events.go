// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for sessions and messages.
package model

import "time"

// =============================================================================
// AGENT EVENT TYPE
// =============================================================================

// EventType identifies an entry in the operational trace.
type EventType string

const (
	EventHandoff       EventType = "handoff"
	EventToolCall      EventType = "tool_call"
	EventToolOutput    EventType = "tool_output"
	EventContextUpdate EventType = "context_update"
	EventMessage       EventType = "message"
)

// AgentEvent is one entry in the operational trace. Events are append-only
// and never mutated after creation.
type AgentEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Agent     string         `json:"agent"`
	Content   string         `json:"content,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// =============================================================================
// AGENT DESCRIPTOR
// =============================================================================

// Agent describes one backend agent as of the latest exchange.
type Agent struct {
	// Name is the unique key for the agent.
	Name        string `json:"name"`
	Description string `json:"description"`

	// Handoffs lists agent names reachable from this agent.
	Handoffs []string `json:"handoffs"`

	// InputGuardrails lists guardrail names applied while this agent is
	// active.
	InputGuardrails []string `json:"input_guardrails"`
}

// =============================================================================
// GUARDRAIL CHECK
// =============================================================================

// GuardrailCheck is the latest result of one named guardrail. An empty Input
// means the check has not run yet.
type GuardrailCheck struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Input     string    `json:"input"`
	Reasoning string    `json:"reasoning"`
	Passed    bool      `json:"passed"`
	Timestamp time.Time `json:"timestamp"`
}
