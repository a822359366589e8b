// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/skydesk-tui/internal/model"
)

func TestFlexTimeDecoding(t *testing.T) {
	tests := []struct {
		name string
		json string
		zero bool
	}{
		{"rfc3339", `"2025-06-01T12:00:00Z"`, false},
		{"rfc3339 nano", `"2025-06-01T12:00:00.123456Z"`, false},
		{"no zone", `"2025-06-01T12:00:00"`, false},
		{"epoch millis", `1748779200000`, false},
		{"null", `null`, true},
		{"empty string", `""`, true},
		{"garbage string", `"not a time"`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ft FlexTime
			require.NoError(t, json.Unmarshal([]byte(tt.json), &ft))
			assert.Equal(t, tt.zero, ft.IsZero())
		})
	}
}

func TestFlexTimeOrNowDefaults(t *testing.T) {
	var ft FlexTime
	before := time.Now()
	got := ft.OrNow()
	if got.Before(before) || time.Since(got) > time.Second {
		t.Errorf("OrNow for zero time should be about now, got %v", got)
	}
}

func TestFlexBoolCoercion(t *testing.T) {
	tests := []struct {
		json string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`1`, true},
		{`0`, false},
		{`"true"`, true},
		{`"false"`, false},
		{`null`, false},
		{`"banana"`, false},
	}

	for _, tt := range tests {
		var fb FlexBool
		require.NoError(t, json.Unmarshal([]byte(tt.json), &fb), tt.json)
		assert.Equal(t, tt.want, bool(fb), "input %s", tt.json)
	}
}

func TestGuardrailNormalizationFallbacks(t *testing.T) {
	payload := GuardrailPayload{
		Name:      "Relevance Guardrail",
		Input:     "what is the meaning of life",
		Reasoning: "off-topic",
	}

	check := payload.ToModel()
	assert.NotEmpty(t, check.ID, "missing guardrail id must get a fallback")
	assert.False(t, check.Passed)
	assert.False(t, check.Timestamp.IsZero(), "missing timestamp must default to now")
	assert.Equal(t, "Relevance Guardrail", check.Name)
}

func TestEventNormalizationFallbacks(t *testing.T) {
	payload := EventPayload{
		Type:  "handoff",
		Agent: "Triage",
		Metadata: map[string]any{
			"source_agent": "Triage",
			"target_agent": "Seat Booking",
		},
	}

	ev := payload.ToModel()
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, model.EventHandoff, ev.Type)
	assert.False(t, ev.Timestamp.IsZero())
	assert.Equal(t, "Seat Booking", ev.Metadata["target_agent"])
}

func TestSessionPayloadToSession(t *testing.T) {
	raw := `{
		"conversation_id": "c9",
		"current_agent": "FAQ",
		"context": {"seat_number": "4A"},
		"guardrails": [{"name": "Jailbreak Guardrail", "passed": 1}],
		"messages": [
			{"id": "srv-1", "role": "user", "content": "hello"},
			{"content": "Hi there", "agent": "FAQ", "trace_id": "t2"}
		],
		"title": "Seat change"
	}`

	var payload SessionPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	s := payload.ToSession("Session 1")
	assert.Equal(t, "Seat change", s.Title)
	assert.Equal(t, "c9", s.ConversationID)
	assert.True(t, s.Initialized, "restored sessions arrive initialized")
	assert.False(t, s.IsLoading)
	assert.Equal(t, "4A", s.Context["seat_number"])

	require.Len(t, s.Messages, 2)
	assert.Equal(t, "srv-1", s.Messages[0].ID, "server-issued ids are preserved")
	assert.Equal(t, model.RoleUser, s.Messages[0].Role)
	assert.NotEmpty(t, s.Messages[1].ID, "missing ids get client fallbacks")
	assert.Equal(t, model.RoleAssistant, s.Messages[1].Role, "missing role defaults to assistant")

	require.Len(t, s.Guardrails, 1)
	assert.True(t, s.Guardrails[0].Passed, "numeric passed coerces to true")
}

func TestSessionPayloadFallbackTitle(t *testing.T) {
	s := SessionPayload{ConversationID: "c1"}.ToSession("Session 4")
	assert.Equal(t, "Session 4", s.Title)
}
