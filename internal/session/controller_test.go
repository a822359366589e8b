// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"testing"

	"github.com/jeranaias/skydesk-tui/internal/api"
	"github.com/jeranaias/skydesk-tui/internal/model"
	"github.com/jeranaias/skydesk-tui/internal/storage"
)

// fakeBackend records calls and serves canned responses.
type fakeBackend struct {
	chatCalls     []api.ChatRequest
	chatResp      *api.ChatResponse
	chatErr       error
	feedbackCalls []api.FeedbackRequest
	sessions      []api.SessionPayload
	sessionsErr   error
	orders        []api.OrderPayload
}

func (f *fakeBackend) Chat(_ context.Context, req api.ChatRequest) (*api.ChatResponse, error) {
	f.chatCalls = append(f.chatCalls, req)
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	if f.chatResp != nil {
		return f.chatResp, nil
	}
	return &api.ChatResponse{ConversationID: "conv-1", TraceID: "t1"}, nil
}

func (f *fakeBackend) SubmitFeedback(_ context.Context, req api.FeedbackRequest) error {
	f.feedbackCalls = append(f.feedbackCalls, req)
	return nil
}

func (f *fakeBackend) ListSessions(_ context.Context, _ int, _ string) ([]api.SessionPayload, error) {
	return f.sessions, f.sessionsErr
}

func (f *fakeBackend) ListOrders(_ context.Context, _ string) ([]api.OrderPayload, error) {
	return f.orders, nil
}

func (f *fakeBackend) CreateOrder(_ context.Context, _ string) (*api.OrderPayload, error) {
	return &api.OrderPayload{ID: "99", ConfirmationNumber: "NEW123", Status: "active"}, nil
}

func newTestController(t *testing.T, backend *fakeBackend) *Controller {
	t.Helper()
	store, err := storage.NewSnapshotStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewController(backend, store, DefaultOptions())
}

// bootedController returns a controller with one initialized, idle session.
func bootedController(t *testing.T, backend *fakeBackend) *Controller {
	t.Helper()
	c := newTestController(t, backend)
	c.CreateSession()
	id, _, ok := c.BeginBoot()
	if !ok {
		t.Fatal("expected boot to start")
	}
	c.CompleteBoot(id, &api.ChatResponse{ConversationID: "conv-1", CurrentAgent: "Triage", TraceID: "t0"}, nil)
	return c
}

// =============================================================================
// BOOT
// =============================================================================

func TestBootFiresAtMostOnce(t *testing.T) {
	c := newTestController(t, &fakeBackend{})
	c.CreateSession()

	id, req, ok := c.BeginBoot()
	if !ok {
		t.Fatal("first boot check must start the exchange")
	}
	if req.ConversationID != "" || req.Message != "" {
		t.Errorf("boot request must use empty sentinels, got %+v", req)
	}

	// Re-evaluating the gate while in flight and after completion must
	// never start a second exchange.
	if _, _, ok := c.BeginBoot(); ok {
		t.Error("boot started twice while in flight")
	}
	c.CompleteBoot(id, &api.ChatResponse{ConversationID: "conv-1"}, nil)
	for i := 0; i < 5; i++ {
		if _, _, ok := c.BeginBoot(); ok {
			t.Fatal("boot started again after completion")
		}
	}
}

func TestBootFailureIsFailOpen(t *testing.T) {
	c := newTestController(t, &fakeBackend{})
	c.CreateSession()

	id, _, _ := c.BeginBoot()
	c.CompleteBoot(id, nil, errors.New("connection refused"))

	s := c.ActiveSession()
	if !s.Initialized {
		t.Error("failed boot must still mark the session initialized")
	}
	if s.IsLoading {
		t.Error("failed boot must clear the loading gate")
	}
	if _, _, ok := c.BeginBoot(); ok {
		t.Error("failed boot must not be retried")
	}
}

func TestBootMergesGreetingAndSentinels(t *testing.T) {
	c := newTestController(t, &fakeBackend{})
	c.CreateSession()

	id, _, _ := c.BeginBoot()
	c.CompleteBoot(id, &api.ChatResponse{
		ConversationID: "conv-9",
		CurrentAgent:   "Triage",
		Context:        map[string]any{"account_number": "ACCT-1"},
		Agents:         []api.AgentPayload{{Name: "Triage"}, {Name: "Seat Booking"}},
		Messages:       []api.MessagePayload{{Content: "Welcome aboard!", Agent: "Triage"}},
		TraceID:        "t0",
		SessionTitle:   "Greeting",
	}, nil)

	s := c.ActiveSession()
	if s.ConversationID != "conv-9" {
		t.Errorf("ConversationID = %q", s.ConversationID)
	}
	if s.Title != "Greeting" {
		t.Errorf("Title = %q", s.Title)
	}
	if len(s.Agents) != 2 || s.CurrentAgent != "Triage" {
		t.Errorf("agent roster not merged: %+v", s.Agents)
	}
	if len(s.Messages) != 1 || s.Messages[0].Content != "Welcome aboard!" {
		t.Fatalf("greeting not appended: %+v", s.Messages)
	}
	if s.Messages[0].TraceID != "t0" {
		t.Errorf("assistant message must carry the exchange trace id")
	}
}

// =============================================================================
// SEND
// =============================================================================

func TestSendGuards(t *testing.T) {
	c := newTestController(t, &fakeBackend{})

	if _, _, err := c.BeginSend("hi"); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("no session: got %v", err)
	}

	c.CreateSession()
	if _, _, err := c.BeginSend("hi"); !errors.Is(err, ErrSessionNotBooted) {
		t.Errorf("un-booted session: got %v", err)
	}
}

func TestSendSingleFlight(t *testing.T) {
	c := bootedController(t, &fakeBackend{})

	id, _, err := c.BeginSend("first")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := c.BeginSend("second"); !errors.Is(err, ErrExchangeInFlight) {
		t.Errorf("overlapping send: got %v", err)
	}

	c.CompleteSend(id, &api.ChatResponse{ConversationID: "conv-1"}, nil)
	if _, _, err := c.BeginSend("third"); err != nil {
		t.Errorf("send after completion must be allowed: %v", err)
	}
}

func TestConversationIDSetOnlyOnce(t *testing.T) {
	c := bootedController(t, &fakeBackend{})

	id, req, err := c.BeginSend("change my seat")
	if err != nil {
		t.Fatal(err)
	}
	if req.ConversationID != "conv-1" {
		t.Errorf("send must reuse the booted conversation id, got %q", req.ConversationID)
	}

	// Server returning a different id must not displace the existing one.
	c.CompleteSend(id, &api.ChatResponse{ConversationID: "conv-OTHER"}, nil)
	if got := c.ActiveSession().ConversationID; got != "conv-1" {
		t.Errorf("ConversationID overwritten: %q", got)
	}
}

func TestSendMergeRules(t *testing.T) {
	c := bootedController(t, &fakeBackend{})
	s := c.ActiveSession()
	s.Events = []model.AgentEvent{{ID: "e0", Type: model.EventMessage}}
	s.Agents = []model.Agent{{Name: "Triage"}}

	id, _, _ := c.BeginSend("I would like seat 12A")
	c.CompleteSend(id, &api.ChatResponse{
		ConversationID: "conv-1",
		CurrentAgent:   "Seat Booking",
		Context:        map[string]any{"seat_number": "12A"},
		Events: []api.EventPayload{
			{ID: "e1", Type: "handoff", Agent: "Triage"},
			{ID: "e2", Type: "tool_call", Agent: "Seat Booking"},
		},
		Messages: []api.MessagePayload{{Content: "Seat 12A is yours.", Agent: "Seat Booking"}},
		TraceID:  "t2",
	}, nil)

	if s.CurrentAgent != "Seat Booking" {
		t.Errorf("CurrentAgent = %q", s.CurrentAgent)
	}
	if s.Context["seat_number"] != "12A" {
		t.Errorf("context not replaced: %+v", s.Context)
	}
	// Events append; the pre-existing trace entry survives.
	if len(s.Events) != 3 || s.Events[0].ID != "e0" {
		t.Errorf("events must append, got %+v", s.Events)
	}
	// Empty agents in the response keeps the previous roster.
	if len(s.Agents) != 1 || s.Agents[0].Name != "Triage" {
		t.Errorf("empty agent list must not clear the roster: %+v", s.Agents)
	}
	// Optimistic user message plus the reply.
	if len(s.Messages) != 2 || s.Messages[0].Role != model.RoleUser {
		t.Fatalf("message order wrong: %+v", s.Messages)
	}
	if s.Messages[1].TraceID != "t2" {
		t.Error("assistant message must carry the fresh trace id")
	}
}

func TestSendFailureKeepsOptimisticMessage(t *testing.T) {
	c := bootedController(t, &fakeBackend{})

	id, _, _ := c.BeginSend("hello?")
	c.CompleteSend(id, nil, errors.New("gateway timeout"))

	s := c.ActiveSession()
	if s.IsLoading {
		t.Error("failed send must clear the loading gate")
	}
	if len(s.Messages) != 1 || s.Messages[0].Content != "hello?" {
		t.Errorf("optimistic user message must survive failure: %+v", s.Messages)
	}
	if _, _, err := c.BeginSend("retry"); err != nil {
		t.Errorf("send after failure must be allowed: %v", err)
	}
}

// =============================================================================
// FEEDBACK
// =============================================================================

func TestFeedbackRecordsAndOverwrites(t *testing.T) {
	c := bootedController(t, &fakeBackend{})
	s := c.ActiveSession()
	s.AppendMessage(model.NewAssistantMessage("Done!", "Triage", "t5"))
	msgID := s.Messages[0].ID

	req, err := c.BeginFeedback(msgID, 3.5)
	if err != nil {
		t.Fatal(err)
	}
	if req.TraceID != "t5" || req.Score != 3.5 {
		t.Errorf("request = %+v", req)
	}
	if s.Messages[0].Rating != 3.5 {
		t.Errorf("rating not recorded: %v", s.Messages[0].Rating)
	}

	// Re-rating the same message overwrites.
	if _, err := c.BeginFeedback(msgID, 5.0); err != nil {
		t.Fatal(err)
	}
	if s.Messages[0].Rating != 5.0 {
		t.Errorf("rating not overwritten: %v", s.Messages[0].Rating)
	}
}

func TestFeedbackValidation(t *testing.T) {
	c := bootedController(t, &fakeBackend{})
	s := c.ActiveSession()
	s.AppendMessage(model.NewAssistantMessage("reply", "Triage", "t5"))
	noTrace := model.NewAssistantMessage("orphan", "Triage", "")
	s.AppendMessage(noTrace)
	msgID := s.Messages[0].ID

	if _, err := c.BeginFeedback("nope", 3); !errors.Is(err, ErrUnknownMessage) {
		t.Errorf("unknown message: got %v", err)
	}
	if _, err := c.BeginFeedback(noTrace.ID, 3); !errors.Is(err, ErrNoTraceID) {
		t.Errorf("missing trace id: got %v", err)
	}
	if _, err := c.BeginFeedback(msgID, 3.25); !errors.Is(err, ErrInvalidScore) {
		t.Errorf("off-step score: got %v", err)
	}
	if _, err := c.BeginFeedback(msgID, 6); !errors.Is(err, ErrInvalidScore) {
		t.Errorf("out-of-range score: got %v", err)
	}
}

// =============================================================================
// ORDERS
// =============================================================================

func TestCanceledOrderBlocksSessionAndSend(t *testing.T) {
	backend := &fakeBackend{orders: []api.OrderPayload{
		{ID: "1", ConfirmationNumber: "LL0EZ6", FlightNumber: "AL100", SeatNumber: "14B", Status: "active"},
		{ID: "2", ConfirmationNumber: "XX9QQ1", FlightNumber: "AL200", SeatNumber: "3C", Status: "canceled"},
	}}
	c := newTestController(t, backend)
	if err := c.RefreshOrders(context.Background()); err != nil {
		t.Fatal(err)
	}

	if _, err := c.CreateSessionForOrder("2"); !errors.Is(err, ErrOrderCanceled) {
		t.Errorf("canceled order must refuse session creation: %v", err)
	}
	if _, err := c.CreateSessionForOrder("missing"); !errors.Is(err, ErrUnknownOrder) {
		t.Errorf("unknown order: got %v", err)
	}

	s, err := c.CreateSessionForOrder("1")
	if err != nil {
		t.Fatal(err)
	}
	if s.Title != "Order LL0EZ6" {
		t.Errorf("Title = %q", s.Title)
	}
	if s.Context["seat_number"] != "14B" {
		t.Errorf("order context not seeded: %+v", s.Context)
	}

	// Boot, then cancel the order out from under the session.
	id, _, _ := c.BeginBoot()
	c.CompleteBoot(id, &api.ChatResponse{ConversationID: "conv-o"}, nil)
	backend.orders[0].Status = "canceled"
	if err := c.RefreshOrders(context.Background()); err != nil {
		t.Fatal(err)
	}

	if _, _, err := c.BeginSend("help"); !errors.Is(err, ErrOrderCanceled) {
		t.Errorf("send against canceled order: got %v", err)
	}
	if len(backend.chatCalls) != 0 {
		t.Errorf("blocked send must not reach the network, got %d calls", len(backend.chatCalls))
	}
}

func TestRefreshOrdersDefersStatusPushdown(t *testing.T) {
	backend := &fakeBackend{orders: []api.OrderPayload{
		{ID: "1", ConfirmationNumber: "LL0EZ6", FlightNumber: "AL100", SeatNumber: "14B", Status: "active"},
	}}
	c := newTestController(t, backend)
	if err := c.RefreshOrders(context.Background()); err != nil {
		t.Fatal(err)
	}
	s, err := c.CreateSessionForOrder("1")
	if err != nil {
		t.Fatal(err)
	}

	backend.orders[0].Status = "canceled"
	if err := c.RefreshOrders(context.Background()); err != nil {
		t.Fatal(err)
	}
	// The refresh runs off the event loop, so it must only replace the
	// order cache. Session context is read lock-free by rendering and may
	// only change on the event loop, via ApplyOrderStatuses.
	if s.Context["order_status"] != "active" {
		t.Errorf("refresh must not touch session context, got %v", s.Context["order_status"])
	}

	c.ApplyOrderStatuses()
	if s.Context["order_status"] != "canceled" {
		t.Errorf("pushdown must apply the cached status, got %v", s.Context["order_status"])
	}
}

func TestCreateSessionRequiresOrderWhenOrderBound(t *testing.T) {
	c := NewController(&fakeBackend{}, nil, Options{OrderBound: true})

	if _, err := c.CreateSession(); !errors.Is(err, ErrOrderRequired) {
		t.Fatalf("free creation in the order-bound variant: got %v", err)
	}
	if len(c.Sessions()) != 0 {
		t.Error("refused creation must not add a session")
	}
}

// =============================================================================
// RESTORE / SELECTION
// =============================================================================

func TestRestorePrefersServerListing(t *testing.T) {
	backend := &fakeBackend{sessions: []api.SessionPayload{
		{ConversationID: "c1", Title: "Seat change"},
		{ConversationID: "c2"},
	}}
	c := newTestController(t, backend)
	c.Restore(context.Background())

	sessions := c.Sessions()
	if len(sessions) != 2 {
		t.Fatalf("expected 2 restored sessions, got %d", len(sessions))
	}
	if sessions[0].Title != "Seat change" || sessions[1].Title != "Session 2" {
		t.Errorf("titles = %q, %q", sessions[0].Title, sessions[1].Title)
	}
	if !sessions[0].Initialized {
		t.Error("restored sessions must not re-boot")
	}
	if c.ActiveSessionID() != sessions[0].ID {
		t.Error("first restored session must be active")
	}
}

func TestRestoreFallsBackToSnapshotThenFresh(t *testing.T) {
	store, err := storage.NewSnapshotStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cached := model.NewSession("Cached")
	cached.Initialized = true
	store.Save("", &storage.Snapshot{
		Sessions:        []*model.Session{cached},
		ActiveSessionID: cached.ID,
		SessionCounter:  1,
	})

	backend := &fakeBackend{sessionsErr: errors.New("listing down")}
	c := NewController(backend, store, DefaultOptions())
	c.Restore(context.Background())

	if sessions := c.Sessions(); len(sessions) != 1 || sessions[0].Title != "Cached" {
		t.Fatalf("snapshot fallback failed: %+v", sessions)
	}

	// No listing and no snapshot: a fresh session is created.
	c2 := newTestController(t, &fakeBackend{sessionsErr: errors.New("listing down")})
	c2.Restore(context.Background())
	if sessions := c2.Sessions(); len(sessions) != 1 || sessions[0].Title != "Session 1" {
		t.Fatalf("fresh fallback failed: %+v", sessions)
	}
}

func TestRestoreOrderBoundStartsEmpty(t *testing.T) {
	backend := &fakeBackend{sessionsErr: errors.New("listing down")}
	store, _ := storage.NewSnapshotStoreWithDir(t.TempDir())
	c := NewController(backend, store, Options{RestoreLimit: 20, OrderBound: true})
	c.Restore(context.Background())

	if len(c.Sessions()) != 0 {
		t.Error("order-bound startup must not create a session")
	}
}

func TestSelectSessionMovesToFront(t *testing.T) {
	c := newTestController(t, &fakeBackend{})
	first, _ := c.CreateSession()
	second, _ := c.CreateSession()
	third, _ := c.CreateSession()

	if !c.SelectSession(first.ID) {
		t.Fatal("select failed")
	}
	sessions := c.Sessions()
	if sessions[0].ID != first.ID || sessions[1].ID != third.ID || sessions[2].ID != second.ID {
		t.Errorf("MRU order wrong: %v, %v, %v", sessions[0].Title, sessions[1].Title, sessions[2].Title)
	}
	if c.ActiveSessionID() != first.ID {
		t.Error("selected session must be active")
	}
	if c.SelectSession("missing") {
		t.Error("selecting an unknown session must fail")
	}
}

func TestCreateSessionNumbering(t *testing.T) {
	c := newTestController(t, &fakeBackend{})
	c.CreateSession()
	c.CreateSession()
	s, _ := c.CreateSession()
	if s.Title != "Session 3" {
		t.Errorf("Title = %q", s.Title)
	}
	if c.Sessions()[0].ID != s.ID {
		t.Error("new session must be first in display order")
	}
}

func TestLogoutClearsState(t *testing.T) {
	store, _ := storage.NewSnapshotStoreWithDir(t.TempDir())
	c := NewController(&fakeBackend{}, store, DefaultOptions())
	c.SetUser(&model.User{ID: "3", Username: "Amy"})
	c.CreateSession()

	c.Logout()
	if len(c.Sessions()) != 0 || c.ActiveSessionID() != "" || c.User() != nil {
		t.Error("logout must clear all session state")
	}
	if snap, _ := store.Load("3"); snap != nil {
		t.Error("logout must clear the persisted snapshot")
	}
}
