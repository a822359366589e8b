// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the session lifecycle for skydesk.
package session

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/jeranaias/skydesk-tui/internal/api"
	"github.com/jeranaias/skydesk-tui/internal/model"
	"github.com/jeranaias/skydesk-tui/internal/storage"
	"github.com/jeranaias/skydesk-tui/internal/util"
)

// Lifecycle errors surfaced to the UI as short inline messages.
var (
	// ErrNoActiveSession indicates no session is selected.
	ErrNoActiveSession = errors.New("no active session")

	// ErrSessionNotBooted indicates a user send was attempted before the
	// boot exchange completed.
	ErrSessionNotBooted = errors.New("session is still starting")

	// ErrExchangeInFlight indicates a second exchange was attempted while
	// one is outstanding for the same session.
	ErrExchangeInFlight = errors.New("an exchange is already in flight")

	// ErrOrderCanceled indicates the session's backing order is canceled.
	ErrOrderCanceled = errors.New("this order has been canceled")

	// ErrUnknownMessage indicates a feedback target that does not exist.
	ErrUnknownMessage = errors.New("unknown message")

	// ErrNoTraceID indicates a feedback target with nothing to rate
	// against.
	ErrNoTraceID = errors.New("message has no trace id")

	// ErrInvalidScore indicates a rating outside the half-star range.
	ErrInvalidScore = errors.New("score must be between 0.5 and 5.0 in half-star steps")

	// ErrUnknownOrder indicates an order id not present in the cached
	// order list.
	ErrUnknownOrder = errors.New("unknown order")

	// ErrOrderRequired indicates a free session creation in the
	// order-bound variant, where every session must start from an order.
	ErrOrderRequired = errors.New("pick an order to start a session")
)

// Backend is the slice of the API client the controller depends on.
// Narrowed to an interface so tests can substitute a stub exchanger.
type Backend interface {
	Chat(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error)
	SubmitFeedback(ctx context.Context, req api.FeedbackRequest) error
	ListSessions(ctx context.Context, limit int, userID string) ([]api.SessionPayload, error)
	ListOrders(ctx context.Context, userID string) ([]api.OrderPayload, error)
	CreateOrder(ctx context.Context, userID string) (*api.OrderPayload, error)
}

// Options configures the controller.
type Options struct {
	// RestoreLimit bounds the server-side session listing at startup.
	RestoreLimit int

	// OrderBound selects the order-bound variant: startup creates no
	// session until the user picks an order.
	OrderBound bool
}

// DefaultOptions returns the default controller configuration.
func DefaultOptions() Options {
	return Options{RestoreLimit: 20}
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller is the single owner of session lifecycle state: the session
// list, the active pointer, and every transition of the initialized /
// isLoading / conversationID fields. UI code never mutates sessions directly.
//
// Exchanges are split into Begin/Complete pairs: Begin runs synchronously in
// the UI loop (optimistic updates, loading gate), the network call runs in a
// command goroutine, and Complete merges the result back. The mutex makes the
// split safe even if two command goroutines overlap.
type Controller struct {
	mu sync.Mutex

	backend Backend
	store   *storage.SnapshotStore
	opts    Options

	user     *model.User
	sessions []*model.Session
	activeID string
	counter  int
	orders   []model.Order
}

// NewController creates a controller. The snapshot store may be nil, which
// disables local persistence (used in tests).
func NewController(backend Backend, store *storage.SnapshotStore, opts Options) *Controller {
	if opts.RestoreLimit <= 0 {
		opts.RestoreLimit = DefaultOptions().RestoreLimit
	}
	return &Controller{
		backend: backend,
		store:   store,
		opts:    opts,
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Backend returns the API backend, for command goroutines that perform the
// network half of a Begin/Complete exchange.
func (c *Controller) Backend() Backend {
	return c.backend
}

// SetUser records the signed-in user. Must be called before Restore in the
// authenticated variant so storage and listing are user-scoped.
func (c *Controller) SetUser(user *model.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = user
}

// User returns the signed-in user, or nil.
func (c *Controller) User() *model.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// Sessions returns the session list in display (MRU) order.
func (c *Controller) Sessions() []*model.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*model.Session, len(c.sessions))
	copy(out, c.sessions)
	return out
}

// ActiveSession returns the active session, or nil.
func (c *Controller) ActiveSession() *model.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findLocked(c.activeID)
}

// ActiveSessionID returns the active session id, or "".
func (c *Controller) ActiveSessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

// Orders returns the cached order list.
func (c *Controller) Orders() []model.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Order, len(c.orders))
	copy(out, c.orders)
	return out
}

// OrderBound reports whether sessions must be created from an order.
func (c *Controller) OrderBound() bool {
	return c.opts.OrderBound
}

func (c *Controller) userID() string {
	if c.user == nil {
		return ""
	}
	return c.user.ID
}

func (c *Controller) findLocked(id string) *model.Session {
	for _, s := range c.sessions {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// =============================================================================
// RESTORE
// =============================================================================

// Restore rebuilds session state at startup: server listing first, then the
// local snapshot, then a fresh session (or none in the order-bound variant).
// Blocking; run it from a command goroutine.
func (c *Controller) Restore(ctx context.Context) {
	c.mu.Lock()
	userID := c.userID()
	limit := c.opts.RestoreLimit
	c.mu.Unlock()

	payloads, err := c.backend.ListSessions(ctx, limit, userID)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err == nil && len(payloads) > 0 {
		c.sessions = make([]*model.Session, 0, len(payloads))
		for i, p := range payloads {
			fallback := "Session " + util.IntToString(i+1)
			c.sessions = append(c.sessions, p.ToSession(fallback))
		}
		c.counter = len(c.sessions)
		c.activeID = c.sessions[0].ID
		c.persistLocked()
		return
	}
	if err != nil {
		log.Printf("session restore: server listing failed: %v", err)
	}

	if c.store != nil {
		if snap, _ := c.store.Load(userID); !snap.Empty() {
			c.sessions = snap.Sessions
			c.counter = snap.SessionCounter
			if c.counter < len(c.sessions) {
				c.counter = len(c.sessions)
			}
			c.activeID = snap.ActiveSessionID
			if c.findLocked(c.activeID) == nil {
				c.activeID = c.sessions[0].ID
			}
			return
		}
	}

	// Order-bound variant starts empty; sessions are created against a
	// selected order.
	if c.opts.OrderBound {
		c.sessions = nil
		c.activeID = ""
		c.counter = 0
		return
	}

	first := model.NewSession("Session 1")
	c.sessions = []*model.Session{first}
	c.activeID = first.ID
	c.counter = 1
	c.persistLocked()
}

// =============================================================================
// CREATE / SELECT / LOGOUT
// =============================================================================

// CreateSession creates a fresh session titled by sequence number, prepends
// it and makes it active. In the order-bound variant free creation is
// refused: CreateSessionForOrder is the only path, so every new session
// passes the canceled-order guard no matter which keybinding asked.
func (c *Controller) CreateSession() (*model.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.opts.OrderBound {
		return nil, ErrOrderRequired
	}

	c.counter++
	s := model.NewSession("Session " + util.IntToString(c.counter))
	c.sessions = append([]*model.Session{s}, c.sessions...)
	c.activeID = s.ID
	c.persistLocked()
	return s, nil
}

// CreateSessionForOrder creates a session bound to one of the cached orders.
// Creation is refused for canceled orders.
func (c *Controller) CreateSessionForOrder(orderID string) (*model.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var order *model.Order
	for i := range c.orders {
		if c.orders[i].ID == orderID {
			order = &c.orders[i]
			break
		}
	}
	if order == nil {
		return nil, ErrUnknownOrder
	}
	if order.Canceled() {
		return nil, ErrOrderCanceled
	}

	s := model.NewSessionForOrder(order)
	c.sessions = append([]*model.Session{s}, c.sessions...)
	c.activeID = s.ID
	c.persistLocked()
	return s, nil
}

// SelectSession makes a session active and moves it to the front of the
// display order. Does not touch initialized or isLoading.
func (c *Controller) SelectSession(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	target := c.findLocked(id)
	if target == nil {
		return false
	}

	rest := make([]*model.Session, 0, len(c.sessions)-1)
	for _, s := range c.sessions {
		if s.ID != id {
			rest = append(rest, s)
		}
	}
	c.sessions = append([]*model.Session{target}, rest...)
	c.activeID = id
	c.persistLocked()
	return true
}

// Logout clears all in-memory session state, the user-scoped snapshot and
// the cached order list.
func (c *Controller) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Clear(c.userID()); err != nil {
			log.Printf("session logout: failed to clear snapshot: %v", err)
		}
	}
	c.sessions = nil
	c.activeID = ""
	c.counter = 0
	c.orders = nil
	c.user = nil
}

// =============================================================================
// BOOT
// =============================================================================

// BeginBoot starts the boot exchange for the active session if, and only if,
// it has never booted and is idle. Returns false otherwise, which makes the
// boot effect safe to evaluate on every transition: the exchange fires at
// most once per session no matter how often this is called.
func (c *Controller) BeginBoot() (string, api.ChatRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.findLocked(c.activeID)
	if s == nil || s.Initialized || s.IsLoading {
		return "", api.ChatRequest{}, false
	}

	s.IsLoading = true
	c.persistLocked()

	return s.ID, api.ChatRequest{
		ConversationID: "",
		Message:        "",
		UserID:         c.userID(),
		OrderID:        s.OrderID,
	}, true
}

// CompleteBoot merges the boot response. The session is marked initialized
// even when the exchange failed: a user who boots while offline gets a dead
// session rather than an infinite retry loop (fail-open).
func (c *Controller) CompleteBoot(sessionID string, resp *api.ChatResponse, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.findLocked(sessionID)
	if s == nil {
		return
	}

	s.IsLoading = false
	s.Initialized = true

	if err != nil || resp == nil {
		if err != nil {
			log.Printf("session boot: exchange failed: %v", err)
		}
		c.persistLocked()
		return
	}

	if s.ConversationID == "" {
		s.ConversationID = resp.ConversationID
	}
	s.CurrentAgent = resp.CurrentAgent
	if resp.Context != nil {
		s.Context = resp.Context
	}
	s.Events = api.NormalizeEvents(resp.Events)
	s.Agents = api.NormalizeAgents(resp.Agents)
	s.Guardrails = api.NormalizeGuardrails(resp.Guardrails)
	for _, mp := range resp.Messages {
		s.AppendMessage(model.NewAssistantMessage(mp.Content, mp.Agent, resp.TraceID))
	}
	if resp.SessionTitle != "" {
		s.Title = resp.SessionTitle
	}
	c.applyOrderStatusLocked(s)
	c.persistLocked()
}

// =============================================================================
// SEND
// =============================================================================

// BeginSend appends the user message optimistically, flips the loading gate
// and returns the request to put on the wire. The single-flight guard lives
// here, not in the widget layer: a second send while one is outstanding gets
// ErrExchangeInFlight regardless of which code path triggered it.
func (c *Controller) BeginSend(content string) (string, api.ChatRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.findLocked(c.activeID)
	if s == nil {
		return "", api.ChatRequest{}, ErrNoActiveSession
	}
	if !s.Initialized {
		return "", api.ChatRequest{}, ErrSessionNotBooted
	}
	if s.IsLoading {
		return "", api.ChatRequest{}, ErrExchangeInFlight
	}

	c.applyOrderStatusLocked(s)
	if s.OrderCanceled() {
		return "", api.ChatRequest{}, ErrOrderCanceled
	}

	s.AppendMessage(model.NewUserMessage(content))
	s.IsLoading = true
	c.persistLocked()

	return s.ID, api.ChatRequest{
		ConversationID: s.ConversationID,
		Message:        content,
		UserID:         c.userID(),
		OrderID:        s.OrderID,
	}, nil
}

// CompleteSend merges one exchange result into the session.
//
// Merge rules: conversationID is set only if previously empty; currentAgent,
// context and guardrails are replaced wholesale; agents are replaced only
// when the response carries any; events and assistant messages are appended.
// On failure all prior state is left untouched except the loading gate; the
// optimistic user message stays visible.
func (c *Controller) CompleteSend(sessionID string, resp *api.ChatResponse, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.findLocked(sessionID)
	if s == nil {
		return
	}

	s.IsLoading = false

	if err != nil || resp == nil {
		if err != nil {
			log.Printf("session send: exchange failed: %v", err)
		}
		c.persistLocked()
		return
	}

	if s.ConversationID == "" {
		s.ConversationID = resp.ConversationID
	}
	s.CurrentAgent = resp.CurrentAgent
	if resp.Context != nil {
		s.Context = resp.Context
	}
	if len(resp.Agents) > 0 {
		s.Agents = api.NormalizeAgents(resp.Agents)
	}
	s.Guardrails = api.NormalizeGuardrails(resp.Guardrails)
	s.Events = append(s.Events, api.NormalizeEvents(resp.Events)...)
	for _, mp := range resp.Messages {
		s.AppendMessage(model.NewAssistantMessage(mp.Content, mp.Agent, resp.TraceID))
	}
	if resp.SessionTitle != "" {
		s.Title = resp.SessionTitle
	}
	c.applyOrderStatusLocked(s)
	c.persistLocked()
}

// =============================================================================
// FEEDBACK
// =============================================================================

// BeginFeedback validates and records a rating on a message of the active
// session, then returns the request to submit. The rating is written before
// the network call and is not rolled back on failure; a later submission on
// the same message overwrites it.
func (c *Controller) BeginFeedback(messageID string, score float64) (api.FeedbackRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.findLocked(c.activeID)
	if s == nil {
		return api.FeedbackRequest{}, ErrNoActiveSession
	}
	msg := s.FindMessage(messageID)
	if msg == nil {
		return api.FeedbackRequest{}, ErrUnknownMessage
	}
	if msg.TraceID == "" {
		return api.FeedbackRequest{}, ErrNoTraceID
	}
	if !model.ValidRating(score) {
		return api.FeedbackRequest{}, ErrInvalidScore
	}

	msg.Rating = score
	c.persistLocked()

	return api.FeedbackRequest{TraceID: msg.TraceID, Score: score}, nil
}

// CompleteFeedback logs a failed submission. The recorded rating stands.
func (c *Controller) CompleteFeedback(err error) {
	if err != nil {
		log.Printf("session feedback: submission failed: %v", err)
	}
}

// =============================================================================
// ORDERS
// =============================================================================

// RefreshOrders reloads the user's orders into the cached list. Blocking; run
// it from a command goroutine. It deliberately touches only the order cache:
// session context maps are read lock-free by the render path, so pushing
// status changes into them is deferred to ApplyOrderStatuses on the event
// loop.
func (c *Controller) RefreshOrders(ctx context.Context) error {
	c.mu.Lock()
	userID := c.userID()
	c.mu.Unlock()

	payloads, err := c.backend.ListOrders(ctx, userID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.orders = make([]model.Order, 0, len(payloads))
	for _, p := range payloads {
		c.orders = append(c.orders, p.ToModel())
	}
	return nil
}

// ApplyOrderStatuses pushes the cached status of each backing order into its
// session's context snapshot. Must run on the event loop, in the same
// goroutine that renders, never from a command goroutine.
func (c *Controller) ApplyOrderStatuses() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range c.sessions {
		c.applyOrderStatusLocked(s)
	}
	c.persistLocked()
}

// CreateOrder creates a new order for the signed-in user and caches it.
func (c *Controller) CreateOrder(ctx context.Context) (*model.Order, error) {
	c.mu.Lock()
	userID := c.userID()
	c.mu.Unlock()

	payload, err := c.backend.CreateOrder(ctx, userID)
	if err != nil {
		return nil, err
	}

	order := payload.ToModel()
	c.mu.Lock()
	c.orders = append(c.orders, order)
	c.mu.Unlock()
	return &order, nil
}

// applyOrderStatusLocked merges the locally known status of a session's
// backing order into its context snapshot.
func (c *Controller) applyOrderStatusLocked(s *model.Session) {
	if s.OrderID == "" {
		return
	}
	for i := range c.orders {
		if c.orders[i].ID == s.OrderID {
			if s.Context == nil {
				s.Context = make(map[string]any)
			}
			if c.orders[i].Status != "" {
				s.Context["order_status"] = c.orders[i].Status
			}
			return
		}
	}
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// persistLocked writes the snapshot best-effort. A failed write is logged
// and never retried; the backend remains the source of truth.
func (c *Controller) persistLocked() {
	if c.store == nil || len(c.sessions) == 0 {
		return
	}
	snap := &storage.Snapshot{
		Sessions:        c.sessions,
		ActiveSessionID: c.activeID,
		SessionCounter:  c.counter,
	}
	if err := c.store.Save(c.userID(), snap); err != nil {
		log.Printf("session persist: snapshot write failed: %v", err)
	}
}
