// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/skydesk-tui/internal/config"
	"github.com/jeranaias/skydesk-tui/internal/session"
	"github.com/jeranaias/skydesk-tui/internal/ui/components"
	"github.com/jeranaias/skydesk-tui/internal/ui/styles"
)

// exchangeTimeout bounds one chat exchange end to end. Agent runs can take
// a while; this is a backstop, not a latency target.
const exchangeTimeout = 90 * time.Second

// panelWidth is the fixed width of the agent ops side panel.
const panelWidth = 44

// Model is the chat view: session tabs, message history, input line, the
// agent ops panel and the seat map and rating overlays.
type Model struct {
	// Session lifecycle
	ctrl *session.Controller

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// UI components
	viewport  viewport.Model
	input     textinput.Model
	spinner   spinner.Model
	tabs      *components.Tabs
	panel     *components.Panel
	statusBar *components.StatusBar

	// Typewriter animation
	tw *Typewriter
	// animated holds message ids that already played (or skipped) the
	// reveal animation, so history never re-animates.
	animated map[string]bool

	// Overlays
	seatMap *components.SeatMap
	rating  *components.Rating
	orders  *components.OrderPicker
	// seatChosen tracks which sessions already picked a seat, keyed by
	// session id. A second seat map trigger in such a session is ignored.
	seatChosen map[string]bool

	// Markdown rendering for assistant replies
	renderer *glamour.TermRenderer

	// Transient error line under the input
	errText string

	ready bool
}

// New creates the chat view bound to a session controller.
func New(ctrl *session.Controller, theme *styles.Theme) *Model {
	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.CharLimit = 2000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: styles.DotsSpinner.Frames,
		FPS:    styles.DotsSpinner.Duration(),
	}
	sp.Style = theme.Spinner

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(72),
	)
	if err != nil {
		renderer = nil
	}

	return &Model{
		ctrl:       ctrl,
		theme:      theme,
		input:      input,
		spinner:    sp,
		tabs:       components.NewTabs(theme),
		panel:      components.NewPanel(theme, panelWidth),
		statusBar:  components.NewStatusBar(theme),
		tw:         &Typewriter{},
		animated:   make(map[string]bool),
		seatChosen: make(map[string]bool),
		renderer:   renderer,
	}
}

// Init restores sessions and starts the spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.restoreCmd(), m.spinner.Tick)
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m *Model) restoreCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exchangeTimeout)
		defer cancel()
		m.ctrl.Restore(ctx)
		return RestoredMsg{}
	}
}

// maybeBootCmd starts the boot exchange for the active session when it has
// never booted. Safe to call on every transition; the controller guarantees
// the exchange fires at most once per session.
func (m *Model) maybeBootCmd() tea.Cmd {
	sessionID, req, ok := m.ctrl.BeginBoot()
	if !ok {
		return nil
	}
	backend := m.ctrl.Backend()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exchangeTimeout)
		defer cancel()
		resp, err := backend.Chat(ctx, req)
		return BootResultMsg{SessionID: sessionID, Resp: resp, Err: err}
	}
}

func (m *Model) sendCmd(content string) tea.Cmd {
	sessionID, req, err := m.ctrl.BeginSend(content)
	if err != nil {
		m.errText = err.Error()
		return nil
	}
	m.errText = ""
	backend := m.ctrl.Backend()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exchangeTimeout)
		defer cancel()
		resp, respErr := backend.Chat(ctx, req)
		return SendResultMsg{SessionID: sessionID, Resp: resp, Err: respErr}
	}
}

func (m *Model) feedbackCmd(messageID string, score float64) tea.Cmd {
	req, err := m.ctrl.BeginFeedback(messageID, score)
	if err != nil {
		m.errText = err.Error()
		return nil
	}
	backend := m.ctrl.Backend()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exchangeTimeout)
		defer cancel()
		return FeedbackResultMsg{Err: backend.SubmitFeedback(ctx, req)}
	}
}

func (m *Model) createOrderCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exchangeTimeout)
		defer cancel()
		order, err := m.ctrl.CreateOrder(ctx)
		return OrderCreatedMsg{Order: order, Err: err}
	}
}

func (m *Model) refreshOrdersCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exchangeTimeout)
		defer cancel()
		return OrdersRefreshedMsg{Err: m.ctrl.RefreshOrders(ctx)}
	}
}

// =============================================================================
// ANIMATION WIRING
// =============================================================================

// markHistoryAnimated flags every current message as already revealed.
// Called after restore and after session switches so history renders
// complete instead of replaying.
func (m *Model) markHistoryAnimated() {
	for _, s := range m.ctrl.Sessions() {
		for _, msg := range s.Messages {
			m.animated[msg.ID] = true
		}
	}
}

// animateNewReply starts the typewriter for the newest assistant message of
// the active session, if it has not animated yet. Returns nil when the
// animation is disabled or nothing new arrived.
func (m *Model) animateNewReply() tea.Cmd {
	s := m.ctrl.ActiveSession()
	if s == nil {
		return nil
	}
	last := s.LastAssistantMessage()
	if last == nil || last.IsSentinel() || m.animated[last.ID] {
		return nil
	}
	m.animated[last.ID] = true
	if !config.Global().UI.Typewriter {
		return nil
	}
	return m.tw.Start(last.ID, last.Content)
}

// maybeOpenSeatMap opens the seat map overlay when the latest reply carries
// the trigger and this session has not picked a seat yet.
func (m *Model) maybeOpenSeatMap() {
	s := m.ctrl.ActiveSession()
	if s == nil || m.seatMap != nil {
		return
	}
	if m.seatChosen[s.ID] {
		return
	}
	if s.HasSeatMapTrigger() {
		m.seatMap = components.NewSeatMap(m.theme)
	}
}
