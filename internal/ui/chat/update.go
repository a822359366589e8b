// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/skydesk-tui/internal/ui/components"
)

// Update handles all chat view messages.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case RestoredMsg:
		m.markHistoryAnimated()
		m.refreshViewport()
		return m, tea.Batch(m.maybeBootCmd(), m.refreshOrdersCmd())

	case BootResultMsg:
		m.ctrl.CompleteBoot(msg.SessionID, msg.Resp, msg.Err)
		var cmd tea.Cmd
		if msg.SessionID == m.ctrl.ActiveSessionID() {
			cmd = m.animateNewReply()
			m.maybeOpenSeatMap()
		} else {
			m.markHistoryAnimated()
		}
		m.refreshViewport()
		return m, cmd

	case SendResultMsg:
		m.ctrl.CompleteSend(msg.SessionID, msg.Resp, msg.Err)
		if msg.Err != nil {
			m.errText = "Send failed: " + msg.Err.Error()
		}
		var cmd tea.Cmd
		if msg.SessionID == m.ctrl.ActiveSessionID() {
			cmd = m.animateNewReply()
			m.maybeOpenSeatMap()
		} else {
			m.markHistoryAnimated()
		}
		m.refreshViewport()
		return m, cmd

	case FeedbackResultMsg:
		m.ctrl.CompleteFeedback(msg.Err)
		if msg.Err != nil {
			m.errText = "Feedback failed: " + msg.Err.Error()
		}
		return m, nil

	case OrdersRefreshedMsg:
		if msg.Err == nil {
			// Status pushdown happens here, on the event loop, because
			// the render path reads session context without a lock.
			m.ctrl.ApplyOrderStatuses()
		}
		if m.orders != nil {
			m.orders.SetOrders(m.ctrl.Orders())
		} else if msg.Err == nil && m.ctrl.ActiveSession() == nil && m.ctrl.OrderBound() {
			// Order-bound startup lands here with no session; the picker
			// is the only way to create one.
			m.orders = components.NewOrderPicker(m.theme, m.ctrl.Orders())
		}
		m.refreshViewport()
		return m, nil

	case OrderCreatedMsg:
		if msg.Err != nil {
			m.errText = "Order creation failed: " + msg.Err.Error()
		} else if m.orders != nil {
			m.orders.SetOrders(m.ctrl.Orders())
		}
		return m, nil

	case ConfigReloadedMsg:
		m.refreshViewport()
		return m, nil

	case TypewriterTickMsg:
		cmd := m.tw.Advance(msg)
		m.refreshViewport()
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) (*Model, tea.Cmd) {
	// Overlays capture keys first.
	if m.seatMap != nil {
		return m.handleSeatMapKey(msg)
	}
	if m.rating != nil {
		return m.handleRatingKey(msg)
	}
	if m.orders != nil {
		return m.handleOrdersKey(msg)
	}

	switch msg.String() {
	case "enter":
		content := strings.TrimSpace(m.input.Value())
		if content == "" {
			return m, nil
		}
		cmd := m.sendCmd(content)
		if cmd != nil {
			m.input.SetValue("")
			m.tw.Cancel()
			m.markHistoryAnimated()
			m.refreshViewport()
		}
		return m, cmd

	case "ctrl+n":
		if m.ctrl.OrderBound() {
			// Sessions start from an order in this variant.
			m.orders = components.NewOrderPicker(m.theme, m.ctrl.Orders())
			return m, m.refreshOrdersCmd()
		}
		if _, err := m.ctrl.CreateSession(); err != nil {
			m.errText = err.Error()
			return m, nil
		}
		m.switchedSession()
		return m, m.maybeBootCmd()

	case "tab":
		sessions := m.ctrl.Sessions()
		if len(sessions) > 1 {
			// Display order is MRU, so the second entry is the most
			// recently used other session.
			m.ctrl.SelectSession(sessions[1].ID)
			m.switchedSession()
		}
		return m, m.maybeBootCmd()

	case "ctrl+o":
		if m.ctrl.User() != nil || m.ctrl.OrderBound() {
			m.orders = components.NewOrderPicker(m.theme, m.ctrl.Orders())
			return m, m.refreshOrdersCmd()
		}
		return m, nil

	case "ctrl+r":
		s := m.ctrl.ActiveSession()
		if s != nil {
			if last := s.LastAssistantMessage(); last != nil && !last.IsSentinel() {
				m.rating = m.newRating(last.ID, last.Rating)
			}
		}
		return m, nil

	case "ctrl+l":
		if m.ctrl.User() != nil {
			m.ctrl.Logout()
			m.tw.Cancel()
			return m, func() tea.Msg { return LogoutMsg{} }
		}
		return m, nil

	case "pgup", "pgdown", "up", "down":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleSeatMapKey(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.seatMap.MoveUp()
	case "down", "j":
		m.seatMap.MoveDown()
	case "left", "h":
		m.seatMap.MoveLeft()
	case "right", "l":
		m.seatMap.MoveRight()
	case "enter":
		seat, ok := m.seatMap.Confirm()
		if !ok {
			return m, nil
		}
		s := m.ctrl.ActiveSession()
		if s != nil {
			m.seatChosen[s.ID] = true
		}
		m.seatMap = nil
		return m, m.sendCmd("I would like seat " + seat)
	case "esc":
		m.seatMap = nil
		m.refreshViewport()
	}
	return m, nil
}

func (m *Model) handleOrdersKey(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.orders.MoveUp()
	case "down", "j":
		m.orders.MoveDown()
	case "n":
		return m, m.createOrderCmd()
	case "enter":
		order, ok := m.orders.Pick()
		if !ok {
			m.errText = "Canceled orders cannot start a session"
			return m, nil
		}
		if _, err := m.ctrl.CreateSessionForOrder(order.ID); err != nil {
			m.errText = err.Error()
			return m, nil
		}
		m.orders = nil
		m.switchedSession()
		return m, m.maybeBootCmd()
	case "esc":
		m.orders = nil
		m.refreshViewport()
	}
	return m, nil
}

func (m *Model) handleRatingKey(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		m.rating.Decrease()
	case "right", "l":
		m.rating.Increase()
	case "enter":
		cmd := m.feedbackCmd(m.rating.MessageID, m.rating.Score)
		m.rating = nil
		m.refreshViewport()
		return m, cmd
	case "esc":
		m.rating = nil
		m.refreshViewport()
	}
	return m, nil
}

// =============================================================================
// STATE TRANSITIONS
// =============================================================================

// switchedSession resets per-session view state after the active session
// changed: the animation stops, overlays close and history renders complete.
func (m *Model) switchedSession() {
	m.tw.Cancel()
	m.seatMap = nil
	m.rating = nil
	m.orders = nil
	m.errText = ""
	m.markHistoryAnimated()
	m.refreshViewport()
	m.viewport.GotoBottom()
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	chatWidth := width - panelWidth - 2
	if chatWidth < 20 {
		chatWidth = width
	}
	// Header, tabs, input and status bar take five rows.
	vpHeight := height - 5
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(chatWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = chatWidth
		m.viewport.Height = vpHeight
	}
	m.input.Width = chatWidth - 4
	m.theme.SetSize(width, height)
	m.refreshViewport()
}
