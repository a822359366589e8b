// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/skydesk-tui/internal/model"
	"github.com/jeranaias/skydesk-tui/internal/ui/components"
)

// View renders the chat layout: tabs, history + panel side by side, input
// and status bar.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	s := m.ctrl.ActiveSession()

	var sb strings.Builder
	sb.WriteString(m.theme.HeaderTitle.Render("skydesk"))
	sb.WriteString("  ")
	sb.WriteString(m.tabs.View(m.ctrl.Sessions(), m.ctrl.ActiveSessionID(), m.width-12))
	sb.WriteString("\n")

	var body string
	if m.seatMap != nil {
		body = m.seatMap.View()
	} else if m.orders != nil {
		body = m.orders.View()
	} else {
		body = m.viewport.View()
	}
	if m.width-panelWidth-2 >= 20 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, " ", m.panel.View(s))
	}
	sb.WriteString(body)
	sb.WriteString("\n")

	if m.rating != nil {
		sb.WriteString(m.rating.View())
		sb.WriteString("\n")
	}

	sb.WriteString(m.theme.InputContainer.Width(m.width - 2).Render(
		m.theme.InputPrompt.Render("> ") + m.input.View()))
	sb.WriteString("\n")

	if m.errText != "" {
		sb.WriteString(m.theme.ErrorText.Render(m.errText))
		sb.WriteString("\n")
	}

	agent := ""
	busy := false
	if s != nil {
		agent = s.CurrentAgent
		busy = s.IsLoading
	}
	var shortcuts []components.Shortcut
	if m.ctrl.OrderBound() {
		shortcuts = append(shortcuts, components.Shortcut{Key: "^O", Desc: "orders"})
	} else {
		shortcuts = append(shortcuts, components.Shortcut{Key: "^N", Desc: "new"})
	}
	shortcuts = append(shortcuts,
		components.Shortcut{Key: "tab", Desc: "switch"},
		components.Shortcut{Key: "^R", Desc: "rate"})
	account := ""
	if user := m.ctrl.User(); user != nil {
		account = user.AccountNumber
		if account == "" {
			account = user.Username
		}
		if !m.ctrl.OrderBound() {
			shortcuts = append(shortcuts, components.Shortcut{Key: "^O", Desc: "orders"})
		}
		shortcuts = append(shortcuts, components.Shortcut{Key: "^L", Desc: "logout"})
	}
	sb.WriteString(m.statusBar.View(account, agent, busy, shortcuts, m.width))

	return sb.String()
}

// =============================================================================
// MESSAGE RENDERING
// =============================================================================

// refreshViewport re-renders the message history into the viewport and
// follows the bottom while an animation or exchange is running.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderMessages())
	if atBottom || m.tw.active {
		m.viewport.GotoBottom()
	}
}

func (m *Model) renderMessages() string {
	s := m.ctrl.ActiveSession()
	if s == nil {
		hint := "No session. Press ctrl+n to start one."
		if m.ctrl.OrderBound() {
			hint = "No session. Press ctrl+o to pick an order."
		}
		return m.theme.ThinkingText.Render(hint)
	}

	width := m.viewport.Width - 4
	var sb strings.Builder

	for _, msg := range s.VisibleMessages() {
		sb.WriteString(m.renderMessage(msg, width))
		sb.WriteString("\n\n")
	}

	if s.IsLoading {
		sb.WriteString(m.theme.Spinner.Render(m.spinner.View()))
		sb.WriteString(m.theme.ThinkingText.Render(" agent is working"))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m *Model) renderMessage(msg *model.Message, width int) string {
	content := msg.Content
	if m.tw.Animating(msg.ID) {
		content = m.tw.Visible()
	}

	if msg.Role == model.RoleUser {
		bubble := m.theme.UserBubble.MaxWidth(width).Render(content)
		return lipgloss.PlaceHorizontal(m.viewport.Width, lipgloss.Right, bubble)
	}

	label := msg.Role.DisplayName()
	if msg.Agent != "" {
		label = msg.Agent
	}
	header := m.theme.AgentLabel.Render(label) + " " +
		m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))

	// Markdown only for settled messages; mid-animation partial markdown
	// flickers badly.
	if m.renderer != nil && !m.tw.Animating(msg.ID) {
		if rendered, err := m.renderer.Render(content); err == nil {
			content = strings.TrimRight(rendered, "\n")
		}
	}
	bubble := m.theme.AssistantBubble.MaxWidth(width).Render(content)

	out := header + "\n" + bubble
	if msg.Rated() {
		out += "\n" + m.theme.RatingStars.Render(components.RenderStars(msg.Rating)) +
			m.theme.RatingHint.Render("  rated")
	}
	return out
}

// newRating builds the rating overlay for a message.
func (m *Model) newRating(messageID string, prior float64) *components.Rating {
	return components.NewRating(m.theme, messageID, prior)
}
