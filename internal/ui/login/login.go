// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package login provides the sign-in view for the authenticated variant.
package login

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/skydesk-tui/internal/api"
	"github.com/jeranaias/skydesk-tui/internal/model"
	"github.com/jeranaias/skydesk-tui/internal/ui/styles"
)

const loginTimeout = 15 * time.Second

// ResultMsg delivers the login outcome to the root model.
type ResultMsg struct {
	User *model.User
	Err  error
}

// spinnerTickMsg advances the busy spinner while a login is in flight.
type spinnerTickMsg struct{}

// Model is the two-field sign-in form.
type Model struct {
	client *api.Client
	theme  *styles.Theme

	username textinput.Model
	password textinput.Model
	focused  int
	busy     bool
	tick     int
	errText  string

	width  int
	height int
}

// New creates the login form. A configured username pre-fills the first
// field.
func New(client *api.Client, theme *styles.Theme, username string) *Model {
	user := textinput.New()
	user.Placeholder = "Username"
	user.CharLimit = 64
	user.SetValue(username)
	user.Focus()

	pass := textinput.New()
	pass.Placeholder = "Password"
	pass.CharLimit = 128
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '*'

	return &Model{
		client:   client,
		theme:    theme,
		username: user,
		password: pass,
	}
}

// Init is a no-op; the form waits for input.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles form input and submission.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinnerTickMsg:
		if !m.busy {
			return m, nil
		}
		m.tick++
		return m, m.spinnerTick()

	case ResultMsg:
		m.busy = false
		if msg.Err != nil {
			if errors.Is(msg.Err, api.ErrInvalidCredentials) {
				m.errText = "Invalid username or password"
			} else {
				m.errText = "Login failed: " + msg.Err.Error()
			}
			m.password.SetValue("")
		}
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			m.toggleFocus()
			return m, nil
		case "enter":
			if m.focused == 0 {
				m.toggleFocus()
				return m, nil
			}
			return m, m.submit()
		}
	}

	var cmd tea.Cmd
	if m.focused == 0 {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) toggleFocus() {
	if m.focused == 0 {
		m.focused = 1
		m.username.Blur()
		m.password.Focus()
	} else {
		m.focused = 0
		m.password.Blur()
		m.username.Focus()
	}
}

func (m *Model) submit() tea.Cmd {
	username := strings.TrimSpace(m.username.Value())
	password := m.password.Value()
	if username == "" || password == "" {
		m.errText = "Username and password are required"
		return nil
	}

	m.busy = true
	m.errText = ""
	client := m.client
	call := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
		defer cancel()
		payload, err := client.Login(ctx, username, password)
		if err != nil {
			return ResultMsg{Err: err}
		}
		user := payload.ToModel()
		return ResultMsg{User: &user}
	}
	return tea.Batch(call, m.spinnerTick())
}

func (m *Model) spinnerTick() tea.Cmd {
	return tea.Tick(styles.LineSpinner.Duration(), func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

// View renders the centered sign-in box.
func (m *Model) View() string {
	var sb strings.Builder
	sb.WriteString(m.theme.LoginTitle.Render("skydesk"))
	sb.WriteString("\n")
	sb.WriteString(m.theme.RatingHint.Render("Airline customer support"))
	sb.WriteString("\n\n")
	sb.WriteString(m.username.View())
	sb.WriteString("\n")
	sb.WriteString(m.password.View())
	sb.WriteString("\n")

	if m.busy {
		sb.WriteString(m.theme.ThinkingText.Render(styles.LineSpinner.Frame(m.tick) + " Signing in..."))
	} else if m.errText != "" {
		sb.WriteString(m.theme.ErrorText.Render(m.errText))
	} else {
		sb.WriteString(m.theme.RatingHint.Render("enter submits"))
	}

	box := m.theme.LoginBox.Render(sb.String())
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
