// skydesk TUI - A terminal client for airline customer support chat.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/jeranaias/skydesk-tui/internal/api"
	"github.com/jeranaias/skydesk-tui/internal/config"
	"github.com/jeranaias/skydesk-tui/internal/session"
	"github.com/jeranaias/skydesk-tui/internal/storage"
	"github.com/jeranaias/skydesk-tui/internal/ui/chat"
	"github.com/jeranaias/skydesk-tui/internal/ui/login"
	"github.com/jeranaias/skydesk-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	// .env is optional and loses to real environment variables.
	_ = godotenv.Load()

	var (
		showVersion = flag.Bool("version", false, "print version and exit")
		serverURL   = flag.String("server", "", "API gateway URL (overrides config)")
		authFlag    = flag.Bool("auth", false, "enable the login screen")
		orderBound  = flag.Bool("order-bound", false, "bind sessions to flight orders")
		configPath  = flag.String("config", "", "path to config file")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("skydesk %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "skydesk requires an interactive terminal")
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *serverURL != "" {
		cfg.Server.BaseURL = *serverURL
	}
	if *authFlag {
		cfg.Auth.Enabled = true
	}
	if *orderBound {
		cfg.Sessions.OrderBound = true
	}
	config.SetGlobal(cfg)

	m, err := newApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer m.close()

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running skydesk: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// appState represents the current application state.
type appState int

const (
	stateLogin appState = iota
	stateChat
)

// appModel is the root Bubble Tea model. It owns the login/chat state switch
// and fans messages out to the active view.
type appModel struct {
	state appState

	client *api.Client
	ctrl   *session.Controller
	theme  *styles.Theme

	login *login.Model
	chat  *chat.Model

	watcher *config.Watcher

	width  int
	height int
}

func newApp(cfg *config.Config) (*appModel, error) {
	client := api.New(cfg.Server.BaseURL).
		WithTimeout(time.Duration(cfg.Server.TimeoutSecs) * time.Second)

	var store *storage.SnapshotStore
	var err error
	if cfg.Storage.Dir != "" {
		store, err = storage.NewSnapshotStoreWithDir(cfg.Storage.Dir)
	} else {
		store, err = storage.NewSnapshotStore()
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot store: %w", err)
	}

	ctrl := session.NewController(client, store, session.Options{
		RestoreLimit: cfg.Sessions.RestoreLimit,
		OrderBound:   cfg.Sessions.OrderBound,
	})

	theme := styles.NewTheme()

	m := &appModel{
		client: client,
		ctrl:   ctrl,
		theme:  theme,
	}

	if cfg.Auth.Enabled {
		m.state = stateLogin
		m.login = login.New(client, theme, cfg.Auth.Username)
	} else {
		m.state = stateChat
		m.chat = chat.New(ctrl, theme)
	}

	// Config hot reload is best-effort; a watch failure never blocks
	// startup.
	if watcher, werr := config.NewWatcher(); werr == nil {
		m.watcher = watcher
	}

	return m, nil
}

func (m *appModel) close() {
	if m.watcher != nil {
		m.watcher.Close()
	}
}

// Init starts the active view and the config reload listener.
func (m *appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.watchConfigCmd()}
	if m.state == stateLogin {
		cmds = append(cmds, m.login.Init())
	} else {
		cmds = append(cmds, m.chat.Init())
	}
	return tea.Batch(cmds...)
}

// watchConfigCmd waits for one config reload notification.
func (m *appModel) watchConfigCmd() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	ch := m.watcher.Changed()
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return chat.ConfigReloadedMsg{}
	}
}

// Update routes messages to the active view.
func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case chat.ConfigReloadedMsg:
		// Forward to the chat view and re-arm the listener.
		if m.state == stateChat {
			var cmd tea.Cmd
			m.chat, cmd = m.chat.Update(msg)
			return m, tea.Batch(cmd, m.watchConfigCmd())
		}
		return m, m.watchConfigCmd()

	case login.ResultMsg:
		if m.state == stateLogin {
			var cmd tea.Cmd
			m.login, cmd = m.login.Update(msg)
			if msg.Err == nil && msg.User != nil {
				m.ctrl.SetUser(msg.User)
				m.chat = chat.New(m.ctrl, m.theme)
				m.state = stateChat
				cmds := []tea.Cmd{m.chat.Init()}
				if m.width > 0 {
					cmds = append(cmds, func() tea.Msg {
						return tea.WindowSizeMsg{Width: m.width, Height: m.height}
					})
				}
				return m, tea.Batch(cmds...)
			}
			return m, cmd
		}
		return m, nil

	case chat.LogoutMsg:
		cfg := config.Global()
		m.login = login.New(m.client, m.theme, cfg.Auth.Username)
		m.chat = nil
		m.state = stateLogin
		return m, m.login.Init()
	}

	var cmd tea.Cmd
	if m.state == stateLogin {
		m.login, cmd = m.login.Update(msg)
	} else {
		m.chat, cmd = m.chat.Update(msg)
	}
	return m, cmd
}

// View renders the active view.
func (m *appModel) View() string {
	if m.state == stateLogin {
		return m.login.View()
	}
	return m.chat.View()
}
