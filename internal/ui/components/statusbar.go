// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/skydesk-tui/internal/ui/styles"
)

// Shortcut is one key hint in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar renders the bottom bar: connection state, current agent and
// key hints.
type StatusBar struct {
	theme *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{theme: theme}
}

// View renders the bar. user is the signed-in account label and may be
// empty in the anonymous variant; agent may be empty before the first
// exchange.
func (sb *StatusBar) View(user, agent string, busy bool, shortcuts []Shortcut, width int) string {
	var parts []string

	if user != "" {
		parts = append(parts, sb.theme.ShortcutDesc.Render("acct:")+" "+sb.theme.ShortcutKey.Render(user))
	}
	if agent != "" {
		parts = append(parts, sb.theme.ShortcutDesc.Render("agent:")+" "+sb.theme.ShortcutKey.Render(agent))
	}
	if busy {
		parts = append(parts, sb.theme.ThinkingText.Render("working..."))
	}
	for _, s := range shortcuts {
		parts = append(parts, sb.theme.ShortcutKey.Render(s.Key)+" "+sb.theme.ShortcutDesc.Render(s.Desc))
	}

	line := strings.Join(parts, "  ")
	return sb.theme.StatusBar.Width(width).Render(line)
}
