// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/skydesk-tui/internal/model"
	"github.com/jeranaias/skydesk-tui/internal/ui/styles"
	"github.com/jeranaias/skydesk-tui/internal/util"
)

// maxTabTitle caps tab width so a long server-assigned title cannot eat
// the whole header row.
const maxTabTitle = 18

// Tabs renders the session strip across the top of the chat view. Sessions
// arrive in display (MRU) order; the active one is highlighted.
type Tabs struct {
	theme *styles.Theme
}

// NewTabs creates a tab strip.
func NewTabs(theme *styles.Theme) *Tabs {
	return &Tabs{theme: theme}
}

// View renders the strip. The trailing "+ new" cell is a hint for the
// new-session keybinding, not a clickable control.
func (t *Tabs) View(sessions []*model.Session, activeID string, width int) string {
	var cells []string
	used := 0

	for _, s := range sessions {
		title := util.TruncateRunes(s.Title, maxTabTitle)
		var cell string
		if s.ID == activeID {
			cell = t.theme.TabActive.Render(title)
		} else {
			cell = t.theme.TabInactive.Render(title)
		}
		// Leave room for the new-session hint.
		if used+len(title)+8 > width && width > 0 {
			cells = append(cells, t.theme.TabInactive.Render("..."))
			break
		}
		cells = append(cells, cell)
		used += len(title) + 2
	}

	cells = append(cells, t.theme.TabNew.Render("+ new"))
	return strings.Join(cells, " ")
}
