// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jeranaias/skydesk-tui/internal/model"
	"github.com/jeranaias/skydesk-tui/internal/ui/styles"
	"github.com/jeranaias/skydesk-tui/internal/util"
)

// maxTraceEvents caps how many trace entries the panel renders; older
// entries scroll out of view.
const maxTraceEvents = 12

var titleCaser = cases.Title(language.English)

// =============================================================================
// AGENT OPS PANEL
// =============================================================================

// Panel renders the operational side panel: the agent roster, guardrail
// results, the conversation context snapshot and the event trace.
type Panel struct {
	theme *styles.Theme
	width int
}

// NewPanel creates a panel.
func NewPanel(theme *styles.Theme, width int) *Panel {
	return &Panel{theme: theme, width: width}
}

// SetWidth updates the panel width.
func (p *Panel) SetWidth(width int) {
	p.width = width
}

// View renders the full panel for a session.
func (p *Panel) View(s *model.Session) string {
	if s == nil {
		return p.theme.PanelBox.Width(p.width).Render(
			p.theme.PanelLabel.Render("No session"))
	}

	sections := []string{
		p.renderAgents(s),
		p.renderGuardrails(s),
		p.renderContext(s),
		p.renderTrace(s),
	}
	body := strings.Join(sections, "\n\n")
	return p.theme.PanelBox.Width(p.width).Render(body)
}

// =============================================================================
// SECTIONS
// =============================================================================

func (p *Panel) renderAgents(s *model.Session) string {
	var sb strings.Builder
	sb.WriteString(p.theme.PanelTitle.Render("Agents"))
	sb.WriteString("\n")

	if len(s.Agents) == 0 {
		sb.WriteString(p.theme.PanelLabel.Render("  (none yet)"))
		return sb.String()
	}

	for _, agent := range s.Agents {
		if agent.Name == s.CurrentAgent {
			sb.WriteString(p.theme.AgentActive.Render("> " + agent.Name))
		} else {
			sb.WriteString(p.theme.AgentInactive.Render("  " + agent.Name))
		}
		sb.WriteString("\n")
		if agent.Description != "" {
			desc := util.TruncateRunes(agent.Description, p.width-6)
			sb.WriteString(p.theme.PanelLabel.Render("    " + desc))
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (p *Panel) renderGuardrails(s *model.Session) string {
	var sb strings.Builder
	sb.WriteString(p.theme.PanelTitle.Render("Guardrails"))
	sb.WriteString("\n")

	if len(s.Guardrails) == 0 {
		sb.WriteString(p.theme.PanelLabel.Render("  (no checks yet)"))
		return sb.String()
	}

	for _, check := range s.Guardrails {
		if check.Passed {
			sb.WriteString(p.theme.GuardrailPass.Render("  [OK] " + check.Name))
		} else {
			sb.WriteString(p.theme.GuardrailFail.Render("  [X]  " + check.Name))
		}
		sb.WriteString("\n")
		if !check.Passed && check.Reasoning != "" {
			reason := util.TruncateRunes(check.Reasoning, p.width-8)
			sb.WriteString(p.theme.PanelLabel.Render("       " + reason))
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (p *Panel) renderContext(s *model.Session) string {
	var sb strings.Builder
	sb.WriteString(p.theme.PanelTitle.Render("Context"))
	sb.WriteString("\n")

	if len(s.Context) == 0 {
		sb.WriteString(p.theme.PanelLabel.Render("  (empty)"))
		return sb.String()
	}

	keys := make([]string, 0, len(s.Context))
	for k := range s.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		label := ContextLabel(key)
		value := contextValue(s.Context[key])
		sb.WriteString("  ")
		sb.WriteString(p.theme.PanelLabel.Render(label + ": "))
		sb.WriteString(p.theme.PanelValue.Render(value))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (p *Panel) renderTrace(s *model.Session) string {
	var sb strings.Builder
	sb.WriteString(p.theme.PanelTitle.Render("Runner Output"))
	sb.WriteString("\n")

	events := s.Events
	if len(events) == 0 {
		sb.WriteString(p.theme.PanelLabel.Render("  (no events yet)"))
		return sb.String()
	}
	if len(events) > maxTraceEvents {
		events = events[len(events)-maxTraceEvents:]
	}

	for _, ev := range events {
		sb.WriteString("  ")
		sb.WriteString(p.theme.EventType.Render(string(ev.Type)))
		if ev.Agent != "" {
			sb.WriteString(" ")
			sb.WriteString(p.theme.EventAgent.Render(ev.Agent))
		}
		sb.WriteString("\n")
		if ev.Content != "" {
			content := util.TruncateRunes(util.CollapseWhitespace(ev.Content), p.width-6)
			sb.WriteString(p.theme.PanelValue.Render("    " + content))
			sb.WriteString("\n")
		}
		if len(ev.Metadata) > 0 {
			for _, line := range strings.Split(HighlightJSON(ev.Metadata), "\n") {
				sb.WriteString("    " + line + "\n")
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// =============================================================================
// HELPERS
// =============================================================================

// ContextLabel turns a snake_case context key into a display label,
// e.g. "confirmation_number" becomes "Confirmation Number".
func ContextLabel(key string) string {
	return titleCaser.String(strings.ReplaceAll(key, "_", " "))
}

func contextValue(v any) string {
	switch val := v.(type) {
	case string:
		if val == "" {
			return "-"
		}
		return val
	case nil:
		return "-"
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return "-"
		}
		return string(data)
	}
}

// HighlightJSON renders event metadata as syntax-highlighted JSON for the
// trace section.
func HighlightJSON(metadata map[string]any) string {
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return ""
	}

	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)
	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, string(data))
	if err != nil {
		return string(data)
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return string(data)
	}
	return strings.TrimRight(buf.String(), "\n")
}
