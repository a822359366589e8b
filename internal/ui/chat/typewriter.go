// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"regexp"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/skydesk-tui/internal/config"
)

// =============================================================================
// TOKENIZATION
// =============================================================================

// cjkRe detects hiragana, katakana and CJK ideographs. Such text has no
// word-boundary whitespace, so it animates per rune instead of per word.
var cjkRe = regexp.MustCompile(`[\x{3040}-\x{30ff}\x{4e00}-\x{9fff}]`)

// sentenceEndRe matches sentence-ending punctuation at the end of a token.
var sentenceEndRe = regexp.MustCompile(`[.!?\x{3002}\x{ff01}\x{ff1f}]+$`)

// clauseEndRe matches clause punctuation at the end of a token.
var clauseEndRe = regexp.MustCompile(`[\x{ff0c},;\x{ff1b}\x{3001}]+$`)

// Tokenize splits content into reveal units. Whitespace runs are kept as
// their own tokens so the reassembled text is byte-identical to the input.
func Tokenize(content string) []string {
	if content == "" {
		return nil
	}
	if cjkRe.MatchString(content) {
		runes := []rune(content)
		tokens := make([]string, len(runes))
		for i, r := range runes {
			tokens[i] = string(r)
		}
		return tokens
	}

	var tokens []string
	var current strings.Builder
	inSpace := false
	for _, r := range content {
		isSpace := r == ' ' || r == '\t' || r == '\n' || r == '\r'
		if current.Len() > 0 && isSpace != inSpace {
			tokens = append(tokens, current.String())
			current.Reset()
		}
		inSpace = isSpace
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// delayFor returns the pause after revealing a token. Every token waits the
// base delay; sentence punctuation adds the long pause on top, clause
// punctuation the shorter one.
func delayFor(token string, ui config.UIConfig) time.Duration {
	base := time.Duration(ui.BaseDelayMs) * time.Millisecond
	trimmed := strings.TrimSpace(token)
	switch {
	case trimmed == "":
		return base
	case sentenceEndRe.MatchString(trimmed):
		return base + time.Duration(ui.SentencePauseMs)*time.Millisecond
	case clauseEndRe.MatchString(trimmed):
		return base + time.Duration(ui.ClausePauseMs)*time.Millisecond
	default:
		return base
	}
}

// =============================================================================
// TYPEWRITER STATE MACHINE
// =============================================================================

// TypewriterTickMsg advances the reveal animation. Gen guards against stale
// ticks from a canceled run.
type TypewriterTickMsg struct {
	Gen int
}

// Typewriter reveals one message token by token. Only the newest assistant
// reply animates; everything else renders complete.
//
// A generation counter makes cancellation airtight: switching sessions or
// starting a new animation bumps the generation, and any tick still in
// flight for the old run is dropped on arrival.
type Typewriter struct {
	gen       int
	messageID string
	tokens    []string
	index     int
	active    bool
}

// Start begins animating a message. Any previous run is abandoned.
func (tw *Typewriter) Start(messageID, content string) tea.Cmd {
	tw.gen++
	tw.messageID = messageID
	tw.tokens = Tokenize(content)
	tw.index = 0
	tw.active = len(tw.tokens) > 0
	if !tw.active {
		return nil
	}
	return tw.tick(0)
}

// Cancel abandons the current run. The message renders complete afterward.
func (tw *Typewriter) Cancel() {
	tw.gen++
	tw.active = false
	tw.messageID = ""
	tw.tokens = nil
}

// Advance reveals the next token and returns the command for the following
// tick, or nil when the run is finished or the tick is stale.
func (tw *Typewriter) Advance(msg TypewriterTickMsg) tea.Cmd {
	if !tw.active || msg.Gen != tw.gen {
		return nil
	}

	delay := delayFor(tw.tokens[tw.index], config.Global().UI)
	tw.index++
	if tw.index >= len(tw.tokens) {
		tw.active = false
		return nil
	}
	return tw.tick(delay)
}

// Animating reports whether a message is mid-reveal.
func (tw *Typewriter) Animating(messageID string) bool {
	return tw.active && tw.messageID == messageID
}

// Visible returns the revealed prefix for the animating message.
func (tw *Typewriter) Visible() string {
	if !tw.active {
		return ""
	}
	return strings.Join(tw.tokens[:tw.index], "")
}

func (tw *Typewriter) tick(delay time.Duration) tea.Cmd {
	gen := tw.gen
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return TypewriterTickMsg{Gen: gen}
	})
}
