// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/skydesk-tui/internal/config"
)

func TestTokenizePreservesWhitespace(t *testing.T) {
	content := "Hello there,  how\nare you?"
	tokens := Tokenize(content)

	if strings.Join(tokens, "") != content {
		t.Errorf("tokens must reassemble exactly: %q", strings.Join(tokens, ""))
	}
	// Words and whitespace runs alternate.
	if tokens[0] != "Hello" || tokens[1] != " " || tokens[2] != "there," {
		t.Errorf("unexpected tokens: %q", tokens)
	}
	if tokens[3] != "  " {
		t.Errorf("whitespace run must stay one token, got %q", tokens[3])
	}
}

func TestTokenizeCJKPerRune(t *testing.T) {
	content := "こんにちは"
	tokens := Tokenize(content)
	if len(tokens) != 5 {
		t.Fatalf("expected 5 rune tokens, got %d: %q", len(tokens), tokens)
	}
	if strings.Join(tokens, "") != content {
		t.Error("rune tokens must reassemble exactly")
	}
}

func TestTokenizeEmpty(t *testing.T) {
	if tokens := Tokenize(""); tokens != nil {
		t.Errorf("empty content yields no tokens, got %q", tokens)
	}
}

func TestDelayForPunctuation(t *testing.T) {
	ui := config.Default().UI

	// Punctuation pauses stack on top of the base delay; whitespace tokens
	// get the plain base delay like any other token.
	tests := []struct {
		token string
		want  time.Duration
	}{
		{"word", 35 * time.Millisecond},
		{"done.", 355 * time.Millisecond},
		{"really?!", 355 * time.Millisecond},
		{"また。", 355 * time.Millisecond},
		{"first,", 175 * time.Millisecond},
		{"then;", 175 * time.Millisecond},
		{"  ", 35 * time.Millisecond},
		{"\n", 35 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := delayFor(tt.token, ui); got != tt.want {
			t.Errorf("delayFor(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestTypewriterRevealsMonotonically(t *testing.T) {
	config.SetGlobal(config.Default())
	defer config.ResetGlobalForTesting()

	tw := &Typewriter{}
	cmd := tw.Start("m1", "one two three")
	if cmd == nil {
		t.Fatal("Start must schedule a tick")
	}
	if !tw.Animating("m1") {
		t.Fatal("typewriter must be animating m1")
	}

	prev := ""
	for i := 0; i < 10 && tw.active; i++ {
		tw.Advance(TypewriterTickMsg{Gen: tw.gen})
		visible := tw.Visible()
		if tw.active && !strings.HasPrefix(visible, prev) {
			t.Fatalf("reveal went backwards: %q then %q", prev, visible)
		}
		prev = visible
	}
	if tw.active {
		t.Error("short message must finish within its token count")
	}
}

func TestTypewriterStaleTickIgnored(t *testing.T) {
	config.SetGlobal(config.Default())
	defer config.ResetGlobalForTesting()

	tw := &Typewriter{}
	tw.Start("m1", "hello world")
	stale := TypewriterTickMsg{Gen: tw.gen}

	tw.Cancel()
	if cmd := tw.Advance(stale); cmd != nil {
		t.Error("stale tick must not reschedule")
	}
	if tw.Animating("m1") {
		t.Error("canceled run must not stay active")
	}
}

func TestTypewriterRestartBumpsGeneration(t *testing.T) {
	config.SetGlobal(config.Default())
	defer config.ResetGlobalForTesting()

	tw := &Typewriter{}
	tw.Start("m1", "first message")
	oldGen := tw.gen
	tw.Start("m2", "second message")

	if cmd := tw.Advance(TypewriterTickMsg{Gen: oldGen}); cmd != nil {
		t.Error("tick from the replaced run must be dropped")
	}
	if !tw.Animating("m2") {
		t.Error("new run must be active")
	}
	if tw.Animating("m1") {
		t.Error("old message must not report animating")
	}
}
