// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Server.BaseURL != "http://localhost:8000" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if !cfg.UI.Typewriter {
		t.Error("typewriter should default on")
	}
	if cfg.UI.BaseDelayMs != 35 || cfg.UI.SentencePauseMs != 320 || cfg.UI.ClausePauseMs != 140 {
		t.Errorf("animation defaults wrong: %+v", cfg.UI)
	}
}

func TestLoadFromPathPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
base_url = "http://gateway.internal:9000"

[auth]
enabled = true
username = "Amy"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Server.BaseURL != "http://gateway.internal:9000" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if !cfg.Auth.Enabled || cfg.Auth.Username != "Amy" {
		t.Errorf("auth section not loaded: %+v", cfg.Auth)
	}
	// Unset sections keep defaults.
	if cfg.Server.TimeoutSecs != 60 {
		t.Errorf("TimeoutSecs = %d, want default 60", cfg.Server.TimeoutSecs)
	}
	if cfg.Sessions.RestoreLimit != 20 {
		t.Errorf("RestoreLimit = %d, want default 20", cfg.Sessions.RestoreLimit)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad url", func(c *Config) { c.Server.BaseURL = "not a url" }},
		{"zero timeout", func(c *Config) { c.Server.TimeoutSecs = 0 }},
		{"negative delay", func(c *Config) { c.UI.BaseDelayMs = -1 }},
		{"unknown theme", func(c *Config) { c.UI.Theme = "solarized" }},
		{"zero restore limit", func(c *Config) { c.Sessions.RestoreLimit = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SKYDESK_SERVER_URL", "http://override:1234")
	t.Setenv("SKYDESK_AUTH", "true")
	t.Setenv("SKYDESK_NO_TYPEWRITER", "1")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.BaseURL != "http://override:1234" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if !cfg.Auth.Enabled {
		t.Error("SKYDESK_AUTH must enable auth")
	}
	if cfg.UI.Typewriter {
		t.Error("SKYDESK_NO_TYPEWRITER must disable animation")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Server.BaseURL = "http://example.test:8000"
	cfg.Sessions.OrderBound = true
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if loaded.Server.BaseURL != cfg.Server.BaseURL {
		t.Errorf("BaseURL = %q", loaded.Server.BaseURL)
	}
	if !loaded.Sessions.OrderBound {
		t.Error("OrderBound lost in round trip")
	}
}

func TestSetGlobal(t *testing.T) {
	ResetGlobalForTesting()
	t.Cleanup(ResetGlobalForTesting)

	cfg := Default()
	cfg.UI.Theme = "light"
	SetGlobal(cfg)

	if Global().UI.Theme != "light" {
		t.Error("SetGlobal did not take effect")
	}
}
