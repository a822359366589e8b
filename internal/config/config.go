// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for skydesk.
//
// Configuration is TOML with sensible defaults and environment variable
// overrides. File location: ~/.skydesk/config.toml.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/skydesk-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete skydesk configuration.
type Config struct {
	Version string `toml:"version"`

	// Server is the API gateway connection.
	Server ServerConfig `toml:"server"`

	// Auth selects the authenticated variant (login screen, per-user
	// session scoping, order binding).
	Auth AuthConfig `toml:"auth"`

	// UI holds rendering and animation settings.
	UI UIConfig `toml:"ui"`

	// Storage holds local snapshot settings.
	Storage StorageConfig `toml:"storage"`

	// Sessions holds session lifecycle settings.
	Sessions SessionsConfig `toml:"sessions"`
}

// ServerConfig contains API gateway configuration.
type ServerConfig struct {
	// BaseURL is the gateway root, e.g. "http://localhost:8000".
	BaseURL string `toml:"base_url"`
	// TimeoutSecs is the per-request timeout. Agent runs can be slow;
	// the default is deliberately generous.
	TimeoutSecs int `toml:"timeout_secs"`
}

// AuthConfig contains login configuration.
type AuthConfig struct {
	// Enabled turns on the login screen and per-user scoping.
	Enabled bool `toml:"enabled"`
	// Username pre-fills the login form.
	Username string `toml:"username"`
}

// UIConfig contains rendering configuration.
type UIConfig struct {
	// Typewriter enables the reveal animation for new assistant replies.
	Typewriter bool `toml:"typewriter"`
	// BaseDelayMs is the per-token reveal delay.
	BaseDelayMs int `toml:"base_delay_ms"`
	// SentencePauseMs is the extra pause after sentence-ending punctuation.
	SentencePauseMs int `toml:"sentence_pause_ms"`
	// ClausePauseMs is the extra pause after clause punctuation.
	ClausePauseMs int `toml:"clause_pause_ms"`
	// Theme selects the color theme: "dark" or "light".
	Theme string `toml:"theme"`
}

// StorageConfig contains local snapshot configuration.
type StorageConfig struct {
	// Dir is the snapshot directory (empty = ~/.skydesk).
	Dir string `toml:"dir"`
}

// SessionsConfig contains session lifecycle configuration.
type SessionsConfig struct {
	// RestoreLimit bounds the server-side session listing at startup.
	RestoreLimit int `toml:"restore_limit"`
	// OrderBound selects the order-bound variant: sessions are created
	// against a flight order instead of freely.
	OrderBound bool `toml:"order_bound"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Version: "1.0",
		Server: ServerConfig{
			BaseURL:     "http://localhost:8000",
			TimeoutSecs: 60,
		},
		Auth: AuthConfig{
			Enabled: false,
		},
		UI: UIConfig{
			Typewriter:      true,
			BaseDelayMs:     35,
			SentencePauseMs: 320,
			ClausePauseMs:   140,
			Theme:           "dark",
		},
		Storage: StorageConfig{
			Dir: "",
		},
		Sessions: SessionsConfig{
			RestoreLimit: 20,
			OrderBound:   false,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the skydesk configuration directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".skydesk"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load loads configuration from the config file, falling back to defaults
// when the file is absent. Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file on top of cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation. Used by tests and the --config flag.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the default TOML path atomically.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a specific path.
func SaveTOML(cfg *Config, path string) error {
	var sb strings.Builder
	sb.WriteString("# skydesk configuration\n\n")
	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(path, []byte(sb.String()), 0600)
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server.base_url must be a full URL, got %q", c.Server.BaseURL)
	}
	if c.Server.TimeoutSecs <= 0 {
		return fmt.Errorf("server.timeout_secs must be positive, got %d", c.Server.TimeoutSecs)
	}
	if c.UI.BaseDelayMs < 0 || c.UI.SentencePauseMs < 0 || c.UI.ClausePauseMs < 0 {
		return fmt.Errorf("ui delays must be non-negative")
	}
	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		return fmt.Errorf("ui.theme must be \"dark\" or \"light\", got %q", c.UI.Theme)
	}
	if c.Sessions.RestoreLimit <= 0 {
		return fmt.Errorf("sessions.restore_limit must be positive, got %d", c.Sessions.RestoreLimit)
	}
	return nil
}

// SetDefaults fills zero values left by a partial config file.
func (c *Config) SetDefaults() {
	def := Default()
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = def.Server.BaseURL
	}
	if c.Server.TimeoutSecs == 0 {
		c.Server.TimeoutSecs = def.Server.TimeoutSecs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
	if c.UI.BaseDelayMs == 0 {
		c.UI.BaseDelayMs = def.UI.BaseDelayMs
	}
	if c.UI.SentencePauseMs == 0 {
		c.UI.SentencePauseMs = def.UI.SentencePauseMs
	}
	if c.UI.ClausePauseMs == 0 {
		c.UI.ClausePauseMs = def.UI.ClausePauseMs
	}
	if c.Sessions.RestoreLimit == 0 {
		c.Sessions.RestoreLimit = def.Sessions.RestoreLimit
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies SKYDESK_* environment variables on top of the
// loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SKYDESK_SERVER_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("SKYDESK_TIMEOUT_SECS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.Server.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("SKYDESK_AUTH"); v != "" {
		c.Auth.Enabled = envBool(v)
	}
	if v := os.Getenv("SKYDESK_ORDER_BOUND"); v != "" {
		c.Sessions.OrderBound = envBool(v)
	}
	if v := os.Getenv("SKYDESK_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("SKYDESK_STORAGE_DIR"); v != "" {
		c.Storage.Dir = v
	}
	if v := os.Getenv("SKYDESK_NO_TYPEWRITER"); v != "" {
		c.UI.Typewriter = !envBool(v)
	}
}

func envBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
