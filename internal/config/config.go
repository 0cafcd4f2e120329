// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for ragchat.
//
// Configuration sources, in order of precedence:
//   - environment variables (RAGCHAT_API_URL, RAGCHAT_TIMEOUT_SECS)
//   - a .env file in the working directory
//   - ~/.ragchat/config.toml
//   - built-in defaults
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete ragchat configuration.
type Config struct {
	// API is the backend connection configuration
	API APIConfig `toml:"api"`

	// UI is the interface configuration
	UI UIConfig `toml:"ui"`
}

// APIConfig contains backend connection settings.
type APIConfig struct {
	// BaseURL is the base address of the RAG backend
	BaseURL string `toml:"base_url"`
	// TimeoutSecs bounds every request. Valid range 1-120, clamped.
	TimeoutSecs int `toml:"timeout_secs"`
}

// UIConfig contains interface settings.
type UIConfig struct {
	// RenderMarkdown enables markdown rendering of bot replies
	RenderMarkdown bool `toml:"render_markdown"`
	// ToastSecs is how long notifications stay on screen. Range 1-30, clamped.
	ToastSecs int `toml:"toast_secs"`
}

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:     "http://localhost:8000/api/v1",
			TimeoutSecs: 10,
		},
		UI: UIConfig{
			RenderMarkdown: true,
			ToastSecs:      4,
		},
	}
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSecs) * time.Second
}

// ToastDuration returns the notification display time as a duration.
func (c *Config) ToastDuration() time.Duration {
	return time.Duration(c.UI.ToastSecs) * time.Second
}

// =============================================================================
// LOADING
// =============================================================================

// DefaultPath returns the default config file location, ~/.ragchat/config.toml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".ragchat", "config.toml"), nil
}

// Load reads the configuration from the default path, applies environment
// overrides, and validates the result. A missing file is not an error.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadPath(path)
}

// LoadPath reads the configuration from an explicit path.
func LoadPath(path string) (*Config, error) {
	// Side-effect load of .env; absence is fine.
	_ = godotenv.Load()

	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variable overrides.
func (c *Config) applyEnv() {
	if v := os.Getenv("RAGCHAT_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("RAGCHAT_TIMEOUT_SECS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.API.TimeoutSecs = secs
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration and clamps out-of-range values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api.base_url: %q", c.API.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must be http or https, got %q", u.Scheme)
	}

	if c.API.TimeoutSecs < 1 {
		c.API.TimeoutSecs = 1
	} else if c.API.TimeoutSecs > 120 {
		c.API.TimeoutSecs = 120
	}

	if c.UI.ToastSecs < 1 {
		c.UI.ToastSecs = 1
	} else if c.UI.ToastSecs > 30 {
		c.UI.ToastSecs = 30
	}

	return nil
}

// Save writes the configuration to the given path in TOML format.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}
