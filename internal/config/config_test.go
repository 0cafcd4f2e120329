// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.API.BaseURL == "" {
		t.Error("Expected non-empty default base URL")
	}
	if cfg.Timeout() != 10*time.Second {
		t.Errorf("Timeout() = %v, want 10s", cfg.Timeout())
	}
	if !cfg.UI.RenderMarkdown {
		t.Error("Expected markdown rendering on by default")
	}
}

func TestLoadPath_MissingFile(t *testing.T) {
	cfg, err := LoadPath(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadPath failed: %v", err)
	}
	if cfg.API.BaseURL != Default().API.BaseURL {
		t.Error("Missing file should yield defaults")
	}
}

func TestLoadPath_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[api]
base_url = "https://rag.example.com/api/v1"
timeout_secs = 30

[ui]
render_markdown = false
toast_secs = 6
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := LoadPath(path)
	if err != nil {
		t.Fatalf("LoadPath failed: %v", err)
	}
	if cfg.API.BaseURL != "https://rag.example.com/api/v1" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSecs != 30 {
		t.Errorf("TimeoutSecs = %d, want 30", cfg.API.TimeoutSecs)
	}
	if cfg.UI.RenderMarkdown {
		t.Error("RenderMarkdown should be false")
	}
}

func TestLoadPath_EnvOverride(t *testing.T) {
	t.Setenv("RAGCHAT_API_URL", "http://override:9000")
	t.Setenv("RAGCHAT_TIMEOUT_SECS", "20")

	cfg, err := LoadPath(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadPath failed: %v", err)
	}
	if cfg.API.BaseURL != "http://override:9000" {
		t.Errorf("BaseURL = %q, want env override", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSecs != 20 {
		t.Errorf("TimeoutSecs = %d, want 20", cfg.API.TimeoutSecs)
	}
}

func TestValidate_Clamping(t *testing.T) {
	cfg := Default()
	cfg.API.TimeoutSecs = 0
	cfg.UI.ToastSecs = 500

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if cfg.API.TimeoutSecs != 1 {
		t.Errorf("TimeoutSecs = %d, want clamped to 1", cfg.API.TimeoutSecs)
	}
	if cfg.UI.ToastSecs != 30 {
		t.Errorf("ToastSecs = %d, want clamped to 30", cfg.UI.ToastSecs)
	}
}

func TestValidate_BadURL(t *testing.T) {
	tests := []string{"", "not a url", "ftp://example.com", "//missing-scheme"}
	for _, bad := range tests {
		cfg := Default()
		cfg.API.BaseURL = bad
		if err := cfg.Validate(); err == nil {
			t.Errorf("Validate accepted base_url %q", bad)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg := Default()
	cfg.API.BaseURL = "https://saved.example.com"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadPath(path)
	if err != nil {
		t.Fatalf("LoadPath failed: %v", err)
	}
	if loaded.API.BaseURL != "https://saved.example.com" {
		t.Errorf("BaseURL = %q after round trip", loaded.API.BaseURL)
	}
}
