// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "console.yaml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfigFile(t, `
api:
  base_url: https://api.example.test
  timeout: 15s
state_dir: /var/lib/ledgerline
log_file: /var/log/ledgerline.jsonl
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.API.BaseURL != "https://api.example.test" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	timeout, err := cfg.API.RequestTimeout()
	if err != nil {
		t.Fatalf("RequestTimeout failed: %v", err)
	}
	if timeout != 15*time.Second {
		t.Errorf("RequestTimeout = %v, want 15s", timeout)
	}
	if cfg.StateDir != "/var/lib/ledgerline" {
		t.Errorf("StateDir = %q", cfg.StateDir)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadFile of missing file should fail")
	}
}

func TestValidateRequiresBaseURL(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate should fail without a base URL")
	}
	if !strings.Contains(err.Error(), "api.base_url") {
		t.Errorf("error %q should name api.base_url", err)
	}
}

func TestEnvironmentVariableFallback(t *testing.T) {
	t.Setenv("LEDGERLINE_API_URL", "https://env.example.test")

	path := writeConfigFile(t, "state_dir: /tmp/ledgerline\n")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.API.BaseURL != "https://env.example.test" {
		t.Errorf("BaseURL = %q, want env fallback", cfg.API.BaseURL)
	}
}

func TestVariableExpansion(t *testing.T) {
	t.Setenv("HOME", "/home/operator")

	path := writeConfigFile(t, `
api:
  base_url: https://api.example.test
state_dir: ${HOME}/.ledgerline
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.StateDir != "/home/operator/.ledgerline" {
		t.Errorf("StateDir = %q, want expanded HOME", cfg.StateDir)
	}
}

func TestDefaultStateDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	cfg := Default()
	if cfg.StateDir != "/xdg/ledgerline" {
		t.Errorf("StateDir = %q, want /xdg/ledgerline", cfg.StateDir)
	}
}
