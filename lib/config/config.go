// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the console configuration.
type Config struct {
	// API configures the backend proxy connection.
	API APIConfig `yaml:"api"`

	// StateDir is where the session and environment records persist
	// between runs. Default: ~/.config/ledgerline.
	StateDir string `yaml:"state_dir"`

	// LogFile receives JSON log records. Empty means stderr text
	// logging, which the TUI suppresses below warn level.
	LogFile string `yaml:"log_file"`
}

// APIConfig configures the backend proxy connection.
type APIConfig struct {
	// BaseURL is the backend proxy root (e.g. "https://api.ledgerline.dev").
	// Required: there is no default endpoint.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds each HTTP request, as a Go duration string
	// (e.g. "15s"). Empty means the transport default (no
	// client-enforced timeout).
	Timeout string `yaml:"timeout"`
}

// RequestTimeout parses the configured timeout. Returns zero for an
// empty setting.
func (c APIConfig) RequestTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	timeout, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("config: api.timeout %q: %w", c.Timeout, err)
	}
	return timeout, nil
}

// Default returns the configuration defaults. BaseURL is deliberately
// left empty — the config file or LEDGERLINE_API_URL must provide it.
func Default() *Config {
	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		if homeDirectory, err := os.UserHomeDir(); err == nil {
			configDirectory = filepath.Join(homeDirectory, ".config")
		} else {
			configDirectory = "/tmp"
		}
	}

	return &Config{
		StateDir: filepath.Join(configDirectory, "ledgerline"),
	}
}

// Load resolves the config file path from LEDGERLINE_CONFIG and loads
// it. When the variable is unset, returns defaults overlaid with the
// LEDGERLINE_API_URL environment variable, so the console can run
// without a config file in development.
func Load() (*Config, error) {
	if path := os.Getenv("LEDGERLINE_CONFIG"); path != "" {
		return LoadFile(path)
	}

	cfg := Default()
	cfg.API.BaseURL = os.Getenv("LEDGERLINE_API_URL")
	cfg.expandVariables()
	return cfg, nil
}

// LoadFile loads configuration from a specific file path, merging over
// the defaults. The LEDGERLINE_API_URL environment variable fills the
// base URL only when the file leaves it empty.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = os.Getenv("LEDGERLINE_API_URL")
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in path
// fields for portability across machines.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.StateDir = expandVars(c.StateDir, vars)
	c.LogFile = expandVars(c.LogFile, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. A missing or
// unparseable base URL fails here rather than at first request time:
// without it every network feature is dead, so boot stops early with
// a clear message.
func (c *Config) Validate() error {
	var errs []error

	if c.API.BaseURL == "" {
		errs = append(errs, fmt.Errorf("api.base_url is required (or set LEDGERLINE_API_URL)"))
	} else if _, err := url.Parse(c.API.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("api.base_url %q is not a valid URL: %w", c.API.BaseURL, err))
	}

	if timeout, err := c.API.RequestTimeout(); err != nil {
		errs = append(errs, err)
	} else if timeout < 0 {
		errs = append(errs, fmt.Errorf("api.timeout must not be negative"))
	}

	if c.StateDir == "" {
		errs = append(errs, fmt.Errorf("state_dir is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
