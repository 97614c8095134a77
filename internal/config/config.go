// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for webchat-tui.
//
// Values come from built-in defaults, overridden by ~/.webchat/config.toml
// (or $WEBCHAT_CONFIG), overridden by WEBCHAT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the complete webchat-tui configuration.
type Config struct {
	Service ServiceConfig `toml:"service"`
	History HistoryConfig `toml:"history"`
	Retry   RetryConfig   `toml:"retry"`
	Auth    AuthConfig    `toml:"auth"`
}

// ServiceConfig describes the remote chat-completion service.
type ServiceConfig struct {
	// Endpoint is the streaming chat-completion URL.
	Endpoint string `toml:"endpoint"`
	// Model is the model identifier sent with every request.
	Model string `toml:"model"`
	// RedirectPath is the client origin path sent with each request so the
	// auth flow can navigate back after re-authentication.
	RedirectPath string `toml:"redirect_path"`
}

// HistoryConfig controls the durable conversation history.
type HistoryConfig struct {
	// WindowSize is the number of trailing messages sent as request context.
	WindowSize int `toml:"window_size"`
	// StoragePath is the conversation snapshot file.
	StoragePath string `toml:"storage_path"`
}

// RetryConfig controls transient-failure retry behavior.
type RetryConfig struct {
	MaxAttempts int `toml:"max_attempts"`
	BaseDelayMs int `toml:"base_delay_ms"`
}

// AuthConfig locates the externally supplied credential.
type AuthConfig struct {
	// CredentialPath is the file the external auth flow writes the bearer
	// token to.
	CredentialPath string `toml:"credential_path"`
}

// BaseDelay returns the retry base delay as a duration.
func (r RetryConfig) BaseDelay() time.Duration {
	return time.Duration(r.BaseDelayMs) * time.Millisecond
}

// Default returns the built-in configuration.
func Default() *Config {
	home := configHome()
	return &Config{
		Service: ServiceConfig{
			Endpoint:     "http://localhost:8080/api/chat/stream",
			Model:        "cheapest",
			RedirectPath: "/chat",
		},
		History: HistoryConfig{
			WindowSize:  20,
			StoragePath: filepath.Join(home, "history.json"),
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelayMs: 1000,
		},
		Auth: AuthConfig{
			CredentialPath: filepath.Join(home, "credential"),
		},
	}
}

// Load builds the effective configuration: defaults, then the config file
// if present, then environment overrides, then validation.
func Load() (*Config, error) {
	cfg := Default()

	path := ConfigPath()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigPath returns the config file location, honoring $WEBCHAT_CONFIG.
func ConfigPath() string {
	if p := os.Getenv("WEBCHAT_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(configHome(), "config.toml")
}

// applyEnv overrides individual settings from WEBCHAT_* variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("WEBCHAT_ENDPOINT"); v != "" {
		c.Service.Endpoint = v
	}
	if v := os.Getenv("WEBCHAT_MODEL"); v != "" {
		c.Service.Model = v
	}
	if v := os.Getenv("WEBCHAT_REDIRECT_PATH"); v != "" {
		c.Service.RedirectPath = v
	}
	if v := os.Getenv("WEBCHAT_STORAGE_PATH"); v != "" {
		c.History.StoragePath = v
	}
	if v := os.Getenv("WEBCHAT_CREDENTIAL_PATH"); v != "" {
		c.Auth.CredentialPath = v
	}
	if v := os.Getenv("WEBCHAT_WINDOW_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.History.WindowSize = n
		}
	}
	if v := os.Getenv("WEBCHAT_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Retry.MaxAttempts = n
		}
	}
	if v := os.Getenv("WEBCHAT_BASE_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Retry.BaseDelayMs = n
		}
	}
}

// Validate checks the configuration for values the client cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Service.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("service.endpoint %q is not a valid URL", c.Service.Endpoint)
	}
	if c.Service.Model == "" {
		return errors.New("service.model must not be empty")
	}
	if c.History.WindowSize <= 0 {
		return fmt.Errorf("history.window_size must be positive, got %d", c.History.WindowSize)
	}
	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("retry.max_attempts must be positive, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.BaseDelayMs <= 0 {
		return fmt.Errorf("retry.base_delay_ms must be positive, got %d", c.Retry.BaseDelayMs)
	}
	return nil
}

// WriteDefault writes a commented default config file, refusing to
// overwrite an existing one. Returns the path written.
func WriteDefault() (string, error) {
	path := ConfigPath()
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("config already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return path, err
	}

	d := Default()
	content := fmt.Sprintf(`# webchat-tui configuration

[service]
# Streaming chat-completion endpoint.
endpoint = %q
# Model identifier sent with every request.
model = %q
# Origin path sent so the auth flow can navigate back here.
redirect_path = %q

[history]
# Trailing messages sent as request context.
window_size = %d
# Conversation snapshot file.
storage_path = %q

[retry]
max_attempts = %d
base_delay_ms = %d

[auth]
# File the external auth flow writes the bearer token to.
credential_path = %q
`,
		d.Service.Endpoint, d.Service.Model, d.Service.RedirectPath,
		d.History.WindowSize, d.History.StoragePath,
		d.Retry.MaxAttempts, d.Retry.BaseDelayMs,
		d.Auth.CredentialPath)

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return path, err
	}
	return path, nil
}

// configHome returns ~/.webchat, falling back to the working directory when
// the home directory cannot be resolved.
func configHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".webchat"
	}
	return filepath.Join(home, ".webchat")
}
