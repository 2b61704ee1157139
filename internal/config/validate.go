// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateSession(); err != nil {
		return err
	}
	if err := c.validateAgent(); err != nil {
		return err
	}
	return c.validateLimits()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive")
	}
	switch c.Server.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("server.environment must be development or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateStorage() error {
	if strings.TrimSpace(c.Storage.ConfigFile) == "" {
		return fmt.Errorf("storage.config_file is required")
	}
	if strings.TrimSpace(c.Storage.MasterKeyFile) == "" {
		return fmt.Errorf("storage.master_key_file is required")
	}
	if c.Storage.ConfigPath() == c.Storage.MasterKeyPath() {
		return fmt.Errorf("storage.config_file and storage.master_key_file must differ")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	if c.Logging.MaxFiles < 0 || c.Logging.MaxAge < 0 {
		return fmt.Errorf("logging retention limits cannot be negative")
	}
	if c.Logging.Dir != "" && c.Logging.FilePrefix == "" {
		return fmt.Errorf("logging.file_prefix is required when logging.dir is set")
	}
	return nil
}

func (c *Config) validateSession() error {
	if c.Session.CookieName == "" {
		return fmt.Errorf("session.cookie_name is required")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	switch c.Session.Store {
	case "memory":
	case "badger":
		if c.Session.StorePath == "" {
			return fmt.Errorf("session.store_path is required for the badger store")
		}
	default:
		return fmt.Errorf("session.store must be memory or badger, got %q", c.Session.Store)
	}
	return nil
}

func (c *Config) validateAgent() error {
	u, err := url.Parse(c.Agent.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("agent.url must be an absolute http(s) URL, got %q", c.Agent.URL)
	}
	if c.Agent.Timeout <= 0 {
		return fmt.Errorf("agent.timeout must be positive")
	}
	if c.Agent.RateLimit < 0 || c.Agent.RateBurst < 0 {
		return fmt.Errorf("agent rate limits cannot be negative")
	}
	if c.Agent.BreakerFailures == 0 {
		return fmt.Errorf("agent.breaker_failures must be at least 1")
	}
	return nil
}

func (c *Config) validateLimits() error {
	if !c.Security.RateLimitDisabled && (c.Security.RateLimitReqs <= 0 || c.Security.RateLimitWindow <= 0) {
		return fmt.Errorf("security rate limit must be positive unless disabled")
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload.max_bytes must be positive")
	}
	for _, ext := range c.Upload.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("upload.allowed_extensions entries must start with '.', got %q", ext)
		}
	}
	return nil
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
