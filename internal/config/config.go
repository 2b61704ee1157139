// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

// Package config loads process settings: listen address, storage paths,
// logging, sessions, the agent service endpoint and HTTP limits.
//
// User-provided provider credentials are not part of this configuration;
// they live in the encrypted store managed by package secrets.
package config

import (
	"path/filepath"
	"time"
)

// Config is the full process configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Storage  StorageConfig  `koanf:"storage"`
	Logging  LoggingConfig  `koanf:"logging"`
	Session  SessionConfig  `koanf:"session"`
	Agent    AgentConfig    `koanf:"agent"`
	Security SecurityConfig `koanf:"security"`
	Upload   UploadConfig   `koanf:"upload"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, production
}

// StorageConfig locates the encrypted configuration files.
type StorageConfig struct {
	DataDir       string `koanf:"data_dir"`
	ConfigFile    string `koanf:"config_file"`
	MasterKeyFile string `koanf:"master_key_file"`
}

// ConfigPath resolves ConfigFile against DataDir unless it is absolute.
func (s StorageConfig) ConfigPath() string {
	return resolve(s.DataDir, s.ConfigFile)
}

// MasterKeyPath resolves MasterKeyFile against DataDir unless it is absolute.
func (s StorageConfig) MasterKeyPath() string {
	return resolve(s.DataDir, s.MasterKeyFile)
}

func resolve(dir, name string) string {
	if filepath.IsAbs(name) || dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

// LoggingConfig holds zerolog and log file retention settings.
type LoggingConfig struct {
	Level      string        `koanf:"level"`
	Format     string        `koanf:"format"`
	Caller     bool          `koanf:"caller"`
	Dir        string        `koanf:"dir"` // empty disables file logging
	FilePrefix string        `koanf:"file_prefix"`
	MaxFiles   int           `koanf:"max_files"`
	MaxAge     time.Duration `koanf:"max_age"`
}

// FilePattern is the glob matched by log retention.
func (l LoggingConfig) FilePattern() string {
	return l.FilePrefix + "_*.log"
}

// SessionConfig holds browser session settings.
type SessionConfig struct {
	CookieName    string        `koanf:"cookie_name"`
	TTL           time.Duration `koanf:"ttl"`
	Store         string        `koanf:"store"` // memory or badger
	StorePath     string        `koanf:"store_path"`
	CookieSecure  bool          `koanf:"cookie_secure"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// AgentConfig locates the agent service.
type AgentConfig struct {
	URL              string        `koanf:"url"`
	Timeout          time.Duration `koanf:"timeout"`
	ServiceDir       string        `koanf:"service_dir"`
	RateLimit        float64       `koanf:"rate_limit"` // requests per second
	RateBurst        int           `koanf:"rate_burst"`
	BreakerFailures  uint32        `koanf:"breaker_failures"`
	BreakerTimeout   time.Duration `koanf:"breaker_timeout"`
	MaxResponseBytes int64         `koanf:"max_response_bytes"`
}

// SecurityConfig holds CORS and rate limit settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// UploadConfig limits poster uploads.
type UploadConfig struct {
	MaxBytes          int64    `koanf:"max_bytes"`
	AllowedExtensions []string `koanf:"allowed_extensions"`
}

// Addr returns host:port for the HTTP listener.
func (c *Config) Addr() string {
	return joinHostPort(c.Server.Host, c.Server.Port)
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "" || c.Server.Environment == "development"
}
