// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"movie-agent.yaml",
	"movie-agent.yml",
	"/etc/movie-agent/config.yaml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8765,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Storage: StorageConfig{
			DataDir:       ".",
			ConfigFile:    "config.encrypted",
			MasterKeyFile: ".master_key",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Dir:        "logs",
			FilePrefix: "movie_agent",
			MaxFiles:   10,
			MaxAge:     7 * 24 * time.Hour,
		},
		Session: SessionConfig{
			CookieName:    "movie_agent_session",
			TTL:           24 * time.Hour,
			Store:         "memory",
			StorePath:     "data/sessions",
			SweepInterval: 10 * time.Minute,
		},
		Agent: AgentConfig{
			URL:              "http://127.0.0.1:8766",
			Timeout:          60 * time.Second,
			RateLimit:        10,
			RateBurst:        20,
			BreakerFailures:  5,
			BreakerTimeout:   30 * time.Second,
			MaxResponseBytes: 4 << 20,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Upload: UploadConfig{
			MaxBytes:          10 << 20,
			AllowedExtensions: []string{".jpg", ".jpeg", ".png", ".webp"},
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in increasing priority, then validates it.
func Load() (*Config, error) {
	return load(findConfigFile())
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// FindConfigFile returns the config file that Load would use, or "".
func FindConfigFile() string {
	return findConfigFile()
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"security.cors_origins",
	"upload.allowed_extensions",
}

// processSliceFields splits comma separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := make([]string, 0)
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variables (lowercased) to config keys.
// Unlisted variables are ignored.
var envMappings = map[string]string{
	"http_host":    "server.host",
	"port":         "server.port",
	"http_port":    "server.port",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	"data_dir":        "storage.data_dir",
	"config_file":     "storage.config_file",
	"master_key_file": "storage.master_key_file",

	"log_level":       "logging.level",
	"log_format":      "logging.format",
	"log_caller":      "logging.caller",
	"log_dir":         "logging.dir",
	"log_file_prefix": "logging.file_prefix",
	"log_max_files":   "logging.max_files",
	"log_max_age":     "logging.max_age",

	"session_cookie_name":    "session.cookie_name",
	"session_ttl":            "session.ttl",
	"session_store":          "session.store",
	"session_store_path":     "session.store_path",
	"session_cookie_secure":  "session.cookie_secure",
	"session_sweep_interval": "session.sweep_interval",

	"agent_url":                "agent.url",
	"agent_timeout":            "agent.timeout",
	"agent_service_dir":        "agent.service_dir",
	"agent_rate_limit":         "agent.rate_limit",
	"agent_rate_burst":         "agent.rate_burst",
	"agent_breaker_failures":   "agent.breaker_failures",
	"agent_breaker_timeout":    "agent.breaker_timeout",
	"agent_max_response_bytes": "agent.max_response_bytes",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"upload_max_bytes":   "upload.max_bytes",
	"upload_allowed_ext": "upload.allowed_extensions",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// WatchConfigFile calls onChange after every write to path. koanf's file
// provider watches through fsnotify.
func WatchConfigFile(path string, onChange func(*Config, error)) error {
	return file.Provider(path).Watch(func(_ interface{}, err error) {
		if err != nil {
			onChange(nil, err)
			return
		}
		onChange(load(path))
	})
}
