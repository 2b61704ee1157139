// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/abzanganeh/movie-agent-demo/docs" // Import generated swagger docs
	"github.com/abzanganeh/movie-agent-demo/internal/agent"
	"github.com/abzanganeh/movie-agent-demo/internal/api"
	"github.com/abzanganeh/movie-agent-demo/internal/config"
	"github.com/abzanganeh/movie-agent-demo/internal/logging"
	"github.com/abzanganeh/movie-agent-demo/internal/secrets"
	"github.com/abzanganeh/movie-agent-demo/internal/session"
	"github.com/abzanganeh/movie-agent-demo/internal/supervisor"
	"github.com/abzanganeh/movie-agent-demo/internal/supervisor/services"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logFile := initLogging(cfg.Logging)
	if logFile != nil {
		defer func() {
			if err := logFile.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing log file")
			}
		}()
	}

	logging.Info().
		Str("addr", cfg.Addr()).
		Str("environment", cfg.Server.Environment).
		Str("agent_url", cfg.Agent.URL).
		Msg("Starting movie agent demo")

	// Encrypted credential store
	manager := secrets.NewManager(secrets.Options{
		ConfigPath: cfg.Storage.ConfigPath(),
		KeyPath:    cfg.Storage.MasterKeyPath(),
	})
	state, err := manager.State()
	switch {
	case err != nil:
		logging.Warn().Err(err).Msg("Could not read stored configuration")
	case state == secrets.StateCorrupted:
		logging.Warn().
			Str("config", manager.ConfigPath()).
			Msg("Stored configuration cannot be decrypted; reset it from the setup page")
	case state == secrets.StateUnconfigured:
		logging.Info().Msg("No configuration stored yet; open /setup to enter API keys")
	default:
		logging.Info().Str("config", manager.ConfigPath()).Msg("Encrypted configuration found")
	}

	// Browser sessions
	store, err := openSessionStore(cfg.Session)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open session store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing session store")
		}
	}()
	if cfg.Session.Store == "memory" && !cfg.IsDevelopment() {
		logging.Warn().Msg("Session store is 'memory': sessions are lost on restart. Set SESSION_STORE=badger to persist them.")
	}

	// Agent service client, created lazily on first use
	agentCfg := agent.ClientConfig{
		BaseURL:          cfg.Agent.URL,
		Timeout:          cfg.Agent.Timeout,
		RateLimit:        cfg.Agent.RateLimit,
		RateBurst:        cfg.Agent.RateBurst,
		BreakerFailures:  cfg.Agent.BreakerFailures,
		BreakerTimeout:   cfg.Agent.BreakerTimeout,
		MaxResponseBytes: cfg.Agent.MaxResponseBytes,
	}
	holder := agent.NewHolder(func() agent.Service {
		return agent.NewHTTPClient(agentCfg)
	})
	defer holder.Reset()

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	resolver := agent.NewPathResolver(cfg.Agent.ServiceDir, cwd)
	if dir, ok := resolver.Resolve(); ok {
		logging.Info().Str("path", dir).Msg("Agent service source located")
	} else {
		logging.Warn().Strs("searched", resolver.Candidates()).Msg("Agent service source not found")
	}

	handler, err := api.NewHandler(api.HandlerDeps{
		Config:   manager,
		Agents:   holder,
		Sessions: store,
		Resolver: resolver,
		Upload: api.UploadConfig{
			MaxBytes:          cfg.Upload.MaxBytes,
			AllowedExtensions: cfg.Upload.AllowedExtensions,
		},
		SessionTTL: cfg.Session.TTL,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create HTTP handler")
	}

	mwConfig := api.DefaultChiMiddlewareConfig()
	mwConfig.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mwConfig.RateLimitRequests = cfg.Security.RateLimitReqs
	mwConfig.RateLimitWindow = cfg.Security.RateLimitWindow
	mwConfig.RateLimitDisabled = cfg.Security.RateLimitDisabled
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	sessions := session.NewMiddleware(store, &session.MiddlewareConfig{
		CookieName:   cfg.Session.CookieName,
		TTL:          cfg.Session.TTL,
		CookieSecure: cfg.Session.CookieSecure,
	})
	router := api.NewRouter(handler, mwConfig, sessions)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		// Agent calls run inside the write deadline.
		WriteTimeout: cfg.Server.Timeout + cfg.Agent.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// === SUPERVISOR TREE ===

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddMaintenanceService(services.NewSessionSweeperService(
		session.NewSweeper(store, cfg.Session.SweepInterval)))
	if cfg.Logging.Dir != "" {
		tree.AddMaintenanceService(services.NewLogCleanupService(services.LogCleanupConfig{
			Dir:      cfg.Logging.Dir,
			Pattern:  cfg.Logging.FilePattern(),
			MaxFiles: cfg.Logging.MaxFiles,
			MaxAge:   cfg.Logging.MaxAge,
		}))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, cfg.Server.ShutdownTimeout))

	watchConfig()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// initLogging configures zerolog. With a log dir, output is also written to
// the day's log file and old files are pruned. The returned file, if any, is
// owned by the caller.
func initLogging(cfg config.LoggingConfig) *os.File {
	logCfg := logging.Config{
		Level:     cfg.Level,
		Format:    cfg.Format,
		Caller:    cfg.Caller,
		Timestamp: true,
	}

	if cfg.Dir == "" {
		logging.Init(logCfg)
		return nil
	}

	now := time.Now()
	f, err := logging.OpenDailyFile(cfg.Dir, cfg.FilePrefix, now)
	if err != nil {
		logging.Init(logCfg)
		logging.Warn().Err(err).Str("dir", cfg.Dir).Msg("File logging disabled")
		return nil
	}

	var console io.Writer = os.Stderr
	logCfg.Output = logging.TeeOutput(console, f)
	logging.Init(logCfg)

	result, err := logging.CleanupLogs(cfg.Dir, cfg.FilePattern(), cfg.MaxFiles, cfg.MaxAge, now)
	if err != nil {
		logging.Warn().Err(err).Msg("Log cleanup incomplete")
	}
	logging.Info().
		Str("file", f.Name()).
		Int("removed", len(result.Removed)).
		Msg("File logging enabled")
	return f
}

// openSessionStore opens the configured session backend.
func openSessionStore(cfg config.SessionConfig) (session.Store, error) {
	if cfg.Store == "badger" {
		s, err := session.OpenBadgerStore(cfg.StorePath)
		if err != nil {
			return nil, err
		}
		logging.Info().Str("path", cfg.StorePath).Msg("Using persistent session store")
		return s, nil
	}
	return session.NewMemoryStore(), nil
}

// watchConfig reapplies the log level when the config file changes. Other
// settings need a restart.
func watchConfig() {
	path := config.FindConfigFile()
	if path == "" {
		return
	}
	err := config.WatchConfigFile(path, func(cfg *config.Config, err error) {
		if err != nil {
			logging.Warn().Err(err).Str("path", path).Msg("Ignoring invalid config file change")
			return
		}
		logging.SetLevelString(cfg.Logging.Level)
		logging.Info().Str("level", cfg.Logging.Level).Msg("Log level reloaded")
	})
	if err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Config file watch unavailable")
	}
}
