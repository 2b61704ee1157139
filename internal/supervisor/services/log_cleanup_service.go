// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package services

import (
	"context"
	"time"

	"github.com/abzanganeh/movie-agent-demo/internal/logging"
	"github.com/abzanganeh/movie-agent-demo/internal/metrics"
)

// LogCleanupConfig configures log retention.
type LogCleanupConfig struct {
	Dir      string
	Pattern  string
	MaxFiles int
	MaxAge   time.Duration

	// Interval between passes. Default: 24h
	Interval time.Duration
}

// LogCleanupService enforces log file retention while the process runs.
// The startup pass is done by main before the tree starts.
type LogCleanupService struct {
	config LogCleanupConfig
	now    func() time.Time
}

// NewLogCleanupService creates the service.
func NewLogCleanupService(config LogCleanupConfig) *LogCleanupService {
	if config.Interval <= 0 {
		config.Interval = 24 * time.Hour
	}
	return &LogCleanupService{config: config, now: time.Now}
}

// RunOnce performs a single retention pass and returns the number of files
// removed.
func (s *LogCleanupService) RunOnce() int {
	result, err := logging.CleanupLogs(s.config.Dir, s.config.Pattern, s.config.MaxFiles, s.config.MaxAge, s.now())
	if err != nil {
		logging.Warn().Err(err).Str("dir", s.config.Dir).Msg("Log cleanup incomplete")
	}
	if n := len(result.Removed); n > 0 {
		metrics.LogFilesRemoved.Add(float64(n))
		logging.Info().Int("removed", n).Int("scanned", result.Scanned).Msg("Old log files removed")
	}
	return len(result.Removed)
}

// Serve implements suture.Service.
func (s *LogCleanupService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce()
		}
	}
}

func (s *LogCleanupService) String() string {
	return "log-cleanup"
}
