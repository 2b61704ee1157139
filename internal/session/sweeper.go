// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package session

import (
	"context"
	"time"

	"github.com/abzanganeh/movie-agent-demo/internal/logging"
	"github.com/abzanganeh/movie-agent-demo/internal/metrics"
)

// DefaultSweepInterval is used when the configured interval is not positive.
const DefaultSweepInterval = 10 * time.Minute

// Sweeper periodically removes expired sessions and publishes the session
// gauge.
type Sweeper struct {
	store    Store
	interval time.Duration
}

// NewSweeper creates a sweeper over store.
func NewSweeper(store Store, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{store: store, interval: interval}
}

// Sweep runs one cleanup pass and returns the number of sessions removed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	removed, err := s.store.CleanupExpired(ctx)
	if err != nil {
		return removed, err
	}
	metrics.SessionsExpired.Add(float64(removed))

	if n, err := s.store.Count(ctx); err == nil {
		metrics.ActiveSessions.Set(float64(n))
	}
	if removed > 0 {
		logging.Debug().Int("removed", removed).Msg("Expired sessions removed")
	}
	return removed, nil
}

// RunWithContext sweeps on every tick until ctx is canceled.
func (s *Sweeper) RunWithContext(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				logging.Warn().Err(err).Msg("Session sweep failed")
			}
		}
	}
}
