// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package services

import (
	"context"
	"errors"

	"github.com/abzanganeh/movie-agent-demo/internal/logging"
)

// SessionSweeper is satisfied by *session.Sweeper.
type SessionSweeper interface {
	Sweep(ctx context.Context) (int, error)
	RunWithContext(ctx context.Context) error
}

// SessionSweeperService removes expired browser sessions on an interval.
// One pass runs immediately so sessions left in a persistent store by a
// previous process are cleared at startup.
type SessionSweeperService struct {
	sweeper SessionSweeper
}

// NewSessionSweeperService wraps sweeper.
func NewSessionSweeperService(sweeper SessionSweeper) *SessionSweeperService {
	return &SessionSweeperService{sweeper: sweeper}
}

// Serve implements suture.Service.
func (s *SessionSweeperService) Serve(ctx context.Context) error {
	if removed, err := s.sweeper.Sweep(ctx); err != nil {
		logging.Warn().Err(err).Msg("Initial session sweep failed")
	} else if removed > 0 {
		logging.Info().Int("removed", removed).Msg("Removed sessions that expired while stopped")
	}

	err := s.sweeper.RunWithContext(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ctx.Err()
	}
	return err
}

func (s *SessionSweeperService) String() string {
	return "session-sweeper"
}
