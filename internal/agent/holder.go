// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/abzanganeh/movie-agent-demo/internal/logging"
	"github.com/abzanganeh/movie-agent-demo/internal/metrics"
	"github.com/abzanganeh/movie-agent-demo/internal/secrets"
)

// ConfigLoader supplies the stored configuration. *secrets.Manager
// satisfies it.
type ConfigLoader interface {
	Load() (secrets.Settings, error)
}

// Factory builds an uninitialized Service.
type Factory func() Service

// Holder owns the live agent. The agent is built and initialized on first
// use and dropped on Reset, so a configuration reset or a new setup takes
// effect without restarting the process.
type Holder struct {
	factory Factory

	mu      sync.Mutex
	service Service
}

// NewHolder creates an empty holder.
func NewHolder(factory Factory) *Holder {
	return &Holder{factory: factory}
}

// Ensure returns the live agent, initializing one from loader when there is
// none. Load errors are returned as is, so callers can test for
// secrets.ErrNotConfigured.
func (h *Holder) Ensure(ctx context.Context, loader ConfigLoader) (Service, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.service != nil {
		return h.service, nil
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	settings, err := FromConfiguration(cfg)
	if err != nil {
		return nil, err
	}

	svc := h.factory()
	if err := svc.Initialize(ctx, settings); err != nil {
		_ = svc.Close()
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to initialize agent")
		return nil, fmt.Errorf("initialize agent: %w", err)
	}

	h.service = svc
	metrics.SetAgentInitialized(true)
	return svc, nil
}

// Reinitialize drops the current agent and initializes a new one.
func (h *Holder) Reinitialize(ctx context.Context, loader ConfigLoader) (Service, error) {
	h.Reset()
	return h.Ensure(ctx, loader)
}

// Current returns the live agent without initializing one.
func (h *Holder) Current() (Service, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.service, h.service != nil
}

// Initialized reports whether an agent is live.
func (h *Holder) Initialized() bool {
	_, ok := h.Current()
	return ok
}

// Reset closes and drops the live agent.
func (h *Holder) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.service == nil {
		return
	}
	if err := h.service.Close(); err != nil {
		logging.Warn().Err(err).Msg("Closing agent failed")
	}
	h.service = nil
	metrics.SetAgentInitialized(false)
}
