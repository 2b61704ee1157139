// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package api

import (
	"net/http"
	"time"

	"github.com/abzanganeh/movie-agent-demo/internal/logging"
	"github.com/abzanganeh/movie-agent-demo/internal/secrets"
)

// SetupStatus reports how far the installation is from being usable.
type SetupStatus struct {
	State            string            `json:"state"`
	Configured       bool              `json:"configured"`
	AgentInitialized bool              `json:"agent_initialized"`
	AgentBreaker     string            `json:"agent_breaker,omitempty"`
	ServicePath      string            `json:"service_path,omitempty"`
	ServicePathFound bool              `json:"service_path_found"`
	Permissions      map[string]string `json:"permissions,omitempty"`
	Recommendations  []string          `json:"recommendations"`
}

// HealthLive handles liveness probe requests.
// Returns 200 OK if the process is alive, regardless of dependencies.
//
// @Summary Liveness probe
// @Description Returns 200 OK while the process is alive.
// @Tags Health
// @Produce json
// @Success 200 {object} APIResponse "Service is alive"
// @Router /api/v1/health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests. The service is ready once
// the stored configuration decrypts.
//
// @Summary Readiness probe
// @Description Returns 200 OK when the stored configuration is present and readable, 503 otherwise.
// @Tags Health
// @Produce json
// @Success 200 {object} APIResponse "Service is ready"
// @Failure 503 {object} APIResponse "Service is not ready"
// @Router /api/v1/health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	state, err := h.config.State()
	if err != nil || state != secrets.StateConfigured {
		label := state.String()
		if err != nil {
			label = "unknown"
			logging.Ctx(r.Context()).Error().Err(err).Msg("Readiness check failed")
		}
		NewResponseWriter(w, r).ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable,
			"Service not ready", map[string]string{"status": "not_ready", "state": label})
		return
	}
	WriteSuccess(w, r, map[string]string{"status": "ready", "state": state.String()})
}

// breakerReporter is implemented by agents that expose a circuit breaker.
type breakerReporter interface {
	BreakerState() string
}

// SetupStatusHandler reports configuration state, agent status and where the
// agent service checkout was found.
//
// @Summary Setup status
// @Description Returns the configuration state (unconfigured, configured, corrupted), agent status and recommendations.
// @Tags Health
// @Produce json
// @Success 200 {object} APIResponse{data=SetupStatus} "Setup status"
// @Router /api/v1/health/setup [get]
func (h *Handler) SetupStatusHandler(w http.ResponseWriter, r *http.Request) {
	status := SetupStatus{Recommendations: make([]string, 0)}

	state, err := h.config.State()
	if err != nil {
		status.State = "unknown"
		status.Recommendations = append(status.Recommendations,
			"The configuration files could not be read. Check file permissions.")
	} else {
		status.State = state.String()
	}
	status.Configured = err == nil && state == secrets.StateConfigured

	switch {
	case err != nil:
	case state == secrets.StateUnconfigured:
		status.Recommendations = append(status.Recommendations, "Open /setup to enter your API keys.")
	case state == secrets.StateCorrupted:
		status.Recommendations = append(status.Recommendations,
			"The stored configuration cannot be decrypted. Reset it and run setup again.")
	}

	if svc, ok := h.agents.Current(); ok {
		status.AgentInitialized = true
		if br, ok := svc.(breakerReporter); ok {
			status.AgentBreaker = br.BreakerState()
		}
	}

	if h.resolver != nil {
		status.ServicePath, status.ServicePathFound = h.resolver.Resolve()
	}

	report := h.config.LastPermissionReport()
	if report.Key.Path != "" || report.Config.Path != "" {
		status.Permissions = map[string]string{
			"master_key": report.Key.Outcome.String(),
			"config":     report.Config.Outcome.String(),
		}
		if report.Key.Outcome == secrets.PermissionFailed || report.Config.Outcome == secrets.PermissionFailed {
			status.Recommendations = append(status.Recommendations,
				"Restrict the configuration files to the owner (chmod 600).")
		}
	}

	WriteSuccess(w, r, status)
}
