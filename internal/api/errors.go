// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package api

import (
	"errors"
	"net/http"

	"github.com/abzanganeh/movie-agent-demo/internal/agent"
	"github.com/abzanganeh/movie-agent-demo/internal/logging"
	"github.com/abzanganeh/movie-agent-demo/internal/secrets"
	"github.com/abzanganeh/movie-agent-demo/internal/validation"
)

// User-facing messages.
const (
	msgNotConfigured   = "Service not configured. Please complete setup first."
	msgCorrupted       = "Stored configuration cannot be read. Reset the configuration and run setup again."
	msgAgentInitFailed = "Agent initialization failed. Please check configuration."
	msgAgentDown       = "Agent service is temporarily unavailable. Try again shortly."
)

// respondError maps an error from the configuration store, the setup
// validator or the agent onto a status code and error code.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	rw := NewResponseWriter(w, r)
	log := logging.Ctx(r.Context())

	var setupErr *validation.SetupError
	var agentErr *agent.APIError

	switch {
	case errors.Is(err, secrets.ErrNotConfigured):
		rw.ServiceUnavailable(msgNotConfigured)
	case errors.As(err, &setupErr):
		rw.ValidationError(setupErr.Reason, nil)
	case errors.Is(err, secrets.ErrCorruptedConfig):
		log.Error().Err(err).Msg("Stored configuration is corrupted")
		rw.Error(http.StatusInternalServerError, ErrCodeConfigCorrupted, msgCorrupted)
	case errors.Is(err, agent.ErrUnavailable):
		rw.ServiceUnavailable(msgAgentDown)
	case errors.As(err, &agentErr):
		rw.ExternalServiceError("agent", err)
	case errors.Is(err, secrets.ErrIO):
		log.Error().Err(err).Msg("Configuration storage failure")
		rw.InternalError("Configuration storage failure")
	default:
		log.Error().Err(err).Msg("Request failed")
		rw.InternalError("Internal server error")
	}
}
