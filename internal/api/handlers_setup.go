// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/abzanganeh/movie-agent-demo/internal/logging"
	"github.com/abzanganeh/movie-agent-demo/internal/secrets"
	"github.com/abzanganeh/movie-agent-demo/internal/validation"
)

// maxSetupBodyBytes bounds the setup request body.
const maxSetupBodyBytes = 64 << 10

// StatusMessage is the payload of endpoints that only acknowledge.
type StatusMessage struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Setup validates and stores the first-time configuration, then
// (re)initializes the agent with it.
//
// @Summary Save the configuration
// @Description Validates the provider settings and API keys, stores them encrypted and initializes the agent.
// @Tags Setup
// @Accept json
// @Produce json
// @Param body body map[string]interface{} true "Configuration mapping (llm_provider, openai_api_key, groq_api_key, ...)"
// @Success 200 {object} APIResponse{data=StatusMessage} "Configuration saved"
// @Failure 400 {object} APIResponse "Invalid configuration"
// @Failure 500 {object} APIResponse "Storage or agent initialization failure"
// @Router /setup [post]
func (h *Handler) Setup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rw := NewResponseWriter(w, r)

	var data map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSetupBodyBytes)).Decode(&data); err != nil || data == nil {
		rw.BadRequest("No JSON data provided")
		return
	}

	if err := validation.ValidateSetupData(data); err != nil {
		logging.Ctx(ctx).Info().Err(err).Msg("Setup rejected")
		respondError(w, r, err)
		return
	}

	if err := h.config.Save(secrets.Settings(data)); err != nil {
		respondError(w, r, err)
		return
	}
	logging.Ctx(ctx).Info().Msg("Configuration saved successfully")

	if _, err := h.agents.Reinitialize(ctx, h.config); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Agent initialization after setup failed")
		rw.Error(http.StatusInternalServerError, ErrCodeAgentInitFailed,
			"Configuration saved, but the agent could not be initialized: "+err.Error())
		return
	}

	rw.Success(StatusMessage{Status: "success", Message: "Configuration saved"})
}

// ResetConfig deletes the stored configuration and master key and drops the
// live agent.
//
// @Summary Reset the configuration
// @Description Deletes the encrypted configuration and its master key. The next visit starts setup again.
// @Tags Setup
// @Produce json
// @Success 200 {object} APIResponse{data=StatusMessage} "Configuration reset"
// @Failure 500 {object} APIResponse "Files could not be removed"
// @Router /reset-config [post]
func (h *Handler) ResetConfig(w http.ResponseWriter, r *http.Request) {
	h.agents.Reset()

	if err := h.config.Delete(); err != nil {
		respondError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Msg("Configuration reset")

	WriteSuccess(w, r, StatusMessage{Status: "success", Message: "Configuration reset"})
}
