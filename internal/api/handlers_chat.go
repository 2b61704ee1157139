// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package api

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/abzanganeh/movie-agent-demo/internal/agent"
	"github.com/abzanganeh/movie-agent-demo/internal/logging"
	"github.com/abzanganeh/movie-agent-demo/internal/metrics"
	"github.com/abzanganeh/movie-agent-demo/internal/secrets"
	"github.com/abzanganeh/movie-agent-demo/internal/session"
	"github.com/abzanganeh/movie-agent-demo/internal/validation"
)

// maxChatBodyBytes bounds the chat request body.
const maxChatBodyBytes = 64 << 10

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Query string `json:"query" validate:"required,max=4000"`
}

// agentFor returns the live agent, initializing it on demand. It writes the
// error response itself and returns nil when none is available.
func (h *Handler) agentFor(w http.ResponseWriter, r *http.Request) agent.Service {
	rw := NewResponseWriter(w, r)
	present, err := h.config.Present()
	if err != nil {
		respondError(w, r, err)
		return nil
	}
	if !present {
		rw.ServiceUnavailable(msgNotConfigured)
		return nil
	}

	svc, err := h.agents.Ensure(r.Context(), h.config)
	if err == nil {
		return svc
	}

	if errors.Is(err, secrets.ErrNotConfigured) || errors.Is(err, secrets.ErrCorruptedConfig) ||
		errors.Is(err, secrets.ErrIO) || errors.Is(err, agent.ErrUnavailable) {
		respondError(w, r, err)
		return nil
	}
	logging.Ctx(r.Context()).Error().Err(err).Msg("Agent unavailable")
	rw.Error(http.StatusInternalServerError, ErrCodeAgentInitFailed, msgAgentInitFailed)
	return nil
}

// Chat forwards a query to the agent within the browser's session.
//
// @Summary Ask the agent
// @Description Sends a natural language query to the movie agent. Conversation memory is kept per browser session.
// @Tags Agent
// @Accept json
// @Produce json
// @Param body body ChatRequest true "Query"
// @Success 200 {object} APIResponse{data=agent.ChatResponse} "Agent answer"
// @Failure 400 {object} APIResponse "Missing or empty query"
// @Failure 500 {object} APIResponse "Agent initialization failed"
// @Failure 503 {object} APIResponse "Service not configured"
// @Router /chat [post]
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	svc := h.agentFor(w, r)
	if svc == nil {
		return
	}
	rw := NewResponseWriter(w, r)

	var req ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBodyBytes)).Decode(&req); err != nil {
		rw.BadRequest("Missing 'query' in request body")
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		rw.BadRequest("Empty query")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr.Error(), verr.Details())
		return
	}

	s := h.currentSession(r)
	resp, err := svc.Chat(r.Context(), req.Query, s.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Strs("tools", resp.ToolsUsed).
		Float64("latency_ms", resp.LatencyMS).
		Msg("Chat response")
	rw.Success(resp)
}

// Poster analyzes an uploaded poster image.
//
// @Summary Analyze a poster
// @Description Uploads a poster image for analysis. The result becomes the session's current poster.
// @Tags Agent
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Poster image"
// @Success 200 {object} APIResponse{data=agent.PosterResponse} "Poster analysis"
// @Failure 400 {object} APIResponse "Missing, empty or unsupported file"
// @Failure 503 {object} APIResponse "Service not configured"
// @Router /poster [post]
func (h *Handler) Poster(w http.ResponseWriter, r *http.Request) {
	svc := h.agentFor(w, r)
	if svc == nil {
		return
	}
	ctx := r.Context()
	rw := NewResponseWriter(w, r)

	r.Body = http.MaxBytesReader(w, r.Body, h.upload.MaxBytes+(1<<20))
	file, header, err := r.FormFile("image")
	if err != nil {
		metrics.PosterUploads.WithLabelValues("rejected").Inc()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			rw.Error(http.StatusRequestEntityTooLarge, ErrCodeRequestTooLarge, "Poster file is too large")
			return
		}
		rw.BadRequest("Missing 'image' file in form data")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		metrics.PosterUploads.WithLabelValues("rejected").Inc()
		rw.BadRequest("Empty file")
		return
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !slices.Contains(h.upload.AllowedExtensions, ext) {
		metrics.PosterUploads.WithLabelValues("rejected").Inc()
		rw.BadRequest("Unsupported image type. Allowed: " + strings.Join(h.upload.AllowedExtensions, ", "))
		return
	}
	if header.Size > h.upload.MaxBytes {
		metrics.PosterUploads.WithLabelValues("rejected").Inc()
		rw.Error(http.StatusRequestEntityTooLarge, ErrCodeRequestTooLarge, "Poster file is too large")
		return
	}

	tmpPath, err := saveUpload(file, ext)
	if tmpPath != "" {
		defer func() {
			if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				logging.Ctx(ctx).Warn().Err(rmErr).Str("path", tmpPath).Msg("Failed to remove poster temp file")
			}
		}()
	}
	if err != nil {
		metrics.PosterUploads.WithLabelValues("failed").Inc()
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to store uploaded poster")
		rw.InternalError("Failed to store uploaded poster")
		return
	}

	s := h.currentSession(r)
	s.ClearPoster()

	resp, err := svc.AnalyzePoster(ctx, tmpPath, s.ID)
	if err != nil {
		metrics.PosterUploads.WithLabelValues("failed").Inc()
		h.saveSession(r, s)
		respondError(w, r, err)
		return
	}

	s.RecordPoster(session.PosterState{
		Title:      resp.Title,
		Mood:       resp.Mood,
		Confidence: resp.Confidence,
		Caption:    resp.Caption,
		Timestamp:  time.Now().UTC(),
	})
	h.saveSession(r, s)
	metrics.PosterUploads.WithLabelValues("analyzed").Inc()

	logging.Ctx(ctx).Info().
		Str("title", resp.Title).
		Str("mood", resp.Mood).
		Float64("confidence", resp.Confidence).
		Msg("Poster analyzed")
	rw.Success(resp)
}

// saveUpload copies an upload to a temp file that keeps the original
// extension. The returned path is non-empty whenever a file was created.
func saveUpload(src io.Reader, ext string) (string, error) {
	tmp, err := os.CreateTemp("", "poster-*"+ext)
	if err != nil {
		return "", err
	}
	path := tmp.Name()
	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		return path, err
	}
	return path, tmp.Close()
}

// ClearPoster forgets the session's poster, both here and in the agent's
// memory.
//
// @Summary Clear the current poster
// @Description Clears poster state and agent memory for the browser session.
// @Tags Agent
// @Produce json
// @Success 200 {object} APIResponse{data=StatusMessage} "Poster state cleared"
// @Router /clear-poster [post]
func (h *Handler) ClearPoster(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s := h.currentSession(r)

	if svc, ok := h.agents.Current(); ok {
		if err := svc.ClearMemory(ctx, s.ID); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Failed to clear agent memory")
		}
	}

	s.ClearPoster()
	s.PosterHistory = nil
	h.saveSession(r, s)

	logging.Ctx(ctx).Info().Msg("Cleared poster state")
	WriteSuccess(w, r, StatusMessage{Status: "success", Message: "Poster state cleared"})
}
