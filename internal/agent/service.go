// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

// Package agent talks to the movie agent service. The service owns the
// conversation, the vector store and the vision model; this package only
// initializes it from the stored configuration and forwards requests.
package agent

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized is returned by calls made before Initialize succeeded.
	ErrNotInitialized = errors.New("agent not initialized")

	// ErrUnavailable is returned while the circuit breaker rejects calls.
	ErrUnavailable = errors.New("agent service unavailable")
)

// APIError is a non-2xx reply from the agent service.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("agent %s failed with status %d: %s", e.Operation, e.StatusCode, e.Body)
}

// ChatResponse is the agent's answer to a chat query.
type ChatResponse struct {
	Answer             string         `json:"answer"`
	Movies             []any          `json:"movies"`
	ToolsUsed          []string       `json:"tools_used"`
	LLMLatencyMS       float64        `json:"llm_latency_ms"`
	ToolLatencyMS      float64        `json:"tool_latency_ms"`
	LatencyMS          float64        `json:"latency_ms"`
	ReasoningType      string         `json:"reasoning_type"`
	ResolutionMetadata map[string]any `json:"resolution_metadata,omitempty"`
	QuizData           map[string]any `json:"quiz_data,omitempty"`
}

// PosterResponse is the result of a poster analysis.
type PosterResponse struct {
	Title          string   `json:"title"`
	Caption        string   `json:"caption"`
	Mood           string   `json:"mood"`
	Confidence     float64  `json:"confidence"`
	InferredGenres []string `json:"inferred_genres"`
}

// Service is the agent as seen by the HTTP layer.
type Service interface {
	// Initialize configures the agent. It may be called again to apply new
	// settings.
	Initialize(ctx context.Context, settings Settings) error

	// Chat answers query within the conversation identified by sessionID.
	Chat(ctx context.Context, query, sessionID string) (*ChatResponse, error)

	// AnalyzePoster analyzes the image at path and records the result in the
	// session's memory.
	AnalyzePoster(ctx context.Context, path, sessionID string) (*PosterResponse, error)

	// ClearMemory forgets the session's conversation and poster context.
	ClearMemory(ctx context.Context, sessionID string) error

	// Close releases the agent.
	Close() error
}
