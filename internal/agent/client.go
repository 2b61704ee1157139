// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package agent

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/abzanganeh/movie-agent-demo/internal/logging"
	"github.com/abzanganeh/movie-agent-demo/internal/metrics"
)

// maxErrorBodySize limits how much of an error response is kept.
const maxErrorBodySize = 64 * 1024

// Agent service endpoints.
const (
	pathInitialize  = "/v1/initialize"
	pathChat        = "/v1/chat"
	pathPoster      = "/v1/poster"
	pathClearMemory = "/v1/memory/clear"
)

// ClientConfig configures an HTTPClient. Zero values select defaults.
type ClientConfig struct {
	BaseURL          string
	Timeout          time.Duration
	RateLimit        float64 // requests per second, <= 0 disables
	RateBurst        int
	BreakerFailures  uint32
	BreakerTimeout   time.Duration
	MaxResponseBytes int64

	// HTTPClient replaces the default client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// HTTPClient implements Service against the agent service's HTTP API.
// It is safe for concurrent use.
type HTTPClient struct {
	baseURL          string
	client           *http.Client
	limiter          *rate.Limiter
	breaker          *breaker
	maxResponseBytes int64
	logger           zerolog.Logger

	initialized atomic.Bool
}

var _ Service = (*HTTPClient)(nil)

// NewHTTPClient creates a client. No request is made until Initialize.
func NewHTTPClient(cfg ClientConfig) *HTTPClient {
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	maxBytes := cfg.MaxResponseBytes
	if maxBytes <= 0 {
		maxBytes = 4 << 20
	}

	return &HTTPClient{
		baseURL:          strings.TrimRight(cfg.BaseURL, "/"),
		client:           client,
		limiter:          rate.NewLimiter(limit, burst),
		breaker:          newBreaker("agent-api", cfg.BreakerFailures, cfg.BreakerTimeout),
		maxResponseBytes: maxBytes,
		logger:           logging.WithComponent("agent"),
	}
}

type initializeRequest struct {
	LLMProvider     string `json:"llm_provider"`
	LLMModel        string `json:"llm_model"`
	EnableVision    bool   `json:"enable_vision"`
	EnableMemory    bool   `json:"enable_memory"`
	MemoryMaxTurns  int    `json:"memory_max_turns"`
	FAISSIndexPath  string `json:"faiss_index_path,omitempty"`
	LLMAPIKey       string `json:"llm_api_key,omitempty"`
	EmbeddingAPIKey string `json:"embedding_api_key,omitempty"`
	WarmupOnStart   bool   `json:"warmup_on_start"`
}

type chatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

// Initialize sends the settings and resolved credentials to the agent.
func (c *HTTPClient) Initialize(ctx context.Context, settings Settings) error {
	creds := ResolveCredentials(settings)
	req := initializeRequest{
		LLMProvider:     settings.LLMProvider,
		LLMModel:        settings.LLMModel,
		EnableVision:    settings.EnableVision,
		EnableMemory:    settings.EnableMemory,
		MemoryMaxTurns:  settings.MemoryMaxTurns,
		FAISSIndexPath:  settings.FAISSIndexPath,
		LLMAPIKey:       creds.LLMAPIKey,
		EmbeddingAPIKey: creds.EmbeddingAPIKey,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode initialize request: %w", err)
	}
	if _, err := c.call(ctx, "initialize", pathInitialize, "application/json", body, nil); err != nil {
		c.initialized.Store(false)
		return err
	}

	c.initialized.Store(true)
	c.logger.Info().Object("settings", settings).Msg("Agent initialized")
	return nil
}

// Chat implements Service.
func (c *HTTPClient) Chat(ctx context.Context, query, sessionID string) (*ChatResponse, error) {
	if !c.initialized.Load() {
		return nil, ErrNotInitialized
	}
	body, err := json.Marshal(chatRequest{Query: query, SessionID: sessionID})
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}
	return castResult[ChatResponse](c.call(ctx, "chat", pathChat, "application/json", body, &ChatResponse{}))
}

// AnalyzePoster uploads the image at path as multipart field "image".
func (c *HTTPClient) AnalyzePoster(ctx context.Context, path, sessionID string) (*PosterResponse, error) {
	if !c.initialized.Load() {
		return nil, ErrNotInitialized
	}
	body, contentType, err := posterForm(path, sessionID)
	if err != nil {
		return nil, err
	}
	return castResult[PosterResponse](c.call(ctx, "poster", pathPoster, contentType, body, &PosterResponse{}))
}

// ClearMemory implements Service.
func (c *HTTPClient) ClearMemory(ctx context.Context, sessionID string) error {
	if !c.initialized.Load() {
		return ErrNotInitialized
	}
	body, err := json.Marshal(sessionRequest{SessionID: sessionID})
	if err != nil {
		return fmt.Errorf("encode clear request: %w", err)
	}
	_, err = c.call(ctx, "clear_memory", pathClearMemory, "application/json", body, nil)
	return err
}

// Close marks the client uninitialized and drops idle connections.
func (c *HTTPClient) Close() error {
	c.initialized.Store(false)
	c.client.CloseIdleConnections()
	return nil
}

// call performs one rate-limited, breaker-protected POST and decodes the
// reply into out when out is non-nil. It returns out.
func (c *HTTPClient) call(ctx context.Context, op, path, contentType string, body []byte, out interface{}) (interface{}, error) {
	start := time.Now()
	result, err := c.breaker.execute(func() (interface{}, error) {
		return out, c.roundTrip(ctx, op, path, contentType, body, out)
	})
	metrics.RecordAgentRequest(op, time.Since(start), err)

	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("operation", op).Msg("Agent request failed")
	}
	return result, err
}

func (c *HTTPClient) roundTrip(ctx context.Context, op, path, contentType string, body []byte, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("agent %s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if id := logging.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("agent %s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Body:       string(readBodyForError(resp.Body)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodySize))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, c.maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

// readBodyForError reads at most maxErrorBodySize bytes of r.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return bytes.TrimSpace(body)
}

func posterForm(path, sessionID string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open poster: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("session_id", sessionID); err != nil {
		return nil, "", err
	}
	part, err := w.CreateFormFile("image", filepath.Base(path))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("read poster: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// BreakerState reports the circuit breaker state: closed, half-open or open.
func (c *HTTPClient) BreakerState() string {
	return stateToString(c.breaker.state())
}
