// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package agent

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/abzanganeh/movie-agent-demo/internal/logging"
)

// fakeAgentServer mimics the agent service endpoints.
type fakeAgentServer struct {
	t          *testing.T
	initBody   atomic.Value // initializeRequest
	posterName atomic.Value // string
	requestID  atomic.Value // string
	chatStatus int
}

func (f *fakeAgentServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(pathInitialize, func(w http.ResponseWriter, r *http.Request) {
		var req initializeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.initBody.Store(req)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc(pathChat, func(w http.ResponseWriter, r *http.Request) {
		f.requestID.Store(r.Header.Get("X-Request-ID"))
		if f.chatStatus != 0 {
			http.Error(w, "agent exploded", f.chatStatus)
			return
		}
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(ChatResponse{
			Answer:        "You asked: " + req.Query + " in " + req.SessionID,
			ToolsUsed:     []string{"movie_search"},
			LatencyMS:     12.5,
			ReasoningType: "tool",
		})
	})
	mux.HandleFunc(pathPoster, func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("image")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		f.posterName.Store(header.Filename + ":" + string(data) + ":" + r.FormValue("session_id"))
		_ = json.NewEncoder(w).Encode(PosterResponse{
			Title: "Alien", Mood: "tense", Confidence: 0.87, InferredGenres: []string{"horror"},
		})
	})
	mux.HandleFunc(pathClearMemory, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func newTestClient(t *testing.T, fake *fakeAgentServer) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	return NewHTTPClient(ClientConfig{
		BaseURL:         srv.URL + "/",
		Timeout:         5 * time.Second,
		BreakerFailures: 2,
		BreakerTimeout:  time.Minute,
	})
}

func TestHTTPClient_RequiresInitialize(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, &fakeAgentServer{t: t})
	ctx := context.Background()

	if _, err := c.Chat(ctx, "hi", "s1"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Chat() error = %v, want ErrNotInitialized", err)
	}
	if _, err := c.AnalyzePoster(ctx, "x.png", "s1"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("AnalyzePoster() error = %v, want ErrNotInitialized", err)
	}
	if err := c.ClearMemory(ctx, "s1"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("ClearMemory() error = %v, want ErrNotInitialized", err)
	}
}

func TestHTTPClient_InitializeAndChat(t *testing.T) {
	t.Parallel()
	fake := &fakeAgentServer{t: t}
	c := newTestClient(t, fake)

	settings := DefaultSettings()
	settings.OpenAIAPIKey = "sk-embed"
	settings.OpenAILLMAPIKey = "sk-llm"

	ctx := logging.ContextWithRequestID(context.Background(), "req-42")
	if err := c.Initialize(ctx, settings); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	init, _ := fake.initBody.Load().(initializeRequest)
	if init.LLMAPIKey != "sk-llm" || init.EmbeddingAPIKey != "sk-embed" {
		t.Errorf("initialize credentials = %q/%q, want sk-llm/sk-embed", init.LLMAPIKey, init.EmbeddingAPIKey)
	}
	if init.LLMModel != DefaultLLMModel || init.MemoryMaxTurns != DefaultMemoryMaxTurns {
		t.Errorf("initialize settings = %+v", init)
	}

	resp, err := c.Chat(ctx, "something scary", "s1")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.Answer != "You asked: something scary in s1" {
		t.Errorf("Answer = %q", resp.Answer)
	}
	if resp.LatencyMS != 12.5 || resp.ReasoningType != "tool" {
		t.Errorf("response = %+v", resp)
	}
	if got, _ := fake.requestID.Load().(string); got != "req-42" {
		t.Errorf("X-Request-ID = %q, want req-42", got)
	}

	if err := c.ClearMemory(ctx, "s1"); err != nil {
		t.Errorf("ClearMemory() error = %v", err)
	}

	_ = c.Close()
	if _, err := c.Chat(ctx, "again", "s1"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Chat() after Close error = %v, want ErrNotInitialized", err)
	}
}

func TestHTTPClient_AnalyzePoster(t *testing.T) {
	t.Parallel()
	fake := &fakeAgentServer{t: t}
	c := newTestClient(t, fake)
	ctx := context.Background()

	if err := c.Initialize(ctx, DefaultSettings()); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "poster.png")
	if err := os.WriteFile(path, []byte("PNGDATA"), 0o600); err != nil {
		t.Fatal(err)
	}

	resp, err := c.AnalyzePoster(ctx, path, "s9")
	if err != nil {
		t.Fatalf("AnalyzePoster() error = %v", err)
	}
	if resp.Title != "Alien" || resp.Confidence != 0.87 {
		t.Errorf("response = %+v", resp)
	}
	if got, _ := fake.posterName.Load().(string); got != "poster.png:PNGDATA:s9" {
		t.Errorf("uploaded = %q", got)
	}

	if _, err := c.AnalyzePoster(ctx, filepath.Join(t.TempDir(), "missing.png"), "s9"); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestHTTPClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	t.Parallel()
	fake := &fakeAgentServer{t: t, chatStatus: http.StatusBadRequest}
	c := newTestClient(t, fake)
	ctx := context.Background()
	_ = c.Initialize(ctx, DefaultSettings())

	for i := 0; i < 5; i++ {
		_, err := c.Chat(ctx, "q", "s")
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
			t.Fatalf("Chat() error = %v, want APIError 400", err)
		}
	}
	if got := c.BreakerState(); got != "closed" {
		t.Errorf("BreakerState() = %q, want closed", got)
	}
}

func TestHTTPClient_ServerErrorsTripBreaker(t *testing.T) {
	t.Parallel()
	fake := &fakeAgentServer{t: t, chatStatus: http.StatusInternalServerError}
	c := newTestClient(t, fake)
	ctx := context.Background()
	_ = c.Initialize(ctx, DefaultSettings())

	for i := 0; i < 2; i++ {
		if _, err := c.Chat(ctx, "q", "s"); err == nil {
			t.Fatal("expected error")
		}
	}
	if got := c.BreakerState(); got != "open" {
		t.Fatalf("BreakerState() = %q, want open", got)
	}
	if _, err := c.Chat(ctx, "q", "s"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Chat() error = %v, want ErrUnavailable", err)
	}
}

func TestReadBodyForError(t *testing.T) {
	t.Parallel()

	big := make([]byte, maxErrorBodySize+100)
	got := readBodyForError(bytes.NewReader(big))
	if len(got) <= maxErrorBodySize {
		t.Fatalf("expected truncation marker, got %d bytes", len(got))
	}
	if string(readBodyForError(bytes.NewReader([]byte(" oops \n")))) != "oops" {
		t.Error("short bodies should be trimmed")
	}
}
