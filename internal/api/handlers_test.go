// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package api

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/abzanganeh/movie-agent-demo/internal/agent"
	"github.com/abzanganeh/movie-agent-demo/internal/secrets"
	"github.com/abzanganeh/movie-agent-demo/internal/session"
)

const (
	validOpenAIKey = "sk-test-0123456789"
	validGroqKey   = "gsk_test_0123456789"
)

// fakeAgent records calls and returns canned responses.
type fakeAgent struct {
	mu          sync.Mutex
	initErr     error
	chatErr     error
	posterErr   error
	settings    agent.Settings
	chats       []string
	posterPaths []string
	cleared     []string
	closed      bool
}

func (f *fakeAgent) Initialize(_ context.Context, s agent.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings = s
	return f.initErr
}

func (f *fakeAgent) Chat(_ context.Context, query, sessionID string) (*agent.ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	f.chats = append(f.chats, sessionID+":"+query)
	return &agent.ChatResponse{Answer: "Try Alien", ToolsUsed: []string{"search"}, LatencyMS: 5}, nil
}

func (f *fakeAgent) AnalyzePoster(_ context.Context, path, _ string) (*agent.PosterResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	f.posterPaths = append(f.posterPaths, path)
	if f.posterErr != nil {
		return nil, f.posterErr
	}
	return &agent.PosterResponse{Title: "Alien", Mood: "tense", Confidence: 0.9, Caption: "A dark corridor"}, nil
}

func (f *fakeAgent) ClearMemory(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, sessionID)
	return nil
}

func (f *fakeAgent) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

type testEnv struct {
	t        *testing.T
	manager  *secrets.Manager
	agent    *fakeAgent
	holder   *agent.Holder
	sessions *session.MemoryStore
	server   http.Handler
	cookie   *http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithManager(t, secrets.NewManager(secrets.Options{Dir: t.TempDir()}))
}

func newTestEnvWithManager(t *testing.T, m *secrets.Manager) *testEnv {
	t.Helper()

	env := &testEnv{
		t:        t,
		manager:  m,
		agent:    &fakeAgent{},
		sessions: session.NewMemoryStore(),
	}
	env.holder = agent.NewHolder(func() agent.Service { return env.agent })

	h, err := NewHandler(HandlerDeps{
		Config:   env.manager,
		Agents:   env.holder,
		Sessions: env.sessions,
		Resolver: agent.NewPathResolver("", t.TempDir()),
		Upload:   UploadConfig{MaxBytes: 1 << 20},
	})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	mwCfg := DefaultChiMiddlewareConfig()
	mwCfg.RateLimitDisabled = true
	sessMw := session.NewMiddleware(env.sessions, &session.MiddlewareConfig{CookieName: "sid", TTL: time.Hour})
	env.server = NewRouter(h, mwCfg, sessMw).SetupChi()
	return env
}

func (e *testEnv) configure() {
	e.t.Helper()
	if err := e.manager.Save(secrets.Settings{
		"llm_provider":   "openai",
		"openai_api_key": validOpenAIKey,
	}); err != nil {
		e.t.Fatalf("Save() error = %v", err)
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	e.t.Helper()
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == "sid" {
			e.cookie = c
		}
	}
	return rec
}

func (e *testEnv) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return e.do(req)
}

func (e *testEnv) postPoster(field, filename string, content []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if filename != "" || field != "" {
		part, err := w.CreateFormFile(field, filename)
		if err != nil {
			e.t.Fatal(err)
		}
		_, _ = part.Write(content)
	}
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/poster", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return e.do(req)
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return resp
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decodeResponse(t, rec)
	if resp.Error == nil {
		t.Fatalf("expected error body, got %s", rec.Body.String())
	}
	return resp.Error.Code
}

func TestIndexAndSetupPages(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/setup" {
		t.Fatalf("GET / unconfigured = %d %q, want 302 /setup", rec.Code, rec.Header().Get("Location"))
	}

	rec = env.do(httptest.NewRequest(http.MethodGet, "/setup", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "llm_provider") {
		t.Fatalf("GET /setup unconfigured = %d", rec.Code)
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("pages should carry a content security policy")
	}

	env.configure()

	rec = env.do(httptest.NewRequest(http.MethodGet, "/setup", nil))
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/" {
		t.Fatalf("GET /setup configured = %d %q, want 302 /", rec.Code, rec.Header().Get("Location"))
	}

	rec = env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/chat") {
		t.Fatalf("GET / configured = %d", rec.Code)
	}
}

func TestSetup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"not json", "not json", http.StatusBadRequest, ErrCodeBadRequest, "No JSON data provided"},
		{"array", `["a"]`, http.StatusBadRequest, ErrCodeBadRequest, "No JSON data provided"},
		{"null", `null`, http.StatusBadRequest, ErrCodeBadRequest, "No JSON data provided"},
		{"missing provider", `{"openai_api_key":"` + validOpenAIKey + `"}`, http.StatusBadRequest, ErrCodeValidationFailed, "LLM provider is required"},
		{"groq without key", `{"llm_provider":"groq","openai_api_key":"` + validOpenAIKey + `"}`, http.StatusBadRequest, ErrCodeValidationFailed, "Groq API key is required when using Groq"},
		{"bad openai key", `{"llm_provider":"openai","openai_api_key":"abc"}`, http.StatusBadRequest, ErrCodeValidationFailed, "OpenAI API key format appears invalid (should start with 'sk-')"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t)

			rec := env.postJSON("/setup", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			resp := decodeResponse(t, rec)
			if resp.Error == nil || resp.Error.Code != tt.wantCode || resp.Error.Message != tt.wantMsg {
				t.Errorf("error = %+v, want %s %q", resp.Error, tt.wantCode, tt.wantMsg)
			}
			if env.manager.IsConfigured() {
				t.Error("rejected setup must not store anything")
			}
		})
	}
}

func TestSetup_SavesAndInitializes(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	body := `{"llm_provider":"groq","groq_api_key":"` + validGroqKey + `","openai_api_key":"` + validOpenAIKey + `","llm_model":"llama"}`
	rec := env.postJSON("/setup", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	stored, err := env.manager.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if stored["groq_api_key"] != validGroqKey || stored["llm_model"] != "llama" {
		t.Errorf("stored = %v", stored)
	}
	if !env.holder.Initialized() {
		t.Error("agent should be initialized after setup")
	}
	if env.agent.settings.LLMProvider != "groq" || env.agent.settings.LLMModel != "llama" {
		t.Errorf("agent settings = %+v", env.agent.settings)
	}
}

func TestSetup_AgentInitFailureKeepsConfig(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.agent.initErr = errors.New("model not found")

	rec := env.postJSON("/setup", `{"llm_provider":"openai","openai_api_key":"`+validOpenAIKey+`"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if code := errorCode(t, rec); code != ErrCodeAgentInitFailed {
		t.Errorf("code = %s, want %s", code, ErrCodeAgentInitFailed)
	}
	if !env.manager.IsConfigured() {
		t.Error("configuration should be kept when agent initialization fails")
	}
}

func TestChat(t *testing.T) {
	t.Parallel()

	t.Run("not configured", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		rec := env.postJSON("/chat", `{"query":"hi"}`)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", rec.Code)
		}
		if code := errorCode(t, rec); code != ErrCodeServiceUnavailable {
			t.Errorf("code = %s", code)
		}
	})

	t.Run("agent init failure", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.configure()
		env.agent.initErr = errors.New("boom")
		rec := env.postJSON("/chat", `{"query":"hi"}`)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		if code := errorCode(t, rec); code != ErrCodeAgentInitFailed {
			t.Errorf("code = %s", code)
		}
	})

	t.Run("corrupted config", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.configure()
		if err := os.WriteFile(env.manager.ConfigPath(), []byte("garbage"), 0o600); err != nil {
			t.Fatal(err)
		}
		rec := env.postJSON("/chat", `{"query":"hi"}`)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		if code := errorCode(t, rec); code != ErrCodeConfigCorrupted {
			t.Errorf("code = %s, want %s", code, ErrCodeConfigCorrupted)
		}
	})

	bad := []struct {
		name string
		body string
		msg  string
	}{
		{"missing query", `{}`, "Empty query"},
		{"blank query", `{"query":"   "}`, "Empty query"},
		{"bad json", `{"query":`, "Missing 'query' in request body"},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t)
			env.configure()
			rec := env.postJSON("/chat", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if resp := decodeResponse(t, rec); resp.Error.Message != tt.msg {
				t.Errorf("message = %q, want %q", resp.Error.Message, tt.msg)
			}
		})
	}

	t.Run("answers within the session", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.configure()

		rec := env.postJSON("/chat", `{"query":"  something scary  "}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		if env.cookie == nil {
			t.Fatal("session cookie not set")
		}
		_ = env.postJSON("/chat", `{"query":"another"}`)

		if len(env.agent.chats) != 2 {
			t.Fatalf("chats = %v", env.agent.chats)
		}
		want := env.cookie.Value + ":something scary"
		if env.agent.chats[0] != want {
			t.Errorf("first chat = %q, want %q", env.agent.chats[0], want)
		}
		if !strings.HasPrefix(env.agent.chats[1], env.cookie.Value+":") {
			t.Errorf("second chat should reuse the session, got %q", env.agent.chats[1])
		}
	})

	t.Run("agent unavailable", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.configure()
		env.agent.chatErr = agent.ErrUnavailable
		rec := env.postJSON("/chat", `{"query":"hi"}`)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})
}

func TestPoster(t *testing.T) {
	t.Parallel()

	t.Run("not configured", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		if rec := env.postPoster("image", "p.png", []byte("x")); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})

	bad := []struct {
		name     string
		field    string
		filename string
		msg      string
	}{
		{"missing field", "other", "p.png", "Missing 'image' file in form data"},
		{"no parts", "", "", "Missing 'image' file in form data"},
		{"bad extension", "image", "poster.gif", "Unsupported image type. Allowed: .jpg, .jpeg, .png, .webp"},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t)
			env.configure()
			rec := env.postPoster(tt.field, tt.filename, []byte("x"))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
			if resp := decodeResponse(t, rec); resp.Error.Message != tt.msg {
				t.Errorf("message = %q, want %q", resp.Error.Message, tt.msg)
			}
		})
	}

	t.Run("too large", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.configure()
		rec := env.postPoster("image", "big.png", bytes.Repeat([]byte("x"), 3<<19))
		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d, want 413", rec.Code)
		}
	})

	t.Run("analyzes and records", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.configure()

		rec := env.postPoster("image", "Poster.PNG", []byte("PNGDATA"))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}

		if len(env.agent.posterPaths) != 1 {
			t.Fatalf("poster calls = %d, want 1", len(env.agent.posterPaths))
		}
		path := env.agent.posterPaths[0]
		if !strings.HasSuffix(path, ".png") {
			t.Errorf("temp file %q should keep the extension", path)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("temp file %q should be removed", path)
		}

		s, err := env.sessions.Get(context.Background(), env.cookie.Value)
		if err != nil {
			t.Fatal(err)
		}
		if s.Poster == nil || s.Poster.Title != "Alien" || len(s.PosterHistory) != 1 {
			t.Errorf("session poster = %+v history = %d", s.Poster, len(s.PosterHistory))
		}
	})

	t.Run("agent failure removes temp file", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.configure()
		env.agent.posterErr = errors.New("vision failed")

		rec := env.postPoster("image", "p.jpg", []byte("JPEG"))
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		if len(env.agent.posterPaths) != 1 {
			t.Fatal("agent not called")
		}
		if _, err := os.Stat(env.agent.posterPaths[0]); !os.IsNotExist(err) {
			t.Error("temp file should be removed after a failure")
		}
	})
}

func TestClearPosterAndReset(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.configure()

	if rec := env.postPoster("image", "p.png", []byte("x")); rec.Code != http.StatusOK {
		t.Fatalf("poster status = %d", rec.Code)
	}

	rec := env.postJSON("/clear-poster", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("clear-poster status = %d", rec.Code)
	}
	if len(env.agent.cleared) != 1 || env.agent.cleared[0] != env.cookie.Value {
		t.Errorf("cleared = %v, want session %s", env.agent.cleared, env.cookie.Value)
	}
	s, _ := env.sessions.Get(context.Background(), env.cookie.Value)
	if s.Poster != nil || len(s.PosterHistory) != 0 {
		t.Error("poster state should be cleared")
	}

	rec = env.postJSON("/reset-config", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("reset-config status = %d", rec.Code)
	}
	if env.manager.IsConfigured() {
		t.Error("configuration should be deleted")
	}
	if env.holder.Initialized() || !env.agent.closed {
		t.Error("agent should be reset")
	}

	if rec := env.postJSON("/chat", `{"query":"hi"}`); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("chat after reset = %d, want 503", rec.Code)
	}
}

func TestClearPoster_WithoutAgent(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	if rec := env.postJSON("/clear-poster", ""); rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if len(env.agent.cleared) != 0 {
		t.Error("agent memory should not be touched when no agent is live")
	}
}

func TestStorageFailureIsNotReportedAsUnconfigured(t *testing.T) {
	t.Parallel()

	// A regular file where the data directory should be makes every stat
	// fail with ENOTDIR, even for root.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	env := newTestEnvWithManager(t, secrets.NewManager(secrets.Options{Dir: filepath.Join(blocker, "data")}))

	tests := []struct {
		name       string
		req        *http.Request
		wantStatus int
		wantCode   string
	}{
		{"index", httptest.NewRequest(http.MethodGet, "/", nil), http.StatusInternalServerError, ErrCodeInternalError},
		{"setup page", httptest.NewRequest(http.MethodGet, "/setup", nil), http.StatusInternalServerError, ErrCodeInternalError},
		{"chat", jsonRequest("/chat", `{"query":"hi"}`), http.StatusInternalServerError, ErrCodeInternalError},
		{"ready", httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil), http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
	}
	for _, tt := range tests {
		rec := env.do(tt.req)
		if rec.Code != tt.wantStatus {
			t.Errorf("%s: status = %d, want %d (%s)", tt.name, rec.Code, tt.wantStatus, rec.Body.String())
			continue
		}
		if code := errorCode(t, rec); code != tt.wantCode {
			t.Errorf("%s: code = %s, want %s", tt.name, code, tt.wantCode)
		}
	}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	if !strings.Contains(rec.Body.String(), `"state":"unknown"`) {
		t.Errorf("ready body = %s, want state unknown", rec.Body.String())
	}
}

func jsonRequest(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
