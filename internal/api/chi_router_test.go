// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/abzanganeh/movie-agent-demo/internal/agent"
	"github.com/abzanganeh/movie-agent-demo/internal/secrets"
	"github.com/abzanganeh/movie-agent-demo/internal/session"
)

func TestRouter_RequestID(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))
	generated := rec.Header().Get("X-Request-ID")
	if generated == "" {
		t.Fatal("X-Request-ID should be generated")
	}
	resp := decodeResponse(t, rec)
	if resp.Meta == nil || resp.Meta.RequestID != generated {
		t.Errorf("meta request id = %+v, want %s", resp.Meta, generated)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
	req.Header.Set("X-Request-ID", "client-id-1")
	rec = env.do(req)
	if got := rec.Header().Get("X-Request-ID"); got != "client-id-1" {
		t.Errorf("X-Request-ID = %q, want client-id-1", got)
	}
}

func TestRouter_SecurityHeaders(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	tests := []struct {
		name string
		path string
		csp  bool
	}{
		{"health", "/api/v1/health/live", false},
		{"page", "/setup", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(httptest.NewRequest(http.MethodGet, tt.path, nil))
			h := rec.Header()
			if h.Get("X-Content-Type-Options") != "nosniff" || h.Get("X-Frame-Options") != "DENY" {
				t.Errorf("missing security headers: %v", h)
			}
			if h.Get("Cache-Control") != "no-store" {
				t.Errorf("Cache-Control = %q", h.Get("Cache-Control"))
			}
			if got := h.Get("Content-Security-Policy") != ""; got != tt.csp {
				t.Errorf("CSP present = %v, want %v", got, tt.csp)
			}
			if h.Get("Strict-Transport-Security") != "" {
				t.Error("HSTS should only be sent over https")
			}
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	if rec := env.do(req); rec.Header().Get("Strict-Transport-Security") == "" {
		t.Error("HSTS expected for https requests")
	}
}

func TestRouter_SessionCookieOnlyOnAppRoutes(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))
	if len(rec.Result().Cookies()) != 0 {
		t.Error("health endpoints should not set cookies")
	}

	rec = env.do(httptest.NewRequest(http.MethodGet, "/setup", nil))
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "sid" || !cookies[0].HttpOnly {
		t.Fatalf("cookies = %+v", cookies)
	}
}

func TestRouter_NotFound(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if code := errorCode(t, rec); code != ErrCodeNotFound {
		t.Errorf("code = %s", code)
	}
}

func TestRouter_Metrics(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	_ = env.do(httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))
	rec := env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `endpoint="/api/v1/health/live"`) {
		t.Error("metrics should label requests by route pattern")
	}
}

func TestRouter_SetupRateLimit(t *testing.T) {
	t.Parallel()

	h, err := NewHandler(HandlerDeps{
		Config:   secrets.NewManager(secrets.Options{Dir: t.TempDir()}),
		Agents:   agent.NewHolder(func() agent.Service { return &fakeAgent{} }),
		Sessions: session.NewMemoryStore(),
	})
	if err != nil {
		t.Fatal(err)
	}
	sessMw := session.NewMiddleware(session.NewMemoryStore(), &session.MiddlewareConfig{CookieName: "sid", TTL: time.Hour})
	server := NewRouter(h, DefaultChiMiddlewareConfig(), sessMw).SetupChi()

	var last *httptest.ResponseRecorder
	for i := 0; i <= RateLimitSetup.Requests; i++ {
		req := httptest.NewRequest(http.MethodPost, "/setup", strings.NewReader("{}"))
		req.RemoteAddr = "192.0.2.10:1234"
		last = httptest.NewRecorder()
		server.ServeHTTP(last, req)
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("status after %d requests = %d, want 429", RateLimitSetup.Requests+1, last.Code)
	}

	var resp APIResponse
	if err := json.Unmarshal(last.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error == nil || resp.Error.Code != ErrCodeTooManyRequests {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestHealthReadyAndSetupStatus(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("ready unconfigured = %d, want 503", rec.Code)
	}

	status := func() SetupStatus {
		t.Helper()
		rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/health/setup", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("setup status = %d", rec.Code)
		}
		var body struct {
			Data SetupStatus `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		return body.Data
	}

	st := status()
	if st.State != "unconfigured" || st.Configured || len(st.Recommendations) == 0 {
		t.Errorf("unconfigured status = %+v", st)
	}
	if st.ServicePathFound {
		t.Error("no agent service checkout exists in the temp dir")
	}

	env.configure()
	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ready configured = %d, want 200", rec.Code)
	}
	st = status()
	if st.State != "configured" || !st.Configured || st.AgentInitialized {
		t.Errorf("configured status = %+v", st)
	}
	if st.Permissions["config"] == "" {
		t.Error("permission outcome should be reported after a save")
	}
}
