// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/abzanganeh/movie-agent-demo/internal/secrets"
)

type stubService struct {
	initErr  error
	settings Settings
	closed   atomic.Bool
}

func (s *stubService) Initialize(_ context.Context, settings Settings) error {
	s.settings = settings
	return s.initErr
}

func (s *stubService) Chat(context.Context, string, string) (*ChatResponse, error) {
	return &ChatResponse{Answer: "ok"}, nil
}

func (s *stubService) AnalyzePoster(context.Context, string, string) (*PosterResponse, error) {
	return &PosterResponse{}, nil
}

func (s *stubService) ClearMemory(context.Context, string) error { return nil }

func (s *stubService) Close() error {
	s.closed.Store(true)
	return nil
}

type loaderFunc func() (secrets.Settings, error)

func (f loaderFunc) Load() (secrets.Settings, error) { return f() }

func TestHolder_EnsureInitializesOnce(t *testing.T) {
	t.Parallel()

	var built []*stubService
	h := NewHolder(func() Service {
		s := &stubService{}
		built = append(built, s)
		return s
	})
	loader := loaderFunc(func() (secrets.Settings, error) {
		return secrets.Settings{"llm_model": "gpt-4o"}, nil
	})

	for i := 0; i < 3; i++ {
		if _, err := h.Ensure(context.Background(), loader); err != nil {
			t.Fatalf("Ensure() error = %v", err)
		}
	}
	if len(built) != 1 {
		t.Fatalf("built %d services, want 1", len(built))
	}
	if built[0].settings.LLMModel != "gpt-4o" {
		t.Errorf("LLMModel = %q, want gpt-4o", built[0].settings.LLMModel)
	}
	if !h.Initialized() {
		t.Error("Initialized() = false after Ensure")
	}

	h.Reset()
	if !built[0].closed.Load() {
		t.Error("Reset should close the service")
	}
	if h.Initialized() {
		t.Error("Initialized() = true after Reset")
	}

	if _, err := h.Reinitialize(context.Background(), loader); err != nil {
		t.Fatal(err)
	}
	if len(built) != 2 {
		t.Errorf("built %d services after Reinitialize, want 2", len(built))
	}
}

func TestHolder_EnsureErrors(t *testing.T) {
	t.Parallel()

	t.Run("not configured", func(t *testing.T) {
		t.Parallel()
		h := NewHolder(func() Service { return &stubService{} })
		_, err := h.Ensure(context.Background(), loaderFunc(func() (secrets.Settings, error) {
			return nil, secrets.ErrNotConfigured
		}))
		if !errors.Is(err, secrets.ErrNotConfigured) {
			t.Errorf("Ensure() error = %v, want ErrNotConfigured", err)
		}
	})

	t.Run("initialize failure", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		svc := &stubService{initErr: boom}
		h := NewHolder(func() Service { return svc })
		_, err := h.Ensure(context.Background(), loaderFunc(func() (secrets.Settings, error) {
			return secrets.Settings{}, nil
		}))
		if !errors.Is(err, boom) {
			t.Errorf("Ensure() error = %v, want boom", err)
		}
		if !svc.closed.Load() {
			t.Error("failed service should be closed")
		}
		if h.Initialized() {
			t.Error("holder should stay empty after a failed initialize")
		}
	})
}

func TestPathResolver(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	app := filepath.Join(root, "movie-agent-demo")
	sibling := filepath.Join(root, "movie-agent-service", "src")
	nested := filepath.Join(app, "movie-agent-service", "src")
	custom := filepath.Join(root, "custom")

	mkdir := func(dirs ...string) {
		for _, d := range dirs {
			if err := os.MkdirAll(d, 0o755); err != nil {
				t.Fatal(err)
			}
		}
	}
	mkdir(app)

	r := NewPathResolver("", app)
	if _, ok := r.Resolve(); ok {
		t.Fatal("Resolve() should miss before any checkout exists")
	}

	mkdir(nested)
	if got, ok := r.Resolve(); !ok || got != nested {
		t.Errorf("Resolve() = %q, %v; want nested %q", got, ok, nested)
	}

	mkdir(sibling, custom)
	if got, _ := r.Resolve(); got != nested {
		t.Errorf("Resolve() should stay cached at %q, got %q", nested, got)
	}
	if got, _ := NewPathResolver("", app).Resolve(); got != sibling {
		t.Errorf("sibling checkout should win over nested, got %q", got)
	}
	if got, _ := NewPathResolver(custom, app).Resolve(); got != custom {
		t.Errorf("configured dir should win, got %q", got)
	}
}
