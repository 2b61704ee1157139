// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/abzanganeh/movie-agent-demo/internal/logging"
)

type contextKey struct{}

// MiddlewareConfig controls the session cookie.
type MiddlewareConfig struct {
	CookieName   string
	TTL          time.Duration
	CookieSecure bool
}

// DefaultMiddlewareConfig returns the defaults used when nil is passed.
func DefaultMiddlewareConfig() *MiddlewareConfig {
	return &MiddlewareConfig{
		CookieName: "movie_agent_session",
		TTL:        24 * time.Hour,
	}
}

// Middleware attaches a session to every request, creating one (and its
// cookie) for browsers that have none.
type Middleware struct {
	store  Store
	config *MiddlewareConfig
}

// NewMiddleware creates a session middleware.
func NewMiddleware(store Store, config *MiddlewareConfig) *Middleware {
	if config == nil {
		config = DefaultMiddlewareConfig()
	}
	return &Middleware{store: store, config: config}
}

// Handler is the chi-compatible middleware func.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		s := m.lookup(ctx, r)
		if s == nil {
			s = New(m.config.TTL)
			if err := m.store.Create(ctx, s); err != nil {
				logging.Ctx(ctx).Error().Err(err).Msg("Failed to create session")
			}
		}
		m.setCookie(w, s)

		ctx = context.WithValue(ctx, contextKey{}, s)
		ctx = logging.ContextWithSessionID(ctx, s.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// lookup returns the cookie's session with its expiry slid forward, or nil.
func (m *Middleware) lookup(ctx context.Context, r *http.Request) *Session {
	c, err := r.Cookie(m.config.CookieName)
	if err != nil || c.Value == "" {
		return nil
	}

	s, err := m.store.Get(ctx, c.Value)
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrExpired) {
			logging.Ctx(ctx).Error().Err(err).Msg("Session lookup failed")
		}
		return nil
	}

	now := time.Now().UTC()
	s.LastAccessedAt = now
	s.ExpiresAt = now.Add(m.config.TTL)
	if err := m.store.Save(ctx, s); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to extend session")
	}
	return s
}

func (m *Middleware) setCookie(w http.ResponseWriter, s *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    s.ID,
		Path:     "/",
		Expires:  s.ExpiresAt,
		MaxAge:   int(m.config.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromContext returns the request's session.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok
}
