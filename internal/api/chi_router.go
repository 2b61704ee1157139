// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/abzanganeh/movie-agent-demo/internal/middleware"
	"github.com/abzanganeh/movie-agent-demo/internal/session"
)

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Router wires handlers to routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	sessions      *session.Middleware
}

// NewRouter creates a router. A nil middleware config selects the defaults.
func NewRouter(handler *Handler, mwConfig *ChiMiddlewareConfig, sessions *session.Middleware) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mwConfig),
		sessions:      sessions,
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Applied to ALL routes in order
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(SecurityHeaders())
	r.Use(chiMiddleware(middleware.PrometheusMetrics))

	// ========================
	// Health Endpoints
	// ========================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/setup", router.handler.SetupStatusHandler)
	})

	// ========================
	// Application
	// ========================
	// Everything a browser touches carries a session cookie.
	r.Group(func(r chi.Router) {
		r.Use(router.sessions.Handler)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Use(PageSecurityHeaders())
			r.Get("/", router.handler.Index)
			r.Get("/setup", router.handler.SetupPage)
		})

		// Writing or deleting secrets is limited hardest
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitSetup())
			r.Post("/setup", router.handler.Setup)
			r.Post("/reset-config", router.handler.ResetConfig)
		})

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Post("/chat", router.handler.Chat)
			r.Post("/poster", router.handler.Poster)
			r.Post("/clear-poster", router.handler.ClearPoster)
		})
	})

	// ========================
	// Observability
	// ========================
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusNotFound, ErrCodeNotFound, "Not found")
	})

	return r
}
