// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package api

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/abzanganeh/movie-agent-demo/internal/agent"
	"github.com/abzanganeh/movie-agent-demo/internal/logging"
	"github.com/abzanganeh/movie-agent-demo/internal/secrets"
	"github.com/abzanganeh/movie-agent-demo/internal/session"
)

// ConfigStore is the secure configuration store. *secrets.Manager
// implements it.
type ConfigStore interface {
	IsConfigured() bool
	Present() (bool, error)
	State() (secrets.State, error)
	Save(settings secrets.Settings) error
	Load() (secrets.Settings, error)
	Delete() error
	LastPermissionReport() secrets.PermissionReport
}

// UploadConfig limits poster uploads.
type UploadConfig struct {
	MaxBytes          int64
	AllowedExtensions []string
}

// Handler serves every route.
type Handler struct {
	config     ConfigStore
	agents     *agent.Holder
	sessions   session.Store
	resolver   *agent.PathResolver
	upload     UploadConfig
	sessionTTL time.Duration
	pages      *template.Template
	startTime  time.Time
}

// HandlerDeps are the collaborators a Handler needs.
type HandlerDeps struct {
	Config     ConfigStore
	Agents     *agent.Holder
	Sessions   session.Store
	Resolver   *agent.PathResolver
	Upload     UploadConfig
	SessionTTL time.Duration
}

// NewHandler creates the handler and parses the page templates.
func NewHandler(deps HandlerDeps) (*Handler, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	upload := deps.Upload
	if upload.MaxBytes <= 0 {
		upload.MaxBytes = 10 << 20
	}
	if len(upload.AllowedExtensions) == 0 {
		upload.AllowedExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}
	}
	exts := make([]string, 0, len(upload.AllowedExtensions))
	for _, ext := range upload.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	upload.AllowedExtensions = exts

	ttl := deps.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Handler{
		config:     deps.Config,
		agents:     deps.Agents,
		sessions:   deps.Sessions,
		resolver:   deps.Resolver,
		upload:     upload,
		sessionTTL: ttl,
		pages:      pages,
		startTime:  time.Now(),
	}, nil
}

// currentSession returns the request's session. Outside the session
// middleware a throwaway session is returned.
func (h *Handler) currentSession(r *http.Request) *session.Session {
	if s, ok := session.FromContext(r.Context()); ok {
		return s
	}
	return session.New(h.sessionTTL)
}

func (h *Handler) saveSession(r *http.Request, s *session.Session) {
	if err := h.sessions.Save(r.Context(), s); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to save session")
	}
}
