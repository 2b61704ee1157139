// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

func parsePages() (*template.Template, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse page templates: %w", err)
	}
	return t, nil
}

type pageData struct {
	Title    string
	SetupURL string
	Accept   string
}

// renderPage executes a page into a buffer first so a template error still
// produces a clean 500.
func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	var buf bytes.Buffer
	if err := h.pages.ExecuteTemplate(&buf, name, data); err != nil {
		NewResponseWriter(w, r).InternalError("Failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// Index serves the chat page, or redirects to setup on a fresh install.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	present, err := h.config.Present()
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !present {
		http.Redirect(w, r, "/setup", http.StatusFound)
		return
	}
	h.renderPage(w, r, "index.html.tmpl", pageData{
		Title:  "Chat",
		Accept: strings.Join(h.upload.AllowedExtensions, ","),
	})
}

// SetupPage serves the setup form, or redirects to the chat page once
// configured.
func (h *Handler) SetupPage(w http.ResponseWriter, r *http.Request) {
	present, err := h.config.Present()
	if err != nil {
		respondError(w, r, err)
		return
	}
	if present {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.renderPage(w, r, "setup.html.tmpl", pageData{Title: "Setup", SetupURL: "/setup"})
}
