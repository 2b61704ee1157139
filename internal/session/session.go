// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

// Package session tracks anonymous browser sessions. A session ties the
// chat history kept by the agent service to one browser, and remembers the
// posters analyzed in it.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no session has the given ID.
	ErrNotFound = errors.New("session not found")

	// ErrExpired is returned for a session past its expiry.
	ErrExpired = errors.New("session expired")
)

// MaxPosterHistory is the number of analyzed posters remembered per session.
const MaxPosterHistory = 3

// PosterState is the result of the most recent poster analysis.
type PosterState struct {
	Title      string    `json:"title"`
	Mood       string    `json:"mood"`
	Confidence float64   `json:"confidence"`
	Caption    string    `json:"caption"`
	Timestamp  time.Time `json:"timestamp"`
}

// Session is one browser's state.
type Session struct {
	ID             string        `json:"id"`
	CreatedAt      time.Time     `json:"created_at"`
	ExpiresAt      time.Time     `json:"expires_at"`
	LastAccessedAt time.Time     `json:"last_accessed_at"`
	Poster         *PosterState  `json:"poster,omitempty"`
	PosterHistory  []PosterState `json:"poster_history,omitempty"`
}

// New creates a session with a random UUID that expires after ttl.
func New(ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:             uuid.NewString(),
		CreatedAt:      now,
		ExpiresAt:      now.Add(ttl),
		LastAccessedAt: now,
	}
}

// IsExpired reports whether the session is past its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// RecordPoster sets the current poster and appends it to the history,
// keeping the newest MaxPosterHistory entries.
func (s *Session) RecordPoster(p PosterState) {
	s.Poster = &p
	s.PosterHistory = append(s.PosterHistory, p)
	if n := len(s.PosterHistory); n > MaxPosterHistory {
		s.PosterHistory = append([]PosterState(nil), s.PosterHistory[n-MaxPosterHistory:]...)
	}
}

// ClearPoster forgets the current poster. The history is kept.
func (s *Session) ClearPoster() {
	s.Poster = nil
}

// Store persists sessions.
type Store interface {
	// Create stores a new session.
	Create(ctx context.Context, s *Session) error

	// Get returns ErrNotFound or ErrExpired when the session is unusable.
	Get(ctx context.Context, id string) (*Session, error)

	// Save overwrites an existing session.
	Save(ctx context.Context, s *Session) error

	// Delete removes a session. Missing sessions are not an error.
	Delete(ctx context.Context, id string) error

	// CleanupExpired removes expired sessions and returns how many.
	CleanupExpired(ctx context.Context) (int, error)

	// Count returns the number of stored sessions.
	Count(ctx context.Context) (int, error)

	// Close releases resources held by the store.
	Close() error
}
