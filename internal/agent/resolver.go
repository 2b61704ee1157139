// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package agent

import (
	"os"
	"path/filepath"
	"sync"
)

// serviceDirName is the checkout directory of the agent service.
const serviceDirName = "movie-agent-service"

// PathResolver locates the agent service source tree. The first hit is
// cached; misses are retried on the next call.
type PathResolver struct {
	configured string
	baseDir    string

	mu       sync.Mutex
	resolved string
}

// NewPathResolver creates a resolver. configured, when set, is tried first;
// baseDir anchors the sibling and nested checkouts.
func NewPathResolver(configured, baseDir string) *PathResolver {
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}
	return &PathResolver{configured: configured, baseDir: baseDir}
}

// Candidates lists the directories Resolve checks, in order.
func (r *PathResolver) Candidates() []string {
	var out []string
	if r.configured != "" {
		out = append(out, r.configured)
	}
	return append(out,
		filepath.Join(filepath.Dir(r.baseDir), serviceDirName, "src"),
		filepath.Join(r.baseDir, serviceDirName, "src"),
	)
}

// Resolve returns the absolute path of the first candidate that is a
// directory.
func (r *PathResolver) Resolve() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.resolved != "" {
		return r.resolved, true
	}
	for _, dir := range r.Candidates() {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		r.resolved = abs
		return abs, true
	}
	return "", false
}
