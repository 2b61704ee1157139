// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeLog(t *testing.T, dir, name string, mtime time.Time) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("x\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(p, mtime, mtime); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDailyFileName(t *testing.T) {
	t.Parallel()

	got := dailyFileName("movie_agent", time.Date(2026, 3, 7, 23, 0, 0, 0, time.UTC))
	if got != "movie_agent_20260307.log" {
		t.Errorf("dailyFileName = %q", got)
	}
}

func TestOpenDailyFile_CreatesDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "logs")
	f, err := OpenDailyFile(dir, "movie_agent", time.Now())
	if err != nil {
		t.Fatalf("OpenDailyFile: %v", err)
	}
	defer f.Close()

	if _, err := f.WriteString("line\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestCleanupLogs(t *testing.T) {
	t.Parallel()

	now := time.Now()
	day := 24 * time.Hour

	tests := []struct {
		name        string
		ages        []time.Duration
		maxFiles    int
		maxAge      time.Duration
		wantRemoved int
	}{
		{"nothing to do", []time.Duration{0, day}, 10, 7 * day, 0},
		{"age limit", []time.Duration{0, 8 * day, 9 * day}, 10, 7 * day, 2},
		{"count limit", []time.Duration{0, day, 2 * day, 3 * day}, 2, 0, 2},
		{"both limits", []time.Duration{0, day, 2 * day, 30 * day}, 2, 7 * day, 2},
		{"limits disabled", []time.Duration{0, 90 * day}, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			for i, age := range tt.ages {
				writeLog(t, dir, dailyFileName("movie_agent", now.Add(-time.Duration(i)*day)), now.Add(-age))
			}
			other := writeLog(t, dir, "keep.txt", now.Add(-100*day))

			res, err := CleanupLogs(dir, "movie_agent_*.log", tt.maxFiles, tt.maxAge, now)
			if err != nil {
				t.Fatalf("CleanupLogs: %v", err)
			}
			if res.Scanned != len(tt.ages) {
				t.Errorf("Scanned = %d, want %d", res.Scanned, len(tt.ages))
			}
			if len(res.Removed) != tt.wantRemoved {
				t.Errorf("removed %d files, want %d (%v)", len(res.Removed), tt.wantRemoved, res.Removed)
			}
			if _, err := os.Stat(other); err != nil {
				t.Errorf("non-matching file removed: %v", err)
			}
		})
	}
}

func TestCleanupLogs_KeepsNewest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	now := time.Now()
	newest := writeLog(t, dir, "movie_agent_20260103.log", now)
	writeLog(t, dir, "movie_agent_20260102.log", now.Add(-time.Hour))
	writeLog(t, dir, "movie_agent_20260101.log", now.Add(-2*time.Hour))

	if _, err := CleanupLogs(dir, "movie_agent_*.log", 1, 0, now); err != nil {
		t.Fatalf("CleanupLogs: %v", err)
	}
	if _, err := os.Stat(newest); err != nil {
		t.Errorf("newest log removed: %v", err)
	}
	left, _ := filepath.Glob(filepath.Join(dir, "movie_agent_*.log"))
	if len(left) != 1 {
		t.Errorf("expected 1 log left, got %d", len(left))
	}
}

func TestCleanupLogs_MissingDir(t *testing.T) {
	t.Parallel()

	res, err := CleanupLogs(filepath.Join(t.TempDir(), "absent"), "*.log", 10, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Scanned != 0 {
		t.Errorf("Scanned = %d", res.Scanned)
	}
}
