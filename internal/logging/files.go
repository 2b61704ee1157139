// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// dailyFileName returns "<prefix>_YYYYMMDD.log" for t.
func dailyFileName(prefix string, t time.Time) string {
	return fmt.Sprintf("%s_%s.log", prefix, t.Format("20060102"))
}

// OpenDailyFile opens (append mode) today's log file in dir, creating dir
// when needed. The caller owns the returned file.
func OpenDailyFile(dir, prefix string, now time.Time) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	path := filepath.Join(dir, dailyFileName(prefix, now))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640) //nolint:gosec // path built from config
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// TeeOutput writes to both the console writer and the file.
func TeeOutput(console io.Writer, file io.Writer) io.Writer {
	if file == nil {
		return console
	}
	return io.MultiWriter(console, file)
}

// CleanupResult reports what CleanupLogs removed.
type CleanupResult struct {
	Scanned int
	Removed []string
}

// CleanupLogs deletes log files in dir matching pattern. Files older than
// maxAge go first, then the oldest of the rest until at most maxFiles remain.
// A zero maxFiles or maxAge disables that rule. A missing dir is not an error.
func CleanupLogs(dir, pattern string, maxFiles int, maxAge time.Duration, now time.Time) (CleanupResult, error) {
	var result CleanupResult

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return result, fmt.Errorf("bad log pattern %q: %w", pattern, err)
	}

	type logFile struct {
		path    string
		modTime time.Time
	}
	files := make([]logFile, 0, len(matches))
	for _, m := range matches {
		info, statErr := os.Stat(m)
		if statErr != nil || info.IsDir() {
			continue
		}
		files = append(files, logFile{path: m, modTime: info.ModTime()})
	}
	result.Scanned = len(files)

	// newest first
	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.After(files[j].modTime)
	})

	var firstErr error
	kept := 0
	for _, f := range files {
		expired := maxAge > 0 && now.Sub(f.modTime) > maxAge
		overflow := maxFiles > 0 && kept >= maxFiles
		if !expired && !overflow {
			kept++
			continue
		}
		if rmErr := os.Remove(f.path); rmErr != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("remove %s: %w", f.path, rmErr)
			}
			continue
		}
		result.Removed = append(result.Removed, f.path)
	}

	return result, firstErr
}
