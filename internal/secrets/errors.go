// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package secrets

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned by Load when the key file or the blob is
	// missing. Callers should prompt for setup.
	ErrNotConfigured = errors.New("configuration not set up")

	// ErrCorruptedConfig is returned when the blob cannot be decrypted or
	// parsed, or the key file is malformed. Only a reset recovers from it.
	ErrCorruptedConfig = errors.New("configuration is corrupted")

	// ErrIO wraps filesystem failures (permissions, missing directories,
	// full disks). The underlying *fs.PathError stays reachable with errors.As.
	ErrIO = errors.New("configuration storage I/O failure")
)

var (
	errInvalidKeyLength   = errors.New("master key has invalid length")
	errBlobTooShort       = errors.New("blob too short")
	errBadMagic           = errors.New("blob header not recognized")
	errUnsupportedVersion = errors.New("unsupported blob version")
	errAuthentication     = errors.New("authentication failed: wrong key or tampered data")
	errNotObject          = errors.New("decrypted payload is not a JSON object")
)

func corrupted(op string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrCorruptedConfig, op, cause)
}

func ioFailure(op string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, op, cause)
}

// outcomeLabel classifies err for the config operations metric.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrCorruptedConfig):
		return "corrupted"
	case errors.Is(err, ErrIO):
		return "io_error"
	default:
		return "error"
	}
}
