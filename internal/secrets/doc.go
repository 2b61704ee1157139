// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

// Package secrets stores the application's setup configuration (provider
// choice, API keys, feature flags) encrypted on local disk.
//
// Two files make up an installation:
//
//   - the master key file (default ".master_key"): 32 raw random bytes
//   - the configuration blob (default "config.encrypted"): AES-256-GCM
//     ciphertext of the canonical JSON encoding of a Settings mapping
//
// The blob is sealed with a data key derived from the master key through
// HKDF-SHA256. Blob layout:
//
//	"MACF" | version (1 byte) | nonce (12 bytes) | ciphertext | GCM tag
//
// The 5-byte header is authenticated as additional data.
//
// The installation is configured iff both files exist. A single file on its
// own is treated as not configured. Losing the key file makes the blob
// permanently unreadable; Delete removes both.
//
// Both files are written owner-only (0600) where the platform has file mode
// bits. Each hardening attempt is reported as a PermissionResult instead of
// being silently ignored.
//
// Usage:
//
//	m := secrets.NewManager(secrets.Options{Dir: dataDir})
//	if err := m.Save(secrets.Settings{"llm_provider": "openai", ...}); err != nil {
//	    return err
//	}
//	settings, err := m.Load()
//	switch {
//	case errors.Is(err, secrets.ErrNotConfigured):
//	    // prompt for setup
//	case errors.Is(err, secrets.ErrCorruptedConfig):
//	    // reset required
//	}
package secrets
