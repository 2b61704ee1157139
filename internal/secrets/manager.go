// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package secrets

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/abzanganeh/movie-agent-demo/internal/logging"
	"github.com/abzanganeh/movie-agent-demo/internal/metrics"
)

const (
	// DefaultConfigFile is the blob file name.
	DefaultConfigFile = "config.encrypted"

	// DefaultKeyFile is the master key file name.
	DefaultKeyFile = ".master_key"
)

// Settings is the flat configuration mapping persisted by the Manager.
// Values are JSON types: string, float64, bool, nil, []any, map[string]any.
// Other Go numeric types are accepted by Save and come back as float64.
type Settings map[string]any

// State is the readiness of an installation.
type State int

const (
	// StateUnconfigured means the key file, the blob, or both are missing.
	StateUnconfigured State = iota
	// StateConfigured means both files exist and the blob decrypts.
	StateConfigured
	// StateCorrupted means both files exist but the blob cannot be read back.
	StateCorrupted
)

func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateConfigured:
		return "configured"
	case StateCorrupted:
		return "corrupted"
	default:
		return "unknown"
	}
}

// Options configures a Manager. Zero values select the defaults.
type Options struct {
	// Dir is the directory the default file names resolve against.
	Dir string

	// ConfigPath overrides the blob location.
	ConfigPath string

	// KeyPath overrides the master key location.
	KeyPath string

	// Rand is the entropy source for keys and nonces.
	Rand io.Reader
}

// Manager owns the master key lifecycle and the encrypted configuration
// blob. Construct one per installation and share it; operations on one
// Manager are serialized internally. Coordination between processes is the
// caller's concern.
type Manager struct {
	configPath string
	keyPath    string
	rand       io.Reader
	logger     zerolog.Logger

	mu         sync.Mutex
	sealer     *sealer // cached for the lifetime of the instance
	lastReport PermissionReport
}

// NewManager creates a Manager. No files are touched until the first
// operation that needs them.
func NewManager(opts Options) *Manager {
	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = filepath.Join(opts.Dir, DefaultConfigFile)
	}
	keyPath := opts.KeyPath
	if keyPath == "" {
		keyPath = filepath.Join(opts.Dir, DefaultKeyFile)
	}
	random := opts.Rand
	if random == nil {
		random = rand.Reader
	}

	return &Manager{
		configPath: configPath,
		keyPath:    keyPath,
		rand:       random,
		logger:     logging.WithComponent("secrets"),
	}
}

// ConfigPath returns the blob location.
func (m *Manager) ConfigPath() string { return m.configPath }

// KeyPath returns the master key location.
func (m *Manager) KeyPath() string { return m.keyPath }

// IsConfigured reports whether both the key file and the blob exist.
// It only stats the files. A stat failure counts as not configured; use
// Present to tell the two apart.
func (m *Manager) IsConfigured() bool {
	ok, err := m.Present()
	return ok && err == nil
}

// Present stats both files. Only fs.ErrNotExist means absent; any other
// stat failure (e.g. permission denied on the directory) is an ErrIO.
func (m *Manager) Present() (bool, error) {
	for _, p := range []string{m.keyPath, m.configPath} {
		ok, err := statExists(p)
		if err != nil {
			return false, ioFailure("stat "+filepath.Base(p), err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// State performs the full readiness check: both files present, key well
// formed, blob decrypts to a JSON object. The error is non-nil only for
// filesystem failures, in which case the state is unknown and reported as
// StateUnconfigured.
func (m *Manager) State() (State, error) {
	_, err := m.Load()
	switch {
	case err == nil:
		return StateConfigured, nil
	case errors.Is(err, ErrNotConfigured):
		return StateUnconfigured, nil
	case errors.Is(err, ErrCorruptedConfig):
		return StateCorrupted, nil
	default:
		return StateUnconfigured, err
	}
}

// Save encrypts settings and overwrites the blob. The master key is created
// on first use. Numbers are stored as JSON numbers, so Load returns them as
// float64 whatever their Go type was. Both files are hardened to owner-only access afterwards;
// the outcome is available from LastPermissionReport.
func (m *Manager) Save(settings Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.saveLocked(settings)
	metrics.RecordConfigOperation("save", outcomeLabel(err))
	return err
}

func (m *Manager) saveLocked(settings Settings) error {
	s, err := m.sealerLocked(true)
	if err != nil {
		return err
	}

	plaintext, err := encodeSettings(settings)
	if err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}
	blob, err := s.seal(plaintext)
	if err != nil {
		return fmt.Errorf("encrypt configuration: %w", err)
	}

	if err := ensureDir(m.configPath); err != nil {
		return ioFailure("create config directory", err)
	}
	if err := writeFileAtomic(m.configPath, blob, OwnerOnly); err != nil {
		return ioFailure("write config blob", err)
	}

	m.lastReport = PermissionReport{
		Key:    m.harden(m.keyPath),
		Config: m.harden(m.configPath),
	}

	m.logger.Info().
		Str("path", m.configPath).
		Int("keys", len(settings)).
		Msg("Configuration saved")
	return nil
}

// Load decrypts and returns the stored settings. It returns ErrNotConfigured
// when either file is missing, ErrCorruptedConfig when the key or the blob
// cannot be used, and ErrIO for filesystem failures.
func (m *Manager) Load() (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	settings, err := m.loadLocked()
	metrics.RecordConfigOperation("load", outcomeLabel(err))
	return settings, err
}

func (m *Manager) loadLocked() (Settings, error) {
	present, err := m.Present()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, ErrNotConfigured
	}

	s, err := m.sealerLocked(false)
	if err != nil {
		return nil, err
	}

	blob, err := os.ReadFile(m.configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotConfigured
		}
		return nil, ioFailure("read config blob", err)
	}

	plaintext, err := s.open(blob)
	if err != nil {
		return nil, corrupted("decrypt config blob", err)
	}
	settings, err := decodeSettings(plaintext)
	if err != nil {
		return nil, corrupted("parse config blob", err)
	}
	return settings, nil
}

// Update shallow-merges updates over the stored settings and saves the
// result. An unconfigured installation starts from an empty mapping; a
// corrupted one fails.
func (m *Manager) Update(updates Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.updateLocked(updates)
	metrics.RecordConfigOperation("update", outcomeLabel(err))
	return err
}

func (m *Manager) updateLocked(updates Settings) error {
	current, err := m.loadLocked()
	if err != nil && !errors.Is(err, ErrNotConfigured) {
		return err
	}

	merged := make(Settings, len(current)+len(updates))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range updates {
		merged[k] = v
	}
	return m.saveLocked(merged)
}

// Delete removes the blob and the master key. Missing files are ignored.
// The cached key is dropped so a later Save generates a fresh one.
func (m *Manager) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sealer = nil
	m.lastReport = PermissionReport{}

	var errs []error
	for _, p := range []string{m.configPath, m.keyPath} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, ioFailure("remove "+filepath.Base(p), err))
		}
	}

	err := errors.Join(errs...)
	metrics.RecordConfigOperation("delete", outcomeLabel(err))
	if err == nil {
		m.logger.Info().Msg("Configuration and master key deleted")
	}
	return err
}

// LastPermissionReport returns the hardening results from the last
// successful Save.
func (m *Manager) LastPermissionReport() PermissionReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastReport
}

// sealerLocked returns the cached sealer, reading the key file on first
// use. With create set, a missing key file (or one removed behind the
// cache's back) is replaced by a freshly generated key.
func (m *Manager) sealerLocked(create bool) (*sealer, error) {
	if m.sealer != nil {
		if !create {
			return m.sealer, nil
		}
		ok, err := statExists(m.keyPath)
		if err != nil {
			return nil, ioFailure("stat master key", err)
		}
		if ok {
			return m.sealer, nil
		}
		m.logger.Warn().Str("path", m.keyPath).Msg("Master key file disappeared; generating a new key")
		m.sealer = nil
	}

	key, err := os.ReadFile(m.keyPath)
	switch {
	case err == nil:
		if info, statErr := os.Stat(m.keyPath); statErr == nil && tooOpen(info.Mode()) {
			m.logger.Warn().
				Str("path", m.keyPath).
				Str("mode", info.Mode().Perm().String()).
				Msg("Master key file is readable by other users")
		}
	case errors.Is(err, fs.ErrNotExist) && create:
		if key, err = m.createKey(); err != nil {
			return nil, err
		}
	case errors.Is(err, fs.ErrNotExist):
		return nil, ErrNotConfigured
	default:
		return nil, ioFailure("read master key", err)
	}

	s, err := newSealer(key, m.rand)
	if err != nil {
		if errors.Is(err, errInvalidKeyLength) {
			return nil, corrupted("load master key", err)
		}
		return nil, err
	}
	m.sealer = s
	return s, nil
}

func (m *Manager) createKey() ([]byte, error) {
	key := make([]byte, MasterKeySize)
	if _, err := io.ReadFull(m.rand, key); err != nil {
		return nil, fmt.Errorf("generate master key: %w", err)
	}
	if err := ensureDir(m.keyPath); err != nil {
		return nil, ioFailure("create key directory", err)
	}
	if err := writeFileAtomic(m.keyPath, key, OwnerOnly); err != nil {
		return nil, ioFailure("write master key", err)
	}
	res := m.harden(m.keyPath)

	m.logger.Info().
		Str("path", m.keyPath).
		Str("permissions", res.Outcome.String()).
		Msg("Generated new master key")
	return key, nil
}

func (m *Manager) harden(path string) PermissionResult {
	res := HardenPermissions(path)
	switch res.Outcome {
	case PermissionFailed:
		m.logger.Warn().Err(res.Err).Str("path", path).Msg("Could not restrict file permissions")
	case PermissionUnsupported:
		m.logger.Debug().Str("path", path).Msg("File mode hardening unsupported on this platform")
	}
	return res
}

// encodeSettings produces canonical JSON: compact, keys sorted.
func encodeSettings(settings Settings) ([]byte, error) {
	if settings == nil {
		settings = Settings{}
	}
	return json.Marshal(map[string]any(settings))
}

func decodeSettings(data []byte) (Settings, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	switch v := raw.(type) {
	case nil:
		return Settings{}, nil
	case map[string]any:
		return Settings(v), nil
	default:
		return nil, errNotObject
	}
}

func statExists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o700)
}
