// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

package secrets

import "io/fs"

// OwnerOnly is the mode applied to the key file and the blob.
const OwnerOnly fs.FileMode = 0o600

// PermissionOutcome is the result of one hardening attempt.
type PermissionOutcome int

const (
	// PermissionApplied means the file now has OwnerOnly mode.
	PermissionApplied PermissionOutcome = iota
	// PermissionUnsupported means the platform has no POSIX mode bits.
	PermissionUnsupported
	// PermissionFailed means chmod was attempted and returned an error.
	PermissionFailed
)

func (o PermissionOutcome) String() string {
	switch o {
	case PermissionApplied:
		return "applied"
	case PermissionUnsupported:
		return "unsupported"
	case PermissionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PermissionResult records a hardening attempt on one file.
type PermissionResult struct {
	Path    string
	Outcome PermissionOutcome
	Err     error
}

// PermissionReport holds the results of the most recent save.
type PermissionReport struct {
	Key    PermissionResult
	Config PermissionResult
}

// HardenPermissions restricts path to OwnerOnly when the platform supports
// mode bits and reports what happened.
func HardenPermissions(path string) PermissionResult {
	if !permissionsSupported {
		return PermissionResult{Path: path, Outcome: PermissionUnsupported}
	}
	if err := chmod(path, OwnerOnly); err != nil {
		return PermissionResult{Path: path, Outcome: PermissionFailed, Err: err}
	}
	return PermissionResult{Path: path, Outcome: PermissionApplied}
}
