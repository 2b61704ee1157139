// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

//go:build !windows

package secrets

import (
	"io/fs"
	"os"
)

const permissionsSupported = true

var chmod = os.Chmod

// tooOpen reports group or world access bits on a secret file.
func tooOpen(mode fs.FileMode) bool {
	return mode.Perm()&0o077 != 0
}
