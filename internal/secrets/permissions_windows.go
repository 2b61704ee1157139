// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

//go:build windows

package secrets

import (
	"io/fs"
	"os"
)

// Windows ACLs are not expressed through mode bits.
const permissionsSupported = false

var chmod = os.Chmod

func tooOpen(fs.FileMode) bool {
	return false
}
