// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

/*
Package services provides suture.Service wrappers for the long-running parts
of the web front-end.

Each wrapper implements suture's Serve(ctx) pattern and a String method used
in supervisor event logs:

  - HTTPServerService: the web server, with graceful shutdown
  - SessionSweeperService: removes expired browser sessions
  - LogCleanupService: enforces log file retention

Returning an error from Serve asks the supervisor for a restart. Returning
ctx.Err() after cancellation is a normal stop.
*/
package services
