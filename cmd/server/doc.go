// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

/*
Package main is the entry point for the movie agent web front-end.

The server asks a first-time user for their LLM provider and API keys,
stores them encrypted on disk, and then forwards chat queries and poster
uploads to the agent service.

# Application Architecture

	RootSupervisor ("movie-agent-demo")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   ├── SessionSweeperService
	│   └── LogCleanupService (when LOG_DIR is set)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Initialization order:

 1. Configuration: koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog, optionally tee'd to a daily file, with retention cleanup
 3. Secrets: AES-256-GCM encrypted configuration and master key
 4. Sessions: in-memory or BadgerDB store
 5. Agent: lazily initialized HTTP client with rate limit and circuit breaker
 6. HTTP: chi router with the middleware stack
 7. Supervisor tree, then signal handling

# Configuration

	PORT=8765                    # HTTP port
	DATA_DIR=.                   # where config.encrypted and .master_key live
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_DIR=logs                 # empty disables file logging
	SESSION_STORE=memory         # memory or badger
	AGENT_URL=http://127.0.0.1:8766

API keys are never read from the environment. They are entered once on
/setup and stored encrypted.

# Signal Handling

SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains
in-flight requests for up to the shutdown timeout; services that fail to
stop in time are logged.

# Example Usage

	export DATA_DIR=/var/lib/movie-agent
	export SESSION_STORE=badger
	export SESSION_STORE_PATH=/var/lib/movie-agent/sessions
	./movie-agent-demo
*/
package main
