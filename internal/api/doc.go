// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

/*
Package api serves the movie agent web front-end: the setup and chat pages,
the JSON endpoints behind them, and the health probes.

Routes:

  - GET  /                       chat page, redirects to /setup until configured
  - GET  /setup                  setup form, redirects to / once configured
  - POST /setup                  validate and store API keys, (re)initialize the agent
  - POST /reset-config           delete stored configuration and master key
  - POST /chat                   forward a query to the agent
  - POST /poster                 upload a poster for vision analysis
  - POST /clear-poster           forget the session's poster
  - GET  /api/v1/health/live     liveness
  - GET  /api/v1/health/ready    readiness (configuration decrypts)
  - GET  /api/v1/health/setup    configuration state and recommendations
  - GET  /metrics                Prometheus metrics
  - GET  /swagger/*              API documentation

Every JSON response uses the APIResponse envelope:

	{
	  "success": true | false,
	  "data": {...},
	  "error": {"code": "...", "message": "...", "details": {...}},
	  "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 3}
	}

Browser routes sit behind the session middleware, so each browser gets its
own agent memory and poster state. Secrets never appear in responses or logs.

Middleware Stack (in order):

 1. Request ID and logging correlation
 2. Real IP
 3. Panic recovery
 4. CORS
 5. Security headers
 6. Prometheus request metrics
 7. Per-group rate limits and the session cookie
*/
package api
