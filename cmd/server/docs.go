// Movie Agent Demo - Web front-end for a movie recommendation agent
// Copyright 2026 abzanganeh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/abzanganeh/movie-agent-demo

// @title Movie Agent Demo API
// @version 1.0
// @description Web front-end for a movie recommendation agent: encrypted setup, chat and poster analysis.
// @description
// @description ## Setup
// @description
// @description On first run every page redirects to `/setup`. The submitted provider and API keys are validated,
// @description encrypted with AES-256-GCM and stored next to a generated master key.
// @description
// @description ## Sessions
// @description
// @description Browser routes set an HttpOnly `movie_agent_session` cookie. Agent memory and poster state are per session.
// @description
// @description ## Rate Limiting
// @description
// @description 100 requests per minute per IP by default; `/setup` and `/reset-config` allow 10 per minute.
// @description
// @description ## Error Responses
// @description
// @description ```json
// @description {
// @description   "success": false,
// @description   "error": {
// @description     "code": "VALIDATION_FAILED",
// @description     "message": "Groq API key is required when using Groq"
// @description   },
// @description   "meta": {
// @description     "request_id": "b7e4...",
// @description     "timestamp": "2026-01-18T12:34:56Z"
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/abzanganeh/movie-agent-demo/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8765
// @BasePath /
// @schemes http https
//
// @tag.name Setup
// @tag.description First-run configuration and reset
//
// @tag.name Agent
// @tag.description Chat and poster analysis through the agent service
//
// @tag.name Health
// @tag.description Liveness, readiness and setup status
package main
