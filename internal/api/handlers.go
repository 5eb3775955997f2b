// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/cybersentinel/internal/auth"
	"github.com/tomtom215/cybersentinel/internal/bus"
	"github.com/tomtom215/cybersentinel/internal/config"
	"github.com/tomtom215/cybersentinel/internal/logging"
	"github.com/tomtom215/cybersentinel/internal/session"
	ws "github.com/tomtom215/cybersentinel/internal/websocket"
)

// Version is reported by the health endpoint. Set at build time with
// -ldflags "-X github.com/tomtom215/cybersentinel/internal/api.Version=...".
var Version = "dev"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// TelemetryPublisher queues telemetry for asynchronous ingestion.
type TelemetryPublisher interface {
	PublishTelemetry(ctx context.Context, tm bus.TelemetryMessage) error
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers.go: Handler struct, constructor, shared helpers (this file)
//   - handlers_sessions.go: session lifecycle
//   - handlers_events.go: ingestion, capture and scoring
//   - handlers_log.go: event log query and export
//   - handlers_health.go: health and policy
//   - handlers_websocket.go: score and alert stream
type Handler struct {
	config    *config.Config
	sessions  *session.Manager
	jwt       *auth.JWTManager
	hub       *ws.Hub
	telemetry TelemetryPublisher
	startTime time.Time
}

// NewHandler creates a new API handler. hub and telemetry may be nil; the
// routes that need them then answer 503.
func NewHandler(cfg *config.Config, sessions *session.Manager, jwt *auth.JWTManager, hub *ws.Hub, telemetry TelemetryPublisher) *Handler {
	return &Handler{
		config:    cfg,
		sessions:  sessions,
		jwt:       jwt,
		hub:       hub,
		telemetry: telemetry,
		startTime: time.Now(),
	}
}

// session resolves the {id} URL parameter. It writes the error response and
// returns nil when the session does not exist.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *session.Session {
	s, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err, nil)
		return nil
	}
	return s
}

func (h *Handler) queryLimit() int {
	if h.config != nil && h.config.EventLog.QueryLimit > 0 {
		return h.config.EventLog.QueryLimit
	}
	return 500
}

// getUpgrader creates a WebSocket upgrader with origin checking and timeouts.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins. Requests
// without an Origin header come from non-browser clients and are allowed,
// since the session token already authenticates them.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.config == nil {
		return true
	}

	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// sanitizeLogValue strips control characters to prevent log injection.
func sanitizeLogValue(s string) string {
	const maxLen = 200
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			continue
		}
		out = append(out, r)
		if len(out) >= maxLen {
			break
		}
	}
	return string(out)
}
