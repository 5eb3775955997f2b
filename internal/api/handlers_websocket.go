// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package api

import (
	"net/http"

	"github.com/tomtom215/cybersentinel/internal/auth"
	"github.com/tomtom215/cybersentinel/internal/logging"
	ws "github.com/tomtom215/cybersentinel/internal/websocket"
)

// WebSocket streams risk and alert messages for the token's session.
// Browsers pass the token as ?token= since they cannot set headers on the
// upgrade request.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not initialized")
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "WebSocket service unavailable", nil)
		return
	}

	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}
	if _, err := h.sessions.Get(claims.SessionID); err != nil {
		respondDomainError(w, r, err, nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := ws.NewClient(h.hub, conn, claims.SessionID)
	if !h.hub.Attach(client) {
		_ = conn.Close()
		return
	}
	client.Start()
}
