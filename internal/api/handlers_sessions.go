// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/cybersentinel/internal/logging"
)

// SessionCreated is returned when a session starts.
type SessionCreated struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateSession starts a monitored session and issues its token.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Create()
	if err != nil {
		respondDomainError(w, r, err, nil)
		return
	}

	token, expiresAt, err := h.jwt.GenerateToken(s.ID)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("session_id", s.ID).Msg("failed to issue session token")
		_ = h.sessions.Delete(r.Context(), s.ID)
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to issue session token", nil)
		return
	}

	w.Header().Set("Location", "/api/v1/sessions/"+s.ID)
	respondSuccess(w, r, http.StatusCreated, SessionCreated{
		SessionID: s.ID,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// GetSession returns session info and the last computed score.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	respondSuccess(w, r, http.StatusOK, s.Info())
}

// DeleteSession ends a session and discards its engine and event log.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
