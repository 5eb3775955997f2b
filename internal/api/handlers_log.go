// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package api

import (
	"net/http"
	"strconv"

	"github.com/tomtom215/cybersentinel/internal/eventlog"
	"github.com/tomtom215/cybersentinel/internal/logging"
)

const maxQueryLength = 256

// LogPage is a page of event log entries.
type LogPage struct {
	Query   string           `json:"query,omitempty"`
	Limit   int              `json:"limit"`
	Count   int              `json:"count"`
	Entries []eventlog.Entry `json:"entries"`
}

// QueryLog returns the newest entries matching ?q=, oldest first.
func (h *Handler) QueryLog(w http.ResponseWriter, r *http.Request) {
	log := h.sessions.Log()
	if log == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Event log is disabled", nil)
		return
	}
	s := h.session(w, r)
	if s == nil {
		return
	}

	q := r.URL.Query().Get("q")
	if len(q) > maxQueryLength {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "q must be at most 256 characters", nil)
		return
	}

	limit := h.queryLimit()
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "limit must be a positive integer", nil)
			return
		}
		limit = min(n, limit)
	}

	entries, err := log.Query(r.Context(), s.ID, q, limit)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("event log query failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to query event log", nil)
		return
	}
	respondSuccess(w, r, http.StatusOK, LogPage{
		Query:   q,
		Limit:   limit,
		Count:   len(entries),
		Entries: entries,
	})
}

// ExportLog downloads every entry of the session as a JSON array.
func (h *Handler) ExportLog(w http.ResponseWriter, r *http.Request) {
	log := h.sessions.Log()
	if log == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Event log is disabled", nil)
		return
	}
	s := h.session(w, r)
	if s == nil {
		return
	}

	data, err := log.Export(r.Context(), s.ID)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("event log export failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to export event log", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="cybersentinel-log-`+s.ID+`.json"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("failed to write export")
	}
}
