// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package api

import (
	"net/http"
	"time"
)

// HealthStatus reports service health.
type HealthStatus struct {
	Status           string  `json:"status"`
	Version          string  `json:"version"`
	Uptime           float64 `json:"uptime_seconds"`
	ActiveSessions   int     `json:"active_sessions"`
	WebSocketClients int     `json:"websocket_clients"`
	EventLog         string  `json:"eventlog"`
	BusEnabled       bool    `json:"bus_enabled"`
}

// Health reports service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{
		Status:         "healthy",
		Version:        Version,
		Uptime:         time.Since(h.startTime).Seconds(),
		ActiveSessions: h.sessions.Len(),
		EventLog:       "disabled",
		BusEnabled:     h.telemetry != nil,
	}
	if h.hub != nil {
		health.WebSocketClients = h.hub.GetClientCount()
	}
	if h.sessions.Log() != nil {
		health.EventLog = "memory"
		if h.config != nil && h.config.EventLog.Backend != "" {
			health.EventLog = h.config.EventLog.Backend
		}
	}
	respondSuccess(w, r, http.StatusOK, health)
}

// HealthLive answers liveness probes.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, map[string]string{"status": "alive"})
}

// Policy returns the scoring policy applied to new sessions.
func (h *Handler) Policy(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, h.sessions.Policy())
}
