// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/cybersentinel/internal/bus"
	"github.com/tomtom215/cybersentinel/internal/capture"
	"github.com/tomtom215/cybersentinel/internal/risk"
	"github.com/tomtom215/cybersentinel/internal/validation"
)

// IngestResult is returned by the ingesting routes.
type IngestResult struct {
	Accepted int        `json:"accepted"`
	Score    risk.Score `json:"score"`
}

// TelemetryQueued is returned when events are handed to the bus.
type TelemetryQueued struct {
	Queued int `json:"queued"`
}

// IngestEvents applies one event or a batch in order. Non-finite numeric
// samples are discarded without error. The first failing event stops the
// batch; events before it stay applied.
func (h *Handler) IngestEvents(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	events, err := decodeOneOrMany[risk.Event](w, r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	if i, verr := validateAll(events); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, map[string]interface{}{"index": i, "validation": apiErr.Details})
		return
	}

	n, score, err := s.Ingest(events)
	setScoreHeaders(w, score)
	if err != nil {
		respondDomainError(w, r, err, IngestResult{Accepted: n, Score: score})
		return
	}
	respondSuccess(w, r, http.StatusOK, IngestResult{Accepted: n, Score: score})
}

// QueueTelemetry publishes events to the bus for asynchronous ingestion.
// Scores computed from them are published on the scores topic.
func (h *Handler) QueueTelemetry(w http.ResponseWriter, r *http.Request) {
	if h.telemetry == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Telemetry bus is disabled", nil)
		return
	}
	s := h.session(w, r)
	if s == nil {
		return
	}

	events, err := decodeOneOrMany[risk.Event](w, r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	tm := bus.TelemetryMessage{SessionID: s.ID, Events: events}
	if verr := validation.ValidateStruct(&tm); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	if err := h.telemetry.PublishTelemetry(r.Context(), tm); err != nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Failed to queue telemetry", nil)
		return
	}
	respondSuccess(w, r, http.StatusAccepted, TelemetryQueued{Queued: len(events)})
}

// Capture applies raw client observations through the session's tracker.
func (h *Handler) Capture(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	observations, err := decodeOneOrMany[capture.Observation](w, r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	if i, verr := validateAll(observations); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, map[string]interface{}{"index": i, "validation": apiErr.Details})
		return
	}

	tracker := s.Tracker()
	for i, o := range observations {
		if err := tracker.Apply(o); err != nil {
			score := s.Engine().ComputeScore()
			setScoreHeaders(w, score)
			respondDomainError(w, r, err, IngestResult{Accepted: i, Score: score})
			return
		}
	}

	score := s.Engine().ComputeScore()
	setScoreHeaders(w, score)
	respondSuccess(w, r, http.StatusOK, IngestResult{Accepted: len(observations), Score: score})
}

// Score computes and returns the session's current score.
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	score := s.Engine().ComputeScore()
	setScoreHeaders(w, score)
	respondSuccess(w, r, http.StatusOK, score)
}

// ResetCounter zeroes one counter.
func (h *Handler) ResetCounter(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	if err := s.Engine().ResetCounter(chi.URLParam(r, "name")); err != nil {
		respondDomainError(w, r, err, nil)
		return
	}
	score := s.Engine().ComputeScore()
	setScoreHeaders(w, score)
	respondSuccess(w, r, http.StatusOK, score)
}

// Reset returns every estimator, flag and counter to its initial state.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	s.Reset()
	score := s.Engine().ComputeScore()
	setScoreHeaders(w, score)
	respondSuccess(w, r, http.StatusOK, score)
}

// Simulate replays a scripted multi-vector attack into the session.
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	if err := capture.SimulateAttack(s.Tracker(), time.Now()); err != nil {
		respondDomainError(w, r, err, nil)
		return
	}
	score := s.Engine().ComputeScore()
	setScoreHeaders(w, score)
	respondSuccess(w, r, http.StatusOK, score)
}
