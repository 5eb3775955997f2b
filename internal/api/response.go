// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cybersentinel/internal/capture"
	"github.com/tomtom215/cybersentinel/internal/logging"
	"github.com/tomtom215/cybersentinel/internal/risk"
	"github.com/tomtom215/cybersentinel/internal/session"
	"github.com/tomtom215/cybersentinel/internal/validation"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata describes the response.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// APIError is a machine-readable error.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error codes for API responses
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeTooManySessions    = "TOO_MANY_SESSIONS"
	ErrCodeUnknownObservation = "UNKNOWN_OBSERVATION"
)

// Headers set on ingesting responses.
const (
	HeaderRiskScore = "X-Risk-Score"
	HeaderRiskLevel = "X-Risk-Level"
)

func respondJSON(w http.ResponseWriter, r *http.Request, status int, response *APIResponse) {
	response.Metadata.Timestamp = time.Now().UTC()
	response.Metadata.RequestID = logging.RequestIDFromContext(r.Context())

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Debug().Err(err).Msg("Failed to write JSON response")
	}
}

func respondSuccess(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	respondJSON(w, r, status, &APIResponse{Status: "success", Data: data})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details interface{}) {
	respondJSON(w, r, status, &APIResponse{
		Status: "error",
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func respondValidationError(w http.ResponseWriter, r *http.Request, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
}

// setScoreHeaders exposes a score to clients that only read headers.
func setScoreHeaders(w http.ResponseWriter, score risk.Score) {
	w.Header().Set(HeaderRiskScore, strconv.FormatFloat(score.Value, 'f', 1, 64))
	w.Header().Set(HeaderRiskLevel, string(score.Level))
}

// respondDomainError maps engine and session errors onto HTTP statuses.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error, details interface{}) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Session not found", nil)
	case errors.Is(err, session.ErrTooManySessions):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeTooManySessions, err.Error(), nil)
	case errors.Is(err, capture.ErrUnknownObservation):
		respondError(w, r, http.StatusBadRequest, ErrCodeUnknownObservation, err.Error(), details)
	case risk.Reason(err) != "other":
		respondError(w, r, http.StatusBadRequest, strings.ToUpper(risk.Reason(err)), err.Error(), details)
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Internal server error", nil)
	}
}
