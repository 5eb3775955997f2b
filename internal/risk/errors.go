// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package risk

import "errors"

// Sentinel errors. Returned errors wrap these with the offending name, so
// callers should match with errors.Is.
var (
	ErrUnknownSignal    = errors.New("unknown signal")
	ErrUnknownFlag      = errors.New("unknown flag")
	ErrUnknownCounter   = errors.New("unknown counter")
	ErrNegativeDelta    = errors.New("counter delta must not be negative")
	ErrUnknownEventKind = errors.New("unknown event kind")
	ErrInvalidPolicy    = errors.New("invalid risk policy")
)

// Reason maps an ingestion error to a short, bounded label suitable for
// metrics and API error codes.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownSignal):
		return "unknown_signal"
	case errors.Is(err, ErrUnknownFlag):
		return "unknown_flag"
	case errors.Is(err, ErrUnknownCounter):
		return "unknown_counter"
	case errors.Is(err, ErrNegativeDelta):
		return "negative_delta"
	case errors.Is(err, ErrUnknownEventKind):
		return "unknown_event_kind"
	case errors.Is(err, ErrInvalidPolicy):
		return "invalid_policy"
	default:
		return "other"
	}
}
