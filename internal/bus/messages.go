// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package bus

import (
	"time"

	"github.com/tomtom215/cybersentinel/internal/risk"
)

// TelemetryMessage is one or more events for a session.
type TelemetryMessage struct {
	SessionID string       `json:"session_id" validate:"required,max=64"`
	Event     *risk.Event  `json:"event,omitempty"`
	Events    []risk.Event `json:"events,omitempty" validate:"max=1000,dive"`
}

// all returns Event followed by Events.
func (m *TelemetryMessage) all() []risk.Event {
	out := make([]risk.Event, 0, len(m.Events)+1)
	if m.Event != nil {
		out = append(out, *m.Event)
	}
	return append(out, m.Events...)
}

// ScoreMessage is a computed score for a session.
type ScoreMessage struct {
	SessionID  string     `json:"session_id"`
	Score      risk.Score `json:"score"`
	ComputedAt time.Time  `json:"computed_at"`
}
