// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package alerting

import (
	"context"
	"time"

	"github.com/tomtom215/cybersentinel/internal/risk"
)

// Alert describes a risk level escalation for one session.
type Alert struct {
	ID           string              `json:"id"`
	SessionID    string              `json:"session_id"`
	Level        risk.Level          `json:"level"`
	Previous     risk.Level          `json:"previous,omitempty"`
	Score        float64             `json:"score"`
	Title        string              `json:"title"`
	Message      string              `json:"message"`
	Contributors []risk.Contribution `json:"contributors"`
	CreatedAt    time.Time           `json:"created_at"`
}

// Notifier delivers alerts to an external channel.
type Notifier interface {
	// Send delivers an alert.
	Send(ctx context.Context, alert *Alert) error

	// Name returns the notifier name (e.g., "webhook", "log").
	Name() string

	// Enabled returns whether this notifier should receive alerts.
	Enabled() bool
}

// Broadcaster pushes alerts to a session's live clients.
type Broadcaster interface {
	SendToSession(sessionID, messageType string, data interface{})
}

// Recorder persists alerts to the session audit trail.
type Recorder interface {
	RecordAlert(ctx context.Context, alert *Alert)
}
