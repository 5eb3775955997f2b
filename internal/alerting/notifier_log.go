// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package alerting

import (
	"context"

	"github.com/tomtom215/cybersentinel/internal/logging"
)

// LogNotifier writes alerts to the structured log.
type LogNotifier struct {
	enabled bool
}

// NewLogNotifier creates a log notifier.
func NewLogNotifier(enabled bool) *LogNotifier {
	return &LogNotifier{enabled: enabled}
}

// Name returns the notifier name.
func (n *LogNotifier) Name() string { return "log" }

// Enabled returns whether this notifier is enabled.
func (n *LogNotifier) Enabled() bool { return n.enabled }

// Send logs the alert.
func (n *LogNotifier) Send(_ context.Context, alert *Alert) error {
	ev := logging.Warn().
		Str("alert_id", alert.ID).
		Str("session_id", alert.SessionID).
		Str("level", string(alert.Level)).
		Float64("score", alert.Score)
	for _, c := range alert.Contributors {
		ev = ev.Float64("term_"+c.Name, c.Value)
	}
	ev.Msg(alert.Message)
	return nil
}
