// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package session

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/cybersentinel/internal/alerting"
	"github.com/tomtom215/cybersentinel/internal/eventlog"
	"github.com/tomtom215/cybersentinel/internal/logging"
	"github.com/tomtom215/cybersentinel/internal/metrics"
	"github.com/tomtom215/cybersentinel/internal/risk"
)

const appendTimeout = 2 * time.Second

// metricsObserver feeds ingestion and scoring into Prometheus. It owns the
// session's place in the level gauge: once ended, later scores are ignored.
type metricsObserver struct {
	mu    sync.Mutex
	level string
	ended bool
}

func (o *metricsObserver) EventIngested(ev risk.Event, outcome risk.Outcome, err error) {
	metrics.RecordEvent(string(ev.Kind), string(outcome), risk.Reason(err))
}

func (o *metricsObserver) ScoreComputed(score risk.Score, _ risk.Level) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ended {
		return
	}
	metrics.RecordScore(score.Value, string(score.Level), o.level)
	o.level = string(score.Level)
}

// end removes the session from the level gauge. It is idempotent.
func (o *metricsObserver) end() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ended {
		return
	}
	o.ended = true
	metrics.ForgetSessionLevel(o.level)
}

// Recorder writes ingested events and raised alerts to the event log.
type Recorder struct {
	log eventlog.Log
}

var _ alerting.Recorder = (*Recorder)(nil)

// NewRecorder creates a recorder writing to log.
func NewRecorder(log eventlog.Log) *Recorder {
	return &Recorder{log: log}
}

// Observer returns an engine observer recording sessionID's events.
func (r *Recorder) Observer(sessionID string) risk.Observer {
	return &recordingObserver{sessionID: sessionID, recorder: r}
}

// RecordAlert implements alerting.Recorder.
func (r *Recorder) RecordAlert(ctx context.Context, a *alerting.Alert) {
	r.append(ctx, eventlog.Entry{
		SessionID: a.SessionID,
		Time:      a.CreatedAt,
		Domain:    eventlog.DomainAlert,
		Type:      "risk_" + string(a.Level),
		Payload: map[string]any{
			"alert_id": a.ID,
			"score":    a.Score,
			"previous": string(a.Previous),
			"message":  a.Message,
		},
	})
}

func (r *Recorder) append(ctx context.Context, e eventlog.Entry) {
	ctx, cancel := context.WithTimeout(ctx, appendTimeout)
	defer cancel()

	if _, err := r.log.Append(ctx, e); err != nil {
		metrics.EventLogAppendErrors.Inc()
		logging.Warn().Err(err).Str("session_id", e.SessionID).Str("type", e.Type).Msg("failed to append event log entry")
	}
}

type recordingObserver struct {
	sessionID string
	recorder  *Recorder
}

func (o *recordingObserver) EventIngested(ev risk.Event, outcome risk.Outcome, err error) {
	o.recorder.append(context.Background(), entryFor(o.sessionID, ev, outcome, err))
}

func (o *recordingObserver) ScoreComputed(risk.Score, risk.Level) {}

// entryFor renders an ingested event as a log entry.
func entryFor(sessionID string, ev risk.Event, outcome risk.Outcome, err error) eventlog.Entry {
	payload := map[string]any{
		"kind":    string(ev.Kind),
		"outcome": string(outcome),
	}
	switch ev.Kind {
	case risk.EventNumeric:
		payload["value"] = ev.Value
	case risk.EventFlag:
		payload["flag"] = ev.Flag
	case risk.EventCounter:
		payload["delta"] = ev.CounterDelta()
	}
	if err != nil {
		payload["error"] = err.Error()
	}

	typ := ev.Name
	if typ == "" {
		typ = string(ev.Kind)
	}
	return eventlog.Entry{
		SessionID: sessionID,
		Domain:    domainOf(ev),
		Type:      typ,
		Payload:   payload,
	}
}

// domainOf groups events the way the console filters them.
func domainOf(ev risk.Event) string {
	switch ev.Kind {
	case risk.EventReset, risk.EventResetCounter:
		return eventlog.DomainSystem
	}
	switch ev.Name {
	case risk.SignalKeyLatency, risk.SignalMouseSpeed, risk.SignalPasteFreq, risk.FlagFocused:
		return eventlog.DomainBehavior
	case risk.FlagDevtoolsOpen:
		return eventlog.DomainAlert
	default:
		return eventlog.DomainIntrusion
	}
}
