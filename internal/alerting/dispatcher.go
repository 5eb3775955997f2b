// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package alerting

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/cybersentinel/internal/logging"
	"github.com/tomtom215/cybersentinel/internal/metrics"
	"github.com/tomtom215/cybersentinel/internal/risk"
)

// MessageTypeAlert is the WebSocket message type for alerts.
const MessageTypeAlert = "alert"

const (
	defaultQueueSize = 256
	maxContributors  = 3
	deliveryTimeout  = 15 * time.Second
)

// Config configures a Dispatcher.
type Config struct {
	QueueSize int
}

// Dispatcher turns level escalations into alerts.
type Dispatcher struct {
	broadcaster Broadcaster
	recorder    Recorder

	mu        sync.RWMutex
	notifiers []Notifier

	queue chan *Alert
	now   func() time.Time
}

// NewDispatcher creates a dispatcher. broadcaster and recorder may be nil.
func NewDispatcher(cfg Config, broadcaster Broadcaster, recorder Recorder) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	return &Dispatcher{
		broadcaster: broadcaster,
		recorder:    recorder,
		queue:       make(chan *Alert, cfg.QueueSize),
		now:         time.Now,
	}
}

// RegisterNotifier adds a notifier.
func (d *Dispatcher) RegisterNotifier(n Notifier) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.notifiers = append(d.notifiers, n)
	logging.Info().Str("notifier", n.Name()).Bool("enabled", n.Enabled()).Msg("registered notifier")
}

// Evaluate raises an alert when score escalates past previous. It returns
// the alert, or nil when the level did not rise.
func (d *Dispatcher) Evaluate(sessionID string, score risk.Score, previous risk.Level) *Alert {
	if score.Level == risk.LevelLow || score.Level.Rank() <= previous.Rank() {
		return nil
	}

	alert := d.build(sessionID, score, previous)
	metrics.RecordAlert(string(alert.Level))
	logging.Warn().
		Str("session_id", sessionID).
		Str("level", string(alert.Level)).
		Str("previous", string(previous)).
		Float64("score", alert.Score).
		Msg(alert.Title)

	if d.recorder != nil {
		d.recorder.RecordAlert(context.Background(), alert)
	}
	if d.broadcaster != nil {
		d.broadcaster.SendToSession(sessionID, MessageTypeAlert, alert)
	}

	select {
	case d.queue <- alert:
	default:
		logging.Warn().Str("alert_id", alert.ID).Msg("alert queue full, skipping notifier delivery")
	}
	return alert
}

// Observer returns a risk.Observer that feeds this dispatcher for one session.
func (d *Dispatcher) Observer(sessionID string) risk.Observer {
	return &sessionObserver{sessionID: sessionID, dispatcher: d}
}

// RunWithContext delivers queued alerts until ctx is cancelled.
func (d *Dispatcher) RunWithContext(ctx context.Context) error {
	logging.Info().Msg("alert dispatcher started")
	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("alert dispatcher stopped")
			return ctx.Err()
		case alert := <-d.queue:
			d.deliver(ctx, alert)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, alert *Alert) {
	d.mu.RLock()
	notifiers := make([]Notifier, 0, len(d.notifiers))
	for _, n := range d.notifiers {
		if n.Enabled() {
			notifiers = append(notifiers, n)
		}
	}
	d.mu.RUnlock()

	var wg sync.WaitGroup
	for _, n := range notifiers {
		wg.Add(1)
		go func(n Notifier) {
			defer wg.Done()
			sendCtx, cancel := context.WithTimeout(ctx, deliveryTimeout)
			defer cancel()

			err := n.Send(sendCtx, alert)
			metrics.RecordAlertDelivery(n.Name(), err)
			if err != nil {
				logging.Error().Err(err).Str("notifier", n.Name()).Str("alert_id", alert.ID).Msg("failed to send alert")
			}
		}(n)
	}
	wg.Wait()
}

func (d *Dispatcher) build(sessionID string, score risk.Score, previous risk.Level) *Alert {
	contributors := topContributors(score.Breakdown, maxContributors)

	parts := make([]string, 0, len(contributors))
	for _, c := range contributors {
		parts = append(parts, fmt.Sprintf("%s %.1f", c.Name, c.Value))
	}

	return &Alert{
		ID:           uuid.NewString(),
		SessionID:    sessionID,
		Level:        score.Level,
		Previous:     previous,
		Score:        score.Value,
		Title:        fmt.Sprintf("Risk %s", score.Level),
		Message:      fmt.Sprintf("score %.1f driven by %s", score.Value, strings.Join(parts, ", ")),
		Contributors: contributors,
		CreatedAt:    d.now(),
	}
}

// topContributors returns the n largest non-zero terms, largest first.
func topContributors(breakdown []risk.Contribution, n int) []risk.Contribution {
	out := make([]risk.Contribution, 0, len(breakdown))
	for _, c := range breakdown {
		if c.Value > 0 {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

type sessionObserver struct {
	sessionID  string
	dispatcher *Dispatcher
}

func (o *sessionObserver) EventIngested(risk.Event, risk.Outcome, error) {}

func (o *sessionObserver) ScoreComputed(score risk.Score, previous risk.Level) {
	o.dispatcher.Evaluate(o.sessionID, score, previous)
}
