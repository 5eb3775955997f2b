// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package alerting

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/cybersentinel/internal/risk"
)

type fakeBroadcaster struct {
	mu       sync.Mutex
	messages []string
}

func (b *fakeBroadcaster) SendToSession(_, messageType string, _ interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, messageType)
}

type fakeRecorder struct {
	mu     sync.Mutex
	alerts []*Alert
}

func (r *fakeRecorder) RecordAlert(_ context.Context, alert *Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, alert)
}

type chanNotifier struct {
	enabled bool
	sent    chan *Alert
}

func (n *chanNotifier) Name() string  { return "chan" }
func (n *chanNotifier) Enabled() bool { return n.enabled }
func (n *chanNotifier) Send(_ context.Context, alert *Alert) error {
	n.sent <- alert
	return nil
}

func scoreOf(value float64, level risk.Level) risk.Score {
	return risk.Score{
		Value: value,
		Level: level,
		Breakdown: []risk.Contribution{
			{Name: risk.SignalKeyLatency, Kind: risk.KindSignal, Value: 4},
			{Name: risk.FlagDevtoolsOpen, Kind: risk.KindFlag, Value: 22},
			{Name: risk.CounterFailedAuth, Kind: risk.KindCounter, Value: 0},
			{Name: risk.CounterBadIP, Kind: risk.KindCounter, Value: 15},
			{Name: risk.FlagBadHeaders, Kind: risk.KindFlag, Value: 10},
		},
	}
}

func TestDispatcher_Evaluate(t *testing.T) {
	tests := []struct {
		name     string
		level    risk.Level
		previous risk.Level
		want     bool
	}{
		{"first score low", risk.LevelLow, "", false},
		{"first score elevated", risk.LevelElevated, "", true},
		{"low to elevated", risk.LevelElevated, risk.LevelLow, true},
		{"elevated to high", risk.LevelHigh, risk.LevelElevated, true},
		{"low to high", risk.LevelHigh, risk.LevelLow, true},
		{"elevated stays", risk.LevelElevated, risk.LevelElevated, false},
		{"high to elevated", risk.LevelElevated, risk.LevelHigh, false},
		{"high to low", risk.LevelLow, risk.LevelHigh, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDispatcher(Config{}, nil, nil)
			alert := d.Evaluate("s1", scoreOf(55, tt.level), tt.previous)
			if (alert != nil) != tt.want {
				t.Fatalf("Evaluate() alert = %v, want raised=%v", alert, tt.want)
			}
		})
	}
}

func TestDispatcher_AlertContent(t *testing.T) {
	b := &fakeBroadcaster{}
	r := &fakeRecorder{}
	d := NewDispatcher(Config{}, b, r)

	alert := d.Evaluate("s1", scoreOf(51, risk.LevelElevated), risk.LevelLow)
	if alert == nil {
		t.Fatal("expected alert")
	}

	if alert.ID == "" {
		t.Error("alert ID should be set")
	}
	if alert.SessionID != "s1" || alert.Previous != risk.LevelLow {
		t.Errorf("unexpected alert identity: %+v", alert)
	}
	if len(alert.Contributors) != maxContributors {
		t.Fatalf("contributors = %d, want %d", len(alert.Contributors), maxContributors)
	}
	wantOrder := []string{risk.FlagDevtoolsOpen, risk.CounterBadIP, risk.FlagBadHeaders}
	for i, name := range wantOrder {
		if alert.Contributors[i].Name != name {
			t.Errorf("contributor[%d] = %s, want %s", i, alert.Contributors[i].Name, name)
		}
	}

	if len(b.messages) != 1 || b.messages[0] != MessageTypeAlert {
		t.Errorf("broadcast messages = %v", b.messages)
	}
	if len(r.alerts) != 1 {
		t.Errorf("recorded alerts = %d, want 1", len(r.alerts))
	}
}

func TestDispatcher_RunDeliversToEnabledNotifiers(t *testing.T) {
	d := NewDispatcher(Config{QueueSize: 4}, nil, nil)
	on := &chanNotifier{enabled: true, sent: make(chan *Alert, 1)}
	off := &chanNotifier{enabled: false, sent: make(chan *Alert, 1)}
	d.RegisterNotifier(on)
	d.RegisterNotifier(off)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.RunWithContext(ctx) }()

	raised := d.Evaluate("s1", scoreOf(80, risk.LevelHigh), risk.LevelLow)

	select {
	case got := <-on.sent:
		if got.ID != raised.ID {
			t.Errorf("delivered alert %s, want %s", got.ID, raised.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("alert was not delivered")
	}

	select {
	case <-off.sent:
		t.Error("disabled notifier received an alert")
	default:
	}

	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("RunWithContext() = %v, want context.Canceled", err)
	}
}

func TestDispatcher_QueueFullStillBroadcasts(t *testing.T) {
	b := &fakeBroadcaster{}
	d := NewDispatcher(Config{QueueSize: 1}, b, nil)

	d.Evaluate("s1", scoreOf(50, risk.LevelElevated), risk.LevelLow)
	d.Evaluate("s2", scoreOf(50, risk.LevelElevated), risk.LevelLow)

	if len(b.messages) != 2 {
		t.Errorf("broadcasts = %d, want 2", len(b.messages))
	}
	if len(d.queue) != 1 {
		t.Errorf("queued = %d, want 1", len(d.queue))
	}
}

func TestDispatcher_ObserverWithEngine(t *testing.T) {
	b := &fakeBroadcaster{}
	d := NewDispatcher(Config{}, b, nil)

	engine, err := risk.NewEngine(risk.DefaultPolicy(), risk.WithObserver(d.Observer("s1")))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	engine.ComputeScore()
	if len(b.messages) != 0 {
		t.Fatalf("low score should not alert, got %v", b.messages)
	}

	for _, ev := range []risk.Event{
		risk.FlagEvent(risk.FlagDevtoolsOpen, true),
		risk.CounterEvent(risk.CounterFailedAuth, 10),
		risk.FlagEvent(risk.FlagBadHeaders, true),
	} {
		if err := engine.Ingest(ev); err != nil {
			t.Fatalf("Ingest(%s) error = %v", ev, err)
		}
	}
	score := engine.ComputeScore()
	if score.Level != risk.LevelElevated {
		t.Fatalf("level = %s (score %.1f), want elevated", score.Level, score.Value)
	}
	if len(b.messages) != 1 {
		t.Errorf("alerts = %d, want 1", len(b.messages))
	}

	// Same level again does not re-alert.
	engine.ComputeScore()
	if len(b.messages) != 1 {
		t.Errorf("alerts after repeat = %d, want 1", len(b.messages))
	}
}
