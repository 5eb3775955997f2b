// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package bus

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cybersentinel/internal/logging"
	"github.com/tomtom215/cybersentinel/internal/risk"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{Level: "error", Output: io.Discard})
}

var errUnknownSession = errors.New("session not found")

// engineSink routes telemetry to one engine per known session.
type engineSink struct {
	mu      sync.Mutex
	engines map[string]*risk.Engine
	calls   int
}

func newEngineSink(t *testing.T, ids ...string) *engineSink {
	t.Helper()
	s := &engineSink{engines: make(map[string]*risk.Engine)}
	for _, id := range ids {
		e, err := risk.NewEngine(risk.DefaultPolicy())
		if err != nil {
			t.Fatal(err)
		}
		s.engines[id] = e
	}
	return s
}

func (s *engineSink) IngestTelemetry(_ context.Context, sessionID string, events []risk.Event) (risk.Score, error) {
	s.mu.Lock()
	s.calls++
	e, ok := s.engines[sessionID]
	s.mu.Unlock()
	if !ok {
		return risk.Score{}, errUnknownSession
	}
	if _, err := e.IngestBatch(events); err != nil {
		return risk.Score{}, err
	}
	return e.ComputeScore(), nil
}

func (s *engineSink) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func startBus(t *testing.T, sink Sink) *Bus {
	t.Helper()
	cfg := DefaultConfig()
	cfg.RetryCount = 0
	b, err := New(cfg, sink)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = b.Run(ctx)
		close(done)
	}()
	select {
	case <-b.Running():
	case <-time.After(2 * time.Second):
		t.Fatal("router did not start")
	}

	t.Cleanup(func() {
		cancel()
		<-done
		_ = b.Close()
	})
	return b
}

func nextScore(t *testing.T, ch <-chan *message.Message) (ScoreMessage, bool) {
	t.Helper()
	select {
	case msg := <-ch:
		msg.Ack()
		var sm ScoreMessage
		if err := json.Unmarshal(msg.Payload, &sm); err != nil {
			t.Fatalf("decode score: %v", err)
		}
		return sm, true
	case <-time.After(300 * time.Millisecond):
		return ScoreMessage{}, false
	}
}

func TestNew_RequiresTopics(t *testing.T) {
	if _, err := New(Config{}, newEngineSink(t)); err == nil {
		t.Error("New() expected error for empty topics")
	}
}

func TestBus_TelemetryProducesScore(t *testing.T) {
	sink := newEngineSink(t, "s1")
	b := startBus(t, sink)

	scores, err := b.SubscribeScores(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	ev := risk.FlagEvent(risk.FlagDevtoolsOpen, true)
	err = b.PublishTelemetry(context.Background(), TelemetryMessage{
		SessionID: "s1",
		Event:     &ev,
		Events:    []risk.Event{risk.CounterEvent(risk.CounterFailedAuth, 2)},
	})
	if err != nil {
		t.Fatalf("PublishTelemetry() error = %v", err)
	}

	sm, ok := nextScore(t, scores)
	if !ok {
		t.Fatal("no score published")
	}
	if sm.SessionID != "s1" {
		t.Errorf("SessionID = %s", sm.SessionID)
	}
	// devtools 22 + failedAuth 2*4
	if sm.Score.Value != 30 {
		t.Errorf("Score = %v, want 30", sm.Score.Value)
	}
}

func TestBus_RejectedTelemetryIsAcked(t *testing.T) {
	sink := newEngineSink(t, "s1")
	b := startBus(t, sink)

	scores, err := b.SubscribeScores(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	bad := []TelemetryMessage{
		{SessionID: "missing", Events: []risk.Event{risk.FlagEvent(risk.FlagFocused, false)}},
		{SessionID: "s1", Events: []risk.Event{risk.NumericEvent("heartRate", 80)}},
		{SessionID: "s1"},
		{Events: []risk.Event{risk.FlagEvent(risk.FlagFocused, false)}},
	}
	for _, tm := range bad {
		if err := b.PublishTelemetry(context.Background(), tm); err != nil {
			t.Fatalf("PublishTelemetry() error = %v", err)
		}
	}

	if _, ok := nextScore(t, scores); ok {
		t.Error("rejected telemetry should not publish a score")
	}

	// The router keeps consuming after rejections.
	good := risk.FlagEvent(risk.FlagBadHeaders, true)
	if err := b.PublishTelemetry(context.Background(), TelemetryMessage{SessionID: "s1", Event: &good}); err != nil {
		t.Fatal(err)
	}
	sm, ok := nextScore(t, scores)
	if !ok || sm.Score.Value != 10 {
		t.Errorf("score after recovery = %+v ok=%v, want 10", sm.Score, ok)
	}
	if got := sink.callCount(); got != 3 {
		t.Errorf("sink calls = %d, want 3", got)
	}
}

func TestBus_PublishScore(t *testing.T) {
	b := startBus(t, newEngineSink(t))
	scores, err := b.SubscribeScores(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if err := b.PublishScore("s7", risk.Score{Value: 55, Level: risk.LevelElevated}); err != nil {
		t.Fatalf("PublishScore() error = %v", err)
	}
	sm, ok := nextScore(t, scores)
	if !ok || sm.SessionID != "s7" || sm.Score.Level != risk.LevelElevated {
		t.Errorf("got %+v ok=%v", sm, ok)
	}
}

func TestTelemetryMessage_All(t *testing.T) {
	ev := risk.NumericEvent(risk.SignalReqRate, 9)
	tm := TelemetryMessage{Event: &ev, Events: []risk.Event{risk.FlagEvent(risk.FlagFocused, true)}}

	all := tm.all()
	if len(all) != 2 || all[0].Name != risk.SignalReqRate || all[1].Name != risk.FlagFocused {
		t.Errorf("all() = %v", all)
	}
}
