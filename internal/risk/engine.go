// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package risk

import (
	"fmt"
	"sync"
)

// Ingester accepts telemetry for one session.
type Ingester interface {
	ReportNumeric(name string, value float64) error
	SetFlag(name string, value bool) error
	IncrementCounter(name string, delta int64) error
	ResetCounter(name string) error
	Ingest(ev Event) error
}

// Scorer produces scores for one session.
type Scorer interface {
	ComputeScore() Score
	LastScore() (Score, bool)
}

// Outcome describes what happened to an ingested event.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeDiscarded Outcome = "discarded"
	OutcomeRejected  Outcome = "rejected"
)

// Observer is notified after ingestion and scoring. Calls happen outside the
// registry lock, on the caller's goroutine.
type Observer interface {
	// EventIngested is called for every event, including rejected ones.
	EventIngested(ev Event, outcome Outcome, err error)

	// ScoreComputed is called after each ComputeScore. previous is the level
	// of the prior score, or empty for the first score.
	ScoreComputed(score Score, previous Level)
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver registers an observer. Multiple observers are called in
// registration order.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// Engine is the ingestion and query surface of one session's registry.
type Engine struct {
	registry  *Registry
	policy    Policy
	observers []Observer

	mu      sync.Mutex
	last    Score
	hasLast bool
}

var (
	_ Ingester = (*Engine)(nil)
	_ Scorer   = (*Engine)(nil)
)

// NewEngine creates an engine with a fresh registry for policy.
func NewEngine(policy Policy, opts ...Option) (*Engine, error) {
	policy = policy.Clone()
	registry, err := NewRegistry(policy)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		registry: registry,
		policy:   policy,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// ReportNumeric implements Ingester.
func (e *Engine) ReportNumeric(name string, value float64) error {
	return e.Ingest(NumericEvent(name, value))
}

// SetFlag implements Ingester.
func (e *Engine) SetFlag(name string, value bool) error {
	return e.Ingest(FlagEvent(name, value))
}

// IncrementCounter implements Ingester.
func (e *Engine) IncrementCounter(name string, delta int64) error {
	return e.Ingest(CounterEvent(name, delta))
}

// ResetCounter implements Ingester.
func (e *Engine) ResetCounter(name string) error {
	return e.Ingest(Event{Kind: EventResetCounter, Name: name})
}

// Reset returns the whole session to its initial state.
func (e *Engine) Reset() {
	_ = e.Ingest(Event{Kind: EventReset})
}

// Ingest applies a single event.
func (e *Engine) Ingest(ev Event) error {
	outcome := OutcomeApplied
	var err error

	switch ev.Kind {
	case EventNumeric:
		var applied bool
		applied, err = e.registry.ReportNumeric(ev.Name, ev.Value)
		if err == nil && !applied {
			outcome = OutcomeDiscarded
		}
	case EventFlag:
		err = e.registry.SetFlag(ev.Name, ev.Flag)
	case EventCounter:
		var applied bool
		applied, err = e.registry.IncrementCounter(ev.Name, ev.CounterDelta())
		if err == nil && !applied {
			outcome = OutcomeDiscarded
		}
	case EventResetCounter:
		err = e.registry.ResetCounter(ev.Name)
	case EventReset:
		e.registry.Reset()
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownEventKind, ev.Kind)
	}

	if err != nil {
		outcome = OutcomeRejected
	}
	for _, o := range e.observers {
		o.EventIngested(ev, outcome, err)
	}
	return err
}

// IngestBatch applies events in order and stops at the first error. It
// returns the number of events applied or discarded before the error.
func (e *Engine) IngestBatch(events []Event) (int, error) {
	for i, ev := range events {
		if err := e.Ingest(ev); err != nil {
			return i, fmt.Errorf("event %d: %w", i, err)
		}
	}
	return len(events), nil
}

// ComputeScore implements Scorer. The result is remembered as the last score.
func (e *Engine) ComputeScore() Score {
	score := Compute(e.registry.Snapshot(), e.policy)

	e.mu.Lock()
	var previous Level
	if e.hasLast {
		previous = e.last.Level
	}
	e.last = score
	e.hasLast = true
	e.mu.Unlock()

	for _, o := range e.observers {
		o.ScoreComputed(score, previous)
	}
	return score
}

// LastScore implements Scorer.
func (e *Engine) LastScore() (Score, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last, e.hasLast
}

// Snapshot returns a consistent copy of the registry state.
func (e *Engine) Snapshot() Snapshot {
	return e.registry.Snapshot()
}

// Policy returns a copy of the engine's policy.
func (e *Engine) Policy() Policy {
	return e.policy.Clone()
}
