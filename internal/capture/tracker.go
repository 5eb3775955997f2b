// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package capture

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/tomtom215/cybersentinel/internal/cache"
	"github.com/tomtom215/cybersentinel/internal/risk"
)

// ErrUnknownObservation is returned by Apply for an unrecognized type.
var ErrUnknownObservation = errors.New("unknown observation type")

// Observation types accepted by Apply.
const (
	ObserveKey        = "key"
	ObservePointer    = "pointer"
	ObservePaste      = "paste"
	ObserveRequest    = "request"
	ObserveFocus      = "focus"
	ObserveDevtools   = "devtools"
	ObserveFailedAuth = "failed_auth"
)

// Observation is a raw client input in wire form.
type Observation struct {
	Type       string    `json:"type" validate:"required,oneof=key pointer paste request focus devtools failed_auth"`
	At         time.Time `json:"at"`
	X          float64   `json:"x,omitempty"`
	Y          float64   `json:"y,omitempty"`
	State      bool      `json:"state,omitempty"`
	BadHeaders bool      `json:"bad_headers,omitempty"`
	BadIP      bool      `json:"bad_ip,omitempty"`
	Count      int64     `json:"count,omitempty" validate:"gte=0,lte=1000"`
}

// Config controls the trailing windows used for rate signals.
type Config struct {
	PasteWindow   time.Duration
	RequestWindow time.Duration
	Buckets       int
}

// DefaultConfig returns one-minute paste and request windows.
func DefaultConfig() Config {
	return Config{
		PasteWindow:   time.Minute,
		RequestWindow: time.Minute,
		Buckets:       12,
	}
}

type pointerSample struct {
	x, y float64
	at   time.Time
}

// Tracker derives signals from raw observations for one session.
type Tracker struct {
	sink risk.Ingester

	mu          sync.Mutex
	lastKey     time.Time
	lastPointer *pointerSample
	pastes      *cache.SlidingWindowCounter
	requests    *cache.SlidingWindowCounter
	now         func() time.Time
}

// NewTracker creates a tracker that reports into sink.
func NewTracker(sink risk.Ingester, cfg Config) *Tracker {
	def := DefaultConfig()
	if cfg.PasteWindow <= 0 {
		cfg.PasteWindow = def.PasteWindow
	}
	if cfg.RequestWindow <= 0 {
		cfg.RequestWindow = def.RequestWindow
	}
	if cfg.Buckets <= 0 {
		cfg.Buckets = def.Buckets
	}

	return &Tracker{
		sink:     sink,
		pastes:   cache.NewSlidingWindowCounter(cfg.PasteWindow, cfg.Buckets),
		requests: cache.NewSlidingWindowCounter(cfg.RequestWindow, cfg.Buckets),
		now:      time.Now,
	}
}

// Keystroke records a key press. The first press only starts the clock.
func (t *Tracker) Keystroke(at time.Time) error {
	t.mu.Lock()
	prev := t.lastKey
	t.lastKey = at
	t.mu.Unlock()

	if prev.IsZero() {
		return nil
	}
	latency := float64(at.Sub(prev)) / float64(time.Millisecond)
	if latency < 0 {
		return nil
	}
	return t.sink.ReportNumeric(risk.SignalKeyLatency, latency)
}

// Pointer records a pointer position. Speed is reported from the second
// position on, when time has advanced.
func (t *Tracker) Pointer(x, y float64, at time.Time) error {
	t.mu.Lock()
	prev := t.lastPointer
	t.lastPointer = &pointerSample{x: x, y: y, at: at}
	t.mu.Unlock()

	if prev == nil {
		return nil
	}
	dt := float64(at.Sub(prev.at)) / float64(time.Millisecond)
	if dt <= 0 {
		return nil
	}
	speed := math.Hypot(x-prev.x, y-prev.y) / dt
	return t.sink.ReportNumeric(risk.SignalMouseSpeed, speed)
}

// Paste records n clipboard pastes and reports the trailing paste count.
func (t *Tracker) Paste(at time.Time, n int64) error {
	if n <= 0 {
		n = 1
	}
	t.pastes.IncrementAt(at, n)
	return t.sink.ReportNumeric(risk.SignalPasteFreq, float64(t.pastes.CountAt(at)))
}

// Request records an inbound request and reports the trailing request rate.
// Suspicious headers latch the badHeaders flag; a flagged address bumps badIp.
func (t *Tracker) Request(at time.Time, badHeaders, badIP bool) error {
	t.requests.IncrementAt(at, 1)
	perWindow := float64(t.requests.CountAt(at))

	var errs []error
	errs = append(errs, t.sink.ReportNumeric(risk.SignalReqRate, perWindow))
	if badHeaders {
		errs = append(errs, t.sink.SetFlag(risk.FlagBadHeaders, true))
	}
	if badIP {
		errs = append(errs, t.sink.IncrementCounter(risk.CounterBadIP, 1))
	}
	return errors.Join(errs...)
}

// Focus records a window focus change.
func (t *Tracker) Focus(focused bool) error {
	return t.sink.SetFlag(risk.FlagFocused, focused)
}

// Devtools records a developer tools state change.
func (t *Tracker) Devtools(open bool) error {
	return t.sink.SetFlag(risk.FlagDevtoolsOpen, open)
}

// FailedAuth records n failed authentication attempts.
func (t *Tracker) FailedAuth(n int64) error {
	if n <= 0 {
		n = 1
	}
	return t.sink.IncrementCounter(risk.CounterFailedAuth, n)
}

// Reset forgets timing state and clears the trailing windows.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.lastKey = time.Time{}
	t.lastPointer = nil
	t.mu.Unlock()

	t.pastes.Reset()
	t.requests.Reset()
}

// Apply dispatches a wire observation. A zero At means now.
func (t *Tracker) Apply(o Observation) error {
	at := o.At
	if at.IsZero() {
		at = t.now()
	}

	switch o.Type {
	case ObserveKey:
		return t.Keystroke(at)
	case ObservePointer:
		return t.Pointer(o.X, o.Y, at)
	case ObservePaste:
		return t.Paste(at, o.Count)
	case ObserveRequest:
		return t.Request(at, o.BadHeaders, o.BadIP)
	case ObserveFocus:
		return t.Focus(o.State)
	case ObserveDevtools:
		return t.Devtools(o.State)
	case ObserveFailedAuth:
		return t.FailedAuth(o.Count)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownObservation, o.Type)
	}
}
