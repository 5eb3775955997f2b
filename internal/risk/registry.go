// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package risk

import (
	"fmt"
	"math"
	"sync"

	"github.com/tomtom215/cybersentinel/internal/baseline"
)

// SignalState is the snapshot of one numeric signal.
type SignalState struct {
	Baseline  baseline.State `json:"baseline"`
	Latest    float64        `json:"latest"`
	HasLatest bool           `json:"has_latest"`

	// Prior is the baseline as it stood before Latest was absorbed.
	Prior baseline.State `json:"prior"`
}

// Snapshot is a consistent copy of a registry's state.
type Snapshot struct {
	Signals  map[string]SignalState `json:"signals"`
	Flags    map[string]bool        `json:"flags"`
	Counters map[string]int64       `json:"counters"`
	Revision uint64                 `json:"revision"`
}

type signalSlot struct {
	estimator *baseline.Estimator
	seeds     []float64
	latest    float64
	hasLatest bool
	prior     baseline.State
}

// Registry owns the per-session state of every signal, flag and counter.
// All methods are safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	signals  map[string]*signalSlot
	flags    map[string]bool
	initial  map[string]bool
	counters map[string]int64
	revision uint64
}

// NewRegistry builds a registry with seeded estimators and default flags.
func NewRegistry(policy Policy) (*Registry, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	r := &Registry{
		signals:  make(map[string]*signalSlot, len(signalNames)),
		flags:    make(map[string]bool, len(flagNames)),
		initial:  make(map[string]bool, len(flagNames)),
		counters: make(map[string]int64, len(counterNames)),
	}

	for _, name := range signalNames {
		sp := policy.Signals[name]
		est, err := baseline.New(sp.Alpha, sp.Seeds...)
		if err != nil {
			return nil, fmt.Errorf("signal %q: %w", name, err)
		}
		r.signals[name] = &signalSlot{
			estimator: est,
			seeds:     append([]float64(nil), sp.Seeds...),
		}
	}
	for _, name := range flagNames {
		r.initial[name] = policy.Flags[name].Initial
		r.flags[name] = policy.Flags[name].Initial
	}
	for _, name := range counterNames {
		r.counters[name] = 0
	}

	return r, nil
}

// ReportNumeric feeds a sample to the named signal's estimator and records
// it as the signal's latest value. A NaN or infinite value is discarded
// without error; applied reports whether the sample changed state.
func (r *Registry) ReportNumeric(name string, value float64) (applied bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.signals[name]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownSignal, name)
	}
	prior := slot.estimator.Snapshot()
	if !slot.estimator.Update(value) {
		return false, nil
	}

	slot.prior = prior
	slot.latest = value
	slot.hasLatest = true
	r.revision++
	return true, nil
}

// SetFlag sets the named flag.
func (r *Registry) SetFlag(name string, value bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.flags[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFlag, name)
	}
	r.flags[name] = value
	r.revision++
	return nil
}

// IncrementCounter adds delta to the named counter, saturating at MaxInt64.
// A zero delta is accepted but leaves the registry untouched; applied
// reports whether the counter moved.
func (r *Registry) IncrementCounter(name string, delta int64) (applied bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.counters[name]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownCounter, name)
	}
	if delta < 0 {
		return false, fmt.Errorf("%w: %q got %d", ErrNegativeDelta, name, delta)
	}
	if delta == 0 {
		return false, nil
	}

	if delta > math.MaxInt64-current {
		current = math.MaxInt64
	} else {
		current += delta
	}
	r.counters[name] = current
	r.revision++
	return true, nil
}

// ResetCounter zeroes the named counter.
func (r *Registry) ResetCounter(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.counters[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCounter, name)
	}
	r.counters[name] = 0
	r.revision++
	return nil
}

// Reset returns every input to its initial state: estimators re-seeded,
// latest samples cleared, flags at their initial values, counters at zero.
// The revision keeps counting.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, slot := range r.signals {
		slot.estimator.Reset()
		for _, s := range slot.seeds {
			slot.estimator.Update(s)
		}
		slot.latest = 0
		slot.hasLatest = false
		slot.prior = baseline.State{}
	}
	for name, v := range r.initial {
		r.flags[name] = v
	}
	for name := range r.counters {
		r.counters[name] = 0
	}
	r.revision++
}

// Snapshot returns a consistent copy of all state.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		Signals:  make(map[string]SignalState, len(r.signals)),
		Flags:    make(map[string]bool, len(r.flags)),
		Counters: make(map[string]int64, len(r.counters)),
		Revision: r.revision,
	}
	for name, slot := range r.signals {
		snap.Signals[name] = SignalState{
			Baseline:  slot.estimator.Snapshot(),
			Latest:    slot.latest,
			HasLatest: slot.hasLatest,
			Prior:     slot.prior,
		}
	}
	for name, v := range r.flags {
		snap.Flags[name] = v
	}
	for name, v := range r.counters {
		snap.Counters[name] = v
	}
	return snap
}
