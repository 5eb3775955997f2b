// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package risk

import (
	"fmt"
	"math"

	"github.com/tomtom215/cybersentinel/internal/baseline"
)

// EvaluateMode selects which value of a signal is compared against its baseline.
type EvaluateMode string

const (
	// EvaluateLatest scores the most recent raw sample of each signal against
	// the baseline as it stood before that sample. A signal with no sample
	// since construction or reset is scored at its mean.
	EvaluateLatest EvaluateMode = "latest"

	// EvaluateMean scores the estimator mean. The mean is always zero
	// deviations from itself, so signals contribute nothing in this mode and
	// the score is driven by flags and counters alone.
	EvaluateMean EvaluateMode = "mean"
)

// SignalPolicy configures the estimator and contribution of one signal.
type SignalPolicy struct {
	Alpha  float64   `json:"alpha"`
	Seeds  []float64 `json:"seeds,omitempty"`
	Weight float64   `json:"weight"`
	Cap    float64   `json:"cap"`
}

// FlagPolicy configures a boolean flag. The penalty applies while the flag
// equals TriggerWhen.
type FlagPolicy struct {
	Penalty     float64 `json:"penalty"`
	TriggerWhen bool    `json:"trigger_when"`
	Initial     bool    `json:"initial"`
}

// CounterPolicy configures a counter's per-event penalty and ceiling.
type CounterPolicy struct {
	PerEvent float64 `json:"per_event"`
	Cap      float64 `json:"cap"`
}

// Thresholds maps a score to a Level. Scores strictly above Elevated are
// elevated and strictly above High are high.
type Thresholds struct {
	Elevated float64 `json:"elevated"`
	High     float64 `json:"high"`
}

// Policy holds every tunable of the engine.
type Policy struct {
	Evaluate EvaluateMode             `json:"evaluate"`
	Signals  map[string]SignalPolicy  `json:"signals"`
	Flags    map[string]FlagPolicy    `json:"flags"`
	Counters map[string]CounterPolicy `json:"counters"`
	Levels   Thresholds               `json:"levels"`
}

// DefaultPolicy returns the stock weights, caps, penalties and seed baselines.
func DefaultPolicy() Policy {
	return Policy{
		Evaluate: EvaluateLatest,
		Signals: map[string]SignalPolicy{
			SignalKeyLatency: {Alpha: 0.15, Seeds: []float64{50, 60, 55, 52}, Weight: 6, Cap: 22},
			SignalMouseSpeed: {Alpha: 0.15, Seeds: []float64{0.05, 0.09, 0.06}, Weight: 4, Cap: 18},
			SignalPasteFreq:  {Alpha: 0.2, Seeds: []float64{0, 0, 1}, Weight: 3, Cap: 15},
			SignalReqRate:    {Alpha: 0.15, Seeds: []float64{4, 6, 5}, Weight: 6, Cap: 22},
		},
		Flags: map[string]FlagPolicy{
			FlagFocused:      {Penalty: 8, TriggerWhen: false, Initial: true},
			FlagDevtoolsOpen: {Penalty: 22, TriggerWhen: true, Initial: false},
			FlagBadHeaders:   {Penalty: 10, TriggerWhen: true, Initial: false},
		},
		Counters: map[string]CounterPolicy{
			CounterFailedAuth: {PerEvent: 4, Cap: 28},
			CounterBadIP:      {PerEvent: 3, Cap: 20},
		},
		Levels: Thresholds{Elevated: 40, High: 70},
	}
}

// Clone returns a deep copy of the policy.
func (p Policy) Clone() Policy {
	out := Policy{
		Evaluate: p.Evaluate,
		Signals:  make(map[string]SignalPolicy, len(p.Signals)),
		Flags:    make(map[string]FlagPolicy, len(p.Flags)),
		Counters: make(map[string]CounterPolicy, len(p.Counters)),
		Levels:   p.Levels,
	}
	for name, sp := range p.Signals {
		sp.Seeds = append([]float64(nil), sp.Seeds...)
		out.Signals[name] = sp
	}
	for name, fp := range p.Flags {
		out.Flags[name] = fp
	}
	for name, cp := range p.Counters {
		out.Counters[name] = cp
	}
	return out
}

// Validate checks that the policy covers exactly the known vocabulary with
// usable values.
func (p Policy) Validate() error {
	switch p.Evaluate {
	case EvaluateLatest, EvaluateMean:
	default:
		return fmt.Errorf("%w: evaluate mode %q must be %q or %q", ErrInvalidPolicy, p.Evaluate, EvaluateLatest, EvaluateMean)
	}

	if err := validateSignals(p.Signals); err != nil {
		return err
	}
	if err := validateFlags(p.Flags); err != nil {
		return err
	}
	if err := validateCounters(p.Counters); err != nil {
		return err
	}
	return p.Levels.Validate()
}

// Validate checks that the thresholds are ordered and within [0, 100].
func (t Thresholds) Validate() error {
	if !inScoreRange(t.Elevated) || !inScoreRange(t.High) {
		return fmt.Errorf("%w: level thresholds must be within [0, 100]", ErrInvalidPolicy)
	}
	if t.Elevated > t.High {
		return fmt.Errorf("%w: elevated threshold %v above high threshold %v", ErrInvalidPolicy, t.Elevated, t.High)
	}
	return nil
}

func validateSignals(signals map[string]SignalPolicy) error {
	if len(signals) != len(signalNames) {
		return fmt.Errorf("%w: expected %d signals, got %d", ErrInvalidPolicy, len(signalNames), len(signals))
	}
	for _, name := range signalNames {
		sp, ok := signals[name]
		if !ok {
			return fmt.Errorf("%w: missing signal %q", ErrInvalidPolicy, name)
		}
		if err := baseline.ValidateAlpha(sp.Alpha); err != nil {
			return fmt.Errorf("%w: signal %q: %w", ErrInvalidPolicy, name, err)
		}
		if !nonNegative(sp.Weight) || !nonNegative(sp.Cap) {
			return fmt.Errorf("%w: signal %q weight and cap must be finite and non-negative", ErrInvalidPolicy, name)
		}
		for _, s := range sp.Seeds {
			if !baseline.IsFinite(s) {
				return fmt.Errorf("%w: signal %q has a non-finite seed", ErrInvalidPolicy, name)
			}
		}
	}
	return nil
}

func validateFlags(flags map[string]FlagPolicy) error {
	if len(flags) != len(flagNames) {
		return fmt.Errorf("%w: expected %d flags, got %d", ErrInvalidPolicy, len(flagNames), len(flags))
	}
	for _, name := range flagNames {
		fp, ok := flags[name]
		if !ok {
			return fmt.Errorf("%w: missing flag %q", ErrInvalidPolicy, name)
		}
		if !nonNegative(fp.Penalty) {
			return fmt.Errorf("%w: flag %q penalty must be finite and non-negative", ErrInvalidPolicy, name)
		}
	}
	return nil
}

func validateCounters(counters map[string]CounterPolicy) error {
	if len(counters) != len(counterNames) {
		return fmt.Errorf("%w: expected %d counters, got %d", ErrInvalidPolicy, len(counterNames), len(counters))
	}
	for _, name := range counterNames {
		cp, ok := counters[name]
		if !ok {
			return fmt.Errorf("%w: missing counter %q", ErrInvalidPolicy, name)
		}
		if !nonNegative(cp.PerEvent) || !nonNegative(cp.Cap) {
			return fmt.Errorf("%w: counter %q per-event penalty and cap must be finite and non-negative", ErrInvalidPolicy, name)
		}
	}
	return nil
}

func nonNegative(v float64) bool {
	return baseline.IsFinite(v) && v >= 0
}

func inScoreRange(v float64) bool {
	return !math.IsNaN(v) && v >= MinScore && v <= MaxScore
}
