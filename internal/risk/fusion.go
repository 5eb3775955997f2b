// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package risk

import "math"

// Score bounds.
const (
	MinScore = 0.0
	MaxScore = 100.0
)

// Contribution is one term of a score breakdown.
//
// Input is the evaluated signal value, the flag state as 0 or 1, or the
// counter total. Deviation is |z| and is only set for signals. Cap is the
// largest value the term can reach.
type Contribution struct {
	Name      string  `json:"name"`
	Kind      Kind    `json:"kind"`
	Input     float64 `json:"input"`
	Deviation float64 `json:"deviation,omitempty"`
	Value     float64 `json:"value"`
	Cap       float64 `json:"cap"`
}

// Score is a bounded risk score with its full breakdown.
type Score struct {
	Value     float64        `json:"value"`
	Level     Level          `json:"level"`
	Breakdown []Contribution `json:"breakdown"`
	Revision  uint64         `json:"revision"`
}

// Term returns the breakdown entry for name.
func (s Score) Term(name string) (Contribution, bool) {
	for _, c := range s.Breakdown {
		if c.Name == name {
			return c, true
		}
	}
	return Contribution{}, false
}

// Compute fuses a snapshot into a score. It never fails and does not touch
// the registry, so identical snapshots produce identical scores.
func Compute(snap Snapshot, policy Policy) Score {
	breakdown := make([]Contribution, 0, len(signalNames)+len(flagNames)+len(counterNames))
	total := 0.0

	for _, name := range signalNames {
		c := signalContribution(name, snap.Signals[name], policy.Signals[name], policy.Evaluate)
		total += c.Value
		breakdown = append(breakdown, c)
	}
	for _, name := range flagNames {
		c := flagContribution(name, snap.Flags[name], policy.Flags[name])
		total += c.Value
		breakdown = append(breakdown, c)
	}
	for _, name := range counterNames {
		c := counterContribution(name, snap.Counters[name], policy.Counters[name])
		total += c.Value
		breakdown = append(breakdown, c)
	}

	value := clamp(total, MinScore, MaxScore)
	return Score{
		Value:     value,
		Level:     policy.Levels.Classify(value),
		Breakdown: breakdown,
		Revision:  snap.Revision,
	}
}

func signalContribution(name string, state SignalState, sp SignalPolicy, mode EvaluateMode) Contribution {
	c := Contribution{Name: name, Kind: KindSignal, Cap: sp.Cap}

	// Never updated: mean 0 at the variance floor carries no information.
	if state.Baseline.Samples == 0 {
		return c
	}

	x, ref := state.Baseline.Mean, state.Baseline
	if mode == EvaluateLatest && state.HasLatest {
		// Measured against the baseline before the sample was absorbed.
		x = state.Latest
		if state.Prior.Samples > 0 {
			ref = state.Prior
		}
	}

	c.Input = x
	c.Deviation = math.Abs(ref.ZScore(x))
	c.Value = capped(c.Deviation*sp.Weight, sp.Cap)
	return c
}

func flagContribution(name string, set bool, fp FlagPolicy) Contribution {
	c := Contribution{Name: name, Kind: KindFlag, Cap: fp.Penalty}
	if set {
		c.Input = 1
	}
	if set == fp.TriggerWhen {
		c.Value = fp.Penalty
	}
	return c
}

func counterContribution(name string, count int64, cp CounterPolicy) Contribution {
	c := Contribution{Name: name, Kind: KindCounter, Input: float64(count), Cap: cp.Cap}
	c.Value = capped(float64(count)*cp.PerEvent, cp.Cap)
	return c
}

// capped bounds v to [0, limit]. A NaN product (0 * Inf) counts as nothing.
func capped(v, limit float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return clamp(v, 0, limit)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(v, hi))
}
