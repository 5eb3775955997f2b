// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package baseline

import (
	"errors"
	"fmt"
	"math"
)

const (
	// VarianceFloor is the smallest variance an estimator will report.
	VarianceFloor = 1e-4

	// StdDevGuard bounds the z-score denominator away from zero.
	StdDevGuard = 1e-6
)

// ErrInvalidAlpha is returned when a smoothing factor falls outside (0, 1].
var ErrInvalidAlpha = errors.New("alpha must be in (0, 1]")

// Estimator is an exponentially weighted mean/variance estimator.
type Estimator struct {
	alpha    float64
	mean     float64
	variance float64
	samples  uint64
}

// State is an immutable copy of an estimator's statistics.
type State struct {
	Alpha    float64 `json:"alpha"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	Samples  uint64  `json:"samples"`
}

// New creates an estimator with the given smoothing factor and feeds it the
// optional seed observations in order.
func New(alpha float64, seeds ...float64) (*Estimator, error) {
	if err := ValidateAlpha(alpha); err != nil {
		return nil, err
	}

	e := &Estimator{alpha: alpha, variance: VarianceFloor}
	for _, s := range seeds {
		e.Update(s)
	}
	return e, nil
}

// ValidateAlpha checks that alpha is a usable smoothing factor.
func ValidateAlpha(alpha float64) error {
	if math.IsNaN(alpha) || alpha <= 0 || alpha > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidAlpha, alpha)
	}
	return nil
}

// Update folds x into the running mean and variance. It returns false, and
// leaves the estimator unchanged, when x is NaN or infinite.
func (e *Estimator) Update(x float64) bool {
	if !IsFinite(x) {
		return false
	}

	if e.samples == 0 {
		e.mean = x
		e.variance = VarianceFloor
		e.samples = 1
		return true
	}

	diff := x - e.mean
	mean := e.alpha*x + (1-e.alpha)*e.mean
	variance := e.alpha*diff*diff + (1-e.alpha)*e.variance

	// A huge but finite sample can still overflow the squared difference.
	// Keep the previous statistics rather than poisoning them.
	if !IsFinite(mean) || !IsFinite(variance) {
		return false
	}

	e.mean = mean
	e.variance = math.Max(variance, VarianceFloor)
	e.samples++
	return true
}

// ZScore returns the signed deviation of x from the mean in standard deviations.
func (e *Estimator) ZScore(x float64) float64 {
	return zscore(x, e.mean, e.variance)
}

// Mean returns the current mean.
func (e *Estimator) Mean() float64 { return e.mean }

// Variance returns the current variance, never below VarianceFloor.
func (e *Estimator) Variance() float64 { return math.Max(e.variance, VarianceFloor) }

// Samples returns the number of accepted observations since the last reset.
func (e *Estimator) Samples() uint64 { return e.samples }

// Alpha returns the smoothing factor.
func (e *Estimator) Alpha() float64 { return e.alpha }

// Reset returns the estimator to its never-updated state. Alpha is kept.
func (e *Estimator) Reset() {
	e.mean = 0
	e.variance = VarianceFloor
	e.samples = 0
}

// Snapshot returns a copy of the current statistics.
func (e *Estimator) Snapshot() State {
	return State{
		Alpha:    e.alpha,
		Mean:     e.mean,
		Variance: e.Variance(),
		Samples:  e.samples,
	}
}

// ZScore applies the estimator's deviation formula to a snapshot.
func (s State) ZScore(x float64) float64 {
	return zscore(x, s.Mean, s.Variance)
}

// StdDev returns the guarded standard deviation of the snapshot.
func (s State) StdDev() float64 {
	return stddev(s.Variance)
}

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func stddev(variance float64) float64 {
	return math.Max(math.Sqrt(math.Max(variance, VarianceFloor)), StdDevGuard)
}

func zscore(x, mean, variance float64) float64 {
	return (x - mean) / stddev(variance)
}
