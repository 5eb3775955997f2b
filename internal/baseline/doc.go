// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

/*
Package baseline maintains running statistical baselines for numeric
behavioral signals.

An Estimator tracks an exponentially weighted moving average (EWMA) of a
signal together with an exponentially weighted variance. Each update is O(1)
in time and memory, so a session can feed thousands of samples per second
without growing state.

# Update Rule

The first accepted observation initializes the mean and pins the variance
to VarianceFloor. Every later observation x moves the estimate:

	mean'     = alpha*x + (1-alpha)*mean
	variance' = alpha*(x-mean)^2 + (1-alpha)*variance

The variance term uses the mean from before the update. After every update
the variance is clamped to at least VarianceFloor, so a signal that never
moves still yields a finite z-score.

# Deviation

ZScore reports how many standard deviations an observation sits from the
current mean. The standard deviation is guarded by StdDevGuard, so the
division is always defined.

Non-finite samples (NaN, +Inf, -Inf) are dropped without touching state.

# Thread Safety

Estimator is not safe for concurrent use. Callers serialize access; the
risk registry does so with a single mutex per session.
*/
package baseline
