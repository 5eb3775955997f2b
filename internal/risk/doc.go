// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

/*
Package risk implements the online behavioral risk-scoring engine.

The engine ingests typed telemetry for a single monitored session and turns
the current state into a bounded 0-100 risk score with a per-term breakdown.

# Signals, Flags and Counters

The vocabulary is fixed. Unknown names are rejected, never created.

	signals:  keyLatency, mouseSpeed, pasteFreq, reqRate
	flags:    focused, devtoolsOpen, badHeaders
	counters: failedAuth, badIp

Each signal owns a baseline.Estimator seeded with a plausible human baseline.
Flags are booleans that add a flat penalty when set to their trigger value.
Counters are monotonic event counts that add a capped per-event penalty.

# Scoring

Compute fuses a registry snapshot into a Score:

  - signals contribute min(|z| * weight, cap)
  - flags contribute their penalty when triggered
  - counters contribute min(count * perEvent, cap)

The sum is clamped to [0, 100]. Every term appears in the breakdown, in a
fixed order, so a score can always be explained.

# Usage

	engine, err := risk.NewEngine(risk.DefaultPolicy())
	if err != nil {
	    return err
	}

	_ = engine.ReportNumeric(risk.SignalKeyLatency, 48)
	_ = engine.SetFlag(risk.FlagDevtoolsOpen, true)
	_ = engine.IncrementCounter(risk.CounterFailedAuth, 1)

	score := engine.ComputeScore()
	fmt.Println(score.Value, score.Level)

# Thread Safety

A Registry serializes every transition and snapshot behind one mutex, so an
estimator's mean and variance always move together and a score never sees a
half-applied update. Compute is a pure function of the snapshot.
*/
package risk
