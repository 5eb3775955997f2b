// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package risk

// Level is a coarse classification of a score.
type Level string

const (
	LevelLow      Level = "low"
	LevelElevated Level = "elevated"
	LevelHigh     Level = "high"
)

// Rank orders levels for escalation checks. Unknown levels rank lowest.
func (l Level) Rank() int {
	switch l {
	case LevelElevated:
		return 1
	case LevelHigh:
		return 2
	default:
		return 0
	}
}

// Classify maps a score onto a level.
func (t Thresholds) Classify(value float64) Level {
	switch {
	case value > t.High:
		return LevelHigh
	case value > t.Elevated:
		return LevelElevated
	default:
		return LevelLow
	}
}
