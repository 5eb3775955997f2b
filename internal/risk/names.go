// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package risk

// Kind classifies a named input.
type Kind string

const (
	KindSignal  Kind = "signal"
	KindFlag    Kind = "flag"
	KindCounter Kind = "counter"
)

// Numeric signals backed by an adaptive estimator.
const (
	SignalKeyLatency = "keyLatency"
	SignalMouseSpeed = "mouseSpeed"
	SignalPasteFreq  = "pasteFreq"
	SignalReqRate    = "reqRate"
)

// Boolean flags.
const (
	FlagFocused      = "focused"
	FlagDevtoolsOpen = "devtoolsOpen"
	FlagBadHeaders   = "badHeaders"
)

// Monotonic counters.
const (
	CounterFailedAuth = "failedAuth"
	CounterBadIP      = "badIp"
)

// The order of these lists is the order of a score breakdown.
var (
	signalNames  = []string{SignalKeyLatency, SignalMouseSpeed, SignalPasteFreq, SignalReqRate}
	flagNames    = []string{FlagFocused, FlagDevtoolsOpen, FlagBadHeaders}
	counterNames = []string{CounterFailedAuth, CounterBadIP}
)

// Signals returns the signal names in breakdown order.
func Signals() []string { return append([]string(nil), signalNames...) }

// Flags returns the flag names in breakdown order.
func Flags() []string { return append([]string(nil), flagNames...) }

// Counters returns the counter names in breakdown order.
func Counters() []string { return append([]string(nil), counterNames...) }

// KindOf reports which kind a name belongs to.
func KindOf(name string) (Kind, bool) {
	switch {
	case contains(signalNames, name):
		return KindSignal, true
	case contains(flagNames, name):
		return KindFlag, true
	case contains(counterNames, name):
		return KindCounter, true
	default:
		return "", false
	}
}

func contains(list []string, name string) bool {
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}
