// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package config

import (
	"github.com/tomtom215/cybersentinel/internal/risk"
)

// EngineConfig holds the tunables of the risk engine.
type EngineConfig struct {
	// Evaluate is "latest" or "mean".
	Evaluate string `koanf:"evaluate"`

	KeyLatency SignalConfig `koanf:"key_latency"`
	MouseSpeed SignalConfig `koanf:"mouse_speed"`
	PasteFreq  SignalConfig `koanf:"paste_freq"`
	ReqRate    SignalConfig `koanf:"req_rate"`

	Focused      FlagConfig `koanf:"focused"`
	DevtoolsOpen FlagConfig `koanf:"devtools_open"`
	BadHeaders   FlagConfig `koanf:"bad_headers"`

	FailedAuth CounterConfig `koanf:"failed_auth"`
	BadIP      CounterConfig `koanf:"bad_ip"`

	ElevatedThreshold float64 `koanf:"elevated_threshold"`
	HighThreshold     float64 `koanf:"high_threshold"`
}

// SignalConfig configures one numeric signal.
type SignalConfig struct {
	Alpha  float64   `koanf:"alpha"`
	Weight float64   `koanf:"weight"`
	Cap    float64   `koanf:"cap"`
	Seeds  []float64 `koanf:"seeds"`
}

// FlagConfig configures one flag's penalty.
type FlagConfig struct {
	Penalty float64 `koanf:"penalty"`
}

// CounterConfig configures one counter's penalty.
type CounterConfig struct {
	PerEvent float64 `koanf:"per_event"`
	Cap      float64 `koanf:"cap"`
}

// engineDefaults mirrors risk.DefaultPolicy.
func engineDefaults() EngineConfig {
	p := risk.DefaultPolicy()

	signal := func(name string) SignalConfig {
		sp := p.Signals[name]
		return SignalConfig{Alpha: sp.Alpha, Weight: sp.Weight, Cap: sp.Cap, Seeds: append([]float64(nil), sp.Seeds...)}
	}
	flag := func(name string) FlagConfig {
		return FlagConfig{Penalty: p.Flags[name].Penalty}
	}
	counter := func(name string) CounterConfig {
		cp := p.Counters[name]
		return CounterConfig{PerEvent: cp.PerEvent, Cap: cp.Cap}
	}

	return EngineConfig{
		Evaluate:          string(p.Evaluate),
		KeyLatency:        signal(risk.SignalKeyLatency),
		MouseSpeed:        signal(risk.SignalMouseSpeed),
		PasteFreq:         signal(risk.SignalPasteFreq),
		ReqRate:           signal(risk.SignalReqRate),
		Focused:           flag(risk.FlagFocused),
		DevtoolsOpen:      flag(risk.FlagDevtoolsOpen),
		BadHeaders:        flag(risk.FlagBadHeaders),
		FailedAuth:        counter(risk.CounterFailedAuth),
		BadIP:             counter(risk.CounterBadIP),
		ElevatedThreshold: p.Levels.Elevated,
		HighThreshold:     p.Levels.High,
	}
}

// Policy converts the settings into a validated risk.Policy. Flag trigger
// polarity and initial values are fixed by the vocabulary and come from
// the default policy.
func (e EngineConfig) Policy() (risk.Policy, error) {
	p := risk.DefaultPolicy()
	p.Evaluate = risk.EvaluateMode(e.Evaluate)

	for name, sc := range map[string]SignalConfig{
		risk.SignalKeyLatency: e.KeyLatency,
		risk.SignalMouseSpeed: e.MouseSpeed,
		risk.SignalPasteFreq:  e.PasteFreq,
		risk.SignalReqRate:    e.ReqRate,
	} {
		p.Signals[name] = risk.SignalPolicy{
			Alpha:  sc.Alpha,
			Seeds:  append([]float64(nil), sc.Seeds...),
			Weight: sc.Weight,
			Cap:    sc.Cap,
		}
	}

	for name, fc := range map[string]FlagConfig{
		risk.FlagFocused:      e.Focused,
		risk.FlagDevtoolsOpen: e.DevtoolsOpen,
		risk.FlagBadHeaders:   e.BadHeaders,
	} {
		fp := p.Flags[name]
		fp.Penalty = fc.Penalty
		p.Flags[name] = fp
	}

	for name, cc := range map[string]CounterConfig{
		risk.CounterFailedAuth: e.FailedAuth,
		risk.CounterBadIP:      e.BadIP,
	} {
		p.Counters[name] = risk.CounterPolicy{PerEvent: cc.PerEvent, Cap: cc.Cap}
	}

	p.Levels = risk.Thresholds{Elevated: e.ElevatedThreshold, High: e.HighThreshold}

	if err := p.Validate(); err != nil {
		return risk.Policy{}, err
	}
	return p, nil
}
