// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package risk

import "fmt"

// EventKind discriminates an Event.
type EventKind string

const (
	EventNumeric      EventKind = "numeric"
	EventFlag         EventKind = "flag"
	EventCounter      EventKind = "counter"
	EventResetCounter EventKind = "reset_counter"
	EventReset        EventKind = "reset"
)

// DefaultCounterDelta is the increment of a counter event that omits Delta.
const DefaultCounterDelta int64 = 1

// Event is a single telemetry observation in wire form. Only the field that
// matches Kind is read: Value for numeric, Flag for flag, Delta for counter.
type Event struct {
	Kind  EventKind `json:"kind" validate:"required,oneof=numeric flag counter reset_counter reset"`
	Name  string    `json:"name,omitempty" validate:"required_unless=Kind reset,max=64"`
	Value float64   `json:"value,omitempty"`
	Flag  bool      `json:"flag,omitempty"`
	Delta *int64    `json:"delta,omitempty" validate:"omitempty,gte=0"`
}

// NumericEvent builds a numeric event.
func NumericEvent(name string, value float64) Event {
	return Event{Kind: EventNumeric, Name: name, Value: value}
}

// FlagEvent builds a flag event.
func FlagEvent(name string, value bool) Event {
	return Event{Kind: EventFlag, Name: name, Flag: value}
}

// CounterEvent builds a counter increment event.
func CounterEvent(name string, delta int64) Event {
	return Event{Kind: EventCounter, Name: name, Delta: &delta}
}

// CounterDelta returns Delta, or DefaultCounterDelta when it is unset.
func (e Event) CounterDelta() int64 {
	if e.Delta == nil {
		return DefaultCounterDelta
	}
	return *e.Delta
}

// String renders the event for logs.
func (e Event) String() string {
	switch e.Kind {
	case EventNumeric:
		return fmt.Sprintf("%s %s=%g", e.Kind, e.Name, e.Value)
	case EventFlag:
		return fmt.Sprintf("%s %s=%t", e.Kind, e.Name, e.Flag)
	case EventCounter:
		return fmt.Sprintf("%s %s+=%d", e.Kind, e.Name, e.CounterDelta())
	case EventReset:
		return string(e.Kind)
	default:
		return fmt.Sprintf("%s %s", e.Kind, e.Name)
	}
}
