// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package session

import (
	"sync/atomic"
	"time"

	"github.com/tomtom215/cybersentinel/internal/capture"
	"github.com/tomtom215/cybersentinel/internal/risk"
)

// Session is one monitored user session.
type Session struct {
	ID        string
	CreatedAt time.Time

	engine   *risk.Engine
	tracker  *capture.Tracker
	gauge    *metricsObserver
	lastSeen atomic.Int64 // unix nanoseconds
}

// Info is the public view of a session.
type Info struct {
	ID        string      `json:"session_id"`
	CreatedAt time.Time   `json:"created_at"`
	LastSeen  time.Time   `json:"last_seen"`
	Score     *risk.Score `json:"score,omitempty"`
}

// Engine returns the session's risk engine.
func (s *Session) Engine() *risk.Engine {
	return s.engine
}

// Tracker returns the session's capture tracker.
func (s *Session) Tracker() *capture.Tracker {
	return s.tracker
}

// LastSeen returns the time of the last activity.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) touch(at time.Time) {
	s.lastSeen.Store(at.UnixNano())
}

// Ingest applies events in order and returns the fresh score. On error the
// score reflects the events applied before the failing one.
func (s *Session) Ingest(events []risk.Event) (int, risk.Score, error) {
	n, err := s.engine.IngestBatch(events)
	return n, s.engine.ComputeScore(), err
}

// Reset returns the engine and tracker to their initial state.
func (s *Session) Reset() {
	s.tracker.Reset()
	s.engine.Reset()
}

// Info returns the session's public view, including its last score.
func (s *Session) Info() Info {
	info := Info{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		LastSeen:  s.LastSeen(),
	}
	if score, ok := s.engine.LastScore(); ok {
		info.Score = &score
	}
	return info
}
