// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/cybersentinel/internal/capture"
	"github.com/tomtom215/cybersentinel/internal/eventlog"
	"github.com/tomtom215/cybersentinel/internal/logging"
	"github.com/tomtom215/cybersentinel/internal/metrics"
	"github.com/tomtom215/cybersentinel/internal/risk"
)

var (
	// ErrSessionNotFound is returned for an unknown or expired session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrTooManySessions is returned when the manager is at capacity.
	ErrTooManySessions = errors.New("too many active sessions")
)

// Config configures a Manager.
type Config struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
	MaxSessions   int
	Capture       capture.Config
}

// DefaultConfig returns a 30 minute idle timeout swept every minute.
func DefaultConfig() Config {
	return Config{
		IdleTimeout:   30 * time.Minute,
		SweepInterval: time.Minute,
		MaxSessions:   10000,
		Capture:       capture.DefaultConfig(),
	}
}

// ObserverFactory builds a per-session engine observer.
type ObserverFactory func(sessionID string) risk.Observer

// Option configures a Manager.
type Option func(*Manager)

// WithObserverFactory attaches an observer to every new session's engine.
func WithObserverFactory(f ObserverFactory) Option {
	return func(m *Manager) {
		if f != nil {
			m.factories = append(m.factories, f)
		}
	}
}

// WithClock replaces the manager's clock. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// Manager creates, tracks and expires sessions.
type Manager struct {
	cfg       Config
	policy    risk.Policy
	log       eventlog.Log
	recorder  *Recorder
	factories []ObserverFactory
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a manager whose sessions score with policy and record
// into log. log may be nil.
func NewManager(cfg Config, policy risk.Policy, log eventlog.Log, opts ...Option) *Manager {
	def := DefaultConfig()
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = def.MaxSessions
	}

	m := &Manager{
		cfg:      cfg,
		policy:   policy.Clone(),
		log:      log,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
	if log != nil {
		m.recorder = NewRecorder(log)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a new session with a fresh engine.
func (m *Manager) Create() (*Session, error) {
	id := uuid.NewString()

	gauge := &metricsObserver{}
	opts := []risk.Option{risk.WithObserver(gauge)}
	if m.recorder != nil {
		opts = append(opts, risk.WithObserver(m.recorder.Observer(id)))
	}
	for _, f := range m.factories {
		opts = append(opts, risk.WithObserver(f(id)))
	}

	engine, err := risk.NewEngine(m.policy, opts...)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	now := m.now()
	s := &Session{
		ID:        id,
		CreatedAt: now,
		engine:    engine,
		tracker:   capture.NewTracker(engine, m.cfg.Capture),
		gauge:     gauge,
	}
	s.touch(now)

	m.mu.Lock()
	if len(m.sessions) >= m.cfg.MaxSessions {
		m.mu.Unlock()
		return nil, ErrTooManySessions
	}
	m.sessions[id] = s
	total := len(m.sessions)
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(total))
	logging.Info().Str("session_id", id).Int("active_sessions", total).Msg("session started")
	m.record(id, eventlog.DomainSystem, "session_start", nil)
	return s, nil
}

// Get returns a session and marks it active.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.touch(m.now())
	return s, nil
}

// Touch marks a session active.
func (m *Manager) Touch(id string) error {
	_, err := m.Get(id)
	return err
}

// Delete ends a session and drops its event log.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	total := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	m.end(ctx, s, total)
	logging.Info().Str("session_id", id).Int("active_sessions", total).Msg("session ended")
	return nil
}

// end releases everything held for a removed session.
func (m *Manager) end(ctx context.Context, s *Session, total int) {
	metrics.ActiveSessions.Set(float64(total))
	s.gauge.end()
	if m.log != nil {
		if err := m.log.Delete(ctx, s.ID); err != nil {
			logging.Warn().Err(err).Str("session_id", s.ID).Msg("failed to drop session event log")
		}
	}
}

// List returns all sessions ordered by creation time.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Has reports whether id is an active session. Unlike Get it does not mark
// the session active.
func (m *Manager) Has(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sessions[id]
	return ok
}

// Len returns the number of active sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Policy returns a copy of the policy new sessions are scored with.
func (m *Manager) Policy() risk.Policy {
	return m.policy.Clone()
}

// Log returns the event log, or nil when none is configured.
func (m *Manager) Log() eventlog.Log {
	return m.log
}

// IngestTelemetry applies events to a session and returns its fresh score.
func (m *Manager) IngestTelemetry(ctx context.Context, sessionID string, events []risk.Event) (risk.Score, error) {
	if err := ctx.Err(); err != nil {
		return risk.Score{}, err
	}
	s, err := m.Get(sessionID)
	if err != nil {
		return risk.Score{}, err
	}
	_, score, err := s.Ingest(events)
	return score, err
}

// RunWithContext sweeps idle sessions until ctx is cancelled.
func (m *Manager) RunWithContext(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	logging.Info().
		Dur("idle_timeout", m.cfg.IdleTimeout).
		Dur("sweep_interval", m.cfg.SweepInterval).
		Msg("session sweeper started")

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("session sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			if n := m.Sweep(ctx); n > 0 {
				logging.Info().Int("expired", n).Int("active_sessions", m.Len()).Msg("expired idle sessions")
			}
		}
	}
}

// Sweep removes sessions idle for longer than the idle timeout and returns
// how many were removed.
func (m *Manager) Sweep(ctx context.Context) int {
	cutoff := m.now().Add(-m.cfg.IdleTimeout)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	total := len(m.sessions)
	m.mu.Unlock()

	for _, s := range expired {
		m.end(ctx, s, total)
		metrics.SessionsExpired.Inc()
		logging.Debug().Str("session_id", s.ID).Time("last_seen", s.LastSeen()).Msg("session expired")
	}
	return len(expired)
}

func (m *Manager) record(sessionID, domain, typ string, payload map[string]any) {
	if m.recorder != nil {
		m.recorder.append(context.Background(), eventlog.Entry{
			SessionID: sessionID,
			Domain:    domain,
			Type:      typ,
			Payload:   payload,
		})
	}
}
