// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package eventlog

import (
	"context"
	"strings"
	"sync"
	"time"
)

// ring is a fixed-capacity FIFO of entries.
type ring struct {
	buf   []Entry
	start int
	size  int
}

func (r *ring) push(e Entry) {
	if r.size < len(r.buf) {
		r.buf[(r.start+r.size)%len(r.buf)] = e
		r.size++
		return
	}
	r.buf[r.start] = e
	r.start = (r.start + 1) % len(r.buf)
}

func (r *ring) each(fn func(*Entry)) {
	for i := 0; i < r.size; i++ {
		fn(&r.buf[(r.start+i)%len(r.buf)])
	}
}

// MemoryLog keeps each session's log in a ring buffer.
type MemoryLog struct {
	mu       sync.RWMutex
	capacity int
	sessions map[string]*ring
	now      func() time.Time
}

var _ Log = (*MemoryLog)(nil)

// NewMemoryLog creates an in-memory log holding capacity entries per session.
func NewMemoryLog(capacity int) *MemoryLog {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryLog{
		capacity: capacity,
		sessions: make(map[string]*ring),
		now:      time.Now,
	}
}

// Append implements Log.
func (m *MemoryLog) Append(_ context.Context, e Entry) (Entry, error) {
	e = prepare(e, m.now())

	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.sessions[e.SessionID]
	if !ok {
		r = &ring{buf: make([]Entry, m.capacity)}
		m.sessions[e.SessionID] = r
	}
	r.push(e)
	return e, nil
}

// Query implements Log.
func (m *MemoryLog) Query(_ context.Context, sessionID, q string, limit int) ([]Entry, error) {
	q = strings.ToLower(q)

	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.sessions[sessionID]
	if !ok {
		return []Entry{}, nil
	}

	out := make([]Entry, 0)
	r.each(func(e *Entry) {
		if matches(e, q) {
			out = append(out, *e)
		}
	})
	return tail(out, normalizeLimit(limit)), nil
}

// Export implements Log.
func (m *MemoryLog) Export(_ context.Context, sessionID string) ([]byte, error) {
	m.mu.RLock()
	var entries []Entry
	if r, ok := m.sessions[sessionID]; ok {
		entries = make([]Entry, 0, r.size)
		r.each(func(e *Entry) { entries = append(entries, *e) })
	}
	m.mu.RUnlock()

	return exportJSON(entries)
}

// Len implements Log.
func (m *MemoryLog) Len(_ context.Context, sessionID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.sessions[sessionID]; ok {
		return r.size, nil
	}
	return 0, nil
}

// Delete implements Log.
func (m *MemoryLog) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

// Close implements Log.
func (m *MemoryLog) Close() error { return nil }
