// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package eventlog

import (
	"context"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Defaults for log sizing.
const (
	DefaultCapacity   = 5000
	DefaultQueryLimit = 500
)

// Entry domains.
const (
	DomainBehavior  = "behavior"
	DomainIntrusion = "intrusion"
	DomainAlert     = "alert"
	DomainSystem    = "system"
)

// Entry is one audit record.
type Entry struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	Time      time.Time      `json:"ts"`
	Domain    string         `json:"domain"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// Log is a bounded per-session audit log.
type Log interface {
	// Append stores e, filling in ID and Time when empty, and returns the
	// stored entry.
	Append(ctx context.Context, e Entry) (Entry, error)

	// Query returns the newest entries of a session matching q, oldest first.
	// An empty q matches everything. limit <= 0 means DefaultQueryLimit.
	Query(ctx context.Context, sessionID, q string, limit int) ([]Entry, error)

	// Export returns every entry of a session as a JSON array.
	Export(ctx context.Context, sessionID string) ([]byte, error)

	// Len returns the number of entries held for a session.
	Len(ctx context.Context, sessionID string) (int, error)

	// Delete drops a session's entries.
	Delete(ctx context.Context, sessionID string) error

	Close() error
}

func prepare(e Entry, now time.Time) Entry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Time.IsZero() {
		e.Time = now
	}
	return e
}

// matches reports whether q (already lower-cased) appears in the entry's
// domain, type or payload.
func matches(e *Entry, q string) bool {
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(e.Domain), q) || strings.Contains(strings.ToLower(e.Type), q) {
		return true
	}
	if len(e.Payload) == 0 {
		return false
	}
	raw, err := json.Marshal(e.Payload)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(raw)), q)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultQueryLimit
	}
	return limit
}

// tail keeps the last n entries of a slice.
func tail(entries []Entry, n int) []Entry {
	if len(entries) > n {
		return entries[len(entries)-n:]
	}
	return entries
}

func exportJSON(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	return json.MarshalIndent(entries, "", "  ")
}
