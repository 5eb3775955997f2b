// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package eventlog

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const keyPrefix = "log/"

type cursor struct {
	next  uint64
	count int
}

// BadgerLog stores session logs in BadgerDB. Keys sort by session and then
// by an 8-byte big-endian sequence, so prefix iteration yields entries in
// append order.
type BadgerLog struct {
	db       *badger.DB
	ownsDB   bool
	capacity int
	now      func() time.Time

	// mu serializes appends and guards cursors.
	mu      sync.Mutex
	cursors map[string]*cursor
}

var _ Log = (*BadgerLog)(nil)

// OpenBadgerLog opens (or creates) a BadgerDB at path. An empty path opens
// an in-memory database.
func OpenBadgerLog(path string, capacity int) (*BadgerLog, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	l := NewBadgerLog(db, capacity)
	l.ownsDB = true
	return l, nil
}

// NewBadgerLog wraps an open database. The caller keeps ownership of db.
func NewBadgerLog(db *badger.DB, capacity int) *BadgerLog {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &BadgerLog{
		db:       db,
		capacity: capacity,
		now:      time.Now,
		cursors:  make(map[string]*cursor),
	}
}

func sessionPrefix(sessionID string) []byte {
	return []byte(keyPrefix + sessionID + "/")
}

func entryKey(sessionID string, seq uint64) []byte {
	prefix := sessionPrefix(sessionID)
	key := make([]byte, len(prefix)+8)
	copy(key, prefix)
	binary.BigEndian.PutUint64(key[len(prefix):], seq)
	return key
}

// loadCursor recovers the next sequence and entry count for a session from
// disk. Must be called with mu held.
func (b *BadgerLog) loadCursor(sessionID string) (*cursor, error) {
	if c, ok := b.cursors[sessionID]; ok {
		return c, nil
	}

	c := &cursor{}
	prefix := sessionPrefix(sessionID)
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().Key()
			c.next = binary.BigEndian.Uint64(key[len(prefix):]) + 1
			c.count++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan session log: %w", err)
	}

	b.cursors[sessionID] = c
	return c, nil
}

// Append implements Log.
func (b *BadgerLog) Append(_ context.Context, e Entry) (Entry, error) {
	e = prepare(e, b.now())
	data, err := json.Marshal(e)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal entry: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	c, err := b.loadCursor(e.SessionID)
	if err != nil {
		return Entry{}, err
	}

	overflow := c.count + 1 - b.capacity
	err = b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(entryKey(e.SessionID, c.next), data); err != nil {
			return fmt.Errorf("set entry: %w", err)
		}
		if overflow > 0 {
			return b.trimOldest(txn, e.SessionID, overflow)
		}
		return nil
	})
	if err != nil {
		return Entry{}, err
	}

	c.next++
	c.count++
	if overflow > 0 {
		c.count -= overflow
	}
	return e, nil
}

func (b *BadgerLog) trimOldest(txn *badger.Txn, sessionID string, n int) error {
	prefix := sessionPrefix(sessionID)
	victims := make([][]byte, 0, n)

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	for it.Seek(prefix); it.ValidForPrefix(prefix) && len(victims) < n; it.Next() {
		victims = append(victims, it.Item().KeyCopy(nil))
	}
	it.Close()

	for _, key := range victims {
		if err := txn.Delete(key); err != nil {
			return fmt.Errorf("trim entry: %w", err)
		}
	}
	return nil
}

func (b *BadgerLog) scan(sessionID string, fn func(*Entry)) error {
	prefix := sessionPrefix(sessionID)
	return b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var e Entry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			})
			if err != nil {
				return fmt.Errorf("decode entry: %w", err)
			}
			fn(&e)
		}
		return nil
	})
}

// Query implements Log.
func (b *BadgerLog) Query(_ context.Context, sessionID, q string, limit int) ([]Entry, error) {
	q = strings.ToLower(q)
	out := make([]Entry, 0)
	err := b.scan(sessionID, func(e *Entry) {
		if matches(e, q) {
			out = append(out, *e)
		}
	})
	if err != nil {
		return nil, err
	}
	return tail(out, normalizeLimit(limit)), nil
}

// Export implements Log.
func (b *BadgerLog) Export(_ context.Context, sessionID string) ([]byte, error) {
	var entries []Entry
	if err := b.scan(sessionID, func(e *Entry) { entries = append(entries, *e) }); err != nil {
		return nil, err
	}
	return exportJSON(entries)
}

// Len implements Log.
func (b *BadgerLog) Len(_ context.Context, sessionID string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, err := b.loadCursor(sessionID)
	if err != nil {
		return 0, err
	}
	return c.count, nil
}

// Delete implements Log.
func (b *BadgerLog) Delete(_ context.Context, sessionID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.db.DropPrefix(sessionPrefix(sessionID)); err != nil {
		return fmt.Errorf("drop session log: %w", err)
	}
	delete(b.cursors, sessionID)
	return nil
}

// Close implements Log. The database is only closed when this log opened it.
func (b *BadgerLog) Close() error {
	if !b.ownsDB {
		return nil
	}
	return b.db.Close()
}
