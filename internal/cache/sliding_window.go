// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package cache

import (
	"sync"
	"time"
)

// SlidingWindowCounter implements a memory-efficient sliding window counter.
// It divides time into buckets and sums them to get the count within the window.
//
// Complexity:
//   - Increment: O(1) amortized
//   - Count: O(k) where k = number of buckets
//   - Memory: O(k) per counter
type SlidingWindowCounter struct {
	mu          sync.Mutex
	buckets     []int64       // circular buffer of bucket counts
	bucketSize  time.Duration // duration of each bucket
	windowSize  time.Duration // total window duration
	numBuckets  int           // number of buckets
	current     int           // current bucket index
	bucketStart time.Time     // start of the current bucket, zero until first use
	now         func() time.Time
}

// NewSlidingWindowCounter creates a new sliding window counter.
// The window is divided into the specified number of buckets.
//
// Example: NewSlidingWindowCounter(time.Minute, 12) creates a one-minute
// window with 5-second buckets.
func NewSlidingWindowCounter(windowSize time.Duration, numBuckets int) *SlidingWindowCounter {
	if numBuckets <= 0 {
		numBuckets = 10
	}
	if windowSize <= 0 {
		windowSize = time.Minute
	}
	bucketSize := windowSize / time.Duration(numBuckets)
	if bucketSize <= 0 {
		bucketSize = 1
	}

	return &SlidingWindowCounter{
		buckets:    make([]int64, numBuckets),
		bucketSize: bucketSize,
		windowSize: windowSize,
		numBuckets: numBuckets,
		now:        time.Now,
	}
}

// SetClock replaces the clock used by Increment and Count.
func (sw *SlidingWindowCounter) SetClock(now func() time.Time) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if now != nil {
		sw.now = now
	}
}

// Window returns the total window duration.
func (sw *SlidingWindowCounter) Window() time.Duration {
	return sw.windowSize
}

// Increment adds delta at the current clock time.
func (sw *SlidingWindowCounter) Increment(delta int64) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.add(sw.now(), delta)
}

// IncrementAt adds delta to the bucket covering at.
func (sw *SlidingWindowCounter) IncrementAt(at time.Time, delta int64) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.add(at, delta)
}

// Count returns the sum of all buckets in the window ending now.
func (sw *SlidingWindowCounter) Count() int64 {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.count(sw.now())
}

// CountAt returns the sum of all buckets in the window ending at.
func (sw *SlidingWindowCounter) CountAt(at time.Time) int64 {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.count(at)
}

// Reset clears all buckets.
func (sw *SlidingWindowCounter) Reset() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	for i := range sw.buckets {
		sw.buckets[i] = 0
	}
	sw.current = 0
	sw.bucketStart = time.Time{}
}

func (sw *SlidingWindowCounter) add(at time.Time, delta int64) {
	sw.advance(at)
	sw.buckets[sw.current] += delta
}

func (sw *SlidingWindowCounter) count(at time.Time) int64 {
	sw.advance(at)

	var total int64
	for _, c := range sw.buckets {
		total += c
	}
	return total
}

// advance moves the window forward so the current bucket covers at.
// Must be called with lock held.
func (sw *SlidingWindowCounter) advance(at time.Time) {
	if sw.bucketStart.IsZero() {
		sw.bucketStart = at.Truncate(sw.bucketSize)
		return
	}

	elapsed := at.Sub(sw.bucketStart)
	bucketsElapsed := int64(elapsed / sw.bucketSize)
	if bucketsElapsed <= 0 {
		return
	}

	if bucketsElapsed >= int64(sw.numBuckets) {
		// Entire window has elapsed, clear all
		for i := range sw.buckets {
			sw.buckets[i] = 0
		}
		sw.current = 0
	} else {
		for i := int64(0); i < bucketsElapsed; i++ {
			sw.current = (sw.current + 1) % sw.numBuckets
			sw.buckets[sw.current] = 0
		}
	}

	// Keep bucket boundaries aligned instead of restarting at "at".
	sw.bucketStart = sw.bucketStart.Add(time.Duration(bucketsElapsed) * sw.bucketSize)
}
