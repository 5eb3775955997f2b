// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

/*
Package cache provides bounded in-memory counting structures for telemetry
rates.

# Sliding Window Counter

SlidingWindowCounter divides a time window into fixed buckets kept in a
circular buffer. Increment adds to the bucket covering the event time and
Count sums the buckets still inside the window, so memory stays O(buckets)
no matter how many events arrive.

	sw := cache.NewSlidingWindowCounter(time.Minute, 12) // 5s buckets
	sw.IncrementAt(now, 1)
	perMinute := sw.CountAt(now)

Event time is explicit. Capture code passes the timestamp of the observed
input, which keeps counting deterministic under test and independent of
when the event reaches the server. Increment and Count use the counter's
clock, time.Now by default.

Events older than the current bucket are counted into the current bucket
rather than dropped.

# Thread Safety

All methods are safe for concurrent use.
*/
package cache
