// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

/*
Package alerting raises alerts when a session's risk level escalates.

A Dispatcher watches scores through a per-session risk.Observer. When a
score lands in a higher level than the previous score (low to elevated,
elevated to high, or straight to high), it builds an Alert naming the
largest contributors, pushes it to the session's WebSocket clients at once, and
queues it for the registered notifiers.

Delivery runs on the dispatcher's own goroutine (RunWithContext), so a slow
webhook never blocks ingestion. The queue is bounded; when it is full the
alert is still broadcast and logged but not delivered.

# Notifiers

  - LogNotifier writes alerts to the structured log
  - WebhookNotifier POSTs JSON, paced by a token bucket and guarded by a
    circuit breaker that opens after consecutive failures
*/
package alerting
