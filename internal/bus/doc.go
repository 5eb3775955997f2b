// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

/*
Package bus carries telemetry and scores over an in-process watermill
pub/sub.

Producers publish TelemetryMessage payloads to the telemetry topic
(default "telemetry.events"). The router's ingest handler feeds each
message into the owning session and publishes the fresh score as a
ScoreMessage on the scores topic (default "risk.scores"). The score pusher
also publishes to the scores topic on every push tick.

	{"session_id": "…", "event": {"kind": "numeric", "name": "keyLatency", "value": 83}}
	{"session_id": "…", "events": [{"kind": "flag", "name": "devtoolsOpen", "flag": true}]}

# Error Handling

Malformed payloads, unknown sessions and unknown names are logged and
acked; redelivering them can never succeed. Only context errors are
returned to the router, where the Retry middleware retries them.

# Middleware

  - Recoverer: converts handler panics into errors
  - CorrelationID: carries the publisher's correlation ID onto the score
  - Retry: exponential backoff for transient failures
*/
package bus
