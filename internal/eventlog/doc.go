// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

/*
Package eventlog keeps a bounded, searchable audit trail of telemetry per
session.

Each session's log holds at most Capacity entries (5000 by default). When
full, the oldest entry is dropped. Query matches a case-insensitive
substring against an entry's domain, type and JSON payload and returns the
newest matches, oldest first, capped at the query limit (500 by default).
Export returns the whole session log as a JSON array.

Two backends implement Log:

  - MemoryLog: a ring buffer per session, lost on restart
  - BadgerLog: BadgerDB keys "log/<session>/<seq>", trimmed to capacity

Only the audit trail is persisted. Estimator state always starts fresh.
*/
package eventlog
