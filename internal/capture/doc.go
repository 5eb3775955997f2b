// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

/*
Package capture turns raw client observations into risk ingestion calls.

A Tracker holds the small amount of per-session state needed to derive the
numeric signals from discrete input events:

  - keyLatency: milliseconds between consecutive key presses
  - mouseSpeed: pointer distance over elapsed time, in px/ms
  - pasteFreq:  pastes within the trailing paste window
  - reqRate:    requests within the trailing request window (per minute by default)

Flags and counters pass straight through: focus and devtools changes set
their flags, a request with suspicious headers raises badHeaders, a request
from a flagged address bumps badIp, and failed logins bump failedAuth.

The Tracker only talks to a risk.Ingester, so the same code feeds a live
engine, a recording fake in tests, or the bus publisher.

SimulateAttack replays a synthetic multi-vector intrusion through a
Tracker, which is useful for demos and smoke tests.
*/
package capture
