// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

/*
Package websocket pushes live risk updates to browser clients.

A Hub tracks connected clients. Each client is bound to one monitored
session when it connects; messages tagged with a session ID reach only
that session's clients, untagged messages reach everyone.

# Message Types

  - risk: periodic score snapshot for a session
  - alert: raised immediately when a session's level escalates
  - ping / pong: application-level keepalive sent by clients

Message envelope:

	{"type": "risk", "session_id": "…", "data": {...}}

# Lifecycle

RunWithContext is the supervised entry point. On cancellation the hub
closes every client's send channel, which makes its write pump send a
close frame and exit.

Slow clients are dropped: when a client's send buffer is full during a
broadcast, it is unregistered rather than blocking the hub.
*/
package websocket
