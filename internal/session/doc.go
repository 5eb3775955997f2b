// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

/*
Package session owns the monitored sessions of a running server.

Each Session has its own risk.Engine, created when the session starts and
discarded when it ends, and a capture.Tracker that feeds raw client input
into that engine. Engines never share state across sessions.

# Wiring

	log := eventlog.NewMemoryLog(cfg.EventLog.Capacity)
	recorder := session.NewRecorder(log)
	alerts := alerting.NewDispatcher(alerting.Config{}, hub, recorder)

	manager := session.NewManager(session.Config{
		IdleTimeout:   cfg.Session.IdleTimeout,
		SweepInterval: cfg.Session.SweepInterval,
		MaxSessions:   cfg.Session.MaxSessions,
	}, policy, log, session.WithObserverFactory(alerts.Observer))

Every engine gets three observers: metrics, the event log recorder, and
whatever the registered factories return.

# Background work

Manager.RunWithContext sweeps idle sessions. Publisher.RunWithContext
computes every session's score on a fixed interval and pushes it to
WebSocket clients and the message bus. Both are suture services.
*/
package session
