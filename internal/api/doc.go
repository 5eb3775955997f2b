// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

/*
Package api provides the HTTP surface of the risk engine.

Routes (chi):

	GET    /api/v1/health                           service health
	GET    /api/v1/health/live                      liveness probe
	GET    /api/v1/policy                           active scoring policy
	POST   /api/v1/sessions                         start a session, returns a token
	GET    /api/v1/sessions/{id}                    session info and last score
	DELETE /api/v1/sessions/{id}                    end a session
	POST   /api/v1/sessions/{id}/events             ingest one event or a batch
	POST   /api/v1/sessions/{id}/telemetry          queue events on the bus
	POST   /api/v1/sessions/{id}/capture            raw client observations
	GET    /api/v1/sessions/{id}/score              compute the current score
	POST   /api/v1/sessions/{id}/counters/{name}/reset
	POST   /api/v1/sessions/{id}/reset              reset all session state
	POST   /api/v1/sessions/{id}/simulate           replay a synthetic attack
	GET    /api/v1/sessions/{id}/log                query the event log
	GET    /api/v1/sessions/{id}/log/export         download the event log
	GET    /api/v1/ws?token=...                     score and alert stream
	GET    /metrics                                 Prometheus

Session routes require a bearer token issued by POST /sessions whose
session claim matches {id}. Every ingesting route responds with the fresh
score and sets the X-Risk-Score header.

# Response Format

	{
	  "status": "success",
	  "data": {...},
	  "metadata": {"timestamp": "2026-01-01T12:00:00Z", "request_id": "..."},
	  "error": {"code": "UNKNOWN_SIGNAL", "message": "..."}
	}

Ingestion errors map to codes derived from risk.Reason, so an unknown
signal name yields 400 UNKNOWN_SIGNAL.
*/
package api
