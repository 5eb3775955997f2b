// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

/*
Package metrics provides Prometheus instrumentation for the scoring service.

Metrics are registered on the default registry at package init through
promauto and exposed at /metrics:

	curl http://localhost:8081/metrics

# Available Metrics

Ingestion:
  - sentinel_events_ingested_total{kind,outcome}
  - sentinel_events_rejected_total{reason}

Scoring:
  - sentinel_risk_score (histogram of computed scores)
  - sentinel_sessions_by_level{level}
  - sentinel_level_transitions_total{from,to}

Sessions and transport:
  - sentinel_active_sessions
  - sentinel_sessions_expired_total
  - sentinel_websocket_clients
  - sentinel_bus_messages_total{topic,result}
  - sentinel_eventlog_append_errors_total

Alerting:
  - sentinel_alerts_total{level}
  - sentinel_alert_deliveries_total{notifier,result}
  - sentinel_circuit_breaker_state{name}

HTTP:
  - sentinel_http_requests_total{method,route,status}
  - sentinel_http_request_duration_seconds{method,route}
  - sentinel_http_active_requests

Use the Record helpers rather than touching collectors directly, so label
values stay bounded.
*/
package metrics
