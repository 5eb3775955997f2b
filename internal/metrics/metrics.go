// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingestion
	EventsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_events_ingested_total",
			Help: "Telemetry events by kind and outcome (applied, discarded, rejected)",
		},
		[]string{"kind", "outcome"},
	)

	EventsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_events_rejected_total",
			Help: "Rejected telemetry events by reason",
		},
		[]string{"reason"},
	)

	// Scoring
	RiskScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentinel_risk_score",
			Help:    "Distribution of computed risk scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11), // 0, 10, ..., 100
		},
	)

	SessionsByLevel = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sentinel_sessions_by_level",
			Help: "Sessions whose last score falls in each level",
		},
		[]string{"level"},
	)

	LevelTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_level_transitions_total",
			Help: "Risk level changes between consecutive scores",
		},
		[]string{"from", "to"},
	)

	// Sessions and transport
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentinel_active_sessions",
			Help: "Monitored sessions currently held in memory",
		},
	)

	SessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_sessions_expired_total",
			Help: "Sessions removed by the idle sweeper",
		},
	)

	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentinel_websocket_clients",
			Help: "Connected WebSocket clients",
		},
	)

	BusMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_bus_messages_total",
			Help: "Bus messages by topic and result",
		},
		[]string{"topic", "result"},
	)

	EventLogAppendErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_eventlog_append_errors_total",
			Help: "Failed event log writes",
		},
	)

	// Alerting
	AlertsRaised = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_alerts_total",
			Help: "Risk escalation alerts by level",
		},
		[]string{"level"},
	)

	AlertDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_alert_deliveries_total",
			Help: "Alert deliveries by notifier and result",
		},
		[]string{"notifier", "result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sentinel_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_http_requests_total",
			Help: "HTTP requests by method, route pattern and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentinel_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentinel_http_active_requests",
			Help: "In-flight HTTP requests",
		},
	)
)

// RecordEvent records an ingested event's outcome. reason is only used for
// rejected events and must come from a bounded set.
func RecordEvent(kind, outcome, reason string) {
	EventsIngested.WithLabelValues(kind, outcome).Inc()
	if reason != "" {
		EventsRejected.WithLabelValues(reason).Inc()
	}
}

// RecordScore records a computed score and its level change.
func RecordScore(value float64, level, previous string) {
	RiskScore.Observe(value)
	if previous == level {
		return
	}
	if previous != "" {
		SessionsByLevel.WithLabelValues(previous).Dec()
		LevelTransitions.WithLabelValues(previous, level).Inc()
	}
	SessionsByLevel.WithLabelValues(level).Inc()
}

// ForgetSessionLevel removes an ended session from the level gauge.
func ForgetSessionLevel(level string) {
	if level != "" {
		SessionsByLevel.WithLabelValues(level).Dec()
	}
}

// RecordAlert records a raised alert.
func RecordAlert(level string) {
	AlertsRaised.WithLabelValues(level).Inc()
}

// RecordAlertDelivery records a notifier delivery attempt.
func RecordAlertDelivery(notifier string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	AlertDeliveries.WithLabelValues(notifier, result).Inc()
}

// RecordBusMessage records a bus message outcome.
func RecordBusMessage(topic string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	BusMessages.WithLabelValues(topic, result).Inc()
}

// RecordHTTPRequest records a completed HTTP request.
func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements in-flight HTTP requests.
func TrackActiveRequest(inc bool) {
	if inc {
		HTTPActiveRequests.Inc()
	} else {
		HTTPActiveRequests.Dec()
	}
}
