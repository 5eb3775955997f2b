// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func histogramCount(t *testing.T) uint64 {
	t.Helper()
	var m dto.Metric
	if err := RiskScore.Write(&m); err != nil {
		t.Fatalf("write histogram: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordScore_Histogram(t *testing.T) {
	before := histogramCount(t)

	RecordScore(0, "low", "")
	RecordScore(100, "high", "low")

	if got := histogramCount(t) - before; got != 2 {
		t.Errorf("histogram sample delta = %d, want 2", got)
	}
	ForgetSessionLevel("high")
}

func TestRecordEvent(t *testing.T) {
	applied := EventsIngested.WithLabelValues("numeric", "applied")
	rejected := EventsRejected.WithLabelValues("unknown_signal")
	beforeApplied := testutil.ToFloat64(applied)
	beforeRejected := testutil.ToFloat64(rejected)

	RecordEvent("numeric", "applied", "")
	RecordEvent("numeric", "rejected", "unknown_signal")

	if got := testutil.ToFloat64(applied) - beforeApplied; got != 1 {
		t.Errorf("applied delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rejected) - beforeRejected; got != 1 {
		t.Errorf("rejected delta = %v, want 1", got)
	}
}

func TestRecordScore_LevelGauge(t *testing.T) {
	low := SessionsByLevel.WithLabelValues("low")
	high := SessionsByLevel.WithLabelValues("high")
	transition := LevelTransitions.WithLabelValues("low", "high")
	baseLow, baseHigh, baseTransition := testutil.ToFloat64(low), testutil.ToFloat64(high), testutil.ToFloat64(transition)

	RecordScore(10, "low", "")
	RecordScore(12, "low", "low")
	RecordScore(90, "high", "low")

	if got := testutil.ToFloat64(low) - baseLow; got != 0 {
		t.Errorf("low gauge delta = %v, want 0", got)
	}
	if got := testutil.ToFloat64(high) - baseHigh; got != 1 {
		t.Errorf("high gauge delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(transition) - baseTransition; got != 1 {
		t.Errorf("transition delta = %v, want 1", got)
	}

	ForgetSessionLevel("high")
	if got := testutil.ToFloat64(high) - baseHigh; got != 0 {
		t.Errorf("high gauge delta after forget = %v, want 0", got)
	}
}

func TestRecordAlertDelivery(t *testing.T) {
	ok := AlertDeliveries.WithLabelValues("webhook", "success")
	fail := AlertDeliveries.WithLabelValues("webhook", "failure")
	baseOK, baseFail := testutil.ToFloat64(ok), testutil.ToFloat64(fail)

	RecordAlertDelivery("webhook", nil)
	RecordAlertDelivery("webhook", errors.New("503"))

	if testutil.ToFloat64(ok)-baseOK != 1 || testutil.ToFloat64(fail)-baseFail != 1 {
		t.Error("delivery counters not incremented")
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	c := HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/health", "200")
	before := testutil.ToFloat64(c)

	RecordHTTPRequest("GET", "/api/v1/health", "200", 5*time.Millisecond)

	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("request counter delta = %v, want 1", got)
	}

	TrackActiveRequest(true)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(HTTPActiveRequests); got != 0 {
		t.Errorf("active requests = %v, want 0", got)
	}
}

func TestRecordBusMessage(t *testing.T) {
	c := BusMessages.WithLabelValues("telemetry.events", "error")
	before := testutil.ToFloat64(c)
	RecordBusMessage("telemetry.events", errors.New("decode"))
	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("bus error delta = %v, want 1", got)
	}
}
