// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package alerting

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cybersentinel/internal/risk"
)

func testAlert() *Alert {
	return &Alert{
		ID:        "a1",
		SessionID: "s1",
		Level:     risk.LevelHigh,
		Previous:  risk.LevelElevated,
		Score:     81.5,
		Title:     "Risk high",
		Message:   "score 81.5",
		CreatedAt: time.Now(),
	}
}

func TestWebhookNotifier_Enabled(t *testing.T) {
	tests := []struct {
		name     string
		config   WebhookConfig
		expected bool
	}{
		{"enabled with URL", WebhookConfig{WebhookURL: "https://example.com/hook", Enabled: true}, true},
		{"disabled", WebhookConfig{WebhookURL: "https://example.com/hook", Enabled: false}, false},
		{"enabled but no URL", WebhookConfig{Enabled: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewWebhookNotifier(tt.config)
			if got := n.Enabled(); got != tt.expected {
				t.Errorf("Enabled() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestWebhookNotifier_Send(t *testing.T) {
	var received WebhookPayload
	var gotAuth, gotType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := NewWebhookNotifier(WebhookConfig{
		WebhookURL:  server.URL,
		Headers:     map[string]string{"Authorization": "Bearer secret"},
		Enabled:     true,
		RateLimitMs: 1,
	})

	if err := n.Send(context.Background(), testAlert()); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotType != "application/json" {
		t.Errorf("Content-Type = %q", gotType)
	}
	if received.EventType != "risk_alert" || received.Source != "cybersentinel" {
		t.Errorf("unexpected envelope: %+v", received)
	}
	if received.Alert == nil || received.Alert.Level != risk.LevelHigh {
		t.Errorf("unexpected alert: %+v", received.Alert)
	}
}

func TestWebhookNotifier_SendDisabled(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	n := NewWebhookNotifier(WebhookConfig{WebhookURL: server.URL, Enabled: false})
	if err := n.Send(context.Background(), testAlert()); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Error("disabled notifier should not call the endpoint")
	}
}

func TestWebhookNotifier_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	n := NewWebhookNotifier(WebhookConfig{WebhookURL: server.URL, Enabled: true, RateLimitMs: 1})
	if err := n.Send(context.Background(), testAlert()); err == nil {
		t.Error("expected error for 502 response")
	}
}

func TestWebhookNotifier_CircuitBreakerOpens(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	n := NewWebhookNotifier(WebhookConfig{
		WebhookURL:       server.URL,
		Enabled:          true,
		RateLimitMs:      1,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
	})

	for i := 0; i < 2; i++ {
		if err := n.Send(context.Background(), testAlert()); err == nil {
			t.Fatalf("send %d: expected error", i)
		}
	}
	if n.BreakerState() != "open" {
		t.Fatalf("breaker state = %s, want open", n.BreakerState())
	}

	err := n.Send(context.Background(), testAlert())
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Send() with open breaker = %v, want ErrOpenState", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("endpoint calls = %d, want 2", got)
	}
}

func TestWebhookNotifier_ContextCancelledWhileRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	n := NewWebhookNotifier(WebhookConfig{WebhookURL: server.URL, Enabled: true, RateLimitMs: 60000})
	if err := n.Send(context.Background(), testAlert()); err != nil {
		t.Fatalf("first Send() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := n.Send(ctx, testAlert()); err == nil {
		t.Error("expected rate limiter to fail on short deadline")
	}
}
