// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cybersentinel/internal/auth"
	"github.com/tomtom215/cybersentinel/internal/bus"
	"github.com/tomtom215/cybersentinel/internal/config"
	"github.com/tomtom215/cybersentinel/internal/eventlog"
	"github.com/tomtom215/cybersentinel/internal/logging"
	"github.com/tomtom215/cybersentinel/internal/risk"
	"github.com/tomtom215/cybersentinel/internal/session"
	ws "github.com/tomtom215/cybersentinel/internal/websocket"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{Level: "error", Output: io.Discard})
}

type fakeTelemetry struct {
	mu       sync.Mutex
	messages []bus.TelemetryMessage
}

func (f *fakeTelemetry) PublishTelemetry(_ context.Context, tm bus.TelemetryMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, tm)
	return nil
}

type testEnv struct {
	handler  http.Handler
	sessions *session.Manager
	hub      *ws.Hub
}

func newTestEnv(t *testing.T, telemetry TelemetryPublisher) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Security: config.SecurityConfig{
			JWTSecret:         strings.Repeat("k", 32),
			SessionTimeout:    time.Hour,
			CORSOrigins:       []string{"http://localhost:3000"},
			RateLimitDisabled: true,
		},
		EventLog: config.EventLogConfig{Backend: "memory", Capacity: 100, QueryLimit: 50},
	}

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatal(err)
	}
	sessions := session.NewManager(session.Config{}, risk.DefaultPolicy(), eventlog.NewMemoryLog(100))

	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = hub.RunWithContext(ctx) }()
	t.Cleanup(cancel)

	handler := NewHandler(cfg, sessions, jwtManager, hub, telemetry)
	router := NewRouter(handler, auth.NewMiddleware(jwtManager), NewChiMiddleware(ChiMiddlewareConfigFromSecurity(&cfg.Security)))

	return &testEnv{handler: router.SetupChi(), sessions: sessions, hub: hub}
}

type envelope struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Metadata Metadata        `json:"metadata"`
	Error    *APIError       `json:"error"`
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	// Exports are bare arrays; callers read rec.Body for those.
	var env envelope
	if bytes.HasPrefix(bytes.TrimSpace(rec.Body.Bytes()), []byte("{")) &&
		strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, rec.Body.String())
		}
	}
	return rec, env
}

func (e *testEnv) createSession(t *testing.T) SessionCreated {
	t.Helper()
	rec, env := e.do(t, http.MethodPost, "/api/v1/sessions", "", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created SessionCreated
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatal(err)
	}
	return created
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	return v
}

func TestCreateSession(t *testing.T) {
	env := newTestEnv(t, nil)
	created := env.createSession(t)

	if created.SessionID == "" || created.Token == "" {
		t.Fatalf("expected session ID and token, got %+v", created)
	}
	if !created.ExpiresAt.After(time.Now()) {
		t.Error("expected expiry in the future")
	}
	if env.sessions.Len() != 1 {
		t.Errorf("expected 1 session, got %d", env.sessions.Len())
	}
}

func TestScore_FreshSession(t *testing.T) {
	env := newTestEnv(t, nil)
	s := env.createSession(t)

	rec, body := env.do(t, http.MethodGet, "/api/v1/sessions/"+s.SessionID+"/score", s.Token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	score := decodeData[risk.Score](t, body)
	if score.Value != 0 || score.Level != risk.LevelLow {
		t.Errorf("score = %v %s, want 0 low", score.Value, score.Level)
	}
	if len(score.Breakdown) != 9 {
		t.Errorf("breakdown has %d terms, want 9", len(score.Breakdown))
	}
	if got := rec.Header().Get(HeaderRiskScore); got != "0.0" {
		t.Errorf("%s = %q, want 0.0", HeaderRiskScore, got)
	}
	if body.Metadata.RequestID == "" {
		t.Error("expected request ID in metadata")
	}
}

func TestIngestEvents(t *testing.T) {
	env := newTestEnv(t, nil)
	s := env.createSession(t)
	path := "/api/v1/sessions/" + s.SessionID + "/events"

	t.Run("single event", func(t *testing.T) {
		rec, body := env.do(t, http.MethodPost, path, s.Token, `{"kind":"flag","name":"devtoolsOpen","flag":true}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		result := decodeData[IngestResult](t, body)
		if result.Accepted != 1 || result.Score.Value != 22 {
			t.Errorf("result = %+v, want 1 accepted and score 22", result)
		}
		if got := rec.Header().Get(HeaderRiskScore); got != "22.0" {
			t.Errorf("%s = %q, want 22.0", HeaderRiskScore, got)
		}
	})

	t.Run("batch", func(t *testing.T) {
		batch := `[
			{"kind":"counter","name":"failedAuth","delta":3},
			{"kind":"flag","name":"badHeaders","flag":true}
		]`
		rec, body := env.do(t, http.MethodPost, path, s.Token, batch)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		result := decodeData[IngestResult](t, body)
		// devtools 22 + failedAuth 12 + badHeaders 10
		if result.Accepted != 2 || result.Score.Value != 44 {
			t.Errorf("result = %+v, want 2 accepted and score 44", result)
		}
		if result.Score.Level != risk.LevelElevated {
			t.Errorf("level = %s, want elevated", result.Score.Level)
		}
		if got := rec.Header().Get(HeaderRiskLevel); got != "elevated" {
			t.Errorf("%s = %q, want elevated", HeaderRiskLevel, got)
		}
	})

	t.Run("unknown signal stops batch", func(t *testing.T) {
		batch := `[
			{"kind":"counter","name":"badIp","delta":1},
			{"kind":"numeric","name":"typingSpeed","value":3},
			{"kind":"counter","name":"badIp","delta":1}
		]`
		rec, body := env.do(t, http.MethodPost, path, s.Token, batch)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if body.Error == nil || body.Error.Code != "UNKNOWN_SIGNAL" {
			t.Fatalf("error = %+v, want UNKNOWN_SIGNAL", body.Error)
		}
		score, _ := env.sessions.List()[0].Engine().LastScore()
		if term, _ := score.Term(risk.CounterBadIP); term.Input != 1 {
			t.Errorf("badIp = %v, want 1 (only the first event applied)", term.Input)
		}
	})

	t.Run("negative delta rejected", func(t *testing.T) {
		rec, body := env.do(t, http.MethodPost, path, s.Token, `{"kind":"counter","name":"failedAuth","delta":-1}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if body.Error == nil || body.Error.Code != "VALIDATION_ERROR" {
			t.Errorf("error = %+v, want VALIDATION_ERROR", body.Error)
		}
	})

	t.Run("omitted delta counts one", func(t *testing.T) {
		rec, body := env.do(t, http.MethodPost, path, s.Token, `{"kind":"counter","name":"failedAuth"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		result := decodeData[IngestResult](t, body)
		if term, _ := result.Score.Term(risk.CounterFailedAuth); term.Input != 4 {
			t.Errorf("failedAuth = %v, want 4 after 3 + default 1", term.Input)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		for _, b := range []string{"", "{", "[]"} {
			rec, _ := env.do(t, http.MethodPost, path, s.Token, b)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("body %q: status = %d, want 400", b, rec.Code)
			}
		}
	})
}

func TestCaptureAndCounterReset(t *testing.T) {
	env := newTestEnv(t, nil)
	s := env.createSession(t)
	base := "/api/v1/sessions/" + s.SessionID

	rec, body := env.do(t, http.MethodPost, base+"/capture", s.Token, `[
		{"type":"failed_auth","count":10},
		{"type":"focus","state":false}
	]`)
	if rec.Code != http.StatusOK {
		t.Fatalf("capture status = %d, body = %s", rec.Code, rec.Body.String())
	}
	result := decodeData[IngestResult](t, body)
	// failedAuth capped at 28 + unfocused 8
	if result.Score.Value != 36 {
		t.Errorf("score = %v, want 36", result.Score.Value)
	}

	rec, body = env.do(t, http.MethodPost, base+"/counters/failedAuth/reset", s.Token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("reset counter status = %d", rec.Code)
	}
	if score := decodeData[risk.Score](t, body); score.Value != 8 {
		t.Errorf("score after counter reset = %v, want 8", score.Value)
	}

	rec, body = env.do(t, http.MethodPost, base+"/counters/nope/reset", s.Token, "")
	if rec.Code != http.StatusBadRequest || body.Error.Code != "UNKNOWN_COUNTER" {
		t.Errorf("unknown counter: status = %d, error = %+v", rec.Code, body.Error)
	}

	rec, body = env.do(t, http.MethodPost, base+"/capture", s.Token, `{"type":"teleport"}`)
	if rec.Code != http.StatusBadRequest || body.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("unknown observation: status = %d, error = %+v", rec.Code, body.Error)
	}
}

func TestSimulateAndReset(t *testing.T) {
	env := newTestEnv(t, nil)
	s := env.createSession(t)
	base := "/api/v1/sessions/" + s.SessionID

	rec, body := env.do(t, http.MethodPost, base+"/simulate", s.Token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("simulate status = %d", rec.Code)
	}
	score := decodeData[risk.Score](t, body)
	// badHeaders 10 + badIp 15 + failedAuth 20 + devtools 22 before any signal term
	if score.Value < 67 || score.Level == risk.LevelLow {
		t.Errorf("simulated attack score = %v %s, want at least 67", score.Value, score.Level)
	}

	rec, body = env.do(t, http.MethodPost, base+"/reset", s.Token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("reset status = %d", rec.Code)
	}
	if score := decodeData[risk.Score](t, body); score.Value != 0 {
		t.Errorf("score after reset = %v, want 0", score.Value)
	}
}

func TestEventLog(t *testing.T) {
	env := newTestEnv(t, nil)
	s := env.createSession(t)
	base := "/api/v1/sessions/" + s.SessionID

	env.do(t, http.MethodPost, base+"/events", s.Token, `[
		{"kind":"flag","name":"devtoolsOpen","flag":true},
		{"kind":"counter","name":"badIp","delta":2}
	]`)

	rec, body := env.do(t, http.MethodGet, base+"/log?q=DEVTOOLS", s.Token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("log status = %d", rec.Code)
	}
	page := decodeData[LogPage](t, body)
	if page.Count != 1 || page.Entries[0].Type != risk.FlagDevtoolsOpen {
		t.Errorf("page = %+v, want the devtools entry", page)
	}
	if page.Limit != 50 {
		t.Errorf("limit = %d, want configured 50", page.Limit)
	}

	rec, body = env.do(t, http.MethodGet, base+"/log?limit=1", s.Token, "")
	if page := decodeData[LogPage](t, body); rec.Code != http.StatusOK || page.Count != 1 || page.Entries[0].Type != risk.CounterBadIP {
		t.Errorf("limit=1 should return the newest entry, got %+v", page)
	}

	rec, _ = env.do(t, http.MethodGet, base+"/log?limit=zero", s.Token, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid limit status = %d, want 400", rec.Code)
	}

	rec, _ = env.do(t, http.MethodGet, base+"/log/export", s.Token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), s.SessionID) {
		t.Errorf("Content-Disposition = %q", rec.Header().Get("Content-Disposition"))
	}
	var entries []eventlog.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("export is not a JSON array: %v", err)
	}
	// session_start + 2 events
	if len(entries) != 3 {
		t.Errorf("export has %d entries, want 3", len(entries))
	}
}

func TestAuthorization(t *testing.T) {
	env := newTestEnv(t, nil)
	a := env.createSession(t)
	b := env.createSession(t)

	tests := []struct {
		name       string
		path       string
		token      string
		wantStatus int
	}{
		{"own session", "/api/v1/sessions/" + a.SessionID + "/score", a.Token, http.StatusOK},
		{"no token", "/api/v1/sessions/" + a.SessionID + "/score", "", http.StatusUnauthorized},
		{"other session token", "/api/v1/sessions/" + a.SessionID + "/score", b.Token, http.StatusForbidden},
		{"garbage token", "/api/v1/sessions/" + a.SessionID + "/score", "not-a-jwt", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := env.do(t, http.MethodGet, tt.path, tt.token, "")
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestDeleteSession(t *testing.T) {
	env := newTestEnv(t, nil)
	s := env.createSession(t)
	base := "/api/v1/sessions/" + s.SessionID

	rec, _ := env.do(t, http.MethodDelete, base, s.Token, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec, body := env.do(t, http.MethodGet, base+"/score", s.Token, "")
	if rec.Code != http.StatusNotFound || body.Error.Code != ErrCodeNotFound {
		t.Errorf("score after delete: status = %d, error = %+v", rec.Code, body.Error)
	}
}

func TestQueueTelemetry(t *testing.T) {
	t.Run("bus disabled", func(t *testing.T) {
		env := newTestEnv(t, nil)
		s := env.createSession(t)
		rec, _ := env.do(t, http.MethodPost, "/api/v1/sessions/"+s.SessionID+"/telemetry", s.Token, `{"kind":"reset"}`)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})

	t.Run("queued", func(t *testing.T) {
		telemetry := &fakeTelemetry{}
		env := newTestEnv(t, telemetry)
		s := env.createSession(t)

		rec, body := env.do(t, http.MethodPost, "/api/v1/sessions/"+s.SessionID+"/telemetry", s.Token,
			`[{"kind":"flag","name":"badHeaders","flag":true},{"kind":"counter","name":"badIp","delta":1}]`)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		if q := decodeData[TelemetryQueued](t, body); q.Queued != 2 {
			t.Errorf("queued = %d, want 2", q.Queued)
		}
		if len(telemetry.messages) != 1 || telemetry.messages[0].SessionID != s.SessionID {
			t.Errorf("published = %+v", telemetry.messages)
		}
	})
}

func TestHealthAndPolicy(t *testing.T) {
	env := newTestEnv(t, nil)
	env.createSession(t)

	rec, body := env.do(t, http.MethodGet, "/api/v1/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	health := decodeData[HealthStatus](t, body)
	if health.Status != "healthy" || health.ActiveSessions != 1 || health.EventLog != "memory" {
		t.Errorf("health = %+v", health)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers on API routes")
	}

	rec, body = env.do(t, http.MethodGet, "/api/v1/policy", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("policy status = %d", rec.Code)
	}
	policy := decodeData[risk.Policy](t, body)
	if policy.Levels.Elevated != 40 || policy.Levels.High != 70 {
		t.Errorf("levels = %+v, want 40/70", policy.Levels)
	}
}

func TestNotFoundRoute(t *testing.T) {
	env := newTestEnv(t, nil)
	rec, body := env.do(t, http.MethodGet, "/api/v1/nothing", "", "")
	if rec.Code != http.StatusNotFound || body.Error == nil {
		t.Errorf("status = %d, error = %+v", rec.Code, body.Error)
	}
}
