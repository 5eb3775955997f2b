// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/cybersentinel/internal/alerting"
	"github.com/tomtom215/cybersentinel/internal/api"
	"github.com/tomtom215/cybersentinel/internal/auth"
	"github.com/tomtom215/cybersentinel/internal/bus"
	"github.com/tomtom215/cybersentinel/internal/capture"
	"github.com/tomtom215/cybersentinel/internal/config"
	"github.com/tomtom215/cybersentinel/internal/eventlog"
	"github.com/tomtom215/cybersentinel/internal/logging"
	"github.com/tomtom215/cybersentinel/internal/session"
	"github.com/tomtom215/cybersentinel/internal/supervisor"
	"github.com/tomtom215/cybersentinel/internal/supervisor/services"
	ws "github.com/tomtom215/cybersentinel/internal/websocket"
)

// app holds the wired components of a running server.
type app struct {
	cfg        *config.Config
	log        eventlog.Log
	hub        *ws.Hub
	dispatcher *alerting.Dispatcher
	sessions   *session.Manager
	publisher  *session.Publisher
	bus        *bus.Bus
	server     *http.Server
}

func newApp(cfg *config.Config) (*app, error) {
	policy, err := cfg.Engine.Policy()
	if err != nil {
		return nil, fmt.Errorf("build risk policy: %w", err)
	}

	log, err := openEventLog(cfg.EventLog)
	if err != nil {
		return nil, err
	}

	hub := ws.NewHub()
	recorder := session.NewRecorder(log)
	dispatcher := alerting.NewDispatcher(alerting.Config{QueueSize: cfg.Alerts.QueueSize}, hub, recorder)
	registerNotifiers(dispatcher, cfg.Alerts)

	sessions := session.NewManager(session.Config{
		IdleTimeout:   cfg.Session.IdleTimeout,
		SweepInterval: cfg.Session.SweepInterval,
		MaxSessions:   cfg.Session.MaxSessions,
		Capture:       capture.DefaultConfig(),
	}, policy, log, session.WithObserverFactory(dispatcher.Observer))

	a := &app{
		cfg:        cfg,
		log:        log,
		hub:        hub,
		dispatcher: dispatcher,
		sessions:   sessions,
	}

	var telemetry api.TelemetryPublisher
	var scores session.ScorePublisher
	if cfg.Bus.Enabled {
		a.bus, err = bus.New(bus.Config{
			TelemetryTopic:     cfg.Bus.TelemetryTopic,
			ScoresTopic:        cfg.Bus.ScoresTopic,
			BufferSize:         cfg.Bus.BufferSize,
			RetryCount:         cfg.Bus.RetryCount,
			RetryInitialDelay:  cfg.Bus.RetryInitialDelay,
			RouterCloseTimeout: cfg.Bus.RouterCloseTimeout,
		}, sessions)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("create telemetry bus: %w", err)
		}
		telemetry = a.bus
		scores = a.bus
		logging.Info().Str("telemetry_topic", cfg.Bus.TelemetryTopic).Msg("Telemetry bus enabled")
	}
	a.publisher = session.NewPublisher(sessions, cfg.Push.Interval, hub, scores)

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("initialize JWT manager: %w", err)
	}

	handler := api.NewHandler(cfg, sessions, jwtManager, hub, telemetry)
	router := api.NewRouter(handler, auth.NewMiddleware(jwtManager), api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security)))

	a.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}
	return a, nil
}

// openEventLog opens the configured backend.
func openEventLog(cfg config.EventLogConfig) (eventlog.Log, error) {
	switch strings.ToLower(cfg.Backend) {
	case "memory":
		logging.Info().Int("capacity", cfg.Capacity).Msg("Event log: memory")
		return eventlog.NewMemoryLog(cfg.Capacity), nil
	case "badger":
		log, err := eventlog.OpenBadgerLog(cfg.Path, cfg.Capacity)
		if err != nil {
			return nil, fmt.Errorf("open badger event log: %w", err)
		}
		logging.Info().Str("path", cfg.Path).Int("capacity", cfg.Capacity).Msg("Event log: badger")
		return log, nil
	default:
		return nil, fmt.Errorf("unknown event log backend %q", cfg.Backend)
	}
}

func registerNotifiers(d *alerting.Dispatcher, cfg config.AlertsConfig) {
	d.RegisterNotifier(alerting.NewLogNotifier(cfg.LogEnabled))
	if cfg.WebhookURL == "" {
		return
	}
	d.RegisterNotifier(alerting.NewWebhookNotifier(alerting.WebhookConfig{
		WebhookURL:       cfg.WebhookURL,
		Headers:          cfg.HeaderMap(),
		Enabled:          cfg.WebhookEnabled,
		RateLimitMs:      cfg.RateLimitMs,
		Timeout:          cfg.WebhookTimeout,
		FailureThreshold: cfg.FailureThreshold,
		OpenTimeout:      cfg.OpenTimeout,
	}))
}

// supervise adds every long-running component to tree.
func (a *app) supervise(tree *supervisor.SupervisorTree) {
	tree.AddEngineService(services.NewSessionSweeperService(a.sessions))
	tree.AddEngineService(services.NewAlertDispatcherService(a.dispatcher))

	tree.AddMessagingService(services.NewWebSocketHubService(a.hub))
	tree.AddMessagingService(services.NewRiskPublisherService(a.publisher))
	if a.bus != nil {
		tree.AddMessagingService(services.NewBusService(a.bus))
	}

	tree.AddAPIService(services.NewHTTPServerService(a.server, a.cfg.Server.ShutdownTimeout))
}

func (a *app) close() {
	if a.log == nil {
		return
	}
	if err := a.log.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing event log")
	}
}
