// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

// Package main is the entry point for the CyberSentinel server.
//
// CyberSentinel scores monitored sessions for behavioural risk. Clients
// report raw input (keystroke timing, pointer movement, paste bursts,
// request rate, focus and devtools state, failed logins) and receive a
// bounded 0-100 score with a per-signal breakdown over HTTP and WebSocket.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, config.yaml, environment (Koanf v2)
//  2. Risk policy built from the engine section
//  3. Event log: in-memory ring or BadgerDB
//  4. WebSocket hub, alert dispatcher and notifiers
//  5. Session manager and risk publisher
//  6. Telemetry bus (optional, Watermill in-process pub/sub)
//  7. HTTP server: chi router with session-token authentication
//
// Every long-running component runs under the suture supervisor tree.
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The supervisor stops each
// service within server.shutdown_timeout, then the event log is closed.
//
// # Example Usage
//
//	export JWT_SECRET=$(openssl rand -base64 32)
//	export EVENTLOG_BACKEND=badger
//	export EVENTLOG_PATH=/var/lib/cybersentinel/eventlog
//	./cybersentinel
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/cybersentinel/internal/config"
	"github.com/tomtom215/cybersentinel/internal/logging"
	"github.com/tomtom215/cybersentinel/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.Logging.LoggerConfig())
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("eventlog", cfg.EventLog.Backend).
		Bool("bus_enabled", cfg.Bus.Enabled).
		Msg("Starting CyberSentinel with supervisor tree")

	app, err := newApp(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer app.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	app.supervise(tree)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", app.server.Addr).Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
