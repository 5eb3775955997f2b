// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

/*
Package supervisor provides process supervision for CyberSentinel using suture v4.

Every long-running component runs under a hierarchical supervisor tree with
automatic restart, failure isolation and graceful shutdown.

# Overview

	RootSupervisor ("cybersentinel")
	├── EngineSupervisor ("engine-layer")
	│   ├── session-sweeper
	│   └── alert-dispatcher
	├── MessagingSupervisor ("messaging-layer")
	│   ├── websocket-hub
	│   ├── risk-publisher
	│   └── telemetry-bus (if bus.enabled)
	└── APISupervisor ("api-layer")
	    └── http-server

Risk engines themselves are not supervised. They are plain values guarded by
a mutex and have no goroutines of their own.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddEngineService(services.NewSessionSweeperService(manager))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	errCh := tree.ServeBackground(ctx)

Supervisor events (start, stop, failure, backoff) are logged through
sutureslog into the zerolog-backed slog adapter.

# Failure Handling

Each failure increments a counter that decays over FailureDecay seconds.
Above FailureThreshold the supervisor waits FailureBackoff before the next
restart. Return values from Serve:
  - ctx.Err(): shutdown requested
  - suture.ErrDoNotRestart: finished for good
  - any other error: restart

# Debugging Shutdown

	report, _ := tree.UnstoppedServiceReport()
	for _, svc := range report {
	    logging.Warn().Str("service", svc.Name).Msg("service did not stop")
	}
*/
package supervisor
