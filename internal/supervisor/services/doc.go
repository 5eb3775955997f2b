// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

/*
Package services provides suture.Service wrappers for CyberSentinel components.

Each wrapper translates a component lifecycle into suture's context-aware
Serve pattern:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts ListenAndServe to Serve with a shutdown timeout

Runners (RunnerService):
  - Wrap any component exposing RunWithContext(ctx) error
  - Named constructors exist for the WebSocket hub, the session sweeper,
    the risk publisher and the alert dispatcher

Telemetry Bus (BusService):
  - Runs the Watermill router until the context is cancelled
  - Closes the router and pub/sub on the way out

# Usage

	tree.AddEngineService(services.NewSessionSweeperService(manager))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

All wrappers return ctx.Err() on normal shutdown so suture does not treat a
cancellation as a failure.
*/
package services
