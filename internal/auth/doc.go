// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

/*
Package auth issues and checks session tokens.

Creating a monitored session returns an HS256 JWT whose "sid" claim names
the session. Every session-scoped route requires that token, and the claim
must match the session ID in the URL, so one client cannot feed or read
another session's telemetry.

Tokens are read from the Authorization header ("Bearer <token>"). Browsers
cannot set headers on WebSocket upgrades, so the "token" query parameter is
accepted as well.

# Usage

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	mw := auth.NewMiddleware(jwtManager)

	r.Route("/sessions/{id}", func(r chi.Router) {
	    r.Use(mw.RequireSession("id"))
	    r.Get("/score", h.Score)
	})

	claims := auth.ClaimsFromContext(r.Context())
*/
package auth
