// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

/*
Package middleware provides HTTP middleware shared by the API router.

Key Components:

  - RequestID: UUID request tracking wired into the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge, labeled
    by chi route pattern so session IDs never become label values
  - Compression: gzip for large responses such as event log exports

All middleware has the chi signature func(http.Handler) http.Handler:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.With(middleware.Compression).Get("/log/export", h.ExportLog)
*/
package middleware
