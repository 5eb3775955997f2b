// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/cybersentinel/internal/auth"
	"github.com/tomtom215/cybersentinel/internal/middleware"
)

// Router sets up HTTP routes using Chi router.
type Router struct {
	handler       *Handler
	auth          *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. mw may be nil for defaults.
func NewRouter(handler *Handler, authMiddleware *auth.Middleware, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		auth:          authMiddleware,
		chiMiddleware: mw,
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.SecurityHeaders)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitHealth())
			r.Get("/health", router.handler.Health)
			r.Get("/health/live", router.handler.HealthLive)
		})

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Get("/policy", router.handler.Policy)
			r.With(router.chiMiddleware.RateLimitSessionCreate()).Post("/sessions", router.handler.CreateSession)

			r.With(router.auth.RequireSession("")).Get("/ws", router.handler.WebSocket)

			r.Route("/sessions/{id}", func(r chi.Router) {
				r.Use(router.auth.RequireSession("id"))

				r.Get("/", router.handler.GetSession)
				r.Delete("/", router.handler.DeleteSession)
				r.Post("/events", router.handler.IngestEvents)
				r.Post("/telemetry", router.handler.QueueTelemetry)
				r.Post("/capture", router.handler.Capture)
				r.Get("/score", router.handler.Score)
				r.Post("/counters/{name}/reset", router.handler.ResetCounter)
				r.Post("/reset", router.handler.Reset)
				r.Post("/simulate", router.handler.Simulate)
				r.Get("/log", router.handler.QueryLog)
				r.With(middleware.Compression).Get("/log/export", router.handler.ExportLog)
			})
		})
	})

	return r
}
