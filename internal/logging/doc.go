// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

/*
Package logging provides the process-wide zerolog logger.

# Quick Start

	logging.Init(logging.Config{Level: "info", Format: "json"})

	logging.Info().Str("session_id", id).Msg("Session created")
	logging.Error().Err(err).Msg("Webhook delivery failed")

	// Request-scoped fields (request_id, session_id) come from the context
	logging.Ctx(ctx).Warn().Str("signal", name).Msg("Rejected event")

# Conventions

Always terminate chains with Msg or Send, otherwise nothing is written.
Prefer typed fields over Msgf. Never log raw telemetry payloads at info
level; session IDs and signal names are enough to correlate with the
event log.

# slog Bridge

Libraries that want a *slog.Logger (the suture supervisor event hook) get
one from NewSlogLogger, which forwards records to the global zerolog logger.
*/
package logging
