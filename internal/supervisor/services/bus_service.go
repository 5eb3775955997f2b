// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package services

import (
	"context"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/cybersentinel/internal/logging"
)

// BusRunner matches *bus.Bus.
type BusRunner interface {
	Run(ctx context.Context) error
	Close() error
}

// BusService runs the telemetry bus router.
//
// A Watermill router cannot be restarted once it has stopped, so a router
// failure closes the bus and tells suture not to restart the service.
type BusService struct {
	bus  BusRunner
	name string
}

// NewBusService wraps b.
func NewBusService(b BusRunner) *BusService {
	return &BusService{bus: b, name: "telemetry-bus"}
}

// Serve implements suture.Service.
func (s *BusService) Serve(ctx context.Context) error {
	err := s.bus.Run(ctx)

	if closeErr := s.bus.Close(); closeErr != nil {
		logging.Warn().Err(closeErr).Msg("error closing telemetry bus")
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		logging.Error().Err(err).Msg("telemetry bus stopped")
	}
	return suture.ErrDoNotRestart
}

// String implements fmt.Stringer for suture's logs.
func (s *BusService) String() string {
	return s.name
}
