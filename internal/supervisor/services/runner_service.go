// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package services

import (
	"context"
)

// ContextRunner is satisfied by every long-running component in the engine:
// *websocket.Hub, *session.Manager, *session.Publisher and
// *alerting.Dispatcher. Each returns when ctx is cancelled.
type ContextRunner interface {
	RunWithContext(ctx context.Context) error
}

// RunnerService wraps a ContextRunner as a supervised service.
type RunnerService struct {
	runner ContextRunner
	name   string
}

// NewRunnerService wraps runner under name.
func NewRunnerService(name string, runner ContextRunner) *RunnerService {
	return &RunnerService{runner: runner, name: name}
}

// NewWebSocketHubService supervises the WebSocket hub.
func NewWebSocketHubService(hub ContextRunner) *RunnerService {
	return NewRunnerService("websocket-hub", hub)
}

// NewSessionSweeperService supervises idle-session expiry.
func NewSessionSweeperService(manager ContextRunner) *RunnerService {
	return NewRunnerService("session-sweeper", manager)
}

// NewRiskPublisherService supervises the periodic risk push.
func NewRiskPublisherService(publisher ContextRunner) *RunnerService {
	return NewRunnerService("risk-publisher", publisher)
}

// NewAlertDispatcherService supervises alert delivery to notifiers.
func NewAlertDispatcherService(dispatcher ContextRunner) *RunnerService {
	return NewRunnerService("alert-dispatcher", dispatcher)
}

// Serve implements suture.Service.
func (s *RunnerService) Serve(ctx context.Context) error {
	return s.runner.RunWithContext(ctx)
}

// String implements fmt.Stringer for suture's logs.
func (s *RunnerService) String() string {
	return s.name
}
