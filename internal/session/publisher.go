// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package session

import (
	"context"
	"time"

	"github.com/tomtom215/cybersentinel/internal/logging"
	"github.com/tomtom215/cybersentinel/internal/risk"
)

// MessageTypeRisk is the WebSocket message type for periodic scores.
const MessageTypeRisk = "risk"

// DefaultPushInterval matches the dashboard refresh cadence.
const DefaultPushInterval = 5 * time.Second

// Broadcaster delivers a message to a session's WebSocket clients.
type Broadcaster interface {
	SendToSession(sessionID, messageType string, data interface{})
}

// ScorePublisher publishes scores to the message bus.
type ScorePublisher interface {
	PublishScore(sessionID string, score risk.Score) error
}

// RiskUpdate is the payload of a periodic risk push.
type RiskUpdate struct {
	SessionID  string     `json:"session_id"`
	Score      risk.Score `json:"score"`
	ComputedAt time.Time  `json:"computed_at"`
}

// Publisher periodically scores every session and pushes the result.
type Publisher struct {
	manager     *Manager
	interval    time.Duration
	broadcaster Broadcaster
	bus         ScorePublisher
	now         func() time.Time
}

// NewPublisher creates a publisher. broadcaster and bus may be nil.
func NewPublisher(manager *Manager, interval time.Duration, broadcaster Broadcaster, bus ScorePublisher) *Publisher {
	if interval <= 0 {
		interval = DefaultPushInterval
	}
	return &Publisher{
		manager:     manager,
		interval:    interval,
		broadcaster: broadcaster,
		bus:         bus,
		now:         time.Now,
	}
}

// RunWithContext pushes scores every interval until ctx is cancelled.
func (p *Publisher) RunWithContext(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	logging.Info().Dur("interval", p.interval).Msg("score publisher started")
	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("score publisher stopped")
			return ctx.Err()
		case <-ticker.C:
			p.PublishAll()
		}
	}
}

// PublishAll scores every session once and returns how many were pushed.
// Sessions that ended after the listing are skipped.
func (p *Publisher) PublishAll() int {
	pushed := 0
	for _, s := range p.manager.List() {
		if !p.manager.Has(s.ID) {
			continue
		}
		p.Publish(s)
		pushed++
	}
	return pushed
}

// Publish scores one session and pushes the result.
func (p *Publisher) Publish(s *Session) risk.Score {
	score := s.Engine().ComputeScore()

	if p.broadcaster != nil {
		p.broadcaster.SendToSession(s.ID, MessageTypeRisk, RiskUpdate{
			SessionID:  s.ID,
			Score:      score,
			ComputedAt: p.now(),
		})
	}
	if p.bus != nil {
		if err := p.bus.PublishScore(s.ID, score); err != nil {
			logging.Warn().Err(err).Str("session_id", s.ID).Msg("failed to publish score")
		}
	}
	return score
}
