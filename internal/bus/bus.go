// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package bus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cybersentinel/internal/logging"
	"github.com/tomtom215/cybersentinel/internal/metrics"
	"github.com/tomtom215/cybersentinel/internal/risk"
	"github.com/tomtom215/cybersentinel/internal/validation"
)

const (
	ingestHandlerName = "telemetry-ingest"
	metadataSessionID = "session_id"
)

// ErrEmptyTelemetry is returned for a telemetry message with no events.
var ErrEmptyTelemetry = errors.New("telemetry message has no events")

// Sink ingests events into a session and returns the session's fresh score.
type Sink interface {
	IngestTelemetry(ctx context.Context, sessionID string, events []risk.Event) (risk.Score, error)
}

// Config configures the bus.
type Config struct {
	TelemetryTopic     string
	ScoresTopic        string
	BufferSize         int64
	RetryCount         int
	RetryInitialDelay  time.Duration
	RouterCloseTimeout time.Duration
}

// DefaultConfig returns the default topics and router settings.
func DefaultConfig() Config {
	return Config{
		TelemetryTopic:     "telemetry.events",
		ScoresTopic:        "risk.scores",
		BufferSize:         1024,
		RetryCount:         3,
		RetryInitialDelay:  100 * time.Millisecond,
		RouterCloseTimeout: 10 * time.Second,
	}
}

// Bus owns the pub/sub and the router that consumes telemetry.
type Bus struct {
	cfg    Config
	pubsub *gochannel.GoChannel
	router *message.Router
	sink   Sink
	now    func() time.Time
}

// New creates a bus delivering telemetry to sink. Call Run to start routing.
func New(cfg Config, sink Sink) (*Bus, error) {
	if cfg.TelemetryTopic == "" || cfg.ScoresTopic == "" {
		return nil, fmt.Errorf("bus topics must not be empty")
	}

	logger := watermill.NewSlogLogger(logging.NewSlogLogger().With("component", "bus"))

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.BufferSize,
	}, logger)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.RouterCloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	router.AddMiddleware(middleware.Recoverer)
	router.AddMiddleware(middleware.CorrelationID)
	if cfg.RetryCount > 0 {
		retry := middleware.Retry{
			MaxRetries:      cfg.RetryCount,
			InitialInterval: cfg.RetryInitialDelay,
			MaxInterval:     10 * cfg.RetryInitialDelay,
			Multiplier:      2.0,
			Logger:          logger,
		}
		router.AddMiddleware(retry.Middleware)
	}

	b := &Bus{
		cfg:    cfg,
		pubsub: pubsub,
		router: router,
		sink:   sink,
		now:    time.Now,
	}

	router.AddHandler(ingestHandlerName, cfg.TelemetryTopic, pubsub, cfg.ScoresTopic, pubsub, b.handleTelemetry)
	return b, nil
}

// Run routes messages until ctx is cancelled.
func (b *Bus) Run(ctx context.Context) error {
	logging.Info().Str("telemetry_topic", b.cfg.TelemetryTopic).Str("scores_topic", b.cfg.ScoresTopic).Msg("bus router started")
	if err := b.router.Run(ctx); err != nil {
		return fmt.Errorf("bus router: %w", err)
	}
	return ctx.Err()
}

// Running is closed once the router is consuming.
func (b *Bus) Running() chan struct{} {
	return b.router.Running()
}

// Close stops the router and the pub/sub.
func (b *Bus) Close() error {
	routerErr := b.router.Close()
	pubsubErr := b.pubsub.Close()
	return errors.Join(routerErr, pubsubErr)
}

// PublishTelemetry publishes a telemetry message.
func (b *Bus) PublishTelemetry(ctx context.Context, tm TelemetryMessage) error {
	payload, err := json.Marshal(tm)
	if err != nil {
		return fmt.Errorf("marshal telemetry: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(metadataSessionID, tm.SessionID)
	correlationID := logging.RequestIDFromContext(ctx)
	if correlationID == "" {
		correlationID = watermill.NewShortUUID()
	}
	middleware.SetCorrelationID(correlationID, msg)

	err = b.pubsub.Publish(b.cfg.TelemetryTopic, msg)
	metrics.RecordBusMessage(b.cfg.TelemetryTopic, err)
	return err
}

// PublishScore publishes a score for sessionID.
func (b *Bus) PublishScore(sessionID string, score risk.Score) error {
	msg, err := b.scoreMessage(sessionID, score)
	if err != nil {
		return err
	}
	err = b.pubsub.Publish(b.cfg.ScoresTopic, msg)
	metrics.RecordBusMessage(b.cfg.ScoresTopic, err)
	return err
}

// SubscribeScores returns a channel of score messages. Receivers must Ack
// each message.
func (b *Bus) SubscribeScores(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, b.cfg.ScoresTopic)
}

func (b *Bus) scoreMessage(sessionID string, score risk.Score) (*message.Message, error) {
	payload, err := json.Marshal(ScoreMessage{SessionID: sessionID, Score: score, ComputedAt: b.now()})
	if err != nil {
		return nil, fmt.Errorf("marshal score: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(metadataSessionID, sessionID)
	return msg, nil
}

func (b *Bus) handleTelemetry(msg *message.Message) ([]*message.Message, error) {
	topic := b.cfg.TelemetryTopic
	log := logging.With().
		Str("component", "bus").
		Str("message_uuid", msg.UUID).
		Str("correlation_id", middleware.MessageCorrelationID(msg)).
		Logger()

	var tm TelemetryMessage
	if err := json.Unmarshal(msg.Payload, &tm); err != nil {
		log.Warn().Err(err).Msg("dropping malformed telemetry message")
		metrics.RecordBusMessage(topic, err)
		return nil, nil
	}
	if verr := validation.ValidateStruct(&tm); verr != nil {
		log.Warn().Err(verr).Str("session_id", tm.SessionID).Msg("dropping invalid telemetry message")
		metrics.RecordBusMessage(topic, verr)
		return nil, nil
	}
	events := tm.all()
	if len(events) == 0 {
		log.Warn().Str("session_id", tm.SessionID).Msg("dropping empty telemetry message")
		metrics.RecordBusMessage(topic, ErrEmptyTelemetry)
		return nil, nil
	}

	score, err := b.sink.IngestTelemetry(msg.Context(), tm.SessionID, events)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		log.Warn().Err(err).Str("session_id", tm.SessionID).Msg("telemetry rejected")
		metrics.RecordBusMessage(topic, err)
		return nil, nil
	}
	metrics.RecordBusMessage(topic, nil)

	out, err := b.scoreMessage(tm.SessionID, score)
	if err != nil {
		return nil, err
	}
	return []*message.Message{out}, nil
}
