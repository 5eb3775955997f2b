// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package config

import (
	"strings"
	"time"

	"github.com/tomtom215/cybersentinel/internal/logging"
)

// Config is the complete application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
	Security SecurityConfig `koanf:"security"`
	Engine   EngineConfig   `koanf:"engine"`
	Session  SessionConfig  `koanf:"session"`
	Push     PushConfig     `koanf:"push"`
	EventLog EventLogConfig `koanf:"eventlog"`
	Bus      BusConfig      `koanf:"bus"`
	Alerts   AlertsConfig   `koanf:"alerts"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// IsProduction reports whether the server runs in production mode.
func (s ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	// Caller includes file:line in each record.
	Caller bool `koanf:"caller"`
}

// SecurityConfig holds session token, CORS and rate limit settings.
type SecurityConfig struct {
	// JWTSecret signs session tokens. Required in production (min 32 chars).
	// A random secret is generated at startup when empty outside production,
	// so tokens do not survive a restart.
	JWTSecret string `koanf:"jwt_secret"`

	// SessionTimeout is the lifetime of a session token.
	SessionTimeout time.Duration `koanf:"session_timeout"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// SessionConfig holds monitored session lifecycle settings.
type SessionConfig struct {
	IdleTimeout   time.Duration `koanf:"idle_timeout"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
	MaxSessions   int           `koanf:"max_sessions"`
}

// PushConfig holds WebSocket push settings.
type PushConfig struct {
	Interval time.Duration `koanf:"interval"`
}

// EventLogConfig holds audit log settings.
type EventLogConfig struct {
	Backend    string `koanf:"backend"` // memory or badger
	Path       string `koanf:"path"`    // badger directory
	Capacity   int    `koanf:"capacity"`
	QueryLimit int    `koanf:"query_limit"`
}

// BusConfig holds the in-process telemetry bus settings.
type BusConfig struct {
	Enabled            bool          `koanf:"enabled"`
	BufferSize         int64         `koanf:"buffer_size"`
	TelemetryTopic     string        `koanf:"telemetry_topic"`
	ScoresTopic        string        `koanf:"scores_topic"`
	RetryCount         int           `koanf:"retry_count"`
	RetryInitialDelay  time.Duration `koanf:"retry_initial_delay"`
	RouterCloseTimeout time.Duration `koanf:"router_close_timeout"`
}

// AlertsConfig holds alert dispatch and notifier settings.
type AlertsConfig struct {
	QueueSize  int  `koanf:"queue_size"`
	LogEnabled bool `koanf:"log_enabled"`

	WebhookURL     string `koanf:"webhook_url"`
	WebhookEnabled bool   `koanf:"webhook_enabled"`

	// WebhookHeaders holds "Key=Value" pairs, e.g. "Authorization=Bearer xyz".
	WebhookHeaders   []string      `koanf:"webhook_headers"`
	RateLimitMs      int           `koanf:"rate_limit_ms"`
	WebhookTimeout   time.Duration `koanf:"webhook_timeout"`
	FailureThreshold uint32        `koanf:"failure_threshold"`
	OpenTimeout      time.Duration `koanf:"open_timeout"`
}

// HeaderMap parses WebhookHeaders. Malformed entries are skipped.
func (a AlertsConfig) HeaderMap() map[string]string {
	headers := make(map[string]string, len(a.WebhookHeaders))
	for _, h := range a.WebhookHeaders {
		key, value, ok := strings.Cut(h, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		headers[key] = strings.TrimSpace(value)
	}
	return headers
}

// Load loads configuration from defaults, file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// LoggerConfig converts the settings into a logging.Config writing to stderr.
func (l LoggingConfig) LoggerConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = l.Level
	cfg.Format = l.Format
	cfg.Caller = l.Caller
	return cfg
}
