// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/tomtom215/cybersentinel/internal/logging"
)

const minJWTSecretLength = 32

// Validate checks every section.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateLogging,
		c.validateSecurity,
		c.validateEngine,
		c.validateSession,
		c.validatePush,
		c.validateEventLog,
		c.validateBus,
		c.validateAlerts,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
		return nil
	default:
		return fmt.Errorf("ENVIRONMENT must be development, staging or production, got %q", c.Server.Environment)
	}
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive")
	}
	if c.Server.IsProduction() {
		for _, origin := range c.Security.CORSOrigins {
			if origin == "*" {
				return fmt.Errorf("CORS_ORIGINS must not contain * in production")
			}
		}
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 || c.Security.RateLimitReqs > 100000 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be between 1 and 100000")
		}
		if c.Security.RateLimitWindow < time.Second {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s")
		}
	}
	return nil
}

func (c *Config) validateEngine() error {
	if _, err := c.Engine.Policy(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}

func (c *Config) validateSession() error {
	if c.Session.IdleTimeout <= 0 || c.Session.SweepInterval <= 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT and SESSION_SWEEP_INTERVAL must be positive")
	}
	if c.Session.MaxSessions < 1 {
		return fmt.Errorf("MAX_SESSIONS must be at least 1")
	}
	return nil
}

func (c *Config) validatePush() error {
	if c.Push.Interval < 100*time.Millisecond {
		return fmt.Errorf("PUSH_INTERVAL must be at least 100ms")
	}
	return nil
}

func (c *Config) validateEventLog() error {
	switch c.EventLog.Backend {
	case "memory":
	case "badger":
		if c.EventLog.Path == "" {
			return fmt.Errorf("EVENTLOG_PATH is required for the badger backend")
		}
	default:
		return fmt.Errorf("EVENTLOG_BACKEND must be memory or badger, got %q", c.EventLog.Backend)
	}
	if c.EventLog.Capacity < 1 {
		return fmt.Errorf("EVENTLOG_CAPACITY must be at least 1")
	}
	if c.EventLog.QueryLimit < 1 || c.EventLog.QueryLimit > c.EventLog.Capacity {
		return fmt.Errorf("EVENTLOG_QUERY_LIMIT must be between 1 and EVENTLOG_CAPACITY")
	}
	return nil
}

func (c *Config) validateBus() error {
	if !c.Bus.Enabled {
		return nil
	}
	if c.Bus.TelemetryTopic == "" || c.Bus.ScoresTopic == "" {
		return fmt.Errorf("bus topics must not be empty")
	}
	if c.Bus.TelemetryTopic == c.Bus.ScoresTopic {
		return fmt.Errorf("bus telemetry and scores topics must differ")
	}
	if c.Bus.RetryCount < 0 {
		return fmt.Errorf("BUS_RETRY_COUNT must not be negative")
	}
	return nil
}

func (c *Config) validateAlerts() error {
	if c.Alerts.QueueSize < 1 {
		return fmt.Errorf("ALERT_QUEUE_SIZE must be at least 1")
	}
	if !c.Alerts.WebhookEnabled {
		return nil
	}
	u, err := url.Parse(c.Alerts.WebhookURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("WEBHOOK_URL must be an http(s) URL when webhooks are enabled")
	}
	if c.Server.IsProduction() && u.Scheme != "https" {
		return fmt.Errorf("WEBHOOK_URL must use https in production")
	}
	return nil
}
