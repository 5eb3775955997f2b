// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config file locations searched in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cybersentinel/config.yaml",
	"/etc/cybersentinel/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Defaults returns the built-in configuration without reading any source.
func Defaults() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Security: SecurityConfig{
			SessionTimeout:  24 * time.Hour,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   600,
			RateLimitWindow: time.Minute,
		},
		Engine: engineDefaults(),
		Session: SessionConfig{
			IdleTimeout:   30 * time.Minute,
			SweepInterval: time.Minute,
			MaxSessions:   10000,
		},
		Push: PushConfig{
			Interval: 5 * time.Second,
		},
		EventLog: EventLogConfig{
			Backend:    "memory",
			Path:       "/data/eventlog",
			Capacity:   5000,
			QueryLimit: 500,
		},
		Bus: BusConfig{
			Enabled:            true,
			BufferSize:         1024,
			TelemetryTopic:     "telemetry.events",
			ScoresTopic:        "risk.scores",
			RetryCount:         3,
			RetryInitialDelay:  100 * time.Millisecond,
			RouterCloseTimeout: 10 * time.Second,
		},
		Alerts: AlertsConfig{
			QueueSize:        256,
			LogEnabled:       true,
			RateLimitMs:      500,
			WebhookTimeout:   10 * time.Second,
			FailureThreshold: 5,
			OpenTimeout:      30 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration from defaults, the config file and the
// environment, then validates it.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// JWT_SECRET -> security.jwt_secret, HTTP_PORT -> server.port, ...
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.ensureJWTSecret(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// ensureJWTSecret fills an empty secret with random bytes outside production.
func (c *Config) ensureJWTSecret() error {
	if c.Security.JWTSecret != "" || c.Server.IsProduction() {
		return nil
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	c.Security.JWTSecret = hex.EncodeToString(buf)
	return nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths accept comma-separated strings from the environment.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"alerts.webhook_headers",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Security
	"jwt_secret":          "security.jwt_secret",
	"session_timeout":     "security.session_timeout",
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Engine
	"risk_evaluate":           "engine.evaluate",
	"risk_elevated_threshold": "engine.elevated_threshold",
	"risk_high_threshold":     "engine.high_threshold",

	// Sessions
	"session_idle_timeout":   "session.idle_timeout",
	"session_sweep_interval": "session.sweep_interval",
	"max_sessions":           "session.max_sessions",

	// Push
	"push_interval": "push.interval",

	// Event log
	"eventlog_backend":     "eventlog.backend",
	"eventlog_path":        "eventlog.path",
	"eventlog_capacity":    "eventlog.capacity",
	"eventlog_query_limit": "eventlog.query_limit",

	// Bus
	"bus_enabled":         "bus.enabled",
	"bus_buffer_size":     "bus.buffer_size",
	"bus_telemetry_topic": "bus.telemetry_topic",
	"bus_scores_topic":    "bus.scores_topic",
	"bus_retry_count":     "bus.retry_count",

	// Alerts
	"alert_queue_size":          "alerts.queue_size",
	"alert_log_enabled":         "alerts.log_enabled",
	"webhook_url":               "alerts.webhook_url",
	"webhook_enabled":           "alerts.webhook_enabled",
	"webhook_headers":           "alerts.webhook_headers",
	"webhook_rate_limit_ms":     "alerts.rate_limit_ms",
	"webhook_timeout":           "alerts.webhook_timeout",
	"webhook_failure_threshold": "alerts.failure_threshold",
	"webhook_open_timeout":      "alerts.open_timeout",
}

// envTransformFunc maps an environment variable to a koanf path. Unmapped
// variables return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
