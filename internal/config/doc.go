// CyberSentinel - Behavioral Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cybersentinel

/*
Package config loads CyberSentinel configuration with koanf.

Sources are layered, later ones winning:

 1. Struct defaults (defaultConfig)
 2. YAML file: CONFIG_PATH, or the first of config.yaml, config.yml,
    /etc/cybersentinel/config.yaml, /etc/cybersentinel/config.yml
 3. Environment variables, through an explicit mapping (envTransformFunc).
    Unmapped variables are ignored.

# Sections

  - server: listen address, timeouts, environment
  - logging: level, format, caller
  - security: JWT secret and lifetime, CORS origins, rate limits
  - engine: evaluation mode, per-signal estimator and contribution
    settings, flag penalties, counter penalties, level thresholds
  - session: idle timeout, sweep interval, capacity
  - push: WebSocket score push interval
  - eventlog: memory or badger backend, capacity, query limit
  - bus: in-process watermill bus for telemetry ingestion
  - alerts: log and webhook notifiers

Example YAML:

	server:
	  port: 8080
	engine:
	  evaluate: latest
	  key_latency:
	    alpha: 0.15
	    weight: 6
	    cap: 22
	    seeds: [50, 60, 55, 52]
	  high_threshold: 70
	alerts:
	  webhook_url: https://hooks.example.com/risk
	  webhook_enabled: true

Engine settings convert to a risk.Policy through EngineConfig.Policy, which
validates them the same way the engine does.
*/
package config
