// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

/*
Package config loads and validates the societyrec configuration.

# Configuration Sources

Sources are layered with koanf, later layers overriding earlier ones:

  - Struct defaults (defaultConfig)
  - YAML file: $CONFIG_PATH, else config.yaml, config.yml, /etc/societyrec/config.yaml
  - Environment variables from an explicit mapping table

# Sections

  - server: listen address, request and shutdown timeouts, environment
  - database: DuckDB catalog path, memory limit, threads, query timeout
  - feedback: feedback log store (badger or memory), decay half-life, adjustment cache TTL
  - recommend: response cache, limits, diversity default, refit interval, scoring weights,
    embedding sidecar
  - evaluation: report directory, k, membership threshold, seed
  - logging: level, format, caller
  - security: CORS origins and rate limits

# Environment Variables

Selected variables (see envMappings for the full table):

  - HTTP_PORT, HTTP_HOST, ENVIRONMENT
  - DUCKDB_PATH, DUCKDB_MAX_MEMORY, SEED_DEMO_DATA
  - FEEDBACK_STORE, FEEDBACK_PATH, FEEDBACK_HALF_LIFE
  - RECOMMEND_DIVERSITY_LEVEL, RECOMMEND_REFIT_INTERVAL, RECOMMEND_COLD_START_ENABLED
  - EMBEDDING_ENABLED, EMBEDDING_ENDPOINT, EMBEDDING_MODEL
  - LOG_LEVEL, LOG_FORMAT
  - CORS_ORIGINS (comma-separated), RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW

Durations use Go syntax (30s, 5m, 1440h).
*/
package config
