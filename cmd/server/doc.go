// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

/*
Package main is the entry point of the societyrec server.

The server recommends student societies over a JSON API. Recommendations
blend the student's joined categories and tags, description similarity,
attended event categories and feedback, then are diversified with maximal
marginal relevance. Students without history get cold-start suggestions
from their major and the students they follow.

# Application Architecture

Services run under a Suture v4 tree:

	societyrec
	├── model-layer
	│   └── corpus-refit (periodic TF-IDF refit from society descriptions)
	├── messaging-layer
	│   └── event-bus (Watermill; feedback invalidates cached responses)
	└── api-layer
	    └── http-server (chi router)

Startup order:

 1. Configuration: Koanf v2 (defaults, optional YAML, environment)
 2. Logging: zerolog with JSON or console output
 3. Database: DuckDB catalog of societies, students and events
 4. Engine: text analyzer, semantic enhancer, optional embedding client,
    feedback store (Badger or memory), cold start and MMR selection
 5. Event bus: Watermill GoChannel with retry and recoverer middleware
 6. Supervisor tree and HTTP server

# Configuration

Priority: environment variables > config file > defaults.

	HTTP_PORT=8080
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console
	DUCKDB_PATH=/data/societyrec.duckdb
	SEED_DEMO_DATA=false
	FEEDBACK_STORE=badger        # badger or memory
	FEEDBACK_PATH=/data/feedback
	RECOMMEND_MODEL_PATH=/data/models
	RECOMMEND_REFIT_INTERVAL=1h  # 0 fits once at startup
	EMBEDDING_ENABLED=false
	EMBEDDING_ENDPOINT=http://localhost:8081
	CORS_ORIGINS=*
	RATE_LIMIT_REQUESTS=100

A YAML file is read from CONFIG_PATH or the default locations.

# Signal Handling

SIGINT and SIGTERM cancel the tree: the HTTP server drains within
HTTP_SHUTDOWN_TIMEOUT, the bus stops its router, and the database is
checkpointed and closed.
*/
package main
