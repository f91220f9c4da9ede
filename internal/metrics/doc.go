// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

/*
Package metrics provides Prometheus collectors for the recommendation service.

Collectors are package-level and registered on the default registry through
promauto, so any package can record without plumbing a registry around.

# Overview

The package provides metrics for:
  - Recommendation requests by serving path (personalized, cold_start,
    popular, fallback), latency and candidate counts
  - Similarity pipeline fallbacks by reason, so a failed pipeline is
    distinguishable from a legitimately low score
  - Corpus refits (count, duration, document count)
  - Feedback events recorded and feedback store failures
  - Cache hits and misses per named cache
  - Embedding sidecar requests and circuit breaker state
  - Offline evaluation runs and per-student failures
  - HTTP API request latency and throughput

# Metrics Endpoint

Metrics are exposed at /metrics in Prometheus text format:

	curl http://localhost:8080/metrics
*/
package metrics
