// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation Metrics
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "societyrec_recommendation_requests_total",
			Help: "Total number of recommendation requests by serving path",
		},
		[]string{"path"}, // "personalized", "cold_start", "popular", "fallback", "cache"
	)

	RecommendationLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "societyrec_recommendation_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"path"},
	)

	RecommendationCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "societyrec_recommendation_candidates",
			Help:    "Number of candidate societies scored per personalized request",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// Similarity Metrics
	SimilarityFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "societyrec_similarity_fallbacks_total",
			Help: "Total number of similarity computations served by a fallback path",
		},
		[]string{"reason"}, // "empty_vocabulary", "pipeline_error", "bootstrap", "embedding"
	)

	CorpusRefits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "societyrec_corpus_refits_total",
			Help: "Total number of text corpus refits",
		},
		[]string{"status"}, // "success", "failure"
	)

	CorpusRefitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "societyrec_corpus_refit_duration_seconds",
			Help:    "Duration of text corpus refits in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CorpusDocuments = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "societyrec_corpus_documents",
			Help: "Number of descriptions in the currently fitted corpus",
		},
	)

	// Feedback Metrics
	FeedbackEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "societyrec_feedback_events_total",
			Help: "Total number of feedback events by type and outcome",
		},
		[]string{"type", "status"}, // status: "recorded", "rejected", "failed"
	)

	FeedbackStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "societyrec_feedback_store_errors_total",
			Help: "Total number of feedback store failures that degraded to empty feedback",
		},
		[]string{"operation"}, // "append", "list"
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "societyrec_cache_hits_total",
			Help: "Total number of cache hits by cache",
		},
		[]string{"cache"}, // "adjustments", "responses", "embeddings", "pair_similarity"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "societyrec_cache_misses_total",
			Help: "Total number of cache misses by cache",
		},
		[]string{"cache"},
	)

	// Embedding Metrics
	EmbeddingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "societyrec_embedding_requests_total",
			Help: "Total number of embedding sidecar requests",
		},
		[]string{"status"}, // "success", "error", "rejected"
	)

	EmbeddingLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "societyrec_embedding_duration_seconds",
			Help:    "Duration of embedding sidecar requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "societyrec_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "societyrec_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Event Bus Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "societyrec_events_published_total",
			Help: "Total number of events published on the in-process bus",
		},
		[]string{"topic", "status"},
	)

	EventsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "societyrec_events_handled_total",
			Help: "Total number of bus messages handled by subscriber",
		},
		[]string{"handler", "status"},
	)

	// Evaluation Metrics
	EvaluationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "societyrec_evaluation_runs_total",
			Help: "Total number of offline evaluation runs by kind",
		},
		[]string{"kind"}, // "recommender", "cold_start", "diversity_tradeoff"
	)

	EvaluationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "societyrec_evaluation_student_failures_total",
			Help: "Total number of students skipped by evaluations after an error",
		},
		[]string{"kind"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "societyrec_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "societyrec_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// RecordRecommendation records a served recommendation request.
func RecordRecommendation(path string, duration time.Duration) {
	RecommendationRequests.WithLabelValues(path).Inc()
	RecommendationLatency.WithLabelValues(path).Observe(duration.Seconds())
}

// RecordSimilarityFallback counts a similarity computed by a fallback path.
func RecordSimilarityFallback(reason string) {
	SimilarityFallbacks.WithLabelValues(reason).Inc()
}

// RecordCorpusRefit records the outcome of a corpus refit.
func RecordCorpusRefit(documents int, duration time.Duration, err error) {
	if err != nil {
		CorpusRefits.WithLabelValues("failure").Inc()
		return
	}
	CorpusRefits.WithLabelValues("success").Inc()
	CorpusRefitDuration.Observe(duration.Seconds())
	CorpusDocuments.Set(float64(documents))
}

// RecordCacheLookup counts a hit or miss on the named cache.
func RecordCacheLookup(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
		return
	}
	CacheMisses.WithLabelValues(cache).Inc()
}

// RecordFeedback counts a feedback event by type and outcome.
func RecordFeedback(feedbackType, status string) {
	FeedbackEvents.WithLabelValues(feedbackType, status).Inc()
}

// RecordEmbeddingRequest records one embedding sidecar call.
func RecordEmbeddingRequest(status string, duration time.Duration) {
	EmbeddingRequests.WithLabelValues(status).Inc()
	if status != "rejected" {
		EmbeddingLatency.Observe(duration.Seconds())
	}
}

// RecordAPIRequest records an API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
