// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package config

import (
	"fmt"
	"net/url"
	"time"
)

// Validate checks that the configuration is complete and within bounds.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateFeedback,
		c.validateRecommend,
		c.validateEmbedding,
		c.validateEvaluation,
		c.validateSecurity,
		c.validateLogging,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("HTTP_REQUEST_TIMEOUT must be positive")
	}
	switch c.Server.Environment {
	case "development", "production":
		return nil
	default:
		return fmt.Errorf("ENVIRONMENT must be one of: development, production")
	}
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative")
	}
	if c.Database.QueryTimeout <= 0 {
		return fmt.Errorf("DUCKDB_QUERY_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateFeedback() error {
	switch c.Feedback.Store {
	case "memory":
	case "badger":
		if c.Feedback.Path == "" {
			return fmt.Errorf("FEEDBACK_PATH is required for the badger store")
		}
	default:
		return fmt.Errorf("FEEDBACK_STORE must be one of: badger, memory")
	}
	if c.Feedback.HalfLife <= 0 {
		return fmt.Errorf("FEEDBACK_HALF_LIFE must be positive")
	}
	if c.Feedback.CacheTTL < 0 {
		return fmt.Errorf("FEEDBACK_CACHE_TTL must be non-negative")
	}
	return nil
}

// validDiversityLevels mirrors recommend.DiversityLevels.
var validDiversityLevels = map[string]bool{
	"low":      true,
	"balanced": true,
	"high":     true,
}

func (c *Config) validateRecommend() error {
	r := &c.Recommend
	if r.DefaultLimit < 1 {
		return fmt.Errorf("RECOMMEND_DEFAULT_LIMIT must be positive")
	}
	if r.MaxLimit < r.DefaultLimit {
		return fmt.Errorf("RECOMMEND_MAX_LIMIT must be >= RECOMMEND_DEFAULT_LIMIT")
	}
	if !validDiversityLevels[r.DiversityLevel] {
		return fmt.Errorf("RECOMMEND_DIVERSITY_LEVEL must be one of: low, balanced, high")
	}
	if r.CacheTTL < 0 || r.RefitInterval < 0 {
		return fmt.Errorf("recommend cache_ttl and refit_interval must be non-negative")
	}
	if r.RefitTimeout <= 0 {
		return fmt.Errorf("RECOMMEND_REFIT_TIMEOUT must be positive")
	}
	if r.Weights.RecencyMultiplier < 1 {
		return fmt.Errorf("RECOMMEND_RECENCY_MULTIPLIER must be >= 1")
	}
	return c.validateSimilarity()
}

func (c *Config) validateSimilarity() error {
	s := &c.Recommend.Similarity
	if s.MaxFeatures < 1 || s.TopKeywords < 1 {
		return fmt.Errorf("SIMILARITY_MAX_FEATURES and SIMILARITY_TOP_KEYWORDS must be positive")
	}
	if s.MaxNGram < 1 || s.MaxNGram > 5 {
		return fmt.Errorf("SIMILARITY_MAX_NGRAM must be between 1 and 5")
	}
	if s.FitTimeout < 0 {
		return fmt.Errorf("SIMILARITY_FIT_TIMEOUT must be non-negative")
	}
	for _, w := range []BlendWeightsConfig{s.WithEmbedding, s.WithoutEmbedding} {
		if w.Embedding < 0 || w.TFIDF < 0 || w.Keyword < 0 || w.Jaccard < 0 || w.Semantic < 0 {
			return fmt.Errorf("recommend.similarity weights must be non-negative")
		}
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	e := &c.Recommend.Embedding
	if !e.Enabled {
		return nil
	}
	u, err := url.Parse(e.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("EMBEDDING_ENDPOINT must be an http(s) URL when embeddings are enabled")
	}
	if e.BreakerFailureRatio <= 0 || e.BreakerFailureRatio > 1 {
		return fmt.Errorf("EMBEDDING_BREAKER_FAILURE_RATIO must be in (0, 1]")
	}
	if e.CacheSize < 1 {
		return fmt.Errorf("EMBEDDING_CACHE_SIZE must be positive")
	}
	return nil
}

func (c *Config) validateEvaluation() error {
	if c.Evaluation.K < 1 {
		return fmt.Errorf("EVALUATION_K must be positive")
	}
	if c.Evaluation.MinMemberships < 1 {
		return fmt.Errorf("EVALUATION_MIN_MEMBERSHIPS must be positive")
	}
	return nil
}

// Rate limit bounds.
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateSecurity() error {
	if c.IsProduction() && c.hasWildcardCORS() {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production; set explicit origins")
	}
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
