// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package config

import (
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

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/societyrec/config.yaml",
	"/etc/societyrec/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			RequestTimeout:  10 * time.Second,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Path:                   "/data/societyrec.duckdb",
			MaxMemory:              "1GB",
			Threads:                0,
			PreserveInsertionOrder: true,
			QueryTimeout:           10 * time.Second,
		},
		Feedback: FeedbackConfig{
			Store:    "badger",
			Path:     "/data/feedback",
			HalfLife: 60 * 24 * time.Hour,
			CacheTTL: time.Hour,
		},
		Recommend: RecommendConfig{
			CacheTTL:         5 * time.Minute,
			DefaultLimit:     5,
			MaxLimit:         50,
			DiversityLevel:   "balanced",
			CategoryBoost:    0.5,
			ColdStartEnabled: true,
			RefitInterval:    time.Hour,
			RefitTimeout:     2 * time.Minute,
			ModelPath:        "/data/models",
			Weights: WeightsConfig{
				CategoryMatch:     3.0,
				TagMatch:          2.0,
				Similarity:        1.5,
				SemanticBoost:     3.0,
				EventCategory:     2.0,
				RecencyMultiplier: 1.2,
			},
			Similarity: SimilarityConfig{
				MaxFeatures: 1000,
				MaxNGram:    3,
				TopKeywords: 15,
				WithEmbedding: BlendWeightsConfig{
					Embedding: 0.35,
					TFIDF:     0.25,
					Keyword:   0.15,
					Jaccard:   0.05,
					Semantic:  0.20,
				},
				WithoutEmbedding: BlendWeightsConfig{
					TFIDF:    0.4,
					Keyword:  0.2,
					Jaccard:  0.1,
					Semantic: 0.3,
				},
			},
			Embedding: EmbeddingConfig{
				Enabled:             false,
				Model:               "all-MiniLM-L6-v2",
				Timeout:             5 * time.Second,
				RequestsPerSecond:   20,
				Burst:               5,
				CacheSize:           2048,
				BreakerMinRequests:  10,
				BreakerFailureRatio: 0.6,
				BreakerTimeout:      2 * time.Minute,
			},
		},
		Evaluation: EvaluationConfig{
			ReportDir:      "evaluation_results",
			K:              5,
			MinMemberships: 2,
			Seed:           42,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
	}
}

// LoadWithKoanf loads configuration with layered sources:
//  1. Defaults
//  2. Config File: optional YAML
//  3. Environment Variables: highest priority
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

	// DUCKDB_PATH -> database.path, RECOMMEND_CACHE_TTL -> recommend.cache_ttl
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

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
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

// sliceConfigPaths are parsed from comma-separated environment values.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated strings for known slice fields.
// Values already loaded as slices from YAML are left alone.
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
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_request_timeout":  "server.request_timeout",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Database
	"duckdb_path":          "database.path",
	"duckdb_max_memory":    "database.max_memory",
	"duckdb_threads":       "database.threads",
	"duckdb_query_timeout": "database.query_timeout",
	"seed_demo_data":       "database.seed_demo_data",

	// Feedback
	"feedback_store":     "feedback.store",
	"feedback_path":      "feedback.path",
	"feedback_half_life": "feedback.half_life",
	"feedback_cache_ttl": "feedback.cache_ttl",

	// Recommender
	"recommend_cache_ttl":                   "recommend.cache_ttl",
	"recommend_default_limit":               "recommend.default_limit",
	"recommend_max_limit":                   "recommend.max_limit",
	"recommend_diversity_level":             "recommend.diversity_level",
	"recommend_category_boost":              "recommend.category_boost",
	"recommend_cold_start_enabled":          "recommend.cold_start_enabled",
	"recommend_identical_description_boost": "recommend.identical_description_boost",
	"recommend_refit_interval":              "recommend.refit_interval",
	"recommend_refit_timeout":               "recommend.refit_timeout",
	"recommend_model_path":                  "recommend.model_path",
	"recommend_weight_category":             "recommend.weights.category_match",
	"recommend_weight_tag":                  "recommend.weights.tag_match",
	"recommend_weight_similarity":           "recommend.weights.similarity",
	"recommend_weight_semantic":             "recommend.weights.semantic_boost",
	"recommend_weight_event_category":       "recommend.weights.event_category",
	"recommend_recency_multiplier":          "recommend.weights.recency_multiplier",

	// Text similarity
	"similarity_max_features": "recommend.similarity.max_features",
	"similarity_max_ngram":    "recommend.similarity.max_ngram",
	"similarity_top_keywords": "recommend.similarity.top_keywords",
	"similarity_fit_timeout":  "recommend.similarity.fit_timeout",

	// Embedding sidecar
	"embedding_enabled":               "recommend.embedding.enabled",
	"embedding_endpoint":              "recommend.embedding.endpoint",
	"embedding_model":                 "recommend.embedding.model",
	"embedding_api_key":               "recommend.embedding.api_key",
	"embedding_timeout":               "recommend.embedding.timeout",
	"embedding_requests_per_second":   "recommend.embedding.requests_per_second",
	"embedding_burst":                 "recommend.embedding.burst",
	"embedding_cache_size":            "recommend.embedding.cache_size",
	"embedding_breaker_min_requests":  "recommend.embedding.breaker_min_requests",
	"embedding_breaker_failure_ratio": "recommend.embedding.breaker_failure_ratio",
	"embedding_breaker_timeout":       "recommend.embedding.breaker_timeout",

	// Evaluation
	"evaluation_report_dir":      "evaluation.report_dir",
	"evaluation_k":               "evaluation.k",
	"evaluation_min_memberships": "evaluation.min_memberships",
	"evaluation_seed":            "evaluation.seed",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
}

// envTransformFunc maps an environment variable name to a koanf path, or
// "" to skip it.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
