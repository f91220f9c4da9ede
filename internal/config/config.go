// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package config

import "time"

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in defaults from defaultConfig
//  2. Config File: optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. Environment Variables: explicit mapping table in envTransformFunc
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal().Err(err).Msg("Failed to load config")
//	}
//	db, err := database.New(&cfg.Database, logger)
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Feedback   FeedbackConfig   `koanf:"feedback"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Evaluation EvaluationConfig `koanf:"evaluation"`
	Logging    LoggingConfig    `koanf:"logging"`
	Security   SecurityConfig   `koanf:"security"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`

	// RequestTimeout bounds each API request.
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// Environment is "development" or "production".
	Environment string `koanf:"environment"`
}

// DatabaseConfig holds DuckDB catalog settings.
type DatabaseConfig struct {
	// Path is the database file, or ":memory:".
	Path                   string        `koanf:"path"`
	MaxMemory              string        `koanf:"max_memory"`
	Threads                int           `koanf:"threads"` // 0 = NumCPU
	PreserveInsertionOrder bool          `koanf:"preserve_insertion_order"`
	QueryTimeout           time.Duration `koanf:"query_timeout"`

	// SeedDemoData loads a small demonstration catalog into an empty database.
	SeedDemoData bool `koanf:"seed_demo_data"`
}

// FeedbackConfig holds feedback log and decay settings.
type FeedbackConfig struct {
	// Store is "badger" or "memory".
	Store string `koanf:"store"`

	// Path is the Badger directory. Ignored by the memory store.
	Path string `koanf:"path"`

	HalfLife time.Duration `koanf:"half_life"`
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// RecommendConfig holds recommender settings.
type RecommendConfig struct {
	CacheTTL       time.Duration `koanf:"cache_ttl"`
	DefaultLimit   int           `koanf:"default_limit"`
	MaxLimit       int           `koanf:"max_limit"`
	DiversityLevel string        `koanf:"diversity_level"`
	CategoryBoost  float64       `koanf:"category_boost"`

	ColdStartEnabled          bool `koanf:"cold_start_enabled"`
	IdenticalDescriptionBoost bool `koanf:"identical_description_boost"`

	// RefitInterval is how often the text corpus is refitted from the
	// catalog. Zero disables periodic refits.
	RefitInterval time.Duration `koanf:"refit_interval"`
	RefitTimeout  time.Duration `koanf:"refit_timeout"`

	// ModelPath is the directory for persisted corpus models. Empty
	// disables persistence.
	ModelPath string `koanf:"model_path"`

	Weights    WeightsConfig    `koanf:"weights"`
	Similarity SimilarityConfig `koanf:"similarity"`
	Embedding  EmbeddingConfig  `koanf:"embedding"`
}

// SimilarityConfig tunes the text similarity analyzer.
type SimilarityConfig struct {
	MaxFeatures int `koanf:"max_features"`
	MaxNGram    int `koanf:"max_ngram"`
	TopKeywords int `koanf:"top_keywords"`

	// FitTimeout bounds a single corpus fit. Zero uses refit_timeout.
	FitTimeout time.Duration `koanf:"fit_timeout"`

	// WithEmbedding applies when both texts were embedded, WithoutEmbedding
	// otherwise. An all-zero block keeps the built-in blend.
	WithEmbedding    BlendWeightsConfig `koanf:"with_embedding"`
	WithoutEmbedding BlendWeightsConfig `koanf:"without_embedding"`
}

// BlendWeightsConfig weighs the similarity signals.
type BlendWeightsConfig struct {
	Embedding float64 `koanf:"embedding"`
	TFIDF     float64 `koanf:"tfidf"`
	Keyword   float64 `koanf:"keyword"`
	Jaccard   float64 `koanf:"jaccard"`
	Semantic  float64 `koanf:"semantic"`
}

// WeightsConfig holds the raw relevance weights.
type WeightsConfig struct {
	CategoryMatch     float64 `koanf:"category_match"`
	TagMatch          float64 `koanf:"tag_match"`
	Similarity        float64 `koanf:"similarity"`
	SemanticBoost     float64 `koanf:"semantic_boost"`
	EventCategory     float64 `koanf:"event_category"`
	RecencyMultiplier float64 `koanf:"recency_multiplier"`
}

// EmbeddingConfig configures the optional sentence-embedding sidecar.
type EmbeddingConfig struct {
	Enabled           bool          `koanf:"enabled"`
	Endpoint          string        `koanf:"endpoint"`
	Model             string        `koanf:"model"`
	APIKey            string        `koanf:"api_key"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
	CacheSize         int           `koanf:"cache_size"`

	BreakerMinRequests  uint32        `koanf:"breaker_min_requests"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio"`
	BreakerTimeout      time.Duration `koanf:"breaker_timeout"`
}

// EvaluationConfig holds offline evaluation defaults.
type EvaluationConfig struct {
	ReportDir      string `koanf:"report_dir"`
	K              int    `koanf:"k"`
	MinMemberships int    `koanf:"min_memberships"`
	Seed           int64  `koanf:"seed"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// Load loads configuration from defaults, an optional YAML file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
