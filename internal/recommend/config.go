// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the Recommender.
type Config struct {
	// Scoring holds the raw relevance weights.
	Scoring ScoringConfig `json:"scoring"`

	// Popularity holds the popular-society ranking weights.
	Popularity PopularityConfig `json:"popularity"`

	// Diversity contains selection parameters.
	Diversity DiversityConfig `json:"diversity"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// CacheTTL is how long a response is served from cache. Zero disables
	// the response cache.
	// Default: 5m.
	CacheTTL time.Duration `json:"cache_ttl"`

	// ColdStartEnabled routes students without history to the cold-start
	// handler before falling back to popular societies.
	// Default: true.
	ColdStartEnabled bool `json:"cold_start_enabled"`

	// IdenticalDescriptionBoost adds a semantic-boost term when every joined
	// society shares one description.
	// Default: false.
	IdenticalDescriptionBoost bool `json:"identical_description_boost"`
}

// ScoringConfig holds the additive weights of the raw relevance score.
type ScoringConfig struct {
	// CategoryMatch is added when the candidate's category was joined before.
	CategoryMatch float64 `json:"category_match"`

	// TagMatch is added per candidate tag shared with a joined society.
	TagMatch float64 `json:"tag_match"`

	// Similarity multiplies the 0-5 description similarity.
	Similarity float64 `json:"similarity"`

	// SemanticBoost multiplies the semantic boost when
	// Config.IdenticalDescriptionBoost applies.
	SemanticBoost float64 `json:"semantic_boost"`

	// EventCategory is added when the candidate's category hosted an event
	// the student attended.
	EventCategory float64 `json:"event_category"`

	// RecencyMultiplier scales the score of societies with a recent event.
	RecencyMultiplier float64 `json:"recency_multiplier"`

	// ContentExplanationThreshold is the 0-5 similarity at which a
	// recommendation is explained by content.
	ContentExplanationThreshold float64 `json:"content_explanation_threshold"`
}

// PopularityConfig weights the popular-society ranking.
type PopularityConfig struct {
	Members       float64 `json:"members"`
	Events        float64 `json:"events"`
	Attendance    float64 `json:"attendance"`
	RecentEvents  float64 `json:"recent_events"`
	RecentMembers float64 `json:"recent_members"`
}

// DiversityConfig contains selection parameters.
type DiversityConfig struct {
	// DefaultLevel applies when a request names no level.
	// Default: balanced.
	DefaultLevel DiversityLevel `json:"default_level"`

	// CategoryBoost is the extra relevance weight given to categories the
	// student has joined sparingly: 1 + CategoryBoost*(1 - count/total).
	// Default: 0.5.
	CategoryBoost float64 `json:"category_boost"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultLimit applies when a request asks for zero results.
	// Default: 5.
	DefaultLimit int `json:"default_limit"`

	// MaxLimit caps the number of results per request.
	// Default: 50.
	MaxLimit int `json:"max_limit"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Scoring: ScoringConfig{
			CategoryMatch:               3.0,
			TagMatch:                    2.0,
			Similarity:                  1.5,
			SemanticBoost:               3.0,
			EventCategory:               2.0,
			RecencyMultiplier:           1.2,
			ContentExplanationThreshold: 2.5,
		},
		Popularity: PopularityConfig{
			Members:       2,
			Events:        3,
			Attendance:    4,
			RecentEvents:  5,
			RecentMembers: 3,
		},
		Diversity: DiversityConfig{
			DefaultLevel:  DiversityBalanced,
			CategoryBoost: 0.5,
		},
		Limits: LimitsConfig{
			DefaultLimit: 5,
			MaxLimit:     50,
		},
		CacheTTL:         5 * time.Minute,
		ColdStartEnabled: true,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Scoring.RecencyMultiplier < 1 {
		return fmt.Errorf("scoring.recency_multiplier must be >= 1, got %f", c.Scoring.RecencyMultiplier)
	}
	if c.Scoring.ContentExplanationThreshold < 0 || c.Scoring.ContentExplanationThreshold > 5 {
		return fmt.Errorf("scoring.content_explanation_threshold must be in [0, 5], got %f", c.Scoring.ContentExplanationThreshold)
	}

	if _, err := ParseDiversityLevel(string(c.Diversity.DefaultLevel)); err != nil {
		return fmt.Errorf("diversity.default_level: %w", err)
	}
	if c.Diversity.CategoryBoost < 0 {
		return fmt.Errorf("diversity.category_boost must be non-negative, got %f", c.Diversity.CategoryBoost)
	}

	if c.Limits.DefaultLimit < 1 {
		return fmt.Errorf("limits.default_limit must be positive, got %d", c.Limits.DefaultLimit)
	}
	if c.Limits.MaxLimit < c.Limits.DefaultLimit {
		return fmt.Errorf("limits.max_limit must be >= limits.default_limit, got %d < %d", c.Limits.MaxLimit, c.Limits.DefaultLimit)
	}

	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must be non-negative, got %v", c.CacheTTL)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
