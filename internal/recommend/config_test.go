// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package recommend

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}

	t.Run("scoring weights", func(t *testing.T) {
		s := cfg.Scoring
		if s.CategoryMatch != 3 || s.TagMatch != 2 || s.Similarity != 1.5 || s.EventCategory != 2 {
			t.Errorf("unexpected scoring weights: %+v", s)
		}
		if s.RecencyMultiplier != 1.2 {
			t.Errorf("RecencyMultiplier = %v, want 1.2", s.RecencyMultiplier)
		}
	})

	t.Run("flags", func(t *testing.T) {
		if !cfg.ColdStartEnabled {
			t.Error("ColdStartEnabled = false, want true")
		}
		if cfg.IdenticalDescriptionBoost {
			t.Error("IdenticalDescriptionBoost = true, want false")
		}
	})

	t.Run("limits", func(t *testing.T) {
		if cfg.Limits.DefaultLimit != 5 {
			t.Errorf("DefaultLimit = %d, want 5", cfg.Limits.DefaultLimit)
		}
		if cfg.Limits.MaxLimit < cfg.Limits.DefaultLimit {
			t.Errorf("MaxLimit = %d < DefaultLimit", cfg.Limits.MaxLimit)
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantError bool
	}{
		{"valid default", func(*Config) {}, false},
		{"recency below one", func(c *Config) { c.Scoring.RecencyMultiplier = 0.9 }, true},
		{"threshold above five", func(c *Config) { c.Scoring.ContentExplanationThreshold = 6 }, true},
		{"unknown level", func(c *Config) { c.Diversity.DefaultLevel = "extreme" }, true},
		{"empty level is balanced", func(c *Config) { c.Diversity.DefaultLevel = "" }, false},
		{"negative category boost", func(c *Config) { c.Diversity.CategoryBoost = -1 }, true},
		{"zero default limit", func(c *Config) { c.Limits.DefaultLimit = 0 }, true},
		{"max below default", func(c *Config) { c.Limits.MaxLimit = 2 }, true},
		{"negative ttl", func(c *Config) { c.CacheTTL = -time.Second }, true},
		{"cache disabled", func(c *Config) { c.CacheTTL = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestConfig_Clone(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Scoring.TagMatch = 99
	clone.Limits.MaxLimit = 1

	if cfg.Scoring.TagMatch == 99 || cfg.Limits.MaxLimit == 1 {
		t.Error("modifying the clone changed the original")
	}
}

func TestDiversityLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    DiversityLevel
		lambda  float64
		wantErr bool
	}{
		{"low", DiversityLow, 0.9, false},
		{"balanced", DiversityBalanced, 0.7, false},
		{"high", DiversityHigh, 0.5, false},
		{"", DiversityBalanced, 0.7, false},
		{"HIGH", "", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDiversityLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDiversityLevel(%q) error = %v", tt.in, err)
			continue
		}
		if tt.wantErr {
			continue
		}
		if got != tt.want || got.Lambda() != tt.lambda {
			t.Errorf("ParseDiversityLevel(%q) = %q (λ %v), want %q (λ %v)", tt.in, got, got.Lambda(), tt.want, tt.lambda)
		}
	}
}
