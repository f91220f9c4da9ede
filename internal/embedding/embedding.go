// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package embedding

import (
	"github.com/rs/zerolog"
)

// New builds the cached, circuit-broken, rate-limited embedder for cfg.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg *Config, logger zerolog.Logger) (Embedder, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	size := cfg.CacheSize
	if size <= 0 {
		size = DefaultConfig().CacheSize
	}

	logger.Info().
		Str("endpoint", cfg.Endpoint).
		Str("model", cfg.Model).
		Int("cache_size", size).
		Msg("embedding client configured")
	return NewCached(NewBreaker(client, cfg.Breaker, logger), size), nil
}
