// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// CorpusRefitter refits the text-similarity models from the current
// society descriptions. recommend.Recommender implements it.
type CorpusRefitter interface {
	UpdateSimilarityModel(ctx context.Context) error
}

// CorpusRefitConfig controls the refit schedule.
type CorpusRefitConfig struct {
	// RefitOnStartup fits once as soon as the service starts.
	RefitOnStartup bool

	// Interval between scheduled refits. Non-positive means 1h.
	Interval time.Duration

	// Timeout bounds a single refit. Non-positive means 2m.
	Timeout time.Duration
}

// CorpusRefitService keeps the similarity models in step with the catalog.
// A failed refit leaves the previous models serving and is retried on the
// next tick; it never fails the service.
type CorpusRefitService struct {
	refitter CorpusRefitter
	config   CorpusRefitConfig
	logger   zerolog.Logger
}

// NewCorpusRefitService creates the service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCorpusRefitService(refitter CorpusRefitter, cfg CorpusRefitConfig, logger zerolog.Logger) *CorpusRefitService {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &CorpusRefitService{
		refitter: refitter,
		config:   cfg,
		logger:   logger.With().Str("service", "corpus-refit").Logger(),
	}
}

// Serve implements suture.Service.
func (s *CorpusRefitService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("refit_on_startup", s.config.RefitOnStartup).
		Dur("interval", s.config.Interval).
		Msg("corpus refit service starting")

	if s.config.RefitOnStartup {
		s.refit(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.refit(ctx)
		}
	}
}

func (s *CorpusRefitService) refit(ctx context.Context) {
	refitCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	if err := s.refitter.UpdateSimilarityModel(refitCtx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn().Err(err).Dur("duration", time.Since(start)).Msg("corpus refit failed, keeping previous models")
		return
	}
	s.logger.Debug().Dur("duration", time.Since(start)).Msg("corpus refit complete")
}

func (s *CorpusRefitService) String() string {
	return "corpus-refit"
}
