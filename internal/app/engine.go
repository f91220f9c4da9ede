// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/societyrec/internal/config"
	"github.com/tomtom215/societyrec/internal/embedding"
	"github.com/tomtom215/societyrec/internal/recommend"
	"github.com/tomtom215/societyrec/internal/recommend/coldstart"
	"github.com/tomtom215/societyrec/internal/recommend/feedback"
	"github.com/tomtom215/societyrec/internal/recommend/reranking"
	"github.com/tomtom215/societyrec/internal/recommend/semantic"
	"github.com/tomtom215/societyrec/internal/recommend/storage"
	"github.com/tomtom215/societyrec/internal/recommend/textsim"
)

// Catalog is the storage the engine reads from. *database.DB implements it.
type Catalog interface {
	recommend.Catalog
	feedback.SocietyLookup
}

// Engine is the wired recommendation pipeline shared by the server and the
// evaluation CLI.
type Engine struct {
	Recommender *recommend.Recommender
	Analyzer    *textsim.Analyzer
	Feedback    *feedback.Processor
	ColdStart   *coldstart.Handler
	Enhancer    *semantic.Enhancer

	closers []func() error
	logger  zerolog.Logger
}

// NewEngine builds every pipeline component from cfg. The caller must
// Close the engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *config.Config, catalog Catalog, logger zerolog.Logger) (*Engine, error) {
	e := &Engine{logger: logger}

	e.Enhancer = semantic.New()
	e.Analyzer = textsim.NewAnalyzer(SimilarityConfig(&cfg.Recommend), e.Enhancer, logger)

	if cfg.Recommend.Embedding.Enabled {
		embedCfg := EmbeddingConfig(&cfg.Recommend.Embedding)
		embedder, err := embedding.New(&embedCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("embedding client: %w", err)
		}
		e.Analyzer.SetEmbedder(embedder)
	}

	if cfg.Recommend.ModelPath != "" {
		models, err := storage.NewStore(cfg.Recommend.ModelPath, 3)
		if err != nil {
			return nil, fmt.Errorf("model store: %w", err)
		}
		e.Analyzer.SetModelStore(models)
	}

	store, err := openFeedbackStore(&cfg.Feedback)
	if err != nil {
		return nil, err
	}
	if c, ok := store.(interface{ Close() error }); ok {
		e.closers = append(e.closers, c.Close)
	}
	e.Feedback = feedback.NewProcessor(feedback.Config{
		HalfLife: cfg.Feedback.HalfLife,
		CacheTTL: cfg.Feedback.CacheTTL,
	}, store, catalog, nil, logger)

	coldCfg := coldstart.DefaultConfig()
	coldCfg.DefaultLimit = cfg.Recommend.DefaultLimit
	e.ColdStart = coldstart.NewHandler(coldCfg, catalog, logger)

	selector := reranking.NewMMR(reranking.NewSimilarityCache(e.Analyzer))
	rec, err := recommend.NewRecommender(RecommendConfig(&cfg.Recommend), catalog, e.Analyzer, selector, logger)
	if err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("recommender: %w", err)
	}
	rec.SetSemanticBooster(e.Enhancer)
	rec.SetFeedbackAdjuster(e.Feedback)
	rec.SetColdStarter(e.ColdStart)
	e.Recommender = rec

	return e, nil
}

// RestoreCorpus loads the newest persisted corpus model. It is not an
// error when none exists yet; the first refit creates one.
func (e *Engine) RestoreCorpus(ctx context.Context) bool {
	if err := e.Analyzer.LoadCorpus(ctx); err != nil {
		e.logger.Info().Err(err).Msg("No persisted corpus model, waiting for the first refit")
		return false
	}
	return true
}

// Close releases the feedback store.
func (e *Engine) Close() error {
	var errs []error
	for _, c := range e.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}

func openFeedbackStore(cfg *config.FeedbackConfig) (feedback.Store, error) {
	switch cfg.Store {
	case "memory":
		return feedback.NewMemoryStore(), nil
	case "", "badger":
		s, err := feedback.OpenBadgerStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown feedback store %q", cfg.Store)
	}
}

// RecommendConfig maps the recommend section onto recommender settings.
// Zero values keep the defaults.
func RecommendConfig(c *config.RecommendConfig) *recommend.Config {
	out := recommend.DefaultConfig()
	out.CacheTTL = c.CacheTTL
	out.ColdStartEnabled = c.ColdStartEnabled
	out.IdenticalDescriptionBoost = c.IdenticalDescriptionBoost

	if c.DefaultLimit > 0 {
		out.Limits.DefaultLimit = c.DefaultLimit
	}
	if c.MaxLimit > 0 {
		out.Limits.MaxLimit = c.MaxLimit
	}
	if c.DiversityLevel != "" {
		out.Diversity.DefaultLevel = recommend.DiversityLevel(c.DiversityLevel)
	}
	if c.CategoryBoost > 0 {
		out.Diversity.CategoryBoost = c.CategoryBoost
	}

	w := c.Weights
	setIfPositive(&out.Scoring.CategoryMatch, w.CategoryMatch)
	setIfPositive(&out.Scoring.TagMatch, w.TagMatch)
	setIfPositive(&out.Scoring.Similarity, w.Similarity)
	setIfPositive(&out.Scoring.SemanticBoost, w.SemanticBoost)
	setIfPositive(&out.Scoring.EventCategory, w.EventCategory)
	setIfPositive(&out.Scoring.RecencyMultiplier, w.RecencyMultiplier)
	return out
}

// SimilarityConfig maps the similarity section onto analyzer settings.
// Zero values keep the defaults. A fit runs inside the refit, so FitTimeout
// falls back to refit_timeout, and embedding calls get the client timeout.
func SimilarityConfig(c *config.RecommendConfig) textsim.Config {
	out := textsim.DefaultConfig()
	s := &c.Similarity

	if s.MaxFeatures > 0 {
		out.MaxFeatures = s.MaxFeatures
	}
	if s.MaxNGram > 0 {
		out.MaxNGram = s.MaxNGram
	}
	if s.TopKeywords > 0 {
		out.TopKeywords = s.TopKeywords
	}

	switch {
	case s.FitTimeout > 0:
		out.FitTimeout = s.FitTimeout
	case c.RefitTimeout > 0:
		out.FitTimeout = c.RefitTimeout
	}
	if c.Embedding.Timeout > 0 {
		out.EmbeddingTimeout = c.Embedding.Timeout
	}

	if w, ok := blendWeights(s.WithEmbedding); ok {
		out.WithEmbedding = w
	}
	if w, ok := blendWeights(s.WithoutEmbedding); ok {
		out.WithoutEmbedding = w
	}
	return out
}

func blendWeights(c config.BlendWeightsConfig) (textsim.Weights, bool) {
	w := textsim.Weights{
		Embedding: c.Embedding,
		TFIDF:     c.TFIDF,
		Keyword:   c.Keyword,
		Jaccard:   c.Jaccard,
		Semantic:  c.Semantic,
	}
	return w, w != textsim.Weights{}
}

// EmbeddingConfig maps the flat embedding section onto client settings.
func EmbeddingConfig(c *config.EmbeddingConfig) embedding.Config {
	out := embedding.DefaultConfig()
	out.Endpoint = c.Endpoint
	out.APIKey = c.APIKey
	if c.Model != "" {
		out.Model = c.Model
	}
	if c.Timeout > 0 {
		out.Timeout = c.Timeout
	}
	if c.RequestsPerSecond > 0 {
		out.RequestsPerSecond = c.RequestsPerSecond
	}
	if c.Burst > 0 {
		out.Burst = c.Burst
	}
	if c.CacheSize > 0 {
		out.CacheSize = c.CacheSize
	}
	if c.BreakerMinRequests > 0 {
		out.Breaker.MinRequests = c.BreakerMinRequests
	}
	if c.BreakerFailureRatio > 0 {
		out.Breaker.FailureRatio = c.BreakerFailureRatio
	}
	if c.BreakerTimeout > 0 {
		out.Breaker.Timeout = c.BreakerTimeout
	}
	return out
}

func setIfPositive(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}
