// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

// Package textsim scores the similarity of free-text society descriptions
// on a 0-5 scale.
//
// Each comparison blends up to five signals computed on the two texts:
//
//   - embedding cosine on the original texts (optional Embedder)
//   - TF-IDF cosine over 1-3 grams from a corpus-fitted Model
//   - Jaccard overlap of the top-15 keywords
//   - Jaccard overlap of the preprocessed token sets
//   - the lexicon-based semantic boost
//
// The best weighted blend across comparison texts is passed through a
// non-linear transform and scaled to [0, 5]. When the statistical pipeline
// fails, Similarity falls back to raw-token Jaccard and counts the fallback
// with its reason; Score returns the failure instead.
package textsim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/societyrec/internal/metrics"
	"github.com/tomtom215/societyrec/internal/recommend"
	"github.com/tomtom215/societyrec/internal/recommend/storage"
)

// modelName is the name the corpus model is persisted under.
const modelName = "corpus"

// MaxScore is the similarity of identical texts.
const MaxScore = 5.0

var (
	// ErrEmptyVocabulary is returned when preprocessing leaves no terms to fit.
	ErrEmptyVocabulary = errors.New("empty vocabulary")

	// ErrNotFitted is returned when a fitted corpus model is required but absent.
	ErrNotFitted = errors.New("corpus model not fitted")
)

// Embedder produces a sentence embedding for a text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Booster scores lexicon-based relatedness of two texts in [0, 1].
type Booster interface {
	Boost(text1, text2 string) float64
}

// ModelStore persists fitted corpus models.
type ModelStore interface {
	SaveLatest(ctx context.Context, name string, data any, meta storage.ModelMetadata) (storage.ModelMetadata, error)
	LoadLatest(ctx context.Context, name string, target any) (*storage.ModelMetadata, error)
}

// Weights are the per-signal blend weights.
type Weights struct {
	Embedding float64 `json:"embedding"`
	TFIDF     float64 `json:"tfidf"`
	Keyword   float64 `json:"keyword"`
	Jaccard   float64 `json:"jaccard"`
	Semantic  float64 `json:"semantic"`
}

// Config configures an Analyzer.
type Config struct {
	// WithEmbedding applies when an embedding was computed for both texts,
	// WithoutEmbedding otherwise.
	WithEmbedding    Weights `json:"with_embedding"`
	WithoutEmbedding Weights `json:"without_embedding"`

	MaxFeatures int `json:"max_features"`
	MaxNGram    int `json:"max_ngram"`
	TopKeywords int `json:"top_keywords"`

	FitTimeout       time.Duration `json:"fit_timeout"`
	EmbeddingTimeout time.Duration `json:"embedding_timeout"`
}

// DefaultConfig returns the standard blend and vectorizer settings.
func DefaultConfig() Config {
	return Config{
		WithEmbedding: Weights{
			Embedding: 0.35,
			TFIDF:     0.25,
			Keyword:   0.15,
			Jaccard:   0.05,
			Semantic:  0.20,
		},
		WithoutEmbedding: Weights{
			TFIDF:    0.4,
			Keyword:  0.2,
			Jaccard:  0.1,
			Semantic: 0.3,
		},
		MaxFeatures:      1000,
		MaxNGram:         3,
		TopKeywords:      15,
		FitTimeout:       30 * time.Second,
		EmbeddingTimeout: 2 * time.Second,
	}
}

// ModelInfo summarizes the fitted corpus model.
type ModelInfo struct {
	Documents      int       `json:"documents"`
	VocabularySize int       `json:"vocabulary_size"`
	FittedAt       time.Time `json:"fitted_at"`
}

// Analyzer computes text similarity. It is safe for concurrent use; a refit
// swaps the model pointer, so concurrent calls see either the old or the
// new model.
type Analyzer struct {
	cfg     Config
	booster Booster
	logger  zerolog.Logger

	embedder Embedder
	store    ModelStore

	mu    sync.RWMutex
	model *Model
}

// NewAnalyzer creates an unfitted Analyzer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewAnalyzer(cfg Config, booster Booster, logger zerolog.Logger) *Analyzer {
	return &Analyzer{
		cfg:     cfg,
		booster: booster,
		logger:  logger.With().Str("component", "textsim").Logger(),
	}
}

// SetEmbedder enables the embedding signal. Call before serving.
func (a *Analyzer) SetEmbedder(e Embedder) {
	a.embedder = e
}

// SetModelStore enables model persistence. Call before serving.
func (a *Analyzer) SetModelStore(s ModelStore) {
	a.store = s
}

// Fitted reports whether a corpus model is loaded.
func (a *Analyzer) Fitted() bool {
	return a.currentModel() != nil
}

// ModelInfo describes the current model, or returns ErrNotFitted.
func (a *Analyzer) ModelInfo() (ModelInfo, error) {
	m := a.currentModel()
	if m == nil {
		return ModelInfo{}, ErrNotFitted
	}
	return ModelInfo{Documents: m.Documents, VocabularySize: len(m.Vocabulary), FittedAt: m.FittedAt}, nil
}

func (a *Analyzer) currentModel() *Model {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.model
}

// UpdateCorpus refits the vectorizers on descriptions under the configured
// fit timeout, swaps them in and persists them. A persistence failure is
// logged; the refitted model stays in use.
func (a *Analyzer) UpdateCorpus(ctx context.Context, descriptions []string) error {
	fitCtx, cancel := context.WithTimeout(ctx, a.cfg.FitTimeout)
	defer cancel()

	start := time.Now()
	model, err := fitModel(fitCtx, descriptions, a.cfg.MaxFeatures, a.cfg.MaxNGram)
	elapsed := time.Since(start)
	metrics.RecordCorpusRefit(len(descriptions), elapsed, err)
	if err != nil {
		return fmt.Errorf("fit corpus: %w", err)
	}

	a.mu.Lock()
	a.model = model
	a.mu.Unlock()

	a.logger.Info().
		Int("documents", model.Documents).
		Int("vocabulary", len(model.Vocabulary)).
		Dur("duration", elapsed).
		Msg("corpus refit complete")

	if a.store == nil {
		return nil
	}
	meta, err := a.store.SaveLatest(ctx, modelName, model, storage.ModelMetadata{
		FittedAt:       model.FittedAt,
		DocumentCount:  model.Documents,
		VocabularySize: len(model.Vocabulary),
		FitDurationMS:  elapsed.Milliseconds(),
	})
	if err != nil {
		a.logger.Warn().Err(err).Msg("failed to persist corpus model")
		return nil
	}
	a.logger.Debug().Int("version", meta.Version).Msg("corpus model persisted")
	return nil
}

// LoadCorpus restores the newest persisted model.
func (a *Analyzer) LoadCorpus(ctx context.Context) error {
	if a.store == nil {
		return fmt.Errorf("load corpus: no model store: %w", ErrNotFitted)
	}

	var model Model
	meta, err := a.store.LoadLatest(ctx, modelName, &model)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}

	a.mu.Lock()
	a.model = &model
	a.mu.Unlock()

	a.logger.Info().
		Int("version", meta.Version).
		Int("documents", model.Documents).
		Msg("corpus model restored")
	return nil
}

// Similarity returns the similarity of text to its closest comparison in
// [0, 5]. It never fails: pipeline errors fall back to raw-token Jaccard.
func (a *Analyzer) Similarity(ctx context.Context, text string, comparisons []string) float64 {
	score, err := a.Score(ctx, text, comparisons)
	if err == nil {
		return score
	}

	reason := "pipeline_error"
	if errors.Is(err, ErrEmptyVocabulary) {
		reason = "empty_vocabulary"
	}
	metrics.RecordSimilarityFallback(reason)
	a.logger.Debug().Err(err).Str("reason", reason).Msg("similarity fell back to token jaccard")

	return FallbackScore(text, comparisons)
}

// Score is the typed variant of Similarity. Pipeline failures are returned
// wrapping recommend.ErrPipelineUnavailable.
func (a *Analyzer) Score(ctx context.Context, text string, comparisons []string) (float64, error) {
	if len(comparisons) == 0 {
		return 0, nil
	}
	if exactMatch(text, comparisons) {
		return MaxScore, nil
	}

	model := a.currentModel()
	if model == nil {
		// Bootstrap on the query texts for this call only.
		docs := append([]string{text}, comparisons...)
		bootstrap, err := fitModel(ctx, docs, a.cfg.MaxFeatures, a.cfg.MaxNGram)
		if err != nil {
			return 0, fmt.Errorf("%w: bootstrap fit: %w", recommend.ErrPipelineUnavailable, err)
		}
		metrics.RecordSimilarityFallback("bootstrap")
		model = bootstrap
	}

	tokens := Preprocess(text)
	vec := model.vector(tokens)
	keywords := model.keywords(tokens, a.cfg.TopKeywords)

	textEmbedding, haveEmbedding := a.embed(ctx, text)

	best := 0.0
	for _, comparison := range comparisons {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("%w: %w", recommend.ErrPipelineUnavailable, err)
		}

		compTokens := Preprocess(comparison)
		s := signals{
			tfidf:    sparseCosine(vec, model.vector(compTokens)),
			keyword:  jaccard(keywords, model.keywords(compTokens, a.cfg.TopKeywords)),
			jaccard:  jaccard(tokens, compTokens),
			semantic: a.boost(text, comparison),
		}

		weights := a.cfg.WithoutEmbedding
		if haveEmbedding {
			if compEmbedding, ok := a.embed(ctx, comparison); ok {
				s.embedding = denseCosine(textEmbedding, compEmbedding)
				weights = a.cfg.WithEmbedding
			}
		}

		best = math.Max(best, s.blend(weights))
	}

	return scale(transform(best)), nil
}

// embed returns the embedding of text when an embedder is configured and
// answers within the embedding timeout.
func (a *Analyzer) embed(ctx context.Context, text string) ([]float64, bool) {
	if a.embedder == nil {
		return nil, false
	}

	embedCtx, cancel := context.WithTimeout(ctx, a.cfg.EmbeddingTimeout)
	defer cancel()

	vec, err := a.embedder.Embed(embedCtx, text)
	if err != nil || len(vec) == 0 {
		metrics.RecordSimilarityFallback("embedding")
		a.logger.Debug().Err(err).Msg("embedding unavailable, using statistical weights")
		return nil, false
	}
	return vec, true
}

func (a *Analyzer) boost(text1, text2 string) float64 {
	if a.booster == nil {
		return 0
	}
	return a.booster.Boost(text1, text2)
}

// signals holds the per-comparison similarity signals, each in [0, 1].
type signals struct {
	embedding float64
	tfidf     float64
	keyword   float64
	jaccard   float64
	semantic  float64
}

func (s signals) blend(w Weights) float64 {
	return w.Embedding*s.embedding +
		w.TFIDF*s.tfidf +
		w.Keyword*s.keyword +
		w.Jaccard*s.jaccard +
		w.Semantic*s.semantic
}

// FallbackScore scores text against comparisons with raw-token Jaccard,
// transformed and scaled like the full pipeline.
func FallbackScore(text string, comparisons []string) float64 {
	if len(comparisons) == 0 {
		return 0
	}
	if exactMatch(text, comparisons) {
		return MaxScore
	}
	tokens := rawTokens(text)
	best := 0.0
	for _, c := range comparisons {
		best = math.Max(best, jaccard(tokens, rawTokens(c)))
	}
	return scale(transform(best))
}

func exactMatch(text string, comparisons []string) bool {
	if text == "" {
		return false
	}
	for _, c := range comparisons {
		if c == text {
			return true
		}
	}
	return false
}

// transform saturates strong scores, amplifies weak ones and maps the
// middle band through a logistic curve centred at 0.5.
func transform(score float64) float64 {
	switch {
	case score >= 0.9:
		return 1.0
	case score <= 0.2:
		return score * 1.5
	default:
		return math.Max(0.2, 1/(1+math.Exp(-12*(score-0.5))))
	}
}

// scale maps a [0, 1] score to [0, 5] rounded to two decimals.
func scale(score float64) float64 {
	v := math.Round(score*MaxScore*100) / 100
	return math.Min(math.Max(v, 0), MaxScore)
}
