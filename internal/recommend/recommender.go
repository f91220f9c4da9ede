// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/societyrec/internal/cache"
	"github.com/tomtom215/societyrec/internal/metrics"
)

// Request paths, used as the metrics label.
const (
	pathPersonalized = "personalized"
	pathColdStart    = "cold_start"
	pathPopular      = "popular"
	pathFallback     = "fallback"
)

// Recommender orchestrates scoring, feedback adjustment, diversity-aware
// selection and explanation. It is safe for concurrent use.
type Recommender struct {
	config *Config
	logger zerolog.Logger

	catalog  Catalog
	text     TextSimilarity
	selector Selector

	// Optional collaborators, set before serving.
	booster   SemanticBooster
	feedback  FeedbackAdjuster
	coldStart ColdStarter

	// nil when the response cache is disabled
	responses *cache.TTL[responseKey, []Recommendation]
}

type responseKey struct {
	studentID int
	limit     int
	level     DiversityLevel
}

// NewRecommender creates a Recommender. cfg may be nil for defaults.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRecommender(cfg *Config, catalog Catalog, text TextSimilarity, selector Selector, logger zerolog.Logger) (*Recommender, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if catalog == nil || text == nil || selector == nil {
		return nil, errors.New("catalog, text similarity and selector are required")
	}

	r := &Recommender{
		config:   cfg,
		logger:   logger.With().Str("component", "recommend").Logger(),
		catalog:  catalog,
		text:     text,
		selector: selector,
	}
	if cfg.CacheTTL > 0 {
		r.responses = cache.NewTTL[responseKey, []Recommendation](cfg.CacheTTL, nil)
	}
	return r, nil
}

// SetSemanticBooster enables the identical-description boost term.
func (r *Recommender) SetSemanticBooster(b SemanticBooster) {
	r.booster = b
}

// SetFeedbackAdjuster enables feedback-based score adjustment.
func (r *Recommender) SetFeedbackAdjuster(f FeedbackAdjuster) {
	r.feedback = f
}

// SetColdStarter enables cold-start recommendations for students without
// history.
func (r *Recommender) SetColdStarter(c ColdStarter) {
	r.coldStart = c
}

// Recommend returns up to limit recommendations for a student. Unknown
// students receive popular societies.
func (r *Recommender) Recommend(ctx context.Context, studentID, limit int, level DiversityLevel) ([]Recommendation, error) {
	start := time.Now()
	limit, level = r.normalize(limit, level)

	key := responseKey{studentID: studentID, limit: limit, level: level}
	if recs, ok := r.cachedResponse(key); ok {
		return recs, nil
	}

	student, err := r.catalog.Student(ctx, studentID)
	if err != nil {
		if !errors.Is(err, ErrStudentNotFound) {
			return nil, fmt.Errorf("load student %d: %w", studentID, err)
		}
		r.logger.Debug().Int("student_id", studentID).Msg("unknown student, serving popular societies")
		recs, err := r.popularRecommendations(ctx, limit)
		if err != nil {
			return nil, err
		}
		metrics.RecordRecommendation(pathPopular, time.Since(start))
		return recs, nil
	}

	recs, path, err := r.recommend(ctx, &student, limit, level)
	if err != nil {
		return nil, err
	}
	metrics.RecordRecommendation(path, time.Since(start))

	if r.responses != nil {
		r.responses.Set(key, recs)
	}
	return copyRecommendations(recs), nil
}

// RecommendFor is Recommend for a student value that need not exist in the
// catalog. Results are not cached.
//
//nolint:gocritic // student passed by value so callers can pass modified copies
func (r *Recommender) RecommendFor(ctx context.Context, student Student, limit int, level DiversityLevel) ([]Recommendation, error) {
	start := time.Now()
	limit, level = r.normalize(limit, level)

	recs, path, err := r.recommend(ctx, &student, limit, level)
	if err != nil {
		return nil, err
	}
	metrics.RecordRecommendation(path, time.Since(start))
	return recs, nil
}

func (r *Recommender) recommend(ctx context.Context, student *Student, limit int, level DiversityLevel) ([]Recommendation, string, error) {
	logger := r.logger.With().
		Int("student_id", student.ID).
		Str("diversity", string(level)).
		Logger()

	if !student.HasHistory() {
		return r.recommendWithoutHistory(ctx, student, limit, logger)
	}

	p, err := r.buildProfile(ctx, student)
	if err != nil {
		return nil, "", err
	}

	approved, err := r.catalog.ApprovedSocieties(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("load approved societies: %w", err)
	}

	candidates := make([]Candidate, 0, len(approved))
	details := make(map[int]scoreDetail, len(approved))
	for i := range approved {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		soc := approved[i]
		if !soc.Approved() {
			continue
		}
		if _, joined := p.joinedIDs[soc.ID]; joined {
			continue
		}
		d := r.scoreSociety(ctx, p, &soc)
		details[soc.ID] = d
		candidates = append(candidates, Candidate{Society: soc, Score: d.score})
	}
	metrics.RecommendationCandidates.Observe(float64(len(candidates)))

	if len(candidates) == 0 {
		logger.Debug().Msg("no candidates available")
		return []Recommendation{}, pathPersonalized, nil
	}

	if r.feedback != nil {
		candidates = r.feedback.Apply(ctx, student.ID, candidates)
	}

	scores := make(map[int]float64, len(candidates))
	for _, c := range candidates {
		scores[c.Society.ID] = c.Score
	}

	selected := r.selector.Select(ctx, r.categoryBoosted(p, candidates), limit, level.Lambda())

	recs := make([]Recommendation, 0, len(selected))
	for _, c := range selected {
		recs = append(recs, Recommendation{
			Society:     c.Society,
			Score:       scores[c.Society.ID],
			Explanation: r.explain(p, &c.Society, details[c.Society.ID]),
		})
	}

	logger.Debug().
		Int("candidates", len(candidates)).
		Int("returned", len(recs)).
		Msg("recommendation complete")
	return recs, pathPersonalized, nil
}

// recommendWithoutHistory serves the cold-start handler's picks, falling
// back to popular societies when it is disabled or yields nothing.
// Cold-start results are ordered but carry a zero score.
func (r *Recommender) recommendWithoutHistory(ctx context.Context, student *Student, limit int, logger zerolog.Logger) ([]Recommendation, string, error) {
	path := pathPopular

	if r.config.ColdStartEnabled && r.coldStart != nil {
		societies, err := r.coldStart.InitialRecommendationsFor(ctx, *student, limit)
		switch {
		case err != nil:
			logger.Warn().Err(err).Msg("cold start failed, serving popular societies")
		case len(societies) > 0:
			recs := make([]Recommendation, 0, len(societies))
			for _, soc := range societies {
				recs = append(recs, Recommendation{Society: soc, Explanation: coldStartExplanation})
			}
			return recs, pathColdStart, nil
		}
		path = pathFallback
	}

	recs, err := r.popularRecommendations(ctx, limit)
	if err != nil {
		return nil, "", err
	}
	return recs, path, nil
}

// Explain returns why a society would be recommended to a student. Unknown
// students or societies get a generic explanation.
func (r *Recommender) Explain(ctx context.Context, studentID, societyID int) (Explanation, error) {
	student, err := r.catalog.Student(ctx, studentID)
	if err != nil {
		if errors.Is(err, ErrStudentNotFound) {
			return genericExplanation, nil
		}
		return genericExplanation, fmt.Errorf("load student %d: %w", studentID, err)
	}

	societies, err := r.catalog.Societies(ctx, []int{societyID})
	if err != nil {
		return genericExplanation, fmt.Errorf("load society %d: %w", societyID, err)
	}
	if len(societies) == 0 {
		return genericExplanation, nil
	}

	p, err := r.buildProfile(ctx, &student)
	if err != nil {
		return genericExplanation, err
	}
	soc := societies[0]
	return r.explain(p, &soc, r.scoreSociety(ctx, p, &soc)), nil
}

// UpdateSimilarityModel refits the text corpus on the approved societies'
// descriptions and drops every similarity-derived cache.
func (r *Recommender) UpdateSimilarityModel(ctx context.Context) error {
	approved, err := r.catalog.ApprovedSocieties(ctx)
	if err != nil {
		return fmt.Errorf("load approved societies: %w", err)
	}

	descriptions := make([]string, 0, len(approved))
	for i := range approved {
		if approved[i].Description != "" {
			descriptions = append(descriptions, approved[i].Description)
		}
	}

	if err := r.text.UpdateCorpus(ctx, descriptions); err != nil {
		return fmt.Errorf("update similarity model: %w", err)
	}

	r.selector.Reset()
	if r.responses != nil {
		r.responses.Clear()
	}

	r.logger.Info().Int("descriptions", len(descriptions)).Msg("similarity model updated")
	return nil
}

// InvalidateStudent drops the cached responses of a student and returns how
// many were dropped.
func (r *Recommender) InvalidateStudent(studentID int) int {
	if r.responses == nil {
		return 0
	}
	return r.responses.DeleteFunc(func(k responseKey) bool {
		return k.studentID == studentID
	})
}

func (r *Recommender) cachedResponse(key responseKey) ([]Recommendation, bool) {
	if r.responses == nil {
		return nil, false
	}
	recs, ok := r.responses.Get(key)
	metrics.RecordCacheLookup("responses", ok)
	if !ok {
		return nil, false
	}
	return copyRecommendations(recs), true
}

// normalize applies the default and maximum limit and the default level.
func (r *Recommender) normalize(limit int, level DiversityLevel) (int, DiversityLevel) {
	if limit <= 0 {
		limit = r.config.Limits.DefaultLimit
	}
	if limit > r.config.Limits.MaxLimit {
		limit = r.config.Limits.MaxLimit
	}
	if _, err := ParseDiversityLevel(string(level)); err != nil || level == "" {
		level = r.config.Diversity.DefaultLevel
		if level == "" {
			level = DiversityBalanced
		}
	}
	return limit, level
}

func copyRecommendations(recs []Recommendation) []Recommendation {
	out := make([]Recommendation, len(recs))
	copy(out, recs)
	return out
}
