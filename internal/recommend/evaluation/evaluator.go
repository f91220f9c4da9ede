// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

// Package evaluation measures recommendation quality offline.
//
// Three evaluations are provided:
//
//   - EvaluateRecommender: leave-one-out holdout. One joined society per
//     test student is hidden, the recommender is asked for k societies from
//     the remaining memberships, and the list is scored.
//   - EvaluateColdStart: every membership is hidden and the cold-start
//     handler is compared against plain popularity.
//   - EvaluateDiversityVsRelevance: the holdout is repeated at each
//     diversity level to chart the precision and diversity trade-off.
//
// The evaluator never mutates the catalog: held-out students are modified
// copies passed to RecommendFor. Held-out societies are chosen with a
// seeded generator so runs are reproducible.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/societyrec/internal/cache"
	"github.com/tomtom215/societyrec/internal/metrics"
	"github.com/tomtom215/societyrec/internal/recommend"
)

// Evaluation kinds, used in report names and metrics.
const (
	KindRecommender = "recommender"
	KindColdStart   = "cold_start"
	KindTradeoff    = "diversity_tradeoff"
)

// Recommender produces recommendations for a student value.
type Recommender interface {
	RecommendFor(ctx context.Context, student recommend.Student, limit int, level recommend.DiversityLevel) ([]recommend.Recommendation, error)
}

// PopularSource ranks societies by popularity.
type PopularSource interface {
	PopularSocieties(ctx context.Context, limit int, withRecentBoost bool) ([]recommend.Society, error)
}

// Config holds evaluation defaults.
type Config struct {
	// ReportDir receives JSON reports. Empty disables writing.
	ReportDir string `json:"report_dir"`

	// K is the default recommendation list size.
	K int `json:"k"`

	// MinMemberships is the default membership threshold for holdout
	// students.
	MinMemberships int `json:"min_memberships"`

	// Seed drives held-out society and student sampling.
	Seed int64 `json:"seed"`
}

// DefaultConfig returns the standard evaluation settings.
func DefaultConfig() Config {
	return Config{
		ReportDir:      "evaluation_results",
		K:              5,
		MinMemberships: 2,
		Seed:           42,
	}
}

// Options selects what an evaluation covers. Zero values use Config.
type Options struct {
	K int

	// StudentIDs restricts the run to these students.
	StudentIDs []int

	// MaxStudents samples at most this many students; 0 means all.
	MaxStudents int

	MinMemberships int

	Metrics []Metric

	Level recommend.DiversityLevel
}

// Evaluator runs offline evaluations. It is not used on request paths.
type Evaluator struct {
	cfg       Config
	catalog   recommend.Catalog
	rec       Recommender
	coldStart recommend.ColdStarter
	popular   PopularSource
	clock     cache.Clock
	logger    zerolog.Logger
}

// NewEvaluator creates an Evaluator. coldStart and popular are only needed
// by EvaluateColdStart.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEvaluator(cfg Config, catalog recommend.Catalog, rec Recommender, coldStart recommend.ColdStarter, popular PopularSource, logger zerolog.Logger) *Evaluator {
	def := DefaultConfig()
	if cfg.K <= 0 {
		cfg.K = def.K
	}
	if cfg.MinMemberships <= 0 {
		cfg.MinMemberships = def.MinMemberships
	}
	return &Evaluator{
		cfg:       cfg,
		catalog:   catalog,
		rec:       rec,
		coldStart: coldStart,
		popular:   popular,
		clock:     cache.SystemClock{},
		logger:    logger.With().Str("component", "evaluation").Logger(),
	}
}

// SetClock replaces the clock used for report timestamps.
func (e *Evaluator) SetClock(c cache.Clock) {
	e.clock = c
}

// StudentResult is one student's holdout outcome.
type StudentResult struct {
	StudentID int                `json:"student_id"`
	HeldOut   int                `json:"held_out_society_id"`
	Hit       bool               `json:"hit"`
	Metrics   map[Metric]float64 `json:"metrics"`
}

// Report is the result of EvaluateRecommender.
type Report struct {
	Kind        string                   `json:"kind"`
	GeneratedAt time.Time                `json:"generated_at"`
	K           int                      `json:"k"`
	Level       recommend.DiversityLevel `json:"diversity_level"`
	Evaluated   int                      `json:"students_evaluated"`
	Failed      int                      `json:"students_failed"`
	Metrics     map[Metric]float64       `json:"metrics"`
	Results     []StudentResult          `json:"results"`

	// Path is where the report was written, empty when it was not.
	Path string `json:"-"`
}

// EvaluateRecommender runs the leave-one-out holdout.
func (e *Evaluator) EvaluateRecommender(ctx context.Context, opts Options) (*Report, error) {
	opts, err := e.resolve(opts)
	if err != nil {
		return nil, err
	}
	metrics.EvaluationRuns.WithLabelValues(KindRecommender).Inc()

	report, err := e.holdout(ctx, KindRecommender, &opts)
	if err != nil {
		return nil, err
	}
	report.Path = e.writeReport(KindRecommender, report.GeneratedAt, report)

	e.logger.Info().
		Int("evaluated", report.Evaluated).
		Int("failed", report.Failed).
		Interface("metrics", report.Metrics).
		Msg("recommender evaluation complete")
	return report, nil
}

func (e *Evaluator) holdout(ctx context.Context, kind string, opts *Options) (*Report, error) {
	approved, err := e.catalog.ApprovedSocieties(ctx)
	if err != nil {
		return nil, fmt.Errorf("load approved societies: %w", err)
	}
	pop := newPopularityIndex(approved)

	rng := rand.New(rand.NewSource(e.cfg.Seed)) //nolint:gosec // math/rand is fine for reproducible sampling
	students, err := e.testStudents(ctx, opts, rng)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Kind:        kind,
		GeneratedAt: e.clock.Now().UTC(),
		K:           opts.K,
		Level:       opts.Level,
		Metrics:     make(map[Metric]float64, len(opts.Metrics)),
		Results:     make([]StudentResult, 0, len(students)),
	}

	for i := range students {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		student := students[i]
		heldOut := student.JoinedSocieties[rng.Intn(len(student.JoinedSocieties))]

		trial, err := e.trial(ctx, &student, heldOut, opts)
		if err != nil {
			report.Failed++
			metrics.EvaluationFailures.WithLabelValues(kind).Inc()
			e.logger.Warn().Err(err).Int("student_id", student.ID).Msg("skipping student")
			continue
		}

		result := StudentResult{
			StudentID: student.ID,
			HeldOut:   heldOut,
			Hit:       trial.hit(),
			Metrics:   make(map[Metric]float64, len(opts.Metrics)),
		}
		for _, m := range opts.Metrics {
			v := trial.compute(m, pop)
			result.Metrics[m] = v
			report.Metrics[m] += v
		}
		report.Results = append(report.Results, result)
	}

	report.Evaluated = len(report.Results)
	if report.Evaluated > 0 {
		for m := range report.Metrics {
			report.Metrics[m] /= float64(report.Evaluated)
		}
	}
	return report, nil
}

// trial recommends for a copy of student without heldOut.
func (e *Evaluator) trial(ctx context.Context, student *recommend.Student, heldOut int, opts *Options) (*holdoutCase, error) {
	stripped := *student
	stripped.JoinedSocieties = make([]int, 0, len(student.JoinedSocieties)-1)
	for _, id := range student.JoinedSocieties {
		if id != heldOut {
			stripped.JoinedSocieties = append(stripped.JoinedSocieties, id)
		}
	}

	recs, err := e.rec.RecommendFor(ctx, stripped, opts.K, opts.Level)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	history, err := e.catalog.Societies(ctx, stripped.JoinedSocieties)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	c := &holdoutCase{
		recs:    make([]recommend.Society, len(recs)),
		heldOut: heldOut,
		k:       opts.K,
		history: make([]string, len(history)),
	}
	for i := range recs {
		c.recs[i] = recs[i].Society
	}
	for i := range history {
		c.history[i] = history[i].Category
	}
	return c, nil
}

// ColdStartReport is the result of EvaluateColdStart.
type ColdStartReport struct {
	Kind        string     `json:"kind"`
	GeneratedAt time.Time  `json:"generated_at"`
	K           int        `json:"k"`
	Evaluated   int        `json:"students_evaluated"`
	Failed      int        `json:"students_failed"`
	ColdStart   SetMetrics `json:"cold_start"`
	Popularity  SetMetrics `json:"popularity"`

	// Improvement is ColdStart minus Popularity.
	Improvement SetMetrics `json:"improvement"`

	Path string `json:"-"`
}

// EvaluateColdStart hides all memberships of each test student and scores
// the cold-start handler and the popularity baseline against them.
func (e *Evaluator) EvaluateColdStart(ctx context.Context, opts Options) (*ColdStartReport, error) {
	if e.coldStart == nil || e.popular == nil {
		return nil, errors.New("cold start evaluation needs a cold-start handler and a popularity source")
	}
	if opts.MinMemberships <= 0 {
		opts.MinMemberships = 1
	}
	opts, err := e.resolve(opts)
	if err != nil {
		return nil, err
	}
	metrics.EvaluationRuns.WithLabelValues(KindColdStart).Inc()

	rng := rand.New(rand.NewSource(e.cfg.Seed)) //nolint:gosec // math/rand is fine for reproducible sampling
	students, err := e.testStudents(ctx, &opts, rng)
	if err != nil {
		return nil, err
	}

	report := &ColdStartReport{
		Kind:        KindColdStart,
		GeneratedAt: e.clock.Now().UTC(),
		K:           opts.K,
	}

	for i := range students {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cold, pop, err := e.coldStartTrial(ctx, &students[i], opts.K)
		if err != nil {
			report.Failed++
			metrics.EvaluationFailures.WithLabelValues(KindColdStart).Inc()
			e.logger.Warn().Err(err).Int("student_id", students[i].ID).Msg("skipping student")
			continue
		}
		report.ColdStart.add(&cold)
		report.Popularity.add(&pop)
		report.Evaluated++
	}

	if report.Evaluated > 0 {
		f := 1 / float64(report.Evaluated)
		report.ColdStart.scale(f)
		report.Popularity.scale(f)
	}
	report.Improvement = report.ColdStart.minus(&report.Popularity)
	report.Path = e.writeReport(KindColdStart, report.GeneratedAt, report)

	e.logger.Info().
		Int("evaluated", report.Evaluated).
		Float64("cold_start_precision", report.ColdStart.Precision).
		Float64("popularity_precision", report.Popularity.Precision).
		Msg("cold start evaluation complete")
	return report, nil
}

func (e *Evaluator) coldStartTrial(ctx context.Context, student *recommend.Student, k int) (SetMetrics, SetMetrics, error) {
	relevant := make(map[int]struct{}, len(student.JoinedSocieties))
	for _, id := range student.JoinedSocieties {
		relevant[id] = struct{}{}
	}

	stripped := *student
	stripped.JoinedSocieties = nil
	stripped.AttendedEvents = nil

	cold, err := e.coldStart.InitialRecommendationsFor(ctx, stripped, k)
	if err != nil {
		return SetMetrics{}, SetMetrics{}, fmt.Errorf("cold start: %w", err)
	}
	pop, err := e.popular.PopularSocieties(ctx, k, true)
	if err != nil {
		return SetMetrics{}, SetMetrics{}, fmt.Errorf("popular: %w", err)
	}
	return scoreAgainst(cold, relevant, k), scoreAgainst(pop, relevant, k), nil
}

// LevelResult is the holdout outcome at one diversity level.
type LevelResult struct {
	Level     recommend.DiversityLevel `json:"level"`
	Lambda    float64                  `json:"lambda"`
	Precision float64                  `json:"precision"`
	Diversity float64                  `json:"diversity"`
	Evaluated int                      `json:"students_evaluated"`
	Failed    int                      `json:"students_failed"`
}

// TradeoffReport is the result of EvaluateDiversityVsRelevance.
type TradeoffReport struct {
	Kind        string        `json:"kind"`
	GeneratedAt time.Time     `json:"generated_at"`
	K           int           `json:"k"`
	Levels      []LevelResult `json:"levels"`

	Path string `json:"-"`
}

// EvaluateDiversityVsRelevance repeats the holdout at every diversity
// level. Each level sees the same students and held-out societies.
func (e *Evaluator) EvaluateDiversityVsRelevance(ctx context.Context, opts Options) (*TradeoffReport, error) {
	opts.Metrics = []Metric{MetricPrecision, MetricDiversity}
	opts, err := e.resolve(opts)
	if err != nil {
		return nil, err
	}
	metrics.EvaluationRuns.WithLabelValues(KindTradeoff).Inc()

	report := &TradeoffReport{
		Kind:        KindTradeoff,
		GeneratedAt: e.clock.Now().UTC(),
		K:           opts.K,
		Levels:      make([]LevelResult, 0, len(recommend.DiversityLevels)),
	}

	for _, level := range recommend.DiversityLevels {
		levelOpts := opts
		levelOpts.Level = level
		r, err := e.holdout(ctx, KindTradeoff, &levelOpts)
		if err != nil {
			return nil, fmt.Errorf("diversity level %s: %w", level, err)
		}
		report.Levels = append(report.Levels, LevelResult{
			Level:     level,
			Lambda:    level.Lambda(),
			Precision: r.Metrics[MetricPrecision],
			Diversity: r.Metrics[MetricDiversity],
			Evaluated: r.Evaluated,
			Failed:    r.Failed,
		})
	}
	report.Path = e.writeReport(KindTradeoff, report.GeneratedAt, report)

	e.logger.Info().Int("levels", len(report.Levels)).Msg("diversity trade-off evaluation complete")
	return report, nil
}

// resolve fills option defaults from the config.
func (e *Evaluator) resolve(opts Options) (Options, error) {
	if opts.K <= 0 {
		opts.K = e.cfg.K
	}
	if opts.MinMemberships <= 0 {
		opts.MinMemberships = e.cfg.MinMemberships
	}
	if opts.Level == "" {
		opts.Level = recommend.DiversityBalanced
	}
	if _, err := recommend.ParseDiversityLevel(string(opts.Level)); err != nil {
		return opts, err
	}
	if len(opts.Metrics) == 0 {
		opts.Metrics = AllMetrics
	}
	return opts, nil
}

// testStudents returns the students eligible for a run, sampled down to
// MaxStudents.
func (e *Evaluator) testStudents(ctx context.Context, opts *Options, rng *rand.Rand) ([]recommend.Student, error) {
	var students []recommend.Student
	if len(opts.StudentIDs) > 0 {
		for _, id := range opts.StudentIDs {
			s, err := e.catalog.Student(ctx, id)
			if err != nil {
				if errors.Is(err, recommend.ErrStudentNotFound) {
					e.logger.Warn().Int("student_id", id).Msg("evaluation student not found")
					continue
				}
				return nil, fmt.Errorf("load student %d: %w", id, err)
			}
			students = append(students, s)
		}
	} else {
		all, err := e.catalog.Students(ctx)
		if err != nil {
			return nil, fmt.Errorf("load students: %w", err)
		}
		students = all
	}

	eligible := students[:0]
	for i := range students {
		if len(students[i].JoinedSocieties) >= opts.MinMemberships {
			eligible = append(eligible, students[i])
		}
	}

	if opts.MaxStudents > 0 && len(eligible) > opts.MaxStudents {
		rng.Shuffle(len(eligible), func(i, j int) {
			eligible[i], eligible[j] = eligible[j], eligible[i]
		})
		eligible = eligible[:opts.MaxStudents]
	}
	return eligible, nil
}
