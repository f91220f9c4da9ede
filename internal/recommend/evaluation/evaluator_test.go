// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package evaluation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/societyrec/internal/cache"
	"github.com/tomtom215/societyrec/internal/recommend"
	"github.com/tomtom215/societyrec/internal/recommend/catalogtest"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newEvalCatalog() *catalogtest.Memory {
	return catalogtest.New(
		[]recommend.Society{
			soc(1, "Sports", 40), soc(2, "Sports", 30), soc(3, "Music", 20),
			soc(4, "Music", 10), soc(5, "Arts", 5), soc(6, "Technology", 1),
		},
		[]recommend.Student{
			{ID: 1, JoinedSocieties: []int{1, 2}},
			{ID: 2, JoinedSocieties: []int{3, 4}},
			{ID: 3, JoinedSocieties: []int{5}},
			{ID: 4},
		},
	)
}

// unjoinedRecommender recommends unjoined societies by ascending ID.
type unjoinedRecommender struct {
	catalog *catalogtest.Memory
	failFor int

	mu     sync.Mutex
	seen   []recommend.Student
	levels []recommend.DiversityLevel
}

//nolint:gocritic // signature fixed by Recommender
func (f *unjoinedRecommender) RecommendFor(ctx context.Context, student recommend.Student, limit int, level recommend.DiversityLevel) ([]recommend.Recommendation, error) {
	f.mu.Lock()
	f.seen = append(f.seen, student)
	f.levels = append(f.levels, level)
	f.mu.Unlock()

	if student.ID == f.failFor {
		return nil, errors.New("scoring failed")
	}

	joined := make(map[int]bool)
	for _, id := range student.JoinedSocieties {
		joined[id] = true
	}
	approved, err := f.catalog.ApprovedSocieties(ctx)
	if err != nil {
		return nil, err
	}
	var recs []recommend.Recommendation
	for _, s := range approved {
		if !joined[s.ID] && len(recs) < limit {
			recs = append(recs, recommend.Recommendation{Society: s})
		}
	}
	return recs, nil
}

type fixedColdStart struct {
	ids  []int
	mu   sync.Mutex
	seen []recommend.Student
}

//nolint:gocritic // signature fixed by recommend.ColdStarter
func (f *fixedColdStart) InitialRecommendationsFor(_ context.Context, student recommend.Student, limit int) ([]recommend.Society, error) {
	f.mu.Lock()
	f.seen = append(f.seen, student)
	f.mu.Unlock()
	return societiesByID(f.ids, limit), nil
}

type fixedPopular struct{ ids []int }

func (f fixedPopular) PopularSocieties(_ context.Context, limit int, _ bool) ([]recommend.Society, error) {
	return societiesByID(f.ids, limit), nil
}

func societiesByID(ids []int, limit int) []recommend.Society {
	out := make([]recommend.Society, 0, len(ids))
	for _, id := range ids {
		if len(out) < limit {
			out = append(out, soc(id, "Category", 0))
		}
	}
	return out
}

func newTestEvaluator(t *testing.T, reportDir string, rec Recommender) *Evaluator {
	t.Helper()
	cfg := DefaultConfig()
	cfg.ReportDir = reportDir
	e := NewEvaluator(cfg, newEvalCatalog(), rec, &fixedColdStart{ids: []int{1, 3}}, fixedPopular{ids: []int{5, 6}}, zerolog.Nop())
	e.SetClock(cache.ClockFunc(func() time.Time { return fixedNow }))
	return e
}

func TestEvaluateRecommender(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := &unjoinedRecommender{catalog: newEvalCatalog()}
	e := newTestEvaluator(t, dir, rec)

	report, err := e.EvaluateRecommender(context.Background(), Options{K: 3})
	if err != nil {
		t.Fatalf("EvaluateRecommender() error = %v", err)
	}

	// Students 1 and 2 qualify; the held-out society is always among the
	// three lowest unjoined IDs.
	if report.Evaluated != 2 || report.Failed != 0 {
		t.Fatalf("evaluated/failed = %d/%d, want 2/0", report.Evaluated, report.Failed)
	}
	if got := report.Metrics[MetricPrecision]; !approxEqual(got, 1.0/3) {
		t.Errorf("precision = %v, want 1/3", got)
	}
	if got := report.Metrics[MetricRecall]; got != 1 {
		t.Errorf("recall = %v, want 1", got)
	}
	if len(report.Metrics) != len(AllMetrics) {
		t.Errorf("metrics = %v, want all %d", report.Metrics, len(AllMetrics))
	}
	for _, r := range report.Results {
		if !r.Hit {
			t.Errorf("student %d missed held-out %d", r.StudentID, r.HeldOut)
		}
	}

	for _, s := range rec.seen {
		if len(s.JoinedSocieties) != 1 {
			t.Errorf("recommender saw student %d with %v, want one membership held out", s.ID, s.JoinedSocieties)
		}
	}
	if s, _ := e.catalog.Student(context.Background(), 1); len(s.JoinedSocieties) != 2 {
		t.Errorf("catalog student modified: %v", s.JoinedSocieties)
	}

	wantPath := filepath.Join(dir, "recommender_20260301_120000.json")
	if report.Path != wantPath {
		t.Fatalf("Path = %q, want %q", report.Path, wantPath)
	}
	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Kind      string             `json:"kind"`
		Evaluated int                `json:"students_evaluated"`
		Metrics   map[string]float64 `json:"metrics"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not JSON: %v", err)
	}
	if decoded.Kind != KindRecommender || decoded.Evaluated != 2 || decoded.Metrics["recall"] != 1 {
		t.Errorf("decoded report = %+v", decoded)
	}
}

func TestEvaluateRecommender_Reproducible(t *testing.T) {
	t.Parallel()

	run := func() []int {
		e := newTestEvaluator(t, "", &unjoinedRecommender{catalog: newEvalCatalog()})
		report, err := e.EvaluateRecommender(context.Background(), Options{K: 2, Metrics: []Metric{MetricRecall}})
		if err != nil {
			t.Fatal(err)
		}
		heldOut := make([]int, len(report.Results))
		for i, r := range report.Results {
			heldOut[i] = r.HeldOut
		}
		return heldOut
	}

	first, second := run(), run()
	if len(first) != 2 || first[0] != second[0] || first[1] != second[1] {
		t.Errorf("held-out societies differ across seeded runs: %v vs %v", first, second)
	}
}

func TestEvaluateRecommender_StudentSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts Options
		want int
	}{
		{"explicit students", Options{StudentIDs: []int{2, 99}}, 1},
		{"sampled", Options{MaxStudents: 1}, 1},
		{"lower threshold", Options{MinMemberships: 1}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := newTestEvaluator(t, "", &unjoinedRecommender{catalog: newEvalCatalog()})
			report, err := e.EvaluateRecommender(context.Background(), tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if report.Evaluated != tt.want {
				t.Errorf("evaluated = %d, want %d", report.Evaluated, tt.want)
			}
		})
	}
}

func TestEvaluateRecommender_SkipsFailures(t *testing.T) {
	t.Parallel()

	e := newTestEvaluator(t, "", &unjoinedRecommender{catalog: newEvalCatalog(), failFor: 2})
	report, err := e.EvaluateRecommender(context.Background(), Options{K: 3})
	if err != nil {
		t.Fatalf("EvaluateRecommender() error = %v", err)
	}
	if report.Evaluated != 1 || report.Failed != 1 {
		t.Errorf("evaluated/failed = %d/%d, want 1/1", report.Evaluated, report.Failed)
	}
}

func TestEvaluateRecommender_InvalidLevel(t *testing.T) {
	t.Parallel()

	e := newTestEvaluator(t, "", &unjoinedRecommender{catalog: newEvalCatalog()})
	if _, err := e.EvaluateRecommender(context.Background(), Options{Level: "extreme"}); err == nil {
		t.Error("EvaluateRecommender() error = nil, want invalid level error")
	}
}

func TestEvaluateRecommender_WriteFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	// A regular file where the report directory should be.
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	e := newTestEvaluator(t, blocker, &unjoinedRecommender{catalog: newEvalCatalog()})
	report, err := e.EvaluateRecommender(context.Background(), Options{})
	if err != nil {
		t.Fatalf("EvaluateRecommender() error = %v, want write failure swallowed", err)
	}
	if report.Path != "" {
		t.Errorf("Path = %q, want empty after a failed write", report.Path)
	}
}

func TestEvaluateColdStart(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	e := newTestEvaluator(t, dir, &unjoinedRecommender{catalog: newEvalCatalog()})

	report, err := e.EvaluateColdStart(context.Background(), Options{K: 2})
	if err != nil {
		t.Fatalf("EvaluateColdStart() error = %v", err)
	}
	if report.Evaluated != 3 {
		t.Fatalf("evaluated = %d, want 3", report.Evaluated)
	}

	// Cold start hits students 1 and 2; popularity hits student 3 only.
	checks := []struct {
		name      string
		got, want float64
	}{
		{"cold start precision", report.ColdStart.Precision, 1.0 / 3},
		{"cold start recall", report.ColdStart.Recall, 1.0 / 3},
		{"cold start hit rate", report.ColdStart.HitRate, 2.0 / 3},
		{"popularity precision", report.Popularity.Precision, 1.0 / 6},
		{"popularity recall", report.Popularity.Recall, 1.0 / 3},
		{"popularity hit rate", report.Popularity.HitRate, 1.0 / 3},
		{"precision improvement", report.Improvement.Precision, 1.0 / 6},
		{"recall improvement", report.Improvement.Recall, 0},
	}
	for _, c := range checks {
		if !approxEqual(c.got, c.want) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	cold := e.coldStart.(*fixedColdStart)
	for _, s := range cold.seen {
		if len(s.JoinedSocieties) != 0 {
			t.Errorf("cold start saw student %d with memberships %v", s.ID, s.JoinedSocieties)
		}
	}

	if want := filepath.Join(dir, "cold_start_20260301_120000.json"); report.Path != want {
		t.Errorf("Path = %q, want %q", report.Path, want)
	}
}

func TestEvaluateColdStart_RequiresSources(t *testing.T) {
	t.Parallel()

	e := NewEvaluator(DefaultConfig(), newEvalCatalog(), &unjoinedRecommender{catalog: newEvalCatalog()}, nil, nil, zerolog.Nop())
	if _, err := e.EvaluateColdStart(context.Background(), Options{}); err == nil {
		t.Error("EvaluateColdStart() error = nil, want missing source error")
	}
}

func TestEvaluateDiversityVsRelevance(t *testing.T) {
	t.Parallel()

	rec := &unjoinedRecommender{catalog: newEvalCatalog()}
	e := newTestEvaluator(t, t.TempDir(), rec)

	report, err := e.EvaluateDiversityVsRelevance(context.Background(), Options{K: 3})
	if err != nil {
		t.Fatalf("EvaluateDiversityVsRelevance() error = %v", err)
	}

	if len(report.Levels) != len(recommend.DiversityLevels) {
		t.Fatalf("levels = %d, want %d", len(report.Levels), len(recommend.DiversityLevels))
	}
	for i, lr := range report.Levels {
		if lr.Level != recommend.DiversityLevels[i] || lr.Lambda != lr.Level.Lambda() {
			t.Errorf("levels[%d] = %s (%v)", i, lr.Level, lr.Lambda)
		}
		if lr.Evaluated != 2 || !approxEqual(lr.Precision, 1.0/3) {
			t.Errorf("levels[%d] evaluated %d precision %v, want 2 and 1/3", i, lr.Evaluated, lr.Precision)
		}
	}

	counts := make(map[recommend.DiversityLevel]int)
	for _, l := range rec.levels {
		counts[l]++
	}
	for _, level := range recommend.DiversityLevels {
		if counts[level] != 2 {
			t.Errorf("recommender called %d times at %s, want 2", counts[level], level)
		}
	}
	if report.Path == "" {
		t.Error("trade-off report was not written")
	}
}
