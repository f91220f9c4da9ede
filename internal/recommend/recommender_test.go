// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package recommend_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/societyrec/internal/recommend"
	"github.com/tomtom215/societyrec/internal/recommend/catalogtest"
	"github.com/tomtom215/societyrec/internal/recommend/reranking"
	"github.com/tomtom215/societyrec/internal/recommend/semantic"
	"github.com/tomtom215/societyrec/internal/recommend/textsim"
)

// fakeText scores candidate texts from a fixed table.
type fakeText struct {
	mu     sync.Mutex
	sims   map[string]float64
	corpus []string
	err    error
}

func (f *fakeText) Similarity(_ context.Context, text string, _ []string) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sims[text]
}

func (f *fakeText) UpdateCorpus(_ context.Context, descriptions []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.corpus = append([]string(nil), descriptions...)
	return nil
}

type countingSelector struct {
	*reranking.MMR
	resets atomic.Int32
}

func (s *countingSelector) Reset() {
	s.resets.Add(1)
	s.MMR.Reset()
}

type countingCatalog struct {
	*catalogtest.Memory
	studentCalls atomic.Int32
}

func (c *countingCatalog) Student(ctx context.Context, id int) (recommend.Student, error) {
	c.studentCalls.Add(1)
	return c.Memory.Student(ctx, id)
}

type fixedColdStart struct {
	societies []recommend.Society
	err       error
}

//nolint:gocritic // signature fixed by recommend.ColdStarter
func (f fixedColdStart) InitialRecommendationsFor(context.Context, recommend.Student, int) ([]recommend.Society, error) {
	return f.societies, f.err
}

// boostOne multiplies one society's score by ten.
type boostOne struct{ id int }

func (b boostOne) Apply(_ context.Context, _ int, candidates []recommend.Candidate) []recommend.Candidate {
	out := make([]recommend.Candidate, len(candidates))
	copy(out, candidates)
	for i := range out {
		if out[i].Society.ID == b.id {
			out[i].Score *= 10
		}
	}
	return out
}

type constBooster float64

func (c constBooster) Boost(string, string) float64 { return float64(c) }

func society(id int, category string, tags []string, desc string, members int) recommend.Society {
	return recommend.Society{
		ID:          id,
		Name:        category + " society",
		Category:    category,
		Tags:        tags,
		Description: desc,
		Status:      recommend.StatusApproved,
		MemberCount: members,
	}
}

// newScoringCatalog builds a catalog where student 1 joined a Sports
// society and attended an event hosted by an Arts society.
func newScoringCatalog() *catalogtest.Memory {
	painting := society(3, "Arts", nil, "", 10)
	painting.RecentEventCount = 5

	gallery := society(6, "Arts", nil, "gallery desc", 100)
	gallery.Status = "Pending"

	return catalogtest.New(
		[]recommend.Society{
			society(1, "Sports", []string{"team", "contact"}, "rugby desc", 40),
			society(2, "Sports", []string{"team", "outdoor"}, "football desc", 30),
			painting,
			society(4, "Music", []string{"TEAM "}, "", 20),
			society(5, "Music", nil, "orchestra desc", 5),
			gallery,
		},
		[]recommend.Student{
			{ID: 1, JoinedSocieties: []int{1}, AttendedEvents: []recommend.Event{{ID: 1, SocietyID: 6}}},
			{ID: 2},
		},
	)
}

func newTestRecommender(t *testing.T, cfg *recommend.Config, catalog recommend.Catalog, text recommend.TextSimilarity) (*recommend.Recommender, *countingSelector) {
	t.Helper()
	sel := &countingSelector{MMR: reranking.NewMMR(nil)}
	r, err := recommend.NewRecommender(cfg, catalog, text, sel, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRecommender() error = %v", err)
	}
	return r, sel
}

func scoringText() *fakeText {
	return &fakeText{sims: map[string]float64{"orchestra desc": 3.0}}
}

func byID(recs []recommend.Recommendation) map[int]recommend.Recommendation {
	out := make(map[int]recommend.Recommendation, len(recs))
	for _, r := range recs {
		out[r.Society.ID] = r
	}
	return out
}

func TestNewRecommender_RequiresDependencies(t *testing.T) {
	t.Parallel()

	catalog := newScoringCatalog()
	sel := reranking.NewMMR(nil)
	if _, err := recommend.NewRecommender(nil, nil, scoringText(), sel, zerolog.Nop()); err == nil {
		t.Error("NewRecommender() without catalog: error = nil")
	}
	if _, err := recommend.NewRecommender(nil, catalog, nil, sel, zerolog.Nop()); err == nil {
		t.Error("NewRecommender() without text similarity: error = nil")
	}

	bad := recommend.DefaultConfig()
	bad.Limits.MaxLimit = 0
	if _, err := recommend.NewRecommender(bad, catalog, scoringText(), sel, zerolog.Nop()); err == nil {
		t.Error("NewRecommender() with invalid config: error = nil")
	}
}

func TestRecommend_ScoresAndExplanations(t *testing.T) {
	t.Parallel()

	r, _ := newTestRecommender(t, nil, newScoringCatalog(), scoringText())
	recs, err := r.Recommend(context.Background(), 1, 10, recommend.DiversityLow)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	tests := []struct {
		id      int
		score   float64
		explain recommend.ExplanationType
	}{
		{2, 5.0, recommend.ExplanationCategoryMatch},     // category + one shared tag
		{3, 2.4, recommend.ExplanationDiversity},         // event category, recent events
		{4, 2.0, recommend.ExplanationTagMatch},          // tag matched case-insensitively
		{5, 4.5, recommend.ExplanationContentSimilarity}, // similarity 3.0
	}

	got := byID(recs)
	if len(got) != len(tests) {
		t.Fatalf("Recommend() returned %d societies, want %d", len(got), len(tests))
	}
	for _, tt := range tests {
		rec, ok := got[tt.id]
		if !ok {
			t.Errorf("society %d missing", tt.id)
			continue
		}
		if math.Abs(rec.Score-tt.score) > 1e-9 {
			t.Errorf("society %d score = %v, want %v", tt.id, rec.Score, tt.score)
		}
		if rec.Explanation.Type != tt.explain {
			t.Errorf("society %d explanation = %q, want %q", tt.id, rec.Explanation.Type, tt.explain)
		}
	}
	if msg := got[4].Explanation.Message; msg != "Shares interests with your societies: TEAM " {
		t.Errorf("tag explanation = %q", msg)
	}
}

func TestRecommend_NeverReturnsJoinedOrTooMany(t *testing.T) {
	t.Parallel()

	r, _ := newTestRecommender(t, nil, newScoringCatalog(), scoringText())

	for _, level := range recommend.DiversityLevels {
		for _, limit := range []int{1, 2, 3, 4, 10} {
			recs, err := r.Recommend(context.Background(), 1, limit, level)
			if err != nil {
				t.Fatalf("Recommend(%d, %s) error = %v", limit, level, err)
			}
			if want := min(limit, 4); len(recs) != want {
				t.Errorf("Recommend(%d, %s) returned %d, want %d", limit, level, len(recs), want)
			}
			seen := make(map[int]bool)
			for _, rec := range recs {
				switch {
				case rec.Society.ID == 1:
					t.Errorf("Recommend(%d, %s) returned joined society 1", limit, level)
				case rec.Society.ID == 6:
					t.Errorf("Recommend(%d, %s) returned unapproved society 6", limit, level)
				case seen[rec.Society.ID]:
					t.Errorf("Recommend(%d, %s) returned society %d twice", limit, level, rec.Society.ID)
				}
				seen[rec.Society.ID] = true
			}
		}
	}
}

func TestRecommend_IdenticalDescriptionBoost(t *testing.T) {
	t.Parallel()

	cfg := recommend.DefaultConfig()
	cfg.IdenticalDescriptionBoost = true
	r, _ := newTestRecommender(t, cfg, newScoringCatalog(), scoringText())
	r.SetSemanticBooster(constBooster(0.5))

	recs, err := r.Recommend(context.Background(), 1, 10, recommend.DiversityLow)
	if err != nil {
		t.Fatal(err)
	}
	// Student 1 has a single joined description, so the boost applies to
	// every candidate with a description.
	got := byID(recs)
	if s := got[2].Score; math.Abs(s-6.5) > 1e-9 {
		t.Errorf("society 2 score = %v, want 6.5", s)
	}
	if s := got[4].Score; math.Abs(s-2.0) > 1e-9 {
		t.Errorf("society 4 without description score = %v, want 2.0", s)
	}
}

func TestRecommend_FeedbackAdjustsScores(t *testing.T) {
	t.Parallel()

	r, _ := newTestRecommender(t, nil, newScoringCatalog(), scoringText())
	r.SetFeedbackAdjuster(boostOne{id: 3})

	recs, err := r.Recommend(context.Background(), 1, 2, recommend.DiversityLow)
	if err != nil {
		t.Fatal(err)
	}
	if recs[0].Society.ID != 3 || math.Abs(recs[0].Score-24) > 1e-9 {
		t.Errorf("first recommendation = %d (%v), want society 3 with score 24", recs[0].Society.ID, recs[0].Score)
	}
}

func TestRecommend_UnknownStudentGetsPopular(t *testing.T) {
	t.Parallel()

	r, _ := newTestRecommender(t, nil, newScoringCatalog(), scoringText())
	recs, err := r.Recommend(context.Background(), 99, 3, "")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	// 2*members + 5*recent events: 80, 60, 45
	wantIDs := []int{1, 2, 3}
	wantScores := []float64{80, 60, 45}
	if len(recs) != len(wantIDs) {
		t.Fatalf("Recommend() returned %d, want %d", len(recs), len(wantIDs))
	}
	for i := range wantIDs {
		if recs[i].Society.ID != wantIDs[i] || recs[i].Score != wantScores[i] {
			t.Errorf("recs[%d] = %d (%v), want %d (%v)", i, recs[i].Society.ID, recs[i].Score, wantIDs[i], wantScores[i])
		}
		if recs[i].Explanation.Type != recommend.ExplanationGeneric {
			t.Errorf("recs[%d] explanation = %q, want generic", i, recs[i].Explanation.Type)
		}
	}
}

func TestRecommend_WithoutHistory(t *testing.T) {
	t.Parallel()

	picks := []recommend.Society{society(5, "Music", nil, "", 5), society(3, "Arts", nil, "", 10)}

	tests := []struct {
		name      string
		enabled   bool
		coldStart recommend.ColdStarter
		wantFirst int
		wantScore float64
	}{
		{"cold start picks", true, fixedColdStart{societies: picks}, 5, 0},
		{"empty cold start falls back", true, fixedColdStart{}, 1, 80},
		{"failed cold start falls back", true, fixedColdStart{err: errors.New("boom")}, 1, 80},
		{"cold start disabled", false, fixedColdStart{societies: picks}, 1, 80},
		{"no cold starter", true, nil, 1, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := recommend.DefaultConfig()
			cfg.ColdStartEnabled = tt.enabled
			r, _ := newTestRecommender(t, cfg, newScoringCatalog(), scoringText())
			if tt.coldStart != nil {
				r.SetColdStarter(tt.coldStart)
			}

			recs, err := r.Recommend(context.Background(), 2, 5, "")
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			if len(recs) == 0 || recs[0].Society.ID != tt.wantFirst || recs[0].Score != tt.wantScore {
				t.Fatalf("Recommend() = %+v, want society %d first with score %v", recs, tt.wantFirst, tt.wantScore)
			}
		})
	}
}

func TestRecommend_ResponseCache(t *testing.T) {
	t.Parallel()

	catalog := &countingCatalog{Memory: newScoringCatalog()}
	r, sel := newTestRecommender(t, nil, catalog, scoringText())
	ctx := context.Background()

	first, err := r.Recommend(ctx, 1, 3, recommend.DiversityLow)
	if err != nil {
		t.Fatal(err)
	}
	first[0].Score = -1 // must not leak into the cache

	second, err := r.Recommend(ctx, 1, 3, recommend.DiversityLow)
	if err != nil {
		t.Fatal(err)
	}
	if calls := catalog.studentCalls.Load(); calls != 1 {
		t.Errorf("student lookups = %d, want 1 with a cached response", calls)
	}
	if second[0].Score == -1 {
		t.Error("cached response was mutated through a returned slice")
	}

	if _, err := r.Recommend(ctx, 1, 3, recommend.DiversityHigh); err != nil {
		t.Fatal(err)
	}
	if calls := catalog.studentCalls.Load(); calls != 2 {
		t.Errorf("student lookups = %d, want 2 for a different level", calls)
	}

	if n := r.InvalidateStudent(1); n != 2 {
		t.Errorf("InvalidateStudent() = %d, want 2", n)
	}
	if n := r.InvalidateStudent(1); n != 0 {
		t.Errorf("second InvalidateStudent() = %d, want 0", n)
	}

	if _, err := r.Recommend(ctx, 1, 3, recommend.DiversityLow); err != nil {
		t.Fatal(err)
	}
	if err := r.UpdateSimilarityModel(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Recommend(ctx, 1, 3, recommend.DiversityLow); err != nil {
		t.Fatal(err)
	}
	if calls := catalog.studentCalls.Load(); calls != 4 {
		t.Errorf("student lookups = %d, want 4 after a corpus refit", calls)
	}
	if sel.resets.Load() != 1 {
		t.Errorf("selector resets = %d, want 1", sel.resets.Load())
	}
}

func TestRecommend_CacheDisabled(t *testing.T) {
	t.Parallel()

	cfg := recommend.DefaultConfig()
	cfg.CacheTTL = 0
	catalog := &countingCatalog{Memory: newScoringCatalog()}
	r, _ := newTestRecommender(t, cfg, catalog, scoringText())

	for i := 0; i < 3; i++ {
		if _, err := r.Recommend(context.Background(), 1, 3, ""); err != nil {
			t.Fatal(err)
		}
	}
	if calls := catalog.studentCalls.Load(); calls != 3 {
		t.Errorf("student lookups = %d, want 3 without a cache", calls)
	}
	if n := r.InvalidateStudent(1); n != 0 {
		t.Errorf("InvalidateStudent() = %d, want 0", n)
	}
}

func TestRecommend_CatalogError(t *testing.T) {
	t.Parallel()

	catalog := newScoringCatalog()
	catalog.Err = errors.New("database is locked")
	r, _ := newTestRecommender(t, nil, catalog, scoringText())

	if _, err := r.Recommend(context.Background(), 1, 5, ""); err == nil {
		t.Error("Recommend() error = nil, want catalog error")
	}
}

func TestRecommendFor_UsesStudentValue(t *testing.T) {
	t.Parallel()

	r, _ := newTestRecommender(t, nil, newScoringCatalog(), scoringText())
	student := recommend.Student{ID: 42, JoinedSocieties: []int{5}}

	recs, err := r.RecommendFor(context.Background(), student, 10, recommend.DiversityLow)
	if err != nil {
		t.Fatal(err)
	}
	got := byID(recs)
	if _, ok := got[5]; ok {
		t.Error("RecommendFor() returned the joined society")
	}
	if got[4].Explanation.Type != recommend.ExplanationCategoryMatch {
		t.Errorf("society 4 explanation = %q, want category match", got[4].Explanation.Type)
	}
}

func TestExplain(t *testing.T) {
	t.Parallel()

	r, _ := newTestRecommender(t, nil, newScoringCatalog(), scoringText())

	tests := []struct {
		name      string
		studentID int
		societyID int
		want      recommend.ExplanationType
	}{
		{"category", 1, 2, recommend.ExplanationCategoryMatch},
		{"tags", 1, 4, recommend.ExplanationTagMatch},
		{"content", 1, 5, recommend.ExplanationContentSimilarity},
		{"diversity", 1, 3, recommend.ExplanationDiversity},
		{"no history", 2, 2, recommend.ExplanationGeneric},
		{"unknown student", 99, 2, recommend.ExplanationGeneric},
		{"unknown society", 1, 999, recommend.ExplanationGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := r.Explain(context.Background(), tt.studentID, tt.societyID)
			if err != nil {
				t.Fatalf("Explain() error = %v", err)
			}
			if got.Type != tt.want || got.Message == "" {
				t.Errorf("Explain() = %+v, want type %q", got, tt.want)
			}
		})
	}
}

func TestUpdateSimilarityModel(t *testing.T) {
	t.Parallel()

	text := scoringText()
	r, _ := newTestRecommender(t, nil, newScoringCatalog(), text)
	if err := r.UpdateSimilarityModel(context.Background()); err != nil {
		t.Fatalf("UpdateSimilarityModel() error = %v", err)
	}

	want := []string{"rugby desc", "football desc", "orchestra desc"}
	if len(text.corpus) != len(want) {
		t.Fatalf("corpus = %v, want %v", text.corpus, want)
	}
	for i := range want {
		if text.corpus[i] != want[i] {
			t.Errorf("corpus[%d] = %q, want %q", i, text.corpus[i], want[i])
		}
	}

	text.err = textsim.ErrEmptyVocabulary
	if err := r.UpdateSimilarityModel(context.Background()); !errors.Is(err, textsim.ErrEmptyVocabulary) {
		t.Errorf("UpdateSimilarityModel() error = %v, want wrapped ErrEmptyVocabulary", err)
	}
}

func TestPopularSocieties(t *testing.T) {
	t.Parallel()

	r, _ := newTestRecommender(t, nil, newScoringCatalog(), scoringText())
	ctx := context.Background()

	tests := []struct {
		name   string
		limit  int
		recent bool
		want   []int
	}{
		{"with recent boost", 5, true, []int{1, 2, 3, 4, 5}},
		{"without recent boost", 5, false, []int{1, 2, 4, 3, 5}},
		{"limited", 2, true, []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := r.PopularSocieties(ctx, tt.limit, tt.recent)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("PopularSocieties() returned %d, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("PopularSocieties()[%d] = %d, want %d", i, got[i].ID, id)
				}
			}
		})
	}
}

func distinctCategories(recs []recommend.Recommendation) int {
	seen := make(map[string]struct{})
	for _, r := range recs {
		seen[r.Society.Category] = struct{}{}
	}
	return len(seen)
}

func TestRecommend_DiversityOrdering(t *testing.T) {
	t.Parallel()

	// Sports candidates score 7 and Music 6.8 before a 1.25 category boost.
	// Low diversity keeps stacking Sports, high diversity admits Music.
	catalog := catalogtest.New(
		[]recommend.Society{
			society(100, "Sports", []string{"team", "social"}, "joined desc", 10),
			society(101, "Music", []string{"choir"}, "", 10),
			society(1, "Sports", []string{"team", "social"}, "", 1),
			society(2, "Sports", []string{"team", "social"}, "", 1),
			society(3, "Sports", []string{"team", "social"}, "", 1),
			society(4, "Music", []string{"choir"}, "m desc", 1),
		},
		[]recommend.Student{{ID: 1, JoinedSocieties: []int{100, 101}}},
	)
	text := &fakeText{sims: map[string]float64{"m desc": 1.2}}
	r, _ := newTestRecommender(t, nil, catalog, text)

	low, err := r.Recommend(context.Background(), 1, 3, recommend.DiversityLow)
	if err != nil {
		t.Fatal(err)
	}
	high, err := r.Recommend(context.Background(), 1, 3, recommend.DiversityHigh)
	if err != nil {
		t.Fatal(err)
	}

	if got := distinctCategories(low); got != 1 {
		t.Errorf("low diversity categories = %d, want 1", got)
	}
	if got := distinctCategories(high); got != 2 {
		t.Errorf("high diversity categories = %d, want 2", got)
	}
}

func TestRecommend_IdenticalDescriptionsAcrossCategories(t *testing.T) {
	t.Parallel()

	const vibrant = "A vibrant community of students who meet every week to share their passion."

	catalog := catalogtest.New(
		[]recommend.Society{
			society(1, "Sports", []string{"running", "fitness"}, vibrant, 20),
			society(2, "Music", []string{"singing", "choir"}, vibrant, 15),
			society(3, "Sports", []string{"football"}, "Weekly football matches and training sessions.", 30),
			society(4, "Sports", []string{"tennis"}, "Tennis coaching for all abilities on campus courts.", 25),
			society(5, "Sports", []string{"swimming"}, "Swimming squad with early morning pool sessions.", 25),
			society(6, "Arts", []string{"painting"}, "Painting and drawing workshops in the studio.", 12),
			society(7, "Technology", []string{"coding"}, "Coding projects, robotics and hackathons.", 40),
			society(8, "Academic", []string{"debate"}, "Debate practice and public speaking competitions.", 18),
		},
		[]recommend.Student{{ID: 1, JoinedSocieties: []int{1}}},
	)

	analyzer := textsim.NewAnalyzer(textsim.DefaultConfig(), semantic.New(), zerolog.Nop())
	sel := reranking.NewMMR(reranking.NewSimilarityCache(analyzer))
	r, err := recommend.NewRecommender(nil, catalog, analyzer, sel, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := r.UpdateSimilarityModel(context.Background()); err != nil {
		t.Fatalf("UpdateSimilarityModel() error = %v", err)
	}

	for _, level := range recommend.DiversityLevels {
		recs, err := r.Recommend(context.Background(), 1, 5, level)
		if err != nil {
			t.Fatalf("Recommend(%s) error = %v", level, err)
		}
		if len(recs) != 5 {
			t.Errorf("Recommend(%s) returned %d, want 5", level, len(recs))
		}
		if _, ok := byID(recs)[2]; !ok {
			t.Errorf("Recommend(%s) = %v, want the Music society with the identical description", level, recs)
		}
	}
}
