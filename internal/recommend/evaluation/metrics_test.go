// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package evaluation

import (
	"math"
	"testing"

	"github.com/tomtom215/societyrec/internal/recommend"
)

func soc(id int, category string, members int) recommend.Society {
	return recommend.Society{ID: id, Category: category, Status: recommend.StatusApproved, MemberCount: members}
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestParseMetrics(t *testing.T) {
	t.Parallel()

	all, err := ParseMetrics(nil)
	if err != nil || len(all) != len(AllMetrics) {
		t.Errorf("ParseMetrics(nil) = %v, %v; want all metrics", all, err)
	}

	got, err := ParseMetrics([]string{"recall", " precision", "recall"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != MetricRecall || got[1] != MetricPrecision {
		t.Errorf("ParseMetrics() = %v, want [recall precision]", got)
	}

	if _, err := ParseMetrics([]string{"ndcg"}); err == nil {
		t.Error("ParseMetrics(ndcg) error = nil")
	}
}

func TestCategoryEntropy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		recs []recommend.Society
		want float64
	}{
		{"empty", nil, 0},
		{"single", []recommend.Society{soc(1, "A", 0)}, 0},
		{"same category", []recommend.Society{soc(1, "A", 0), soc(2, "a", 0)}, 0},
		{"two categories", []recommend.Society{soc(1, "A", 0), soc(2, "B", 0)}, 1},
		{"two of four", []recommend.Society{soc(1, "A", 0), soc(2, "A", 0), soc(3, "B", 0), soc(4, "B", 0)}, 0.5},
		{"all distinct", []recommend.Society{soc(1, "A", 0), soc(2, "B", 0), soc(3, "C", 0)}, 1},
	}

	for _, tt := range tests {
		if got := categoryEntropy(tt.recs); !approxEqual(got, tt.want) {
			t.Errorf("%s: categoryEntropy() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestJSDivergence(t *testing.T) {
	t.Parallel()

	p := distribution([]string{"sports", "music"})
	if got := jsDivergence(p, p); !approxEqual(got, 0) {
		t.Errorf("identical distributions: %v, want 0", got)
	}

	q := distribution([]string{"arts"})
	if got := jsDivergence(p, q); !approxEqual(got, 1) {
		t.Errorf("disjoint distributions: %v, want 1", got)
	}

	r := distribution([]string{"sports"})
	if a, b := jsDivergence(p, r), jsDivergence(r, p); !approxEqual(a, b) || a <= 0 || a >= 1 {
		t.Errorf("partial overlap: %v and %v, want equal values in (0, 1)", a, b)
	}
}

func TestHoldoutCase(t *testing.T) {
	t.Parallel()

	hit := &holdoutCase{
		recs:    []recommend.Society{soc(1, "Sports", 0), soc(2, "Music", 0), soc(3, "Arts", 0), soc(4, "Sports", 0)},
		heldOut: 4,
		k:       4,
		history: []string{"Sports"},
	}
	if got := hit.precision(); !approxEqual(got, 0.25) {
		t.Errorf("precision() = %v, want 0.25", got)
	}
	if got := hit.recall(); got != 1 {
		t.Errorf("recall() = %v, want 1", got)
	}
	if got := hit.serendipity(); !approxEqual(got, 0.125) {
		t.Errorf("serendipity() = %v, want 0.125", got)
	}

	miss := &holdoutCase{recs: hit.recs, heldOut: 99, k: 4, history: hit.history}
	if miss.precision() != 0 || miss.recall() != 0 || miss.serendipity() != 0 {
		t.Error("a miss must score zero precision, recall and serendipity")
	}

	balanced := &holdoutCase{recs: []recommend.Society{soc(1, "Sports", 0), soc(2, "sports", 0)}, history: []string{"Sports"}}
	if got := balanced.categoryBalance(); !approxEqual(got, 1) {
		t.Errorf("categoryBalance() same distribution = %v, want 1", got)
	}
	unbalanced := &holdoutCase{recs: []recommend.Society{soc(1, "Music", 0)}, history: []string{"Sports"}}
	if got := unbalanced.categoryBalance(); !approxEqual(got, 0) {
		t.Errorf("categoryBalance() disjoint = %v, want 0", got)
	}
}

func TestCoverage(t *testing.T) {
	t.Parallel()

	pop := newPopularityIndex([]recommend.Society{soc(1, "A", 0), soc(2, "A", 1), soc(3, "A", 3)})
	if got := coverage([]recommend.Society{soc(1, "A", 0), soc(3, "A", 3)}, pop); !approxEqual(got, 0.625) {
		t.Errorf("coverage() = %v, want 0.625", got)
	}

	// Catalog mean 0.2575, so a niche pick is capped at 0.7725.
	popular := newPopularityIndex([]recommend.Society{soc(1, "A", 99), soc(2, "A", 99), soc(3, "A", 99), soc(4, "A", 0)})
	if got := coverage([]recommend.Society{soc(4, "A", 0)}, popular); !approxEqual(got, 0.7725) {
		t.Errorf("coverage() = %v, want capped 0.7725", got)
	}

	if got := coverage(nil, pop); got != 0 {
		t.Errorf("coverage(nil) = %v, want 0", got)
	}
}

func TestScoreAgainst(t *testing.T) {
	t.Parallel()

	relevant := map[int]struct{}{1: {}, 2: {}}
	got := scoreAgainst([]recommend.Society{soc(1, "A", 0), soc(3, "B", 0)}, relevant, 2)
	want := SetMetrics{Precision: 0.5, Recall: 0.5, HitRate: 1, Diversity: 1}
	if got != want {
		t.Errorf("scoreAgainst() = %+v, want %+v", got, want)
	}

	if got := scoreAgainst(nil, relevant, 2); got != (SetMetrics{}) {
		t.Errorf("scoreAgainst(nil) = %+v, want zero", got)
	}
}
