// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

// Package semantic scores the domain relatedness of two society descriptions
// from a static lexicon, independently of any statistical text model.
//
// Each text is mapped to the set of domain categories (arts, gaming, sports,
// ...) whose indicator words or phrases it contains, and to the set of
// activity types (competition, learning, ...) it mentions. The boost between
// two texts combines the strongest category affinities across the two sets
// with the overlap of their activity types:
//
//	boost = 0.7 * avg(top 3 affinity pairs) + 0.3 * jaccard(activities)
//
// A text without recognized categories has no boost with anything.
package semantic

import (
	"sort"

	"github.com/tomtom215/societyrec/internal/cache"
)

const (
	categoryWeight = 0.7
	activityWeight = 0.3
	topPairs       = 3
)

// pairKey is an unordered category pair.
type pairKey struct {
	a, b string
}

func newPairKey(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// Enhancer computes semantic boosts. It is immutable after New and safe for
// concurrent use.
type Enhancer struct {
	categories *cache.PatternMatcher
	activities *cache.PatternMatcher
	affinity   map[pairKey]float64
}

// New builds an Enhancer over the built-in lexicon.
func New() *Enhancer {
	affinity := make(map[pairKey]float64, len(categoryAffinities))
	for _, p := range categoryAffinities {
		affinity[newPairKey(p.a, p.b)] = p.score
	}

	return &Enhancer{
		categories: cache.NewPatternMatcher(categoryIndicators),
		activities: cache.NewPatternMatcher(activityIndicators),
		affinity:   affinity,
	}
}

// Categories returns the sorted domain categories recognized in text.
func (e *Enhancer) Categories(text string) []string {
	groups := e.categories.Groups(text)
	sort.Strings(groups)
	return groups
}

// ActivityTypes returns the sorted activity types recognized in text.
func (e *Enhancer) ActivityTypes(text string) []string {
	groups := e.activities.Groups(text)
	sort.Strings(groups)
	return groups
}

// Affinity returns the affinity between two categories: 1.0 for identical
// categories, the authored score for known pairs, 0.2 otherwise.
func (e *Enhancer) Affinity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if score, ok := e.affinity[newPairKey(a, b)]; ok {
		return score
	}
	return defaultAffinity
}

// Boost returns the semantic boost between two texts in [0, 1].
func (e *Enhancer) Boost(text1, text2 string) float64 {
	cats1 := e.Categories(text1)
	cats2 := e.Categories(text2)
	if len(cats1) == 0 || len(cats2) == 0 {
		return 0
	}

	scores := make([]float64, 0, len(cats1)*len(cats2))
	for _, a := range cats1 {
		for _, b := range cats2 {
			scores = append(scores, e.Affinity(a, b))
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(scores)))

	n := min(topPairs, len(scores))
	sum := 0.0
	for _, s := range scores[:n] {
		sum += s
	}
	categoryScore := sum / float64(n)

	activityScore := jaccard(e.ActivityTypes(text1), e.ActivityTypes(text2))

	boost := categoryWeight*categoryScore + activityWeight*activityScore
	return min(max(boost, 0), 1)
}

// jaccard returns |a ∩ b| / |a ∪ b| for two sets of distinct strings.
// Two empty sets have no overlap.
func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	inter := 0
	for _, s := range b {
		if _, ok := set[s]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
