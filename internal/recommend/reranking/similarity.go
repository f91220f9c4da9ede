// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package reranking

import (
	"context"
	"strings"
	"sync"

	"github.com/tomtom215/societyrec/internal/metrics"
	"github.com/tomtom215/societyrec/internal/recommend"
)

const (
	categoryWeight = 0.6
	tagWeight      = 0.4

	// maxTextScore is the upper bound of the text similarity scale.
	maxTextScore = 5.0
)

// TextScorer scores a text against comparison texts on a 0-5 scale.
type TextScorer interface {
	Similarity(ctx context.Context, text string, comparisons []string) float64
}

type pairKey struct {
	lo, hi int
}

func newPairKey(a, b int) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// SimilarityCache lazily computes and memoizes society pair similarities.
type SimilarityCache struct {
	text TextScorer

	mu    sync.RWMutex
	pairs map[pairKey]float64
}

// NewSimilarityCache creates an empty cache. A nil text scorer limits
// similarity to category and tags.
func NewSimilarityCache(text TextScorer) *SimilarityCache {
	return &SimilarityCache{
		text:  text,
		pairs: make(map[pairKey]float64),
	}
}

// Similarity returns the similarity of a and b in [0, 1].
//
//nolint:gocritic // Society passed by value to match PairSimilarity
func (c *SimilarityCache) Similarity(ctx context.Context, a, b recommend.Society) float64 {
	if a.ID == b.ID {
		return 1
	}
	key := newPairKey(a.ID, b.ID)

	c.mu.RLock()
	sim, ok := c.pairs[key]
	c.mu.RUnlock()
	metrics.RecordCacheLookup("pair_similarity", ok)
	if ok {
		return sim
	}

	sim = c.compute(ctx, &a, &b)

	c.mu.Lock()
	c.pairs[key] = sim
	c.mu.Unlock()
	return sim
}

func (c *SimilarityCache) compute(ctx context.Context, a, b *recommend.Society) float64 {
	if c.text != nil && a.Description != "" && b.Description != "" {
		s := c.text.Similarity(ctx, a.Description, []string{b.Description}) / maxTextScore
		return min(max(s, 0), 1)
	}
	return featureSimilarity(a, b)
}

// Clear drops every cached pair.
func (c *SimilarityCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pairs = make(map[pairKey]float64)
}

// Len returns the number of cached pairs.
func (c *SimilarityCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pairs)
}

// featureSimilarity is 0.6 for a shared category plus 0.4 times the tag
// Jaccard similarity.
func featureSimilarity(a, b *recommend.Society) float64 {
	sim := 0.0
	if ca := strings.ToLower(a.Category); ca != "" && ca == strings.ToLower(b.Category) {
		sim += categoryWeight
	}
	return sim + tagWeight*tagJaccard(a.Tags, b.Tags)
}

// tagJaccard computes case-insensitive Jaccard similarity between tag lists.
func tagJaccard(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[strings.ToLower(t)] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		setB[strings.ToLower(t)] = struct{}{}
	}

	intersection := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
