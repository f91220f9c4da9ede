// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package reranking

import (
	"context"
	"math"

	"github.com/tomtom215/societyrec/internal/recommend"
)

// maxSelectSize limits slice allocations; k is also bounded by the number
// of candidates.
const maxSelectSize = 10000

// PairSimilarity scores two societies in [0, 1].
type PairSimilarity interface {
	Similarity(ctx context.Context, a, b recommend.Society) float64
	Clear()
}

// MMR implements Maximal Marginal Relevance selection.
//
// Reference:
// Carbonell, J., & Goldstein, J. (1998). "The Use of MMR, Diversity-Based
// Reranking for Reordering Documents and Producing Summaries." SIGIR 1998.
type MMR struct {
	sim PairSimilarity
}

// NewMMR creates an MMR selector. A nil sim uses a SimilarityCache with no
// text analyzer, so pairs are scored on category and tags and memoized.
func NewMMR(sim PairSimilarity) *MMR {
	if sim == nil {
		sim = NewSimilarityCache(nil)
	}
	return &MMR{sim: sim}
}

// Name returns the selector identifier.
func (m *MMR) Name() string {
	return "mmr"
}

// Select greedily picks up to k candidates. lambda is clamped to [0, 1].
//
//nolint:gocritic // rangeValCopy: Candidate passed by value in range, acceptable for clarity
func (m *MMR) Select(ctx context.Context, candidates []recommend.Candidate, k int, lambda float64) []recommend.Candidate {
	if len(candidates) == 0 || k <= 0 {
		return []recommend.Candidate{}
	}

	lambda = math.Min(math.Max(lambda, 0), 1)
	k = min(k, len(candidates), maxSelectSize)

	selected := make([]recommend.Candidate, 0, k)
	used := make([]bool, len(candidates))
	// maxSim[i] is the highest similarity of candidate i to any selected one.
	maxSim := make([]float64, len(candidates))

	for len(selected) < k {
		bestIdx := -1
		bestMMR := math.Inf(-1)

		for i, c := range candidates {
			if used[i] {
				continue
			}
			score := lambda*c.Score - (1-lambda)*maxSim[i]
			if score > bestMMR {
				bestMMR = score
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}

		used[bestIdx] = true
		selected = append(selected, candidates[bestIdx])

		if len(selected) == k || lambda >= 1 || ctx.Err() != nil {
			continue
		}
		last := candidates[bestIdx].Society
		for i, c := range candidates {
			if used[i] {
				continue
			}
			if s := m.sim.Similarity(ctx, c.Society, last); s > maxSim[i] {
				maxSim[i] = s
			}
		}
	}

	return selected
}

// Reset clears the pairwise similarity cache.
func (m *MMR) Reset() {
	m.sim.Clear()
}

// Ensure MMR implements the interface.
var _ recommend.Selector = (*MMR)(nil)
