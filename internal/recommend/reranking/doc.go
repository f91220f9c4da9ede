// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

// Package reranking implements diversity-aware selection of recommendation
// candidates.
//
// # MMR Algorithm
//
// Maximal Marginal Relevance iteratively selects the candidate that is both
// relevant and dissimilar to the candidates already selected:
//
//	MMR = argmax[lambda * score(i) - (1-lambda) * max_similarity(i, selected)]
//
// Where:
//   - lambda: balance parameter (1.0 = pure relevance, 0.0 = pure diversity)
//   - score(i): relevance score of candidate i (unbounded)
//   - max_similarity: maximum similarity in [0, 1] to any selected candidate
//
// The diversity levels map to lambda as low = 0.9, balanced = 0.7 and
// high = 0.5.
//
// # Similarity
//
// Pairwise similarity is served by a SimilarityCache keyed by the unordered
// pair of society IDs. When both societies have descriptions the pair is
// scored by the text similarity model (0-5, scaled to 0-1); otherwise by
//
//	0.6 * [same category] + 0.4 * jaccard(tags)
//
// The cache is cleared whenever the text corpus is refit.
//
// # Performance
//
//   - Time: O(k * n) similarity lookups, each computed at most once per pair
//   - Space: O(n) per selection plus the shared pair cache
//
// # Thread Safety
//
// MMR and SimilarityCache are safe for concurrent use.
//
// # See Also
//
//   - Carbonell & Goldstein (1998): "The Use of MMR" SIGIR paper
package reranking
