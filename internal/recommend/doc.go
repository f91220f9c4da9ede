// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

// Package recommend recommends student societies.
//
// # Architecture
//
// The Recommender orchestrates a set of narrow components, each in its own
// subpackage and injected through the interfaces in this package:
//
//   - textsim: description similarity on a 0-5 scale (TF-IDF, keywords,
//     Jaccard, optional embeddings)
//   - semantic: lexicon-based domain boost between two descriptions
//   - feedback: time-decayed preference adjustments from interactions
//   - coldstart: major, social and popularity picks for new students
//   - reranking: Maximal Marginal Relevance selection
//   - evaluation: offline holdout and trade-off evaluation
//
// Catalog data comes from a Catalog, implemented on DuckDB in
// internal/database and in memory in catalogtest.
//
// # Request Flow
//
// For a student with joined societies:
//
//  1. Build an interest profile from joined societies and attended events
//  2. Score every approved, unjoined society (category, tags, description
//     similarity, attended-event category, recent activity)
//  3. Apply feedback adjustments
//  4. Up-weight categories the student has joined sparingly
//  5. Select with MMR, trading relevance for diversity by DiversityLevel
//  6. Attach an explanation to each pick
//
// Students without history are served by the cold-start handler, and
// unknown students by popularity.
//
// # Caching
//
// Responses are cached per (student, limit, level) for Config.CacheTTL.
// InvalidateStudent drops a student's entries when new feedback arrives, and
// UpdateSimilarityModel drops everything after a corpus refit.
//
// # Usage
//
//	analyzer := textsim.NewAnalyzer(textsim.DefaultConfig(), semantic.New(), logger)
//	selector := reranking.NewMMR(reranking.NewSimilarityCache(analyzer))
//	rec, err := recommend.NewRecommender(cfg, catalog, analyzer, selector, logger)
//	if err != nil {
//	    return err
//	}
//	rec.SetFeedbackAdjuster(processor)
//	rec.SetColdStarter(coldstart.NewHandler(coldstart.DefaultConfig(), catalog, logger))
//
//	recs, err := rec.Recommend(ctx, studentID, 5, recommend.DiversityBalanced)
package recommend
