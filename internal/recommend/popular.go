// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package recommend

import (
	"context"
	"fmt"
	"sort"
)

// Score ranks a society by popularity:
//
//	members*Members + events*Events + attendance*Attendance
//	  [+ recent events*RecentEvents + recent members*RecentMembers]
func (w PopularityConfig) Score(s *Society, withRecentBoost bool) float64 {
	score := w.Members*float64(s.MemberCount) +
		w.Events*float64(s.EventCount) +
		w.Attendance*float64(s.AttendanceCount)
	if withRecentBoost {
		score += w.RecentEvents*float64(s.RecentEventCount) +
			w.RecentMembers*float64(s.RecentMemberCount)
	}
	return score
}

// RankByPopularity returns societies as candidates scored by w, most popular
// first. Ties are broken by ascending ID.
func RankByPopularity(societies []Society, w PopularityConfig, withRecentBoost bool) []Candidate {
	ranked := make([]Candidate, 0, len(societies))
	for i := range societies {
		ranked = append(ranked, Candidate{
			Society: societies[i],
			Score:   w.Score(&societies[i], withRecentBoost),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Society.ID < ranked[j].Society.ID
	})
	return ranked
}

// PopularSocieties returns up to limit approved societies ranked by
// popularity.
func (r *Recommender) PopularSocieties(ctx context.Context, limit int, withRecentBoost bool) ([]Society, error) {
	ranked, err := r.rankPopular(ctx, limit, withRecentBoost)
	if err != nil {
		return nil, err
	}
	societies := make([]Society, len(ranked))
	for i, c := range ranked {
		societies[i] = c.Society
	}
	return societies, nil
}

func (r *Recommender) popularRecommendations(ctx context.Context, limit int) ([]Recommendation, error) {
	ranked, err := r.rankPopular(ctx, limit, true)
	if err != nil {
		return nil, err
	}
	recs := make([]Recommendation, len(ranked))
	for i, c := range ranked {
		recs[i] = Recommendation{Society: c.Society, Score: c.Score, Explanation: popularExplanation}
	}
	return recs, nil
}

func (r *Recommender) rankPopular(ctx context.Context, limit int, withRecentBoost bool) ([]Candidate, error) {
	limit, _ = r.normalize(limit, "")

	approved, err := r.catalog.ApprovedSocieties(ctx)
	if err != nil {
		return nil, fmt.Errorf("load approved societies: %w", err)
	}

	eligible := make([]Society, 0, len(approved))
	for i := range approved {
		if approved[i].Approved() {
			eligible = append(eligible, approved[i])
		}
	}

	ranked := RankByPopularity(eligible, r.config.Popularity, withRecentBoost)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}
