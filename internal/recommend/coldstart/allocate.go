// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package coldstart

import (
	"math"
	"sort"

	"github.com/tomtom215/societyrec/internal/recommend"
)

type categoryGroup struct {
	key        string
	candidates []recommend.Candidate
	avg        float64
	slots      int
}

// allocate picks up to limit candidates balanced across categories and
// returns their societies, highest score first.
func allocate(candidates []recommend.Candidate, limit int) []recommend.Society {
	if len(candidates) == 0 || limit <= 0 {
		return []recommend.Society{}
	}

	groups := groupByCategory(candidates)
	assignSlots(groups, limit)

	chosen := make([]recommend.Candidate, 0, limit)
	taken := make(map[int]struct{}, limit)
	for _, g := range groups {
		for i := 0; i < g.slots && i < len(g.candidates) && len(chosen) < limit; i++ {
			chosen = append(chosen, g.candidates[i])
			taken[g.candidates[i].Society.ID] = struct{}{}
		}
	}

	if len(chosen) < limit {
		rest := make([]recommend.Candidate, 0, len(candidates))
		for _, c := range candidates {
			if _, ok := taken[c.Society.ID]; !ok {
				rest = append(rest, c)
			}
		}
		sortCandidates(rest)
		for _, c := range rest {
			if len(chosen) == limit {
				break
			}
			chosen = append(chosen, c)
		}
	}

	sortCandidates(chosen)
	out := make([]recommend.Society, len(chosen))
	for i := range chosen {
		out[i] = chosen[i].Society
	}
	return out
}

// groupByCategory groups candidates by normalized category, best
// candidates first within a group and groups by descending average score.
func groupByCategory(candidates []recommend.Candidate) []*categoryGroup {
	index := make(map[string]*categoryGroup)
	var groups []*categoryGroup
	for _, c := range candidates {
		key := categoryKey(c.Society.Category)
		g, ok := index[key]
		if !ok {
			g = &categoryGroup{key: key}
			index[key] = g
			groups = append(groups, g)
		}
		g.candidates = append(g.candidates, c)
	}

	for _, g := range groups {
		sortCandidates(g.candidates)
		sum := 0.0
		for _, c := range g.candidates {
			sum += c.Score
		}
		g.avg = sum / float64(len(g.candidates))
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].avg != groups[j].avg {
			return groups[i].avg > groups[j].avg
		}
		return groups[i].key < groups[j].key
	})
	return groups
}

// assignSlots gives every group one slot (only the best limit groups when
// there are more groups than slots), then shares the remaining slots in
// proportion to average score. Rounding leftovers go to the best groups.
func assignSlots(groups []*categoryGroup, limit int) {
	if len(groups) >= limit {
		for i, g := range groups {
			if i < limit {
				g.slots = 1
			}
		}
		return
	}

	total := 0.0
	for _, g := range groups {
		g.slots = 1
		total += g.avg
	}

	remaining := limit - len(groups)
	if total <= 0 {
		return
	}

	assigned := 0
	for _, g := range groups {
		extra := int(math.Floor(float64(remaining) * g.avg / total))
		g.slots += extra
		assigned += extra
	}
	for i := 0; assigned < remaining; i = (i + 1) % len(groups) {
		groups[i].slots++
		assigned++
	}
}

// sortCandidates orders by descending score, then ascending ID.
func sortCandidates(c []recommend.Candidate) {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].Score != c[j].Score {
			return c[i].Score > c[j].Score
		}
		return c[i].Society.ID < c[j].Society.ID
	})
}
