// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

// Package coldstart recommends societies to students without membership
// history.
//
// Candidates come from three sources, each capped at PerSource items:
//
//   - major: societies with members sharing the student's major, ranked by
//     the number of such members (score 3.0)
//   - social: societies joined by users the student follows, ranked by the
//     number of followed members (score 2.5)
//   - popular: the top two societies of every category by popularity,
//     interleaved across categories (score 2.0)
//
// Duplicates keep their highest source score. The result is then balanced
// across categories: every represented category gets a slot, remaining
// slots go to categories in proportion to their average candidate score,
// and any shortfall is backfilled from the best remaining candidates.
package coldstart

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/societyrec/internal/recommend"
)

// Config holds source scores and caps.
type Config struct {
	MajorScore   float64 `json:"major_score"`
	SocialScore  float64 `json:"social_score"`
	PopularScore float64 `json:"popular_score"`

	// PerSource caps the candidates taken from each source.
	PerSource int `json:"per_source"`

	// PerCategoryPopular is how many popular societies seed each category.
	PerCategoryPopular int `json:"per_category_popular"`

	DefaultLimit int `json:"default_limit"`

	Popularity recommend.PopularityConfig `json:"popularity"`
}

// DefaultConfig returns the standard cold-start settings.
func DefaultConfig() Config {
	return Config{
		MajorScore:         3.0,
		SocialScore:        2.5,
		PopularScore:       2.0,
		PerSource:          5,
		PerCategoryPopular: 2,
		DefaultLimit:       5,
		Popularity:         recommend.DefaultConfig().Popularity,
	}
}

// Handler builds initial recommendations. It holds no mutable state and
// is safe for concurrent use.
type Handler struct {
	cfg     Config
	catalog recommend.Catalog
	logger  zerolog.Logger
}

// NewHandler creates a Handler reading from catalog.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(cfg Config, catalog recommend.Catalog, logger zerolog.Logger) *Handler {
	def := DefaultConfig()
	if cfg.PerSource <= 0 {
		cfg.PerSource = def.PerSource
	}
	if cfg.PerCategoryPopular <= 0 {
		cfg.PerCategoryPopular = def.PerCategoryPopular
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = def.DefaultLimit
	}
	return &Handler{
		cfg:     cfg,
		catalog: catalog,
		logger:  logger.With().Str("component", "coldstart").Logger(),
	}
}

// InitialRecommendations returns up to limit societies for a student. An
// unknown student gets an empty list and no error.
func (h *Handler) InitialRecommendations(ctx context.Context, studentID, limit int) ([]recommend.Society, error) {
	student, err := h.catalog.Student(ctx, studentID)
	if errors.Is(err, recommend.ErrStudentNotFound) {
		return []recommend.Society{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load student %d: %w", studentID, err)
	}
	return h.InitialRecommendationsFor(ctx, student, limit)
}

// InitialRecommendationsFor is InitialRecommendations for a student value,
// which need not match the catalog.
//
//nolint:gocritic // Student passed by value to match recommend.ColdStarter
func (h *Handler) InitialRecommendationsFor(ctx context.Context, student recommend.Student, limit int) ([]recommend.Society, error) {
	if limit <= 0 {
		limit = h.cfg.DefaultLimit
	}

	approved, err := h.catalog.ApprovedSocieties(ctx)
	if err != nil {
		return nil, fmt.Errorf("load approved societies: %w", err)
	}

	joined := make(map[int]struct{}, len(student.JoinedSocieties))
	for _, id := range student.JoinedSocieties {
		joined[id] = struct{}{}
	}
	eligible := make(map[int]recommend.Society, len(approved))
	pool := make([]recommend.Society, 0, len(approved))
	for i := range approved {
		if _, ok := joined[approved[i].ID]; ok {
			continue
		}
		eligible[approved[i].ID] = approved[i]
		pool = append(pool, approved[i])
	}
	if len(pool) == 0 {
		return []recommend.Society{}, nil
	}

	pick := newPicker()

	if strings.TrimSpace(student.Major) != "" {
		counts, err := h.catalog.MajorMembershipCounts(ctx, student.Major, student.ID)
		if err != nil {
			h.logger.Warn().Err(err).Int("student_id", student.ID).Msg("major affinity unavailable")
		} else {
			pick.addAll(topByCount(counts, eligible, h.cfg.PerSource), h.cfg.MajorScore)
		}
	}

	if len(student.FollowedUsers) > 0 {
		counts, err := h.catalog.MembershipCounts(ctx, student.FollowedUsers)
		if err != nil {
			h.logger.Warn().Err(err).Int("student_id", student.ID).Msg("social affinity unavailable")
		} else {
			pick.addAll(topByCount(counts, eligible, h.cfg.PerSource), h.cfg.SocialScore)
		}
	}

	pick.addAll(h.popularSeeds(pool), h.cfg.PopularScore)

	out := allocate(pick.candidates(), limit)
	h.logger.Debug().
		Int("student_id", student.ID).
		Int("candidates", len(pick.order)).
		Int("returned", len(out)).
		Msg("cold start recommendations built")
	return out, nil
}

// popularSeeds takes the PerCategoryPopular most popular societies of each
// category and interleaves them: every category's best first, then every
// category's runner-up, and so on, up to PerSource.
func (h *Handler) popularSeeds(pool []recommend.Society) []recommend.Society {
	ranked := recommend.RankByPopularity(pool, h.cfg.Popularity, true)

	var categories []string
	byCategory := make(map[string][]recommend.Society)
	for _, c := range ranked {
		key := categoryKey(c.Society.Category)
		if _, ok := byCategory[key]; !ok {
			categories = append(categories, key)
		}
		if len(byCategory[key]) < h.cfg.PerCategoryPopular {
			byCategory[key] = append(byCategory[key], c.Society)
		}
	}

	seeds := make([]recommend.Society, 0, h.cfg.PerSource)
	for round := 0; round < h.cfg.PerCategoryPopular; round++ {
		for _, key := range categories {
			if len(seeds) == h.cfg.PerSource {
				return seeds
			}
			if round < len(byCategory[key]) {
				seeds = append(seeds, byCategory[key][round])
			}
		}
	}
	return seeds
}

// topByCount returns up to n eligible societies with the highest counts,
// ties broken by ascending ID.
func topByCount(counts map[int]int, eligible map[int]recommend.Society, n int) []recommend.Society {
	ids := make([]int, 0, len(counts))
	for id, c := range counts {
		if _, ok := eligible[id]; ok && c > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > n {
		ids = ids[:n]
	}

	out := make([]recommend.Society, len(ids))
	for i, id := range ids {
		out[i] = eligible[id]
	}
	return out
}

func categoryKey(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// picker deduplicates candidates across sources, keeping the best score
// and first-seen order.
type picker struct {
	order []int
	best  map[int]recommend.Candidate
}

func newPicker() *picker {
	return &picker{best: make(map[int]recommend.Candidate)}
}

func (p *picker) addAll(societies []recommend.Society, score float64) {
	for i := range societies {
		id := societies[i].ID
		cur, ok := p.best[id]
		if !ok {
			p.order = append(p.order, id)
		}
		if !ok || score > cur.Score {
			p.best[id] = recommend.Candidate{Society: societies[i], Score: score}
		}
	}
}

func (p *picker) candidates() []recommend.Candidate {
	out := make([]recommend.Candidate, len(p.order))
	for i, id := range p.order {
		out[i] = p.best[id]
	}
	return out
}

// Ensure Handler implements the interface.
var _ recommend.ColdStarter = (*Handler)(nil)
