// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package recommend

import (
	"context"
	"fmt"
	"strings"
)

var (
	genericExplanation = Explanation{
		Type:    ExplanationGeneric,
		Message: "Recommended based on your profile",
	}
	coldStartExplanation = Explanation{
		Type:    ExplanationGeneric,
		Message: "Suggested to help you get started",
	}
	popularExplanation = Explanation{
		Type:    ExplanationGeneric,
		Message: "Popular with students across campus",
	}
)

// maxExplainedTags bounds the tags named in a tag-match explanation.
const maxExplainedTags = 3

// profile is the interest profile derived from a student's joined societies
// and attended events.
type profile struct {
	joinedIDs map[int]struct{}

	// categories counts joined societies per normalized category.
	categories  map[string]int
	totalJoined int

	tags map[string]struct{}

	// descriptions holds the non-empty joined descriptions.
	descriptions []string
	identical    bool

	eventCategories map[string]struct{}
}

func (r *Recommender) buildProfile(ctx context.Context, student *Student) (*profile, error) {
	p := &profile{
		joinedIDs:       make(map[int]struct{}, len(student.JoinedSocieties)),
		categories:      make(map[string]int),
		tags:            make(map[string]struct{}),
		eventCategories: make(map[string]struct{}),
	}
	for _, id := range student.JoinedSocieties {
		p.joinedIDs[id] = struct{}{}
	}

	if len(student.JoinedSocieties) > 0 {
		joined, err := r.catalog.Societies(ctx, student.JoinedSocieties)
		if err != nil {
			return nil, fmt.Errorf("load joined societies: %w", err)
		}
		for i := range joined {
			soc := &joined[i]
			p.totalJoined++
			if c := normalizeLabel(soc.Category); c != "" {
				p.categories[c]++
			}
			for _, tag := range soc.Tags {
				if t := normalizeLabel(tag); t != "" {
					p.tags[t] = struct{}{}
				}
			}
			if soc.Description != "" {
				p.descriptions = append(p.descriptions, soc.Description)
			}
		}
	}
	p.identical = allEqual(p.descriptions)

	if len(student.AttendedEvents) > 0 {
		hostIDs := make([]int, 0, len(student.AttendedEvents))
		for _, e := range student.AttendedEvents {
			hostIDs = append(hostIDs, e.SocietyID)
		}
		hosts, err := r.catalog.Societies(ctx, hostIDs)
		if err != nil {
			return nil, fmt.Errorf("load event hosts: %w", err)
		}
		for i := range hosts {
			if c := normalizeLabel(hosts[i].Category); c != "" {
				p.eventCategories[c] = struct{}{}
			}
		}
	}

	return p, nil
}

// scoreDetail is a candidate's raw relevance score with the signals that
// explain it.
type scoreDetail struct {
	score         float64
	categoryMatch bool
	sharedTags    []string
	similarity    float64
}

// scoreSociety computes the raw relevance of soc:
//
//	category match + tags*matches + similarity*text [+ semantic boost]
//	  + event category match, times the recency multiplier
func (r *Recommender) scoreSociety(ctx context.Context, p *profile, soc *Society) scoreDetail {
	w := r.config.Scoring
	var d scoreDetail

	category := normalizeLabel(soc.Category)
	if _, ok := p.categories[category]; ok && category != "" {
		d.categoryMatch = true
		d.score += w.CategoryMatch
	}

	seen := make(map[string]struct{}, len(soc.Tags))
	for _, tag := range soc.Tags {
		t := normalizeLabel(tag)
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := p.tags[t]; ok {
			d.sharedTags = append(d.sharedTags, tag)
		}
	}
	d.score += w.TagMatch * float64(len(d.sharedTags))

	if soc.Description != "" && len(p.descriptions) > 0 {
		d.similarity = r.text.Similarity(ctx, soc.Description, p.descriptions)
		d.score += w.Similarity * d.similarity

		if r.config.IdenticalDescriptionBoost && p.identical && r.booster != nil {
			d.score += w.SemanticBoost * r.booster.Boost(soc.Description, p.descriptions[0])
		}
	}

	if _, ok := p.eventCategories[category]; ok && category != "" {
		d.score += w.EventCategory
	}

	if soc.RecentEventCount >= 1 {
		d.score *= w.RecencyMultiplier
	}
	return d
}

// categoryBoosted returns candidates with relevance up-weighted for
// categories the student has joined sparingly:
//
//	boost = 1 + CategoryBoost * (1 - count_in_category / total_joined)
func (r *Recommender) categoryBoosted(p *profile, candidates []Candidate) []Candidate {
	boosted := make([]Candidate, len(candidates))
	for i, c := range candidates {
		boosted[i] = c
		if p.totalJoined == 0 {
			continue
		}
		count := p.categories[normalizeLabel(c.Society.Category)]
		ratio := float64(count) / float64(p.totalJoined)
		boosted[i].Score = c.Score * (1 + r.config.Diversity.CategoryBoost*(1-ratio))
	}
	return boosted
}

// explain picks the highest-priority reason for recommending soc:
// category match, tag overlap, content similarity, then diversity.
func (r *Recommender) explain(p *profile, soc *Society, d scoreDetail) Explanation {
	switch {
	case d.categoryMatch:
		return Explanation{
			Type:    ExplanationCategoryMatch,
			Message: fmt.Sprintf("You are already a member of other %s societies", soc.Category),
		}
	case len(d.sharedTags) > 0:
		tags := d.sharedTags
		if len(tags) > maxExplainedTags {
			tags = tags[:maxExplainedTags]
		}
		return Explanation{
			Type:    ExplanationTagMatch,
			Message: "Shares interests with your societies: " + strings.Join(tags, ", "),
		}
	case d.similarity >= r.config.Scoring.ContentExplanationThreshold:
		return Explanation{
			Type:    ExplanationContentSimilarity,
			Message: "Similar to societies you have already joined",
		}
	case len(p.categories) > 0 && soc.Category != "":
		return Explanation{
			Type:    ExplanationDiversity,
			Message: fmt.Sprintf("Something different: explore %s", soc.Category),
		}
	default:
		return genericExplanation
	}
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func allEqual(texts []string) bool {
	if len(texts) == 0 {
		return false
	}
	for _, t := range texts[1:] {
		if t != texts[0] {
			return false
		}
	}
	return true
}
