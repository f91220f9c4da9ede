// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/societyrec/internal/recommend"
)

var demoSocieties = []recommend.Society{
	{ID: 1, Name: "Chess Club", Category: "Gaming", Tags: []string{"chess", "strategy", "tournaments"},
		Description: "Weekly chess games, strategy workshops and inter-university tournaments for all levels."},
	{ID: 2, Name: "Board Games Society", Category: "Gaming", Tags: []string{"board games", "strategy", "social"},
		Description: "Relaxed board games nights with card games, tabletop classics and strategy games."},
	{ID: 3, Name: "Robotics Society", Category: "Technology", Tags: []string{"robotics", "engineering", "ai"},
		Description: "Build robots, learn embedded programming and compete in robotics competitions."},
	{ID: 4, Name: "AI and Machine Learning Club", Category: "Technology", Tags: []string{"ai", "machine learning", "coding"},
		Description: "Workshops on machine learning, artificial intelligence and data science projects."},
	{ID: 5, Name: "Painting Society", Category: "Arts", Tags: []string{"painting", "art", "exhibitions"},
		Description: "Painting sessions, gallery visits and an annual art exhibition of member work."},
	{ID: 6, Name: "Photography Club", Category: "Arts", Tags: []string{"photography", "art", "outdoors"},
		Description: "Photo walks, camera workshops and editing tutorials with a yearly exhibition."},
	{ID: 7, Name: "Football Club", Category: "Sports", Tags: []string{"football", "team", "fitness"},
		Description: "Training sessions and league matches for players of every ability."},
	{ID: 8, Name: "Running Club", Category: "Sports", Tags: []string{"running", "fitness", "outdoors"},
		Description: "Group runs, marathon training and charity races around campus."},
	{ID: 9, Name: "Choir", Category: "Music", Tags: []string{"singing", "performance", "concerts"},
		Description: "Rehearse and perform choral music in termly concerts."},
	{ID: 10, Name: "Jazz Band", Category: "Music", Tags: []string{"jazz", "band", "performance"},
		Description: "Jazz band rehearsals, jam sessions and live performances at campus venues."},
	{ID: 11, Name: "Debate Society", Category: "Academic", Tags: []string{"debate", "public speaking", "competition"},
		Description: "Competitive debating, public speaking practice and debate competitions."},
	{ID: 12, Name: "Volunteering Network", Category: "Community", Tags: []string{"volunteering", "charity", "community"},
		Description: "Volunteering projects with local charities and community fundraising events."},
	{ID: 13, Name: "Film Society", Category: "Arts", Tags: []string{"film", "cinema", "discussion"},
		Description: "Screenings of classic and independent cinema followed by discussion.", Status: "Pending"},
}

type demoStudent struct {
	id      int
	major   string
	joined  []int
	follows []int
}

var demoStudents = []demoStudent{
	{id: 1, major: "Computer Science", joined: []int{1, 3}, follows: []int{2, 3}},
	{id: 2, major: "Computer Science", joined: []int{3, 4}, follows: []int{1}},
	{id: 3, major: "Computer Science", joined: []int{4, 2, 11}},
	{id: 4, major: "Fine Art", joined: []int{5, 6}, follows: []int{5}},
	{id: 5, major: "Fine Art", joined: []int{5, 9}},
	{id: 6, major: "Sports Science", joined: []int{7, 8}, follows: []int{7}},
	{id: 7, major: "Sports Science", joined: []int{8, 12}},
	{id: 8, major: "Music", joined: []int{9, 10, 6}},
	{id: 9, major: "Law", joined: []int{11, 12}},
	{id: 10, major: "Computer Science"},
	{id: 11, major: "Fine Art", follows: []int{4, 5}},
}

// SeedDemoData loads a small demonstration catalog when the societies
// table is empty. It reports whether data was written.
func (db *DB) SeedDemoData(ctx context.Context) (bool, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM societies`).Scan(&count); err != nil {
		return false, fmt.Errorf("count societies: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	now := db.now().UTC()
	for i := range demoSocieties {
		s := demoSocieties[i]
		if s.Status == "" {
			s.Status = recommend.StatusApproved
		}
		if err := db.UpsertSociety(ctx, s); err != nil {
			return false, err
		}
	}

	for i, st := range demoStudents {
		if err := db.UpsertStudent(ctx, st.id, st.major); err != nil {
			return false, err
		}
		for j, societyID := range st.joined {
			// Spread joins over the last 90 days so some count as recent.
			joinedAt := now.Add(-time.Duration((i*7+j*20)%90) * 24 * time.Hour)
			if err := db.AddMembership(ctx, st.id, societyID, joinedAt); err != nil {
				return false, err
			}
		}
		for _, followed := range st.follows {
			if err := db.AddFollow(ctx, st.id, followed); err != nil {
				return false, err
			}
		}
	}

	eventID := 1
	for i := range demoSocieties {
		s := demoSocieties[i]
		for k := range 2 {
			ev := recommend.Event{
				ID:        eventID,
				SocietyID: s.ID,
				StartsAt:  now.Add(-time.Duration(s.ID*5+k*40) * 24 * time.Hour),
			}
			if err := db.AddEvent(ctx, ev, fmt.Sprintf("%s meetup %d", s.Name, k+1)); err != nil {
				return false, err
			}
			eventID++
		}
	}

	for _, st := range demoStudents {
		for _, societyID := range st.joined {
			// First event of each society is event 2*id-1.
			if err := db.RecordAttendance(ctx, 2*societyID-1, st.id); err != nil {
				return false, err
			}
		}
	}

	db.logger.Info().
		Int("societies", len(demoSocieties)).
		Int("students", len(demoStudents)).
		Msg("Seeded demo catalog")
	return true, nil
}
