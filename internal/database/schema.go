// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext bounds schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// Tables:
//   - societies: one row per society; status gates recommendation
//   - society_tags: ordered tags; no key so tag lists can be replaced in place
//   - students: id and major
//   - memberships: joined_at drives the recent-member window
//   - follows: follower -> followed student
//   - events: hosted by a society; starts_at drives the recent-event window
//   - event_attendance: student attendance per event
var tableCreationQueries = []string{
	`CREATE TABLE IF NOT EXISTS societies (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'Pending',
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS society_tags (
		society_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		tag TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS students (
		id INTEGER PRIMARY KEY,
		major TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS memberships (
		student_id INTEGER NOT NULL,
		society_id INTEGER NOT NULL,
		joined_at TIMESTAMP NOT NULL,
		PRIMARY KEY (student_id, society_id)
	)`,
	`CREATE TABLE IF NOT EXISTS follows (
		follower_id INTEGER NOT NULL,
		followed_id INTEGER NOT NULL,
		PRIMARY KEY (follower_id, followed_id)
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY,
		society_id INTEGER NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		starts_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS event_attendance (
		event_id INTEGER NOT NULL,
		student_id INTEGER NOT NULL,
		PRIMARY KEY (event_id, student_id)
	)`,
}

func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}
