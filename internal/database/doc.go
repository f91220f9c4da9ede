// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

/*
Package database implements the society catalog over DuckDB.

DB satisfies recommend.Catalog. Society aggregates (members, events,
attendance and the 30-day recent counters) are computed at query time from
the relation tables, so writes never maintain counters.

Schema:

	societies         id, name, category, description, status
	society_tags      society_id, position, tag
	students          id, major
	memberships       student_id, society_id, joined_at
	follows           follower_id, followed_id
	events            id, society_id, title, starts_at
	event_attendance  event_id, student_id

Schema changes beyond the base tables go through the append-only
migrations list and are recorded in schema_migrations.

Usage:

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	societies, err := db.ApprovedSocieties(ctx)
*/
package database
