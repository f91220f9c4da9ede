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

// Migration is a versioned schema change applied exactly once.
type Migration struct {
	Version     int
	Name        string
	Description string
	SQL         string
	AppliedAt   time.Time
}

const schemaMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	applied_at TIMESTAMP NOT NULL DEFAULT current_timestamp
)`

// migrations is append-only: never edit or remove an applied entry.
//
// Indexed columns cannot be assigned by INSERT ... ON CONFLICT DO UPDATE in
// DuckDB, so only insert-only tables and never-updated columns are indexed.
var migrations = []Migration{
	{
		Version:     1,
		Name:        "idx_memberships_society",
		Description: "Index memberships by society for popularity and cold-start counts",
		SQL:         `CREATE INDEX IF NOT EXISTS idx_memberships_society ON memberships (society_id)`,
	},
	{
		Version:     2,
		Name:        "idx_society_tags_society",
		Description: "Index tags by society",
		SQL:         `CREATE INDEX IF NOT EXISTS idx_society_tags_society ON society_tags (society_id)`,
	},
	{
		Version:     3,
		Name:        "idx_attendance_student",
		Description: "Index attendance by student for history loading",
		SQL:         `CREATE INDEX IF NOT EXISTS idx_attendance_student ON event_attendance (student_id)`,
	},
}

func (db *DB) appliedMigrations(ctx context.Context) (map[int]Migration, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT version, name, description, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer closeWithLog(rows, db.logger, "rows")

	applied := make(map[int]Migration)
	for rows.Next() {
		var m Migration
		if err := rows.Scan(&m.Version, &m.Name, &m.Description, &m.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[m.Version] = m
	}
	return applied, rows.Err()
}

// runVersionedMigrations applies migrations not yet recorded in
// schema_migrations, in version order.
func (db *DB) runVersionedMigrations() error {
	ctx, cancel := schemaContext()
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, schemaMigrationsTable); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := db.appliedMigrations(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if _, done := applied[m.Version]; done {
			continue
		}
		if _, err := db.conn.ExecContext(ctx, m.SQL); err != nil {
			return fmt.Errorf("failed to execute migration v%d (%s): %w", m.Version, m.Name, err)
		}
		if _, err := db.conn.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, name, description) VALUES (?, ?, ?)`,
			m.Version, m.Name, m.Description); err != nil {
			return fmt.Errorf("failed to record migration v%d: %w", m.Version, err)
		}
		db.logger.Info().Int("version", m.Version).Str("name", m.Name).Msg("Applied migration")
	}
	return nil
}

// AppliedMigrations returns the recorded migrations in version order.
func (db *DB) AppliedMigrations(ctx context.Context) ([]Migration, error) {
	applied, err := db.appliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Migration, 0, len(applied))
	for _, m := range migrations {
		if a, ok := applied[m.Version]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}
