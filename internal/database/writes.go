// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/societyrec/internal/recommend"
)

// The catalog is owned by the host application; these writes exist for
// seeding, imports and tests. Aggregate counters on recommend.Society are
// derived from the relation tables and ignored on write.

// UpsertSociety inserts or replaces a society and its ordered tag list.
//
//nolint:gocritic // Society passed by value mirrors the catalog read API
func (db *DB) UpsertSociety(ctx context.Context, s recommend.Society) error {
	status := s.Status
	if status == "" {
		status = "Pending"
	}

	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO societies (id, name, category, description, status)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name,
				category = excluded.category,
				description = excluded.description,
				status = excluded.status`,
			s.ID, s.Name, s.Category, s.Description, status); err != nil {
			return fmt.Errorf("upsert society %d: %w", s.ID, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM society_tags WHERE society_id = ?`, s.ID); err != nil {
			return fmt.Errorf("clear tags of society %d: %w", s.ID, err)
		}
		position := 0
		for _, tag := range s.Tags {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO society_tags (society_id, position, tag) VALUES (?, ?, ?)`,
				s.ID, position, tag); err != nil {
				return fmt.Errorf("insert tag of society %d: %w", s.ID, err)
			}
			position++
		}
		return nil
	})
}

// SetSocietyStatus changes the approval status of a society.
func (db *DB) SetSocietyStatus(ctx context.Context, id int, status string) error {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `UPDATE societies SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("set status of society %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("society %d: %w", id, recommend.ErrSocietyNotFound)
	}
	return nil
}

// UpsertStudent inserts a student or updates its major.
func (db *DB) UpsertStudent(ctx context.Context, id int, major string) error {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, `
		INSERT INTO students (id, major) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET major = excluded.major`,
		id, major); err != nil {
		return fmt.Errorf("upsert student %d: %w", id, err)
	}
	return nil
}

// AddMembership records that a student joined a society. Joining twice
// keeps the first join time.
func (db *DB) AddMembership(ctx context.Context, studentID, societyID int, joinedAt time.Time) error {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, `
		INSERT INTO memberships (student_id, society_id, joined_at) VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING`,
		studentID, societyID, joinedAt.UTC()); err != nil {
		return fmt.Errorf("add membership %d/%d: %w", studentID, societyID, err)
	}
	return nil
}

// RemoveMembership deletes a membership if present.
func (db *DB) RemoveMembership(ctx context.Context, studentID, societyID int) error {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx,
		`DELETE FROM memberships WHERE student_id = ? AND society_id = ?`,
		studentID, societyID); err != nil {
		return fmt.Errorf("remove membership %d/%d: %w", studentID, societyID, err)
	}
	return nil
}

// AddFollow records that follower follows followed.
func (db *DB) AddFollow(ctx context.Context, follower, followed int) error {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx,
		`INSERT INTO follows (follower_id, followed_id) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		follower, followed); err != nil {
		return fmt.Errorf("add follow %d->%d: %w", follower, followed, err)
	}
	return nil
}

// AddEvent inserts or replaces an event.
func (db *DB) AddEvent(ctx context.Context, ev recommend.Event, title string) error {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, `
		INSERT INTO events (id, society_id, title, starts_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			society_id = excluded.society_id,
			title = excluded.title,
			starts_at = excluded.starts_at`,
		ev.ID, ev.SocietyID, title, ev.StartsAt.UTC()); err != nil {
		return fmt.Errorf("add event %d: %w", ev.ID, err)
	}
	return nil
}

// RecordAttendance records that a student attended an event.
func (db *DB) RecordAttendance(ctx context.Context, eventID, studentID int) error {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx,
		`INSERT INTO event_attendance (event_id, student_id) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		eventID, studentID); err != nil {
		return fmt.Errorf("record attendance %d/%d: %w", eventID, studentID, err)
	}
	return nil
}

// withTx runs fn in a transaction, committing on success.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.Warn().Err(rbErr).Msg("Failed to roll back transaction")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
