// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/societyrec/internal/recommend"
)

// activityWindow is the trailing window of the recent counters.
const activityWindow = 30 * 24 * time.Hour

// societySelect joins each society with its membership, event and
// attendance aggregates. The three placeholders are the window start
// (memberships), window start and window end (events).
const societySelect = `
SELECT s.id, s.name, s.category, s.description, s.status,
	COALESCE(m.members, 0), COALESCE(m.recent_members, 0),
	COALESCE(e.events, 0), COALESCE(e.recent_events, 0),
	COALESCE(a.attendance, 0)
FROM societies s
LEFT JOIN (
	SELECT society_id, COUNT(*) AS members,
		COUNT(*) FILTER (WHERE joined_at >= ?) AS recent_members
	FROM memberships GROUP BY society_id
) m ON m.society_id = s.id
LEFT JOIN (
	SELECT society_id, COUNT(*) AS events,
		COUNT(*) FILTER (WHERE starts_at >= ? AND starts_at <= ?) AS recent_events
	FROM events GROUP BY society_id
) e ON e.society_id = s.id
LEFT JOIN (
	SELECT ev.society_id, COUNT(*) AS attendance
	FROM event_attendance ea JOIN events ev ON ev.id = ea.event_id
	GROUP BY ev.society_id
) a ON a.society_id = s.id`

func (db *DB) windowArgs() []any {
	now := db.now().UTC()
	start := now.Add(-activityWindow)
	return []any{start, start, now}
}

// ApprovedSocieties returns every Approved society ordered by ID.
func (db *DB) ApprovedSocieties(ctx context.Context) ([]recommend.Society, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	args := append(db.windowArgs(), recommend.StatusApproved)
	societies, err := db.querySocieties(ctx, societySelect+` WHERE s.status = ? ORDER BY s.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("approved societies: %w", err)
	}
	return societies, nil
}

// Societies returns the societies with the given IDs in request order.
// Unknown IDs are skipped.
func (db *DB) Societies(ctx context.Context, ids []int) ([]recommend.Society, error) {
	if len(ids) == 0 {
		return []recommend.Society{}, nil
	}
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	unique := uniqueInts(ids)
	args := append(db.windowArgs(), intArgs(unique)...)
	found, err := db.querySocieties(ctx, societySelect+` WHERE s.id IN (`+placeholders(len(unique))+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("societies: %w", err)
	}

	byID := make(map[int]recommend.Society, len(found))
	for _, s := range found {
		byID[s.ID] = s
	}
	out := make([]recommend.Society, 0, len(ids))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			s.Tags = append([]string(nil), s.Tags...)
			out = append(out, s)
		}
	}
	return out, nil
}

func (db *DB) querySocieties(ctx context.Context, query string, args ...any) ([]recommend.Society, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeWithLog(rows, db.logger, "rows")

	var societies []recommend.Society
	for rows.Next() {
		var s recommend.Society
		if err := rows.Scan(&s.ID, &s.Name, &s.Category, &s.Description, &s.Status,
			&s.MemberCount, &s.RecentMemberCount,
			&s.EventCount, &s.RecentEventCount,
			&s.AttendanceCount); err != nil {
			return nil, fmt.Errorf("scan society: %w", err)
		}
		s.Tags = []string{}
		societies = append(societies, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(societies) == 0 {
		return []recommend.Society{}, nil
	}

	if err := db.attachTags(ctx, societies); err != nil {
		return nil, err
	}
	return societies, nil
}

func (db *DB) attachTags(ctx context.Context, societies []recommend.Society) error {
	index := make(map[int]int, len(societies))
	ids := make([]int, len(societies))
	for i := range societies {
		index[societies[i].ID] = i
		ids[i] = societies[i].ID
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT society_id, tag FROM society_tags WHERE society_id IN (`+placeholders(len(ids))+`) ORDER BY society_id, position`,
		intArgs(ids)...)
	if err != nil {
		return fmt.Errorf("query tags: %w", err)
	}
	defer closeWithLog(rows, db.logger, "rows")

	for rows.Next() {
		var id int
		var tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return fmt.Errorf("scan tag: %w", err)
		}
		if i, ok := index[id]; ok {
			societies[i].Tags = append(societies[i].Tags, tag)
		}
	}
	return rows.Err()
}

// Student returns one student with history, or an error wrapping
// recommend.ErrStudentNotFound.
func (db *DB) Student(ctx context.Context, id int) (recommend.Student, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	s := recommend.Student{ID: id}
	err := db.conn.QueryRowContext(ctx, `SELECT major FROM students WHERE id = ?`, id).Scan(&s.Major)
	if errors.Is(err, sql.ErrNoRows) {
		return recommend.Student{}, fmt.Errorf("student %d: %w", id, recommend.ErrStudentNotFound)
	}
	if err != nil {
		return recommend.Student{}, fmt.Errorf("student %d: %w", id, err)
	}

	students := []recommend.Student{s}
	if err := db.attachHistory(ctx, students, `WHERE %s = ?`, id); err != nil {
		return recommend.Student{}, fmt.Errorf("student %d: %w", id, err)
	}
	return students[0], nil
}

// Students returns every student with history, ordered by ID.
func (db *DB) Students(ctx context.Context) ([]recommend.Student, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT id, major FROM students ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("students: %w", err)
	}
	students := []recommend.Student{}
	for rows.Next() {
		var s recommend.Student
		if err := rows.Scan(&s.ID, &s.Major); err != nil {
			closeQuietly(rows)
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, s)
	}
	err = rows.Err()
	closeQuietly(rows)
	if err != nil {
		return nil, fmt.Errorf("students: %w", err)
	}

	if err := db.attachHistory(ctx, students, ""); err != nil {
		return nil, fmt.Errorf("students: %w", err)
	}
	return students, nil
}

// attachHistory loads memberships, follows and attended events for
// students. filter is a WHERE clause with one %s for the student column,
// or "" for all students.
func (db *DB) attachHistory(ctx context.Context, students []recommend.Student, filter string, args ...any) error {
	index := make(map[int]int, len(students))
	for i := range students {
		index[students[i].ID] = i
		students[i].JoinedSocieties = []int{}
		students[i].FollowedUsers = []int{}
		students[i].AttendedEvents = []recommend.Event{}
	}
	where := func(column string) string {
		if filter == "" {
			return ""
		}
		return fmt.Sprintf(filter, column)
	}

	err := db.eachRow(ctx,
		`SELECT student_id, society_id FROM memberships `+where("student_id")+` ORDER BY student_id, joined_at, society_id`,
		args, func(scan func(...any) error) error {
			var studentID, societyID int
			if err := scan(&studentID, &societyID); err != nil {
				return err
			}
			if i, ok := index[studentID]; ok {
				students[i].JoinedSocieties = append(students[i].JoinedSocieties, societyID)
			}
			return nil
		})
	if err != nil {
		return fmt.Errorf("memberships: %w", err)
	}

	err = db.eachRow(ctx,
		`SELECT follower_id, followed_id FROM follows `+where("follower_id")+` ORDER BY follower_id, followed_id`,
		args, func(scan func(...any) error) error {
			var follower, followed int
			if err := scan(&follower, &followed); err != nil {
				return err
			}
			if i, ok := index[follower]; ok {
				students[i].FollowedUsers = append(students[i].FollowedUsers, followed)
			}
			return nil
		})
	if err != nil {
		return fmt.Errorf("follows: %w", err)
	}

	err = db.eachRow(ctx,
		`SELECT ea.student_id, e.id, e.society_id, e.starts_at
		FROM event_attendance ea JOIN events e ON e.id = ea.event_id `+where("ea.student_id")+`
		ORDER BY ea.student_id, e.starts_at, e.id`,
		args, func(scan func(...any) error) error {
			var studentID int
			var ev recommend.Event
			if err := scan(&studentID, &ev.ID, &ev.SocietyID, &ev.StartsAt); err != nil {
				return err
			}
			if i, ok := index[studentID]; ok {
				ev.StartsAt = ev.StartsAt.UTC()
				students[i].AttendedEvents = append(students[i].AttendedEvents, ev)
			}
			return nil
		})
	if err != nil {
		return fmt.Errorf("attendance: %w", err)
	}
	return nil
}

// MajorMembershipCounts counts memberships per society among students of
// major, compared case-insensitively, excluding one student.
func (db *DB) MajorMembershipCounts(ctx context.Context, major string, excludeStudentID int) (map[int]int, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	counts, err := db.countBySociety(ctx,
		`SELECT m.society_id, COUNT(*) FROM memberships m
		JOIN students st ON st.id = m.student_id
		WHERE lower(trim(st.major)) = lower(trim(?)) AND st.id <> ?
		GROUP BY m.society_id`,
		major, excludeStudentID)
	if err != nil {
		return nil, fmt.Errorf("major membership counts: %w", err)
	}
	return counts, nil
}

// MembershipCounts counts memberships per society among the given
// students. Duplicate IDs count once.
func (db *DB) MembershipCounts(ctx context.Context, studentIDs []int) (map[int]int, error) {
	if len(studentIDs) == 0 {
		return map[int]int{}, nil
	}
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	unique := uniqueInts(studentIDs)
	counts, err := db.countBySociety(ctx,
		`SELECT society_id, COUNT(*) FROM memberships WHERE student_id IN (`+placeholders(len(unique))+`) GROUP BY society_id`,
		intArgs(unique)...)
	if err != nil {
		return nil, fmt.Errorf("membership counts: %w", err)
	}
	return counts, nil
}

func (db *DB) countBySociety(ctx context.Context, query string, args ...any) (map[int]int, error) {
	counts := make(map[int]int)
	err := db.eachRow(ctx, query, args, func(scan func(...any) error) error {
		var id, n int
		if err := scan(&id, &n); err != nil {
			return err
		}
		counts[id] = n
		return nil
	})
	return counts, err
}

// eachRow runs query and calls fn for every row with the row's Scan.
func (db *DB) eachRow(ctx context.Context, query string, args []any, fn func(scan func(...any) error) error) error {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer closeWithLog(rows, db.logger, "rows")

	for rows.Next() {
		if err := fn(rows.Scan); err != nil {
			return err
		}
	}
	return rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func intArgs(ids []int) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func uniqueInts(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

var _ recommend.Catalog = (*DB)(nil)
