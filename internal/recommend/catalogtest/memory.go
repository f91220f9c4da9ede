// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

// Package catalogtest provides an in-memory recommend.Catalog for tests
// and offline evaluation.
package catalogtest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/tomtom215/societyrec/internal/recommend"
)

// Memory is a recommend.Catalog backed by maps. Followed users are
// resolved as students. Returned values are copies.
type Memory struct {
	mu        sync.RWMutex
	societies map[int]recommend.Society
	students  map[int]recommend.Student

	// Err, when set, is returned by every query.
	Err error
}

// New creates a catalog holding the given societies and students.
func New(societies []recommend.Society, students []recommend.Student) *Memory {
	m := &Memory{
		societies: make(map[int]recommend.Society, len(societies)),
		students:  make(map[int]recommend.Student, len(students)),
	}
	for i := range societies {
		m.PutSociety(societies[i])
	}
	for i := range students {
		m.PutStudent(students[i])
	}
	return m
}

// PutSociety inserts or replaces a society.
//
//nolint:gocritic // Society passed by value for convenience
func (m *Memory) PutSociety(s recommend.Society) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.Tags = append([]string(nil), s.Tags...)
	m.societies[s.ID] = s
}

// PutStudent inserts or replaces a student.
//
//nolint:gocritic // Student passed by value for convenience
func (m *Memory) PutStudent(s recommend.Student) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.students[s.ID] = copyStudent(&s)
}

func (m *Memory) ApprovedSocieties(ctx context.Context) ([]recommend.Society, error) {
	if err := m.check(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]recommend.Society, 0, len(m.societies))
	for _, s := range m.societies {
		if s.Approved() {
			out = append(out, copySociety(&s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Societies(ctx context.Context, ids []int) ([]recommend.Society, error) {
	if err := m.check(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]recommend.Society, 0, len(ids))
	for _, id := range ids {
		if s, ok := m.societies[id]; ok {
			out = append(out, copySociety(&s))
		}
	}
	return out, nil
}

func (m *Memory) Student(ctx context.Context, id int) (recommend.Student, error) {
	if err := m.check(ctx); err != nil {
		return recommend.Student{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.students[id]
	if !ok {
		return recommend.Student{}, fmt.Errorf("student %d: %w", id, recommend.ErrStudentNotFound)
	}
	return copyStudent(&s), nil
}

func (m *Memory) Students(ctx context.Context) ([]recommend.Student, error) {
	if err := m.check(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]recommend.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, copyStudent(&s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) MajorMembershipCounts(ctx context.Context, major string, excludeStudentID int) (map[int]int, error) {
	if err := m.check(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[int]int)
	for id, s := range m.students {
		if id == excludeStudentID || !strings.EqualFold(strings.TrimSpace(s.Major), strings.TrimSpace(major)) {
			continue
		}
		for _, soc := range s.JoinedSocieties {
			counts[soc]++
		}
	}
	return counts, nil
}

func (m *Memory) MembershipCounts(ctx context.Context, studentIDs []int) (map[int]int, error) {
	if err := m.check(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[int]int)
	seen := make(map[int]struct{}, len(studentIDs))
	for _, id := range studentIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		for _, soc := range m.students[id].JoinedSocieties {
			counts[soc]++
		}
	}
	return counts, nil
}

func (m *Memory) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.Err
}

func copySociety(s *recommend.Society) recommend.Society {
	out := *s
	out.Tags = append([]string(nil), s.Tags...)
	return out
}

func copyStudent(s *recommend.Student) recommend.Student {
	out := *s
	out.JoinedSocieties = append([]int(nil), s.JoinedSocieties...)
	out.FollowedUsers = append([]int(nil), s.FollowedUsers...)
	out.AttendedEvents = append([]recommend.Event(nil), s.AttendedEvents...)
	return out
}

var _ recommend.Catalog = (*Memory)(nil)
