// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package feedback

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store. Events are lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[int][]Event
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[int][]Event)}
}

// Append records ev.
//
//nolint:gocritic // Event passed by value to match Store
func (s *MemoryStore) Append(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[ev.StudentID] = append(s.events[ev.StudentID], ev)
	return nil
}

// ListByStudent returns a copy of the student's events, oldest first.
func (s *MemoryStore) ListByStudent(ctx context.Context, studentID int) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	events := make([]Event, len(s.events[studentID]))
	copy(events, s.events[studentID])
	s.mu.RUnlock()

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	return events, nil
}
