// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package feedback

import (
	"context"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Key prefix for BadgerDB storage
const eventKeyPrefix = "feedback:"

// BadgerStore is a durable Store on BadgerDB. Each event is written under
// its own key in a single transaction:
//
//	feedback:<student>:<society>:<unix nanos, zero padded>:<event id>
//
// so appends never read or rewrite existing data, and a student's events
// are one prefix range scan.
type BadgerStore struct {
	db   *badger.DB
	owns bool
}

// NewBadgerStore wraps an open database. The caller keeps ownership of db.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// OpenBadgerStore opens a database at dir. An empty dir opens an in-memory
// database. Close releases it.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open feedback store: %w", err)
	}
	return &BadgerStore{db: db, owns: true}, nil
}

// Close closes the database if the store opened it.
func (s *BadgerStore) Close() error {
	if !s.owns {
		return nil
	}
	return s.db.Close()
}

func eventKey(ev *Event) []byte {
	return []byte(fmt.Sprintf("%s%d:%d:%020d:%s",
		eventKeyPrefix, ev.StudentID, ev.SocietyID, ev.Timestamp.UnixNano(), ev.ID))
}

func studentPrefix(studentID int) []byte {
	return []byte(fmt.Sprintf("%s%d:", eventKeyPrefix, studentID))
}

// Append records ev.
//
//nolint:gocritic // Event passed by value to match Store
func (s *BadgerStore) Append(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal feedback event: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(eventKey(&ev), data); err != nil {
			return fmt.Errorf("set feedback event: %w", err)
		}
		return nil
	})
}

// ListByStudent returns the student's events, oldest first.
func (s *BadgerStore) ListByStudent(ctx context.Context, studentID int) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var events []Event
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := studentPrefix(studentID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var ev Event
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &ev)
			}); err != nil {
				return fmt.Errorf("decode feedback event: %w", err)
			}
			events = append(events, ev)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list feedback events: %w", err)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	return events, nil
}
