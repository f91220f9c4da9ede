// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

// Package feedback records student interactions with societies and turns
// them into time-decayed preference adjustments.
//
// Every event carries a base weight by type (rating 2.0, relevance 1.5,
// click 0.5, view_details 0.8, join 3.0). Its contribution decays with age:
//
//	contribution = weight * 2^(-days_old / half_life_days)
//
// An explicit Value on a rating or relevance event scales the weight by
// (value-3)/2, so 3/5 is neutral, 5/5 positive and 1/5 negative. The full
// contribution goes to the society, 80% to its category and 60% to each of
// its tags. Each dimension is then divided by its largest absolute value and
// clamped to [-1, 1].
//
// Adjustments rescale candidate scores:
//
//	adjustment = society*|society|*2 + category*1.5 + avg(matching tags)
//	score     *= 1 + 0.5*adjustment
package feedback

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnknownType is returned for a feedback type outside the known set.
var ErrUnknownType = errors.New("unknown feedback type")

// Type is the kind of interaction a feedback event records.
type Type string

const (
	TypeRating      Type = "rating"
	TypeRelevance   Type = "relevance"
	TypeClick       Type = "click"
	TypeViewDetails Type = "view_details"
	TypeJoin        Type = "join"
)

var baseWeights = map[Type]float64{
	TypeRating:      2.0,
	TypeRelevance:   1.5,
	TypeClick:       0.5,
	TypeViewDetails: 0.8,
	TypeJoin:        3.0,
}

// ParseType validates a feedback type name.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if _, ok := baseWeights[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
	return t, nil
}

// BaseWeight returns the fixed weight of the type, or 0 if unknown.
func (t Type) BaseWeight() float64 {
	return baseWeights[t]
}

// explicit reports whether an event value rescales the weight.
func (t Type) explicit() bool {
	return t == TypeRating || t == TypeRelevance
}

// Event is one recorded interaction. Events are append-only.
type Event struct {
	ID        string         `json:"id"`
	StudentID int            `json:"student_id"`
	SocietyID int            `json:"society_id"`
	Type      Type           `json:"feedback_type"`
	Timestamp time.Time      `json:"timestamp"`
	Value     *float64       `json:"value,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Input is a feedback event to record.
type Input struct {
	StudentID int
	SocietyID int
	Type      string
	Value     *float64
	Metadata  map[string]any
}

// Adjustments are a student's preference adjustments, each in [-1, 1].
type Adjustments struct {
	Categories map[string]float64 `json:"categories"`
	Tags       map[string]float64 `json:"tags"`
	Societies  map[int]float64    `json:"societies"`
}

// NewAdjustments returns empty adjustments.
func NewAdjustments() Adjustments {
	return Adjustments{
		Categories: make(map[string]float64),
		Tags:       make(map[string]float64),
		Societies:  make(map[int]float64),
	}
}

// Empty reports whether no dimension holds a value.
func (a *Adjustments) Empty() bool {
	return len(a.Categories) == 0 && len(a.Tags) == 0 && len(a.Societies) == 0
}

// Store is an append-only feedback log.
type Store interface {
	// Append durably records one event.
	Append(ctx context.Context, ev Event) error

	// ListByStudent returns a student's events, oldest first.
	ListByStudent(ctx context.Context, studentID int) ([]Event, error)
}

// Publisher announces recorded feedback to other components.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}
