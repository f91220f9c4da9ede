// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package api

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/societyrec/internal/validation"
)

// RecommendationsQuery is the query of the recommendation endpoints.
type RecommendationsQuery struct {
	Limit     int    `json:"limit" validate:"gte=0,lte=100"`
	Diversity string `json:"diversity" validate:"omitempty,diversity_level"`
}

// PopularQuery is the query of the popular societies endpoint.
type PopularQuery struct {
	Limit       int  `json:"limit" validate:"gte=0,lte=100"`
	RecentBoost bool `json:"recent_boost"`
}

// FeedbackRequest is the body of POST /api/v1/feedback.
type FeedbackRequest struct {
	StudentID    int            `json:"student_id" validate:"required,gt=0"`
	SocietyID    int            `json:"society_id" validate:"required,gt=0"`
	FeedbackType string         `json:"feedback_type" validate:"required,feedback_type"`
	Value        *float64       `json:"value,omitempty" validate:"omitempty,gte=1,lte=5"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// FeedbackResponse is the data of a recorded feedback event.
type FeedbackResponse struct {
	Recorded bool   `json:"recorded"`
	EventID  string `json:"event_id"`
}

// parseIntParam reads a non-negative integer query parameter; absent means 0.
func parseIntParam(q url.Values, name string) (int, *validation.RequestValidationError) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &validation.RequestValidationError{Fields: []validation.FieldError{{
			Field:   name,
			Tag:     "integer",
			Message: name + " must be an integer",
		}}}
	}
	return n, nil
}

func parseRecommendationsQuery(q url.Values) (RecommendationsQuery, *validation.RequestValidationError) {
	limit, verr := parseIntParam(q, "limit")
	if verr != nil {
		return RecommendationsQuery{}, verr
	}
	query := RecommendationsQuery{
		Limit:     limit,
		Diversity: strings.ToLower(strings.TrimSpace(q.Get("diversity"))),
	}
	return query, validation.ValidateStruct(&query)
}

func parsePopularQuery(q url.Values) (PopularQuery, *validation.RequestValidationError) {
	limit, verr := parseIntParam(q, "limit")
	if verr != nil {
		return PopularQuery{}, verr
	}
	query := PopularQuery{Limit: limit}
	if raw := q.Get("recent_boost"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return PopularQuery{}, &validation.RequestValidationError{Fields: []validation.FieldError{{
				Field:   "recent_boost",
				Tag:     "boolean",
				Message: "recent_boost must be a boolean",
			}}}
		}
		query.RecentBoost = b
	}
	return query, validation.ValidateStruct(&query)
}
