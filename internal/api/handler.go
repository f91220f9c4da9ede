// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tomtom215/societyrec/internal/recommend"
	"github.com/tomtom215/societyrec/internal/recommend/feedback"
)

// Recommender is the orchestrator surface the API serves.
// *recommend.Recommender implements it.
type Recommender interface {
	Recommend(ctx context.Context, studentID, limit int, level recommend.DiversityLevel) ([]recommend.Recommendation, error)
	Explain(ctx context.Context, studentID, societyID int) (recommend.Explanation, error)
	PopularSocieties(ctx context.Context, limit int, withRecentBoost bool) ([]recommend.Society, error)
	UpdateSimilarityModel(ctx context.Context) error
}

// ColdStarter serves students without history. *coldstart.Handler
// implements it.
type ColdStarter interface {
	InitialRecommendations(ctx context.Context, studentID, limit int) ([]recommend.Society, error)
}

// FeedbackRecorder records feedback and reports preference adjustments.
// *feedback.Processor implements it.
type FeedbackRecorder interface {
	Record(ctx context.Context, in feedback.Input) (feedback.Event, error)
	PreferenceAdjustments(ctx context.Context, studentID int) feedback.Adjustments
}

// Pinger reports storage reachability for readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the JSON API.
type Handler struct {
	recommender Recommender
	coldStart   ColdStarter
	feedback    FeedbackRecorder
	db          Pinger
	logger      zerolog.Logger
}

// NewHandler creates a handler. db may be nil, in which case readiness
// does not check storage.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(rec Recommender, coldStart ColdStarter, fb FeedbackRecorder, db Pinger, logger zerolog.Logger) *Handler {
	return &Handler{
		recommender: rec,
		coldStart:   coldStart,
		feedback:    fb,
		db:          db,
		logger:      logger.With().Str("component", "api").Logger(),
	}
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// handleServiceError maps an engine error to a response.
func handleServiceError(rw *ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(r.Context().Err(), context.DeadlineExceeded):
		rw.Error(http.StatusServiceUnavailable, ErrCodeTimeout, "Request timed out")
	case errors.Is(err, recommend.ErrStudentNotFound):
		rw.NotFound("Student not found")
	case errors.Is(err, recommend.ErrSocietyNotFound):
		rw.NotFound("Society not found")
	default:
		rw.InternalError(message, err)
	}
}
