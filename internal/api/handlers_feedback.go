// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/societyrec/internal/recommend/feedback"
	"github.com/tomtom215/societyrec/internal/validation"
)

// maxFeedbackBody bounds the feedback request body.
const maxFeedbackBody = 64 << 10

// RecordFeedback handles POST /api/v1/feedback.
func (h *Handler) RecordFeedback(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req FeedbackRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFeedbackBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		rw.BadRequest("Invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr.Error(), verr.Details())
		return
	}

	ev, err := h.feedback.Record(r.Context(), feedback.Input{
		StudentID: req.StudentID,
		SocietyID: req.SocietyID,
		Type:      req.FeedbackType,
		Value:     req.Value,
		Metadata:  req.Metadata,
	})
	if err != nil {
		if errors.Is(err, feedback.ErrUnknownType) {
			rw.ValidationError(err.Error(), nil)
			return
		}
		handleServiceError(rw, r, "Failed to record feedback", err)
		return
	}
	rw.Created(FeedbackResponse{Recorded: true, EventID: ev.ID})
}

// Preferences handles GET /api/v1/students/{studentID}/preferences.
func (h *Handler) Preferences(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	studentID, ok := pathID(r, "studentID")
	if !ok {
		rw.BadRequest("Invalid student ID")
		return
	}
	rw.Success(h.feedback.PreferenceAdjustments(r.Context(), studentID))
}
