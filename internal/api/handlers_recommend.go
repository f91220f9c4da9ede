// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package api

import (
	"net/http"

	"github.com/tomtom215/societyrec/internal/logging"
	"github.com/tomtom215/societyrec/internal/recommend"
)

// Recommendations handles
// GET /api/v1/students/{studentID}/recommendations?limit=&diversity=
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	studentID, ok := pathID(r, "studentID")
	if !ok {
		rw.BadRequest("Invalid student ID")
		return
	}
	query, verr := parseRecommendationsQuery(r.URL.Query())
	if verr != nil {
		rw.ValidationError(verr.Error(), verr.Details())
		return
	}

	recs, err := h.recommender.Recommend(r.Context(), studentID, query.Limit, recommend.DiversityLevel(query.Diversity))
	if err != nil {
		handleServiceError(rw, r, "Failed to generate recommendations", err)
		return
	}
	rw.SuccessList(recs, len(recs))
}

// InitialRecommendations handles
// GET /api/v1/students/{studentID}/recommendations/initial?limit=
// Unknown students get an empty list.
func (h *Handler) InitialRecommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	studentID, ok := pathID(r, "studentID")
	if !ok {
		rw.BadRequest("Invalid student ID")
		return
	}
	query, verr := parseRecommendationsQuery(r.URL.Query())
	if verr != nil {
		rw.ValidationError(verr.Error(), verr.Details())
		return
	}

	societies, err := h.coldStart.InitialRecommendations(r.Context(), studentID, query.Limit)
	if err != nil {
		handleServiceError(rw, r, "Failed to generate initial recommendations", err)
		return
	}
	rw.SuccessList(societies, len(societies))
}

// Explanation handles
// GET /api/v1/students/{studentID}/societies/{societyID}/explanation
func (h *Handler) Explanation(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	studentID, ok := pathID(r, "studentID")
	if !ok {
		rw.BadRequest("Invalid student ID")
		return
	}
	societyID, ok := pathID(r, "societyID")
	if !ok {
		rw.BadRequest("Invalid society ID")
		return
	}

	explanation, err := h.recommender.Explain(r.Context(), studentID, societyID)
	if err != nil {
		handleServiceError(rw, r, "Failed to explain recommendation", err)
		return
	}
	rw.Success(explanation)
}

// PopularSocieties handles GET /api/v1/societies/popular?limit=&recent_boost=
func (h *Handler) PopularSocieties(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	query, verr := parsePopularQuery(r.URL.Query())
	if verr != nil {
		rw.ValidationError(verr.Error(), verr.Details())
		return
	}

	societies, err := h.recommender.PopularSocieties(r.Context(), query.Limit, query.RecentBoost)
	if err != nil {
		handleServiceError(rw, r, "Failed to rank popular societies", err)
		return
	}
	rw.SuccessList(societies, len(societies))
}

// RefitCorpus handles POST /api/v1/admin/corpus/refit.
func (h *Handler) RefitCorpus(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if err := h.recommender.UpdateSimilarityModel(r.Context()); err != nil {
		handleServiceError(rw, r, "Failed to refit similarity models", err)
		return
	}
	logging.Ctx(r.Context()).Info().Msg("Similarity models refit on request")
	rw.Success(map[string]bool{"refit": true})
}
