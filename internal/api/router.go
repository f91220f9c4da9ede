// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/societyrec/internal/middleware"
)

// slowRequestThreshold is the latency above which API requests are logged
// at warn level.
const slowRequestThreshold = time.Second

// NewRouter builds the chi router.
func NewRouter(h *Handler, cfg MiddlewareConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(&cfg))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
	})

	// Health and metrics are not rate limited so probes and scrapes always
	// get through.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RateLimit(&cfg))
		r.Use(Timeout(cfg.RequestTimeout))
		r.Use(PrometheusMetrics)
		r.Use(AccessLog)
		r.Use(middleware.SlowRequests(slowRequestThreshold))
		r.Use(middleware.Compression)

		r.Route("/students/{studentID}", func(r chi.Router) {
			r.Get("/recommendations", h.Recommendations)
			r.Get("/recommendations/initial", h.InitialRecommendations)
			r.Get("/societies/{societyID}/explanation", h.Explanation)
			r.Get("/preferences", h.Preferences)
		})
		r.Get("/societies/popular", h.PopularSocieties)
		r.Post("/feedback", h.RecordFeedback)
		r.Post("/admin/corpus/refit", h.RefitCorpus)
	})

	return r
}
