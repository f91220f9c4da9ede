// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

/*
Package api exposes the recommendation engine over HTTP with chi.

Every response uses one envelope:

	{"success": true, "data": ..., "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 3}}
	{"success": false, "error": {"code": "VALIDATION_FAILED", "message": "...", "details": {...}}, "meta": {...}}

Endpoints:

	GET  /api/v1/students/{studentID}/recommendations?limit=&diversity=
	GET  /api/v1/students/{studentID}/recommendations/initial?limit=
	GET  /api/v1/students/{studentID}/societies/{societyID}/explanation
	GET  /api/v1/students/{studentID}/preferences
	GET  /api/v1/societies/popular?limit=&recent_boost=
	POST /api/v1/feedback
	POST /api/v1/admin/corpus/refit
	GET  /api/v1/health/live
	GET  /api/v1/health/ready
	GET  /metrics

The /api/v1 routes are rate limited per client IP (go-chi/httprate),
bounded by the request timeout and counted in Prometheus. CORS is handled
by go-chi/cors for all routes. Request bodies and queries are validated
with go-playground/validator through internal/validation.
*/
package api
