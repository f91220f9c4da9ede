// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

// Package middleware holds transport-level HTTP middleware that is
// independent of the API envelope: gzip compression and slow request
// logging. Both use the func(http.Handler) http.Handler shape chi expects.
//
//	r.Use(middleware.SlowRequests(time.Second))
//	r.Use(middleware.Compression)
package middleware
