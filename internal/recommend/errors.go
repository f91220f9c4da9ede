// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package recommend

import "errors"

var (
	// ErrStudentNotFound is returned by a Catalog for an unknown student.
	ErrStudentNotFound = errors.New("student not found")

	// ErrSocietyNotFound is returned by a Catalog for an unknown society.
	ErrSocietyNotFound = errors.New("society not found")

	// ErrPipelineUnavailable marks a statistical pipeline failure. Callers of
	// the typed scoring variants see it wrapped; the untyped variants fall
	// back to a simpler algorithm instead.
	ErrPipelineUnavailable = errors.New("similarity pipeline unavailable")
)
