// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

// Package validation validates API request structs with go-playground/validator.
//
// Besides the built-in rules it registers:
//
//   - feedback_type: one of rating, relevance, click, view_details, join
//   - diversity_level: one of low, balanced, high
//
// Error field names follow the json tag, so messages match the request body:
//
//	type FeedbackRequest struct {
//	    StudentID    int    `json:"student_id" validate:"required,gt=0"`
//	    FeedbackType string `json:"feedback_type" validate:"required,feedback_type"`
//	}
package validation
