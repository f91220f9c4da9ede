// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package validation

import (
	"strings"
	"testing"
)

type feedbackRequest struct {
	StudentID    int      `json:"student_id" validate:"required,gt=0"`
	SocietyID    int      `json:"society_id" validate:"required,gt=0"`
	FeedbackType string   `json:"feedback_type" validate:"required,feedback_type"`
	Value        *float64 `json:"value,omitempty" validate:"omitempty,gte=1,lte=5"`
}

type listRequest struct {
	Limit     int    `json:"limit" validate:"min=1,max=50"`
	Diversity string `json:"diversity" validate:"omitempty,diversity_level"`
	Name      string `validate:"omitempty,max=3"`
}

func ptr(v float64) *float64 { return &v }

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return one shared instance")
	}
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      any
		wantFields []string
		wantMsg    string
	}{
		{
			name:  "valid feedback",
			input: &feedbackRequest{StudentID: 1, SocietyID: 2, FeedbackType: "join"},
		},
		{
			name:  "valid rating",
			input: &feedbackRequest{StudentID: 1, SocietyID: 2, FeedbackType: "rating", Value: ptr(4)},
		},
		{
			name:       "unknown feedback type",
			input:      &feedbackRequest{StudentID: 1, SocietyID: 2, FeedbackType: "like"},
			wantFields: []string{"feedback_type"},
			wantMsg:    "feedback_type must be one of: rating",
		},
		{
			name:       "missing ids",
			input:      &feedbackRequest{FeedbackType: "click"},
			wantFields: []string{"student_id", "society_id"},
			wantMsg:    "student_id is required",
		},
		{
			name:       "rating out of range",
			input:      &feedbackRequest{StudentID: 1, SocietyID: 2, FeedbackType: "rating", Value: ptr(9)},
			wantFields: []string{"value"},
			wantMsg:    "value must be less than or equal to 5",
		},
		{
			name:  "valid list",
			input: &listRequest{Limit: 5, Diversity: "high"},
		},
		{
			name:  "empty diversity allowed",
			input: &listRequest{Limit: 5},
		},
		{
			name:       "bad diversity and limit",
			input:      &listRequest{Limit: 51, Diversity: "max"},
			wantFields: []string{"limit", "diversity"},
			wantMsg:    "limit must be at most 50",
		},
		{
			name:       "string max counts characters",
			input:      &listRequest{Limit: 1, Name: "abcd"},
			wantFields: []string{"Name"},
			wantMsg:    "Name must be at most 3 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateStruct(tt.input)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			if len(err.Fields) != len(tt.wantFields) {
				t.Fatalf("fields = %+v, want %v", err.Fields, tt.wantFields)
			}
			for i, f := range tt.wantFields {
				if err.Fields[i].Field != f {
					t.Errorf("field %d = %q, want %q", i, err.Fields[i].Field, f)
				}
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Error() = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}
			if _, ok := err.Details()["fields"]; !ok {
				t.Error("Details() should list fields")
			}
		})
	}
}
