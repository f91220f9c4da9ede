// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package recommend

import (
	"fmt"
	"time"
)

// StatusApproved is the only society status eligible for recommendation.
const StatusApproved = "Approved"

// Society is a read-only view of a society record.
type Society struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
	Status      string   `json:"status"`

	MemberCount int `json:"member_count"`
	EventCount  int `json:"event_count"`

	// RecentEventCount counts events within the trailing 30 days.
	RecentEventCount int `json:"recent_event_count"`

	// AttendanceCount is the total attendance across all events.
	AttendanceCount int `json:"attendance_count"`

	// RecentMemberCount counts members who joined within the trailing 30 days.
	RecentMemberCount int `json:"recent_member_count"`
}

// Approved reports whether the society may be recommended.
//
//nolint:gocritic // value receiver keeps Society usable as a map value
func (s Society) Approved() bool {
	return s.Status == StatusApproved
}

// Event is an event hosted by a society.
type Event struct {
	ID        int       `json:"id"`
	SocietyID int       `json:"society_id"`
	StartsAt  time.Time `json:"starts_at"`
}

// Student is a read-only view of a student record. FollowedUsers holds
// student IDs.
type Student struct {
	ID              int     `json:"id"`
	Major           string  `json:"major"`
	JoinedSocieties []int   `json:"joined_societies"`
	FollowedUsers   []int   `json:"followed_users"`
	AttendedEvents  []Event `json:"attended_events"`
}

// HasHistory reports whether the student has joined any society.
func (s *Student) HasHistory() bool {
	return len(s.JoinedSocieties) > 0
}

// Candidate is a society with its relevance score for one request.
type Candidate struct {
	Society Society `json:"society"`
	Score   float64 `json:"score"`
}

// ExplanationType classifies why a society was recommended.
type ExplanationType string

const (
	ExplanationCategoryMatch     ExplanationType = "category_match"
	ExplanationTagMatch          ExplanationType = "tag_match"
	ExplanationContentSimilarity ExplanationType = "content_similarity"
	ExplanationDiversity         ExplanationType = "diversity"
	ExplanationGeneric           ExplanationType = "generic"
)

// Explanation is a human-readable reason for a recommendation.
type Explanation struct {
	Type    ExplanationType `json:"type"`
	Message string          `json:"message"`
}

// Recommendation is one ranked result.
type Recommendation struct {
	Society     Society     `json:"society"`
	Score       float64     `json:"score"`
	Explanation Explanation `json:"explanation"`
}

// DiversityLevel selects the relevance/diversity trade-off of selection.
type DiversityLevel string

const (
	DiversityLow      DiversityLevel = "low"
	DiversityBalanced DiversityLevel = "balanced"
	DiversityHigh     DiversityLevel = "high"
)

// DiversityLevels lists the levels from most to least relevance-focused.
var DiversityLevels = []DiversityLevel{DiversityLow, DiversityBalanced, DiversityHigh}

// Lambda returns the MMR relevance weight for the level. Unknown levels
// use the balanced weight.
func (l DiversityLevel) Lambda() float64 {
	switch l {
	case DiversityLow:
		return 0.9
	case DiversityHigh:
		return 0.5
	default:
		return 0.7
	}
}

// ParseDiversityLevel parses a level name. The empty string is balanced.
func ParseDiversityLevel(s string) (DiversityLevel, error) {
	switch DiversityLevel(s) {
	case "":
		return DiversityBalanced, nil
	case DiversityLow, DiversityBalanced, DiversityHigh:
		return DiversityLevel(s), nil
	default:
		return "", fmt.Errorf("unknown diversity level %q", s)
	}
}
