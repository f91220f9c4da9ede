// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package recommend

import "context"

// Catalog is the read-only repository of societies and students that the
// recommender consumes. internal/database implements it over DuckDB.
type Catalog interface {
	// ApprovedSocieties returns every society with status Approved.
	ApprovedSocieties(ctx context.Context) ([]Society, error)

	// Societies returns the societies with the given IDs regardless of
	// status. Unknown IDs are skipped.
	Societies(ctx context.Context, ids []int) ([]Society, error)

	// Student returns a student or an error wrapping ErrStudentNotFound.
	Student(ctx context.Context, id int) (Student, error)

	// Students returns every student.
	Students(ctx context.Context) ([]Student, error)

	// MajorMembershipCounts maps society ID to the number of its members
	// with the given major, excluding one student.
	MajorMembershipCounts(ctx context.Context, major string, excludeStudentID int) (map[int]int, error)

	// MembershipCounts maps society ID to the number of the given students
	// who are members.
	MembershipCounts(ctx context.Context, studentIDs []int) (map[int]int, error)
}

// TextSimilarity scores a text against comparison texts on a 0-5 scale.
type TextSimilarity interface {
	Similarity(ctx context.Context, text string, comparisons []string) float64
	UpdateCorpus(ctx context.Context, descriptions []string) error
}

// SemanticBooster scores the lexicon-based relatedness of two texts in [0, 1].
type SemanticBooster interface {
	Boost(text1, text2 string) float64
}

// FeedbackAdjuster rescales candidate scores from a student's feedback.
type FeedbackAdjuster interface {
	Apply(ctx context.Context, studentID int, candidates []Candidate) []Candidate
}

// ColdStarter recommends societies to a student without history.
type ColdStarter interface {
	InitialRecommendationsFor(ctx context.Context, student Student, limit int) ([]Society, error)
}

// Selector picks k of the candidates trading relevance (weight lambda)
// against redundancy. Reset drops any cached pairwise state.
type Selector interface {
	Select(ctx context.Context, candidates []Candidate, k int, lambda float64) []Candidate
	Reset()
}
