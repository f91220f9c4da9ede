// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package textsim

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"
)

// Model is a fitted corpus model: a TF-IDF vectorizer over 1..MaxNGram
// grams and a unigram count vocabulary for keyword extraction. A Model is
// immutable once fitted and is gob-encoded for persistence.
type Model struct {
	// Vocabulary maps an n-gram to its TF-IDF column.
	Vocabulary map[string]int
	IDF        []float64

	// Counts maps each keyword-vocabulary term to its corpus count.
	Counts map[string]int

	MaxNGram  int
	Documents int
	FittedAt  time.Time
}

// fitModel fits a Model on documents. It keeps the maxFeatures most
// frequent n-grams (ties broken alphabetically) and uses smooth IDF:
//
//	idf(t) = ln((1 + n) / (1 + df(t))) + 1
func fitModel(ctx context.Context, documents []string, maxFeatures, maxNGram int) (*Model, error) {
	termFreq := make(map[string]int)
	docFreq := make(map[string]int)
	unigramFreq := make(map[string]int)

	for i, doc := range documents {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		tokens := Preprocess(doc)
		seen := make(map[string]struct{})
		for _, gram := range ngrams(tokens, maxNGram) {
			termFreq[gram]++
			if _, ok := seen[gram]; !ok {
				seen[gram] = struct{}{}
				docFreq[gram]++
			}
		}
		for _, tok := range tokens {
			unigramFreq[tok]++
		}
	}

	if len(termFreq) == 0 {
		return nil, ErrEmptyVocabulary
	}

	terms := topTerms(termFreq, maxFeatures)
	sort.Strings(terms)

	n := float64(len(documents))
	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		vocab[term] = i
		idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	counts := make(map[string]int, maxFeatures)
	for _, term := range topTerms(unigramFreq, maxFeatures) {
		counts[term] = unigramFreq[term]
	}

	return &Model{
		Vocabulary: vocab,
		IDF:        idf,
		Counts:     counts,
		MaxNGram:   maxNGram,
		Documents:  len(documents),
		FittedAt:   time.Now().UTC(),
	}, nil
}

// vector returns the L2-normalized sparse TF-IDF vector of tokens.
func (m *Model) vector(tokens []string) map[int]float64 {
	vec := make(map[int]float64)
	for _, gram := range ngrams(tokens, m.MaxNGram) {
		if col, ok := m.Vocabulary[gram]; ok {
			vec[col] += m.IDF[col]
		}
	}

	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for col := range vec {
		vec[col] /= norm
	}
	return vec
}

// keywords returns up to k in-vocabulary terms of tokens with the highest
// counts, ties broken alphabetically.
func (m *Model) keywords(tokens []string, k int) []string {
	counts := make(map[string]int)
	for _, tok := range tokens {
		if _, ok := m.Counts[tok]; ok {
			counts[tok]++
		}
	}
	return topTerms(counts, k)
}

// ngrams returns all 1..maxN grams of tokens joined by single spaces.
func ngrams(tokens []string, maxN int) []string {
	if maxN < 1 {
		maxN = 1
	}
	grams := make([]string, 0, len(tokens)*maxN)
	for n := 1; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			grams = append(grams, strings.Join(tokens[i:i+n], " "))
		}
	}
	return grams
}

// topTerms returns the k terms with the highest frequency, ties broken
// alphabetically.
func topTerms(freq map[string]int, k int) []string {
	terms := make([]string, 0, len(freq))
	for t := range freq {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if k > 0 && len(terms) > k {
		terms = terms[:k]
	}
	return terms
}

// sparseCosine returns the dot product of two L2-normalized sparse vectors.
func sparseCosine(a, b map[int]float64) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	dot := 0.0
	for col, v := range a {
		dot += v * b[col]
	}
	return clamp01(dot)
}

// denseCosine returns the cosine similarity of two embeddings clipped to
// [0, 1]. Mismatched or zero vectors score 0.
func denseCosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return clamp01(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// jaccard returns the Jaccard similarity of the sets formed by a and b.
func jaccard(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, s := range a {
		setA[s] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, s := range b {
		setB[s] = struct{}{}
	}
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	inter := 0
	for s := range setA {
		if _, ok := setB[s]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(setA)+len(setB)-inter)
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
