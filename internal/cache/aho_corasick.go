// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package cache

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// AhoCorasick finds all occurrences of a set of patterns in a text in
// O(n + m + z) time (text length, total pattern length, match count).
// Matching is case-insensitive.
//
// Example:
//
//	ac := NewAhoCorasick()
//	ac.AddPattern("board games", "gaming")
//	ac.AddPattern("chess", "gaming")
//	ac.Build()
//
//	matches := ac.SearchWords("Chess and board games night")
//	// Match{Pattern: "chess", Data: "gaming", Position: 0}
//	// Match{Pattern: "board games", Data: "gaming", Position: 10}
type AhoCorasick struct {
	mu       sync.RWMutex
	root     *acNode
	patterns []Pattern
	built    bool
}

// acNode is a state in the automaton.
type acNode struct {
	children map[rune]*acNode
	failure  *acNode
	output   []int // indices of patterns ending here
}

// Pattern is a search pattern with associated data.
type Pattern struct {
	Text string
	Data any
}

// Match is a pattern occurrence. Position is the byte offset of the match
// start in the lower-cased text.
type Match struct {
	Pattern  string
	Data     any
	Position int
}

// NewAhoCorasick creates an empty automaton.
func NewAhoCorasick() *AhoCorasick {
	return &AhoCorasick{root: newACNode()}
}

func newACNode() *acNode {
	return &acNode{children: make(map[rune]*acNode)}
}

// AddPattern adds a pattern. Patterns added after Build require another Build.
func (ac *AhoCorasick) AddPattern(pattern string, data any) {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if pattern == "" {
		return
	}

	ac.mu.Lock()
	defer ac.mu.Unlock()

	ac.built = false
	ac.patterns = append(ac.patterns, Pattern{Text: pattern, Data: data})
}

// AddPatterns adds several patterns sharing the same data.
func (ac *AhoCorasick) AddPatterns(patterns []string, data any) {
	for _, p := range patterns {
		ac.AddPattern(p, data)
	}
}

// Build constructs the trie and failure links.
func (ac *AhoCorasick) Build() {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	if ac.built {
		return
	}

	ac.root = newACNode()
	for i, p := range ac.patterns {
		node := ac.root
		for _, ch := range p.Text {
			if node.children[ch] == nil {
				node.children[ch] = newACNode()
			}
			node = node.children[ch]
		}
		node.output = append(node.output, i)
	}

	queue := make([]*acNode, 0, len(ac.root.children))
	for _, child := range ac.root.children {
		child.failure = ac.root
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for ch, child := range current.children {
			queue = append(queue, child)

			fail := current.failure
			for fail != nil && fail.children[ch] == nil {
				fail = fail.failure
			}
			if fail == nil {
				child.failure = ac.root
				continue
			}
			child.failure = fail.children[ch]
			child.output = append(child.output, child.failure.output...)
		}
	}

	ac.built = true
}

// Search returns every match in text, including matches inside words.
func (ac *AhoCorasick) Search(text string) []Match {
	return ac.search(text, false)
}

// SearchWords returns only matches that start and end on word boundaries,
// so "art" does not match inside "party".
func (ac *AhoCorasick) SearchWords(text string) []Match {
	return ac.search(text, true)
}

func (ac *AhoCorasick) search(text string, wholeWords bool) []Match {
	ac.mu.RLock()
	defer ac.mu.RUnlock()

	if !ac.built || len(ac.patterns) == 0 {
		return nil
	}

	lowered := strings.ToLower(text)
	var matches []Match
	node := ac.root

	for i, ch := range lowered {
		for node != nil && node.children[ch] == nil {
			node = node.failure
		}
		if node == nil {
			node = ac.root
			continue
		}
		node = node.children[ch]

		end := i + utf8.RuneLen(ch)
		for _, idx := range node.output {
			p := ac.patterns[idx]
			start := end - len(p.Text)
			if wholeWords && !isBoundary(lowered, start, end) {
				continue
			}
			matches = append(matches, Match{Pattern: p.Text, Data: p.Data, Position: start})
		}
	}

	return matches
}

// Contains reports whether any pattern occurs in text.
func (ac *AhoCorasick) Contains(text string) bool {
	return len(ac.Search(text)) > 0
}

// PatternCount returns the number of patterns added.
func (ac *AhoCorasick) PatternCount() int {
	ac.mu.RLock()
	defer ac.mu.RUnlock()
	return len(ac.patterns)
}

// isBoundary reports whether text[start:end] is delimited by non-word runes.
func isBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// PatternMatcher groups patterns by the data value they report.
type PatternMatcher struct {
	ac *AhoCorasick
}

// NewPatternMatcher builds a matcher where each key of groups is the data
// reported for every pattern in its slice.
func NewPatternMatcher(groups map[string][]string) *PatternMatcher {
	ac := NewAhoCorasick()
	for data, patterns := range groups {
		ac.AddPatterns(patterns, data)
	}
	ac.Build()
	return &PatternMatcher{ac: ac}
}

// Groups returns the distinct group names with at least one whole-word
// match in text, in first-occurrence order.
func (pm *PatternMatcher) Groups(text string) []string {
	matches := pm.ac.SearchWords(text)
	seen := make(map[string]struct{}, len(matches))
	groups := make([]string, 0, len(matches))
	for _, m := range matches {
		name, _ := m.Data.(string)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		groups = append(groups, name)
	}
	return groups
}

// Match returns all whole-word matches in text.
func (pm *PatternMatcher) Match(text string) []Match {
	return pm.ac.SearchWords(text)
}
