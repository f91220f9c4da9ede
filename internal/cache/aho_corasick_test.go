// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package cache

import (
	"reflect"
	"sort"
	"testing"
)

func TestAhoCorasickSearch(t *testing.T) {
	t.Parallel()

	ac := NewAhoCorasick()
	ac.AddPattern("he", nil)
	ac.AddPattern("she", nil)
	ac.AddPattern("his", nil)
	ac.AddPattern("hers", nil)
	ac.Build()

	found := map[string]int{}
	for _, m := range ac.Search("ushers") {
		found[m.Pattern] = m.Position
	}

	want := map[string]int{"she": 1, "he": 2, "hers": 2}
	if !reflect.DeepEqual(found, want) {
		t.Errorf("Search(ushers) = %v, want %v", found, want)
	}
}

func TestAhoCorasickSearchWords(t *testing.T) {
	t.Parallel()

	ac := NewAhoCorasick()
	ac.AddPattern("art", "arts")
	ac.AddPattern("board games", "gaming")
	ac.AddPattern("games", "gaming")
	ac.Build()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"substring inside word is ignored", "a great party", nil},
		{"single word", "Modern Art club", []string{"art"}},
		{"phrase and suffix word", "Board Games society", []string{"board games", "games"}},
		{"punctuation is a boundary", "art, music", []string{"art"}},
		{"no match", "rowing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got []string
			for _, m := range ac.SearchWords(tt.text) {
				got = append(got, m.Pattern)
			}
			sort.Strings(got)
			want := append([]string(nil), tt.want...)
			sort.Strings(want)
			if !reflect.DeepEqual(got, want) {
				t.Errorf("SearchWords(%q) = %v, want %v", tt.text, got, want)
			}
		})
	}
}

func TestAhoCorasickMultibytePosition(t *testing.T) {
	t.Parallel()

	ac := NewAhoCorasick()
	ac.AddPattern("café", nil)
	ac.Build()

	text := "le café club"
	matches := ac.SearchWords(text)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if got := text[matches[0].Position : matches[0].Position+len("café")]; got != "café" {
		t.Errorf("Position slices %q, want café", got)
	}
}

func TestAhoCorasickRequiresBuild(t *testing.T) {
	t.Parallel()

	ac := NewAhoCorasick()
	ac.AddPattern("chess", nil)
	if ac.Contains("chess club") {
		t.Error("unbuilt automaton should not match")
	}
	ac.Build()
	if !ac.Contains("chess club") {
		t.Error("built automaton should match")
	}
	if ac.PatternCount() != 1 {
		t.Errorf("PatternCount() = %d, want 1", ac.PatternCount())
	}
}

func TestPatternMatcherGroups(t *testing.T) {
	t.Parallel()

	pm := NewPatternMatcher(map[string][]string{
		"gaming": {"chess", "board games", "strategy"},
		"arts":   {"painting", "art"},
	})

	got := pm.Groups("Chess and strategy board games, plus painting")
	want := []string{"gaming", "arts"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Groups() = %v, want %v", got, want)
	}

	if groups := pm.Groups("rowing"); len(groups) != 0 {
		t.Errorf("Groups(rowing) = %v, want empty", groups)
	}
	if n := len(pm.Match("chess chess")); n != 2 {
		t.Errorf("Match found %d occurrences, want 2", n)
	}
}
