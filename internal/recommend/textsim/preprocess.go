// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package textsim

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

// minTokenLength drops tokens of two characters or fewer.
const minTokenLength = 3

// stopwords is the English stopword list applied before stemming.
var stopwords = toSet(strings.Fields(`
a about above across after afterwards again against all almost alone along
already also although always am among amongst an and another any anyhow anyone
anything anyway anywhere are around as at be became because become becomes
becoming been before beforehand behind being below beside besides between
beyond both but by can cannot could did do does doing done down due during each
either else elsewhere enough etc even ever every everyone everything everywhere
except few for former formerly from further get give go had has have having he
hence her here hereafter hereby herein hereupon hers herself him himself his
how however i if in indeed into is it its itself just keep last latter latterly
least less made many may me meanwhile might mine more moreover most mostly much
must my myself namely neither never nevertheless next no nobody none noone nor
not nothing now nowhere of off often on once one only onto or other others
otherwise our ours ourselves out over own per perhaps please put rather re
same see seem seemed seeming seems several she should since so some somehow
someone something sometime sometimes somewhere still such than that the their
theirs them themselves then thence there thereafter thereby therefore therein
thereupon these they this those though through throughout thru thus to together
too toward towards under until up upon us very via was we well were what
whatever when whence whenever where whereafter whereas whereby wherein
whereupon wherever whether which while whither who whoever whole whom whose why
will with within without would yet you your yours yourself yourselves
`))

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Preprocess lowercases text, strips punctuation, tokenizes, drops stopwords
// and short tokens, and reduces each remaining token to its stem.
func Preprocess(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if len([]rune(w)) < minTokenLength {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		tokens = append(tokens, english.Stem(w, false))
	}
	return tokens
}

// rawTokens splits lowercased text on whitespace with no other processing.
// It backs the fallback path, which must not depend on the pipeline.
func rawTokens(text string) []string {
	return strings.Fields(strings.ToLower(text))
}
