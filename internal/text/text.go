// Package text holds the language utilities the query synthesizers share:
// noun singularization, approximate string matching, tokenization, and
// stop-word filtering.
package text

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/jinzhu/inflection"
)

// DefaultCutoff is the minimum similarity for an approximate match.
const DefaultCutoff = 0.7

// Singular lower-cases word and reduces it to its singular base form.
// Used both for table-name singularization ("orders" -> "order") and for
// token normalization during natural-language preprocessing.
func Singular(word string) string {
	return inflection.Singular(strings.ToLower(word))
}

// Similarity returns a score in [0,1] based on edit distance:
// 1 for identical strings, 0 for strings sharing nothing.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if n := len([]rune(b)); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// BestMatch returns the candidate most similar to token with similarity at
// or above cutoff. The first of equally-good candidates wins, so results are
// deterministic for a fixed candidate order.
func BestMatch(token string, candidates []string, cutoff float64) (string, bool) {
	best := ""
	bestScore := 0.0
	for _, c := range candidates {
		score := Similarity(token, c)
		if score >= cutoff && score > bestScore {
			best = c
			bestScore = score
		}
	}
	return best, best != ""
}

// Tokenize splits s on whitespace and strips leading/trailing punctuation
// from each token. Interior underscores and hyphens are preserved so folded
// phrases and schema identifiers survive as single tokens.
func Tokenize(s string) []string {
	fields := strings.Fields(s)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?()[]{}'")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// IsStopWord reports whether token is a non-informative English word.
func IsStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}
