package nlq

import (
	"regexp"
	"sort"
	"strings"
)

// operatorVocab maps natural-language comparison phrases to SQL operators.
// Phrases are matched against folded tokens longest-span-first, so partial
// forms ("less than or equal" with a missing "to") are still caught.
var operatorVocab = map[string]string{
	"less than":                "<",
	"at most":                  "<=",
	"less than or equal":       "<=",
	"less than or equal to":    "<=",
	"greater than":             ">",
	"more than":                ">",
	"at least":                 ">=",
	"greater than or equal":    ">=",
	"greater than or equal to": ">=",
	"equal":                    "=",
	"equal to":                 "=",
	"is equal":                 "=",
	"is not equal to":          "!=",
	"not equal to":             "!=",
}

// aggregationVocab maps natural-language aggregation words to SQL functions.
// "number" covers "number of", whose "of" is removed as a stop-word.
var aggregationVocab = map[string]string{
	"total":   "SUM",
	"sum":     "SUM",
	"average": "AVG",
	"mean":    "AVG",
	"maximum": "MAX",
	"max":     "MAX",
	"minimum": "MIN",
	"min":     "MIN",
	"count":   "COUNT",
	"number":  "COUNT",
}

var (
	joinCues      = []string{"join", "combine", "merge", "along with"}
	groupCues     = map[string]bool{"group": true, "grouped": true, "by": true}
	sortCues      = map[string]bool{"order": true, "ordered": true, "sort": true, "sorted": true}
	ascendingCues = map[string]bool{"ascending": true, "asc": true}
	descendingCue = map[string]bool{"descending": true, "desc": true}
	limitCues     = map[string]bool{"top": true, "first": true, "last": true}
	offsetCues    = map[string]bool{"skip": true, "offset": true, "after": true}
)

// foldPatterns are precompiled word-boundary matchers for every multi-word
// operator phrase, longest phrase first so "greater than or equal to" is
// folded before "greater than" can claim its prefix.
var foldPatterns = buildFoldPatterns()

type foldPattern struct {
	re     *regexp.Regexp
	folded string
}

func buildFoldPatterns() []foldPattern {
	phrases := make([]string, 0, len(operatorVocab))
	for phrase := range operatorVocab {
		if strings.Contains(phrase, " ") {
			phrases = append(phrases, phrase)
		}
	}
	sort.Slice(phrases, func(i, j int) bool {
		if len(phrases[i]) != len(phrases[j]) {
			return len(phrases[i]) > len(phrases[j])
		}
		return phrases[i] < phrases[j]
	})

	patterns := make([]foldPattern, 0, len(phrases))
	for _, phrase := range phrases {
		patterns = append(patterns, foldPattern{
			re:     regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(phrase) + `\b`),
			folded: strings.ReplaceAll(phrase, " ", "_"),
		})
	}
	return patterns
}
