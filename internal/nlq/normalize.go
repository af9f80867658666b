package nlq

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/koustreak/querytalk/internal/schema"
	"github.com/koustreak/querytalk/internal/text"
)

var quotedRe = regexp.MustCompile(`"(.*?)"`)

// Normalize converts raw request text into a normalized token sequence.
//
// The pipeline, in order:
//  1. Substrings matching a column's display form ("order id") are rewritten
//     to the canonical identifier ("order_id") so identifiers survive
//     tokenization verbatim.
//  2. Multi-word operator phrases are folded into single underscore-joined
//     tokens, case-insensitively, so generic splitting cannot break them.
//  3. Double-quoted substrings are lifted out into positional placeholders
//     and restored verbatim (quotes stripped) after tokenization, preserving
//     their casing and punctuation.
//  4. Remaining tokens are lower-cased and singularized; stop-words are
//     dropped unless the token names a schema column.
//  5. Folded phrases are unfolded back to their spaced form, except for
//     restored literals and schema identifiers.
//
// It returns the rewritten text (used for substring-level cue checks) and
// the token sequence. Empty input yields an empty sequence.
func Normalize(raw string, snap *schema.Snapshot) (string, []string) {
	columnSet := make(map[string]bool)
	for _, col := range snap.AllColumnNames() {
		columnSet[col] = true
	}

	// Step 1: canonicalise column display forms. Iterate the snapshot's
	// column list, not the set, so overlapping display forms rewrite in a
	// stable order.
	rewritten := raw
	for _, col := range snap.AllColumnNames() {
		display := strings.ReplaceAll(col, "_", " ")
		if display != col && strings.Contains(rewritten, display) {
			rewritten = strings.ReplaceAll(rewritten, display, col)
		}
	}

	// Step 2: fold operator phrases.
	for _, p := range foldPatterns {
		rewritten = p.re.ReplaceAllString(rewritten, p.folded)
	}

	// Step 3: lift quoted literals into placeholders.
	literals := make(map[string]string)
	idx := 0
	rewritten = quotedRe.ReplaceAllStringFunc(rewritten, func(match string) string {
		placeholder := fmt.Sprintf("_QUOTED_%d_", idx)
		literals[placeholder] = strings.Trim(match, `"`)
		idx++
		return placeholder
	})

	// Step 4: tokenize, normalize, filter.
	var tokens []string
	var isLiteral []bool
	for _, tok := range text.Tokenize(rewritten) {
		if lit, ok := literals[tok]; ok {
			tokens = append(tokens, lit)
			isLiteral = append(isLiteral, true)
			continue
		}
		norm := text.Singular(tok)
		if text.IsStopWord(norm) && !columnSet[norm] {
			continue
		}
		tokens = append(tokens, norm)
		isLiteral = append(isLiteral, false)
	}

	// Step 5: unfold operator phrases back to their spaced form.
	for i, tok := range tokens {
		if isLiteral[i] || columnSet[tok] {
			continue
		}
		tokens[i] = strings.ReplaceAll(tok, "_", " ")
	}

	return rewritten, tokens
}
