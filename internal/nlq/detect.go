package nlq

import (
	"strconv"
	"strings"

	"github.com/koustreak/querytalk/internal/schema"
	"github.com/koustreak/querytalk/internal/text"
)

// Condition is one detected filter: column, SQL operator, and a value that
// is either an int (numeric-looking token) or a string literal.
type Condition struct {
	Column   string
	Operator string
	Value    any
}

// DetectJoin reports join intent: any token, or any substring of the
// rewritten request, matching the join cue vocabulary.
func DetectJoin(rewritten string, tokens []string) bool {
	for _, tok := range tokens {
		for _, cue := range joinCues {
			if tok == cue {
				return true
			}
		}
	}
	lower := strings.ToLower(rewritten)
	for _, cue := range joinCues {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}

// DetectConditions scans tokens left to right. Whenever a token exactly
// equals a schema column name, it looks ahead up to 3 tokens for an operator
// phrase (longest span first) and takes the token after the phrase as the
// value. The scan pointer advances past each consumed span, so multiple
// conditions can be detected; all are implicitly conjoined.
func DetectConditions(tokens []string, snap *schema.Snapshot) []Condition {
	columnSet := make(map[string]bool)
	for _, col := range snap.AllColumnNames() {
		columnSet[col] = true
	}

	var conditions []Condition
	i := 0
	for i < len(tokens) {
		if !columnSet[tokens[i]] {
			i++
			continue
		}

		matched := false
		for _, span := range []int{3, 2, 1} {
			valueIdx := i + 1 + span
			if valueIdx >= len(tokens) {
				continue
			}
			phrase := strings.Join(tokens[i+1:i+1+span], " ")
			op, ok := operatorVocab[phrase]
			if !ok {
				continue
			}
			conditions = append(conditions, Condition{
				Column:   tokens[i],
				Operator: op,
				Value:    coerceValue(tokens[valueIdx]),
			})
			i = valueIdx + 1
			matched = true
			break
		}
		if !matched {
			i++
		}
	}
	return conditions
}

// coerceValue turns an all-digit token into an int; anything else stays a
// string and is quoted at render time.
func coerceValue(token string) any {
	if n, err := strconv.Atoi(token); err == nil && isDigits(token) {
		return n
	}
	return token
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// DetectGroupBy returns the first column following a grouping cue token, or
// "" when no grouping intent is present.
func DetectGroupBy(tokens []string, snap *schema.Snapshot, cutoff float64) string {
	allColumns := snap.AllColumnNames()
	for i, tok := range tokens {
		if !groupCues[tok] || i+1 >= len(tokens) {
			continue
		}
		if col, ok := text.BestMatch(tokens[i+1], allColumns, cutoff); ok {
			return col
		}
	}
	return ""
}

// DetectAggregation returns the SQL aggregation function and target column
// for the first aggregation word that is followed by a column-like token.
// A lone aggregation word with no matching column reports nothing.
func DetectAggregation(tokens []string, snap *schema.Snapshot, cutoff float64) (fn, column string) {
	allColumns := snap.AllColumnNames()
	for i, tok := range tokens {
		aggFn, ok := aggregationVocab[tok]
		if !ok || i+1 >= len(tokens) {
			continue
		}
		if col, colOK := text.BestMatch(tokens[i+1], allColumns, cutoff); colOK {
			return aggFn, col
		}
	}
	return "", ""
}

// DetectSort finds the first sort cue and resolves the following token to a
// column. Direction defaults to ascending; an explicit direction cue two
// tokens after the sort cue overrides it. The scan stops at the first cue.
func DetectSort(tokens []string, snap *schema.Snapshot, cutoff float64) (column, direction string) {
	allColumns := snap.AllColumnNames()
	for i := 0; i < len(tokens)-1; i++ {
		if !sortCues[tokens[i]] {
			continue
		}
		column, _ = text.BestMatch(tokens[i+1], allColumns, cutoff)
		direction = "ASC"
		if i+2 < len(tokens) && descendingCue[tokens[i+2]] {
			direction = "DESC"
		}
		break
	}
	return column, direction
}

// DetectLimitOffset finds bare integer tokens preceded by a limit cue
// ("top 10") or an offset cue ("skip 5"). Offset defaults to 0.
func DetectLimitOffset(tokens []string) (limit *int, offset int) {
	for i, tok := range tokens {
		if !isDigits(tok) || i == 0 {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		switch {
		case limitCues[tokens[i-1]]:
			limit = &n
		case offsetCues[tokens[i-1]]:
			offset = n
		}
	}
	return limit, offset
}
