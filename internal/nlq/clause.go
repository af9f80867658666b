package nlq

import (
	"github.com/koustreak/querytalk/internal/schema"
)

// ClauseSpec is the fully detected intent of one request: which clauses the
// rendered statement should carry and with what operands. Detection passes
// are independent; none reads another's output.
type ClauseSpec struct {
	Entities Entities

	Join       bool
	Conditions []Condition

	GroupBy string

	AggFunc   string
	AggColumn string

	SortColumn    string
	SortDirection string

	Limit  *int
	Offset int
}

// DetectClauses runs every detector over the same normalized token sequence
// and collects the results. The rewritten text is only consulted for
// substring-level cues that folding may have glued together.
func DetectClauses(rewritten string, tokens []string, snap *schema.Snapshot, cutoff float64) ClauseSpec {
	spec := ClauseSpec{
		Entities:   MapEntities(tokens, snap, cutoff),
		Join:       DetectJoin(rewritten, tokens),
		Conditions: DetectConditions(tokens, snap),
		GroupBy:    DetectGroupBy(tokens, snap, cutoff),
	}
	spec.AggFunc, spec.AggColumn = DetectAggregation(tokens, snap, cutoff)
	spec.SortColumn, spec.SortDirection = DetectSort(tokens, snap, cutoff)
	spec.Limit, spec.Offset = DetectLimitOffset(tokens)
	return spec
}
