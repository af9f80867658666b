// Package sample generates randomized, executable example queries against
// the connected schema, each paired with a natural-language description that
// is built in lockstep with the SQL so the two can never drift apart.
package sample

import "regexp"

// Heuristics are the tunable thresholds that steer query composition.
// The zero value is unusable; start from DefaultHeuristics.
type Heuristics struct {
	// DistributionThreshold is the minimum share of rows every bucket of a
	// candidate grouping column must hold. A column qualifies for GROUP BY
	// only when it has at least two buckets and none is rarer than this.
	DistributionThreshold float64

	// AmountPattern recognises numeric columns worth aggregating.
	AmountPattern *regexp.Regexp

	// RowThreshold is the table size above which a non-aggregate query may
	// carry LIMIT and OFFSET.
	RowThreshold int

	// MaxDistinctValues caps the values fetched when probing a categorical
	// column for an equality filter.
	MaxDistinctValues int

	// Attempts bounds keyword-targeted regeneration retries.
	Attempts int

	// MaxQueries caps the curated sample set size.
	MaxQueries int
}

// DefaultHeuristics returns the standard thresholds.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		DistributionThreshold: 0.25,
		AmountPattern:         regexp.MustCompile(`(?i)price|quantity|budget|amount|total`),
		RowThreshold:          20,
		MaxDistinctValues:     10,
		Attempts:              10,
		MaxQueries:            5,
	}
}
