package nlq

import (
	"github.com/koustreak/querytalk/internal/schema"
	"github.com/koustreak/querytalk/internal/text"
)

// Entities is the structured mapping from request text to schema objects.
// Column matching is scoped to the columns of already-matched tables: a
// token can only resolve to a column of a table that was itself resolved
// from the same token stream.
type Entities struct {
	// Tables are the matched table names in discovery order, deduplicated.
	Tables []string

	// Columns holds, per matched table, the matched column names in
	// discovery order, deduplicated.
	Columns map[string][]string
}

// MapEntities approximately matches tokens against table names, then
// matches the remaining tokens against the columns of each matched table.
// The first sufficiently-similar match wins per token; there is no global
// arbitration across tables. Zero matched tables is not an error here; it
// surfaces later as an unrenderable query.
func MapEntities(tokens []string, snap *schema.Snapshot, cutoff float64) Entities {
	mapped := Entities{Columns: make(map[string][]string)}
	tableNames := snap.TableNames()

	consumed := make(map[int]bool)
	seenTable := make(map[string]bool)
	for i, token := range tokens {
		match, ok := text.BestMatch(token, tableNames, cutoff)
		if !ok {
			continue
		}
		consumed[i] = true
		if !seenTable[match] {
			seenTable[match] = true
			mapped.Tables = append(mapped.Tables, match)
		}
	}

	remaining := make([]string, 0, len(tokens))
	for i, token := range tokens {
		if !consumed[i] {
			remaining = append(remaining, token)
		}
	}

	for _, tableName := range mapped.Tables {
		table := snap.Table(tableName)
		cols := table.ColumnNames()
		seenCol := make(map[string]bool)
		mapped.Columns[tableName] = []string{}
		for _, token := range remaining {
			match, ok := text.BestMatch(token, cols, cutoff)
			if !ok || seenCol[match] {
				continue
			}
			seenCol[match] = true
			mapped.Columns[tableName] = append(mapped.Columns[tableName], match)
		}
	}

	return mapped
}
