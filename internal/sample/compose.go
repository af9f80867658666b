package sample

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/koustreak/querytalk/internal/database"
	"github.com/koustreak/querytalk/internal/errs"
	"github.com/koustreak/querytalk/internal/exec"
	"github.com/koustreak/querytalk/internal/relation"
	"github.com/koustreak/querytalk/internal/schema"
)

// Sample is one generated example: an executable statement, its
// natural-language description, and the clause keywords it exercises.
// SQL and Description are produced by the same composition pass, so every
// clause in one has a counterpart in the other.
type Sample struct {
	SQL         string
	Description string
	Keywords    []string
}

// HasKeyword reports whether the keyword appears in the statement text,
// case-insensitively. Any SQL fragment works, not just clause names.
func (s Sample) HasKeyword(keyword string) bool {
	return strings.Contains(strings.ToLower(s.SQL), strings.ToLower(keyword))
}

var aggregateFuncs = []string{"SUM", "AVG", "MAX", "MIN", "COUNT"}

var aggregateWords = map[string]string{
	"SUM":   "total",
	"AVG":   "average",
	"MAX":   "maximum",
	"MIN":   "minimum",
	"COUNT": "number of",
}

var rangeOperators = []string{"<", ">", "<=", ">="}

var operatorWords = map[string]string{
	"<":  "less than",
	">":  "greater than",
	"<=": "at most",
	">=": "at least",
}

// composer assembles one random statement over a fixed snapshot. Every
// random draw goes through the injected source, so a seeded source makes
// composition reproducible.
type composer struct {
	db    database.DB
	probe prober
	rel   relation.SampleMap
	h     Heuristics
	rng   *rand.Rand
}

func (c *composer) flip() bool { return c.rng.Intn(2) == 0 }

// compose picks a random table and rolls an independent coin per optional
// clause; a non-empty keyword forces the matching clause in so targeted
// generation converges quickly. The finished candidate is executed before
// it is returned: engine rejection or an empty result discards it
// (ok=false), and the row window is keyed on the executed result's size.
// Probe failures degrade gracefully: the clause is skipped and composition
// continues.
func (c *composer) compose(ctx context.Context, snap *schema.Snapshot, keyword string) (Sample, bool, error) {
	if len(snap.Tables) == 0 {
		return Sample{}, false, errs.New(errs.ErrKindNotFound, "schema has no tables to sample from")
	}
	table := &snap.Tables[c.rng.Intn(len(snap.Tables))]
	want := strings.ToLower(keyword)

	var keywords []string

	// Join clause. Grouping below is mutually exclusive with joining, so a
	// forced group-by suppresses the join coin entirely.
	joinSQL, joinDesc, partner := "", "", ""
	var joinPair relation.ColumnPair
	joined := false
	if want == "join" || (want != "group by" && c.flip()) {
		if partners := c.sortedPartners(table.Name); len(partners) > 0 {
			partner = partners[c.rng.Intn(len(partners))]
			pairs := c.rel[table.Name][partner]
			joinPair = pairs[c.rng.Intn(len(pairs))]
			joinSQL = fmt.Sprintf(" JOIN %s ON %s.%s = %s.%s",
				database.WrapIdent(partner),
				database.WrapIdent(table.Name), database.WrapIdent(joinPair.Left),
				database.WrapIdent(partner), database.WrapIdent(joinPair.Right))
			joinDesc = fmt.Sprintf(", combined with the %s table on %s", partner, joinPair.Left)
			joined = true
			keywords = append(keywords, "join")
		}
	}

	// Column references are table-qualified only when a join is present.
	qual := func(column string) string {
		if joined {
			return database.WrapIdent(table.Name) + "." + database.WrapIdent(column)
		}
		return database.WrapIdent(column)
	}

	// Projection. A join projects both tables with table-qualified aliases;
	// otherwise an aggregate over an evenly distributed grouping column, a
	// plain column subset, or everything. Sort candidates track whatever
	// ended up projected.
	numericCols, categoricalCols := table.ByClass()
	selectSQL, groupSQL := "", ""
	var headDesc string
	var sortExprs, sortNames []string
	aggregated := false

	if joined {
		selectSQL = strings.Join(c.joinProjection(snap, table, partner, joinPair), ", ")
		headDesc = fmt.Sprintf("Show all records from the %s table", table.Name)
		for _, name := range table.ColumnNames() {
			sortExprs = append(sortExprs, qual(name))
			sortNames = append(sortNames, name)
		}
	} else if want == "group by" || c.flip() {
		if groupCols := c.groupableColumns(ctx, table.Name, categoricalCols); len(groupCols) > 0 {
			group := groupCols[c.rng.Intn(len(groupCols))]
			if amountCols := c.amountColumns(numericCols); len(amountCols) > 0 {
				fn := aggregateFuncs[c.rng.Intn(len(aggregateFuncs))]
				amount := amountCols[c.rng.Intn(len(amountCols))]
				alias := strings.ToLower(fn) + "_" + amount
				selectSQL = fmt.Sprintf("%s, %s(%s) AS %s",
					database.WrapIdent(group), fn, database.WrapIdent(amount), alias)
				headDesc = fmt.Sprintf("Find the %s %s for each %s in the %s table",
					aggregateWords[fn], amount, group, table.Name)
				sortExprs = []string{database.WrapIdent(group), alias}
				sortNames = []string{group, aggregateWords[fn] + " " + amount}
			} else {
				// No amount-like column to aggregate; fall back to a row count.
				selectSQL = fmt.Sprintf("%s, COUNT(*) AS record_count", database.WrapIdent(group))
				headDesc = fmt.Sprintf("Count the records for each %s in the %s table",
					group, table.Name)
				sortExprs = []string{database.WrapIdent(group), "record_count"}
				sortNames = []string{group, "record count"}
			}
			groupSQL = " GROUP BY " + database.WrapIdent(group)
			aggregated = true
			keywords = append(keywords, "group by")
		}
	}
	if selectSQL == "" {
		if names := table.ColumnNames(); len(names) > 0 && c.flip() {
			picked := c.pickColumns(names)
			quoted := make([]string, len(picked))
			for i, col := range picked {
				quoted[i] = database.WrapIdent(col)
			}
			selectSQL = strings.Join(quoted, ", ")
			headDesc = fmt.Sprintf("Show the %s of the %s table", joinWords(picked), table.Name)
			sortExprs = quoted
			sortNames = picked
		} else {
			selectSQL = "*"
			headDesc = fmt.Sprintf("Show all records from the %s table", table.Name)
			for _, name := range table.ColumnNames() {
				sortExprs = append(sortExprs, database.WrapIdent(name))
				sortNames = append(sortNames, name)
			}
		}
	}

	// Filter clause: numeric columns get a range predicate over the observed
	// MIN/MAX, categorical columns an equality against a sampled value.
	whereSQL, whereDesc := "", ""
	if len(table.Columns) > 0 && (want == "where" || c.flip()) {
		col := table.Columns[c.rng.Intn(len(table.Columns))]
		if col.Class == schema.Numeric {
			if lo, hi, err := c.probe.numericRange(ctx, table.Name, col.Name); err == nil && hi > lo {
				value := int(lo) + c.rng.Intn(int(hi-lo)+1)
				op := rangeOperators[c.rng.Intn(len(rangeOperators))]
				whereSQL = fmt.Sprintf(" WHERE %s %s %d", qual(col.Name), op, value)
				whereDesc = fmt.Sprintf(" where %s is %s %d", col.Name, operatorWords[op], value)
				keywords = append(keywords, "where")
			}
		} else {
			if values, err := c.probe.distinctValues(ctx, table.Name, col.Name, c.h.MaxDistinctValues); err == nil && len(values) > 0 {
				value := values[c.rng.Intn(len(values))]
				whereSQL = fmt.Sprintf(" WHERE %s = %s", qual(col.Name), database.QuoteString(value))
				whereDesc = fmt.Sprintf(" where %s is %q", col.Name, value)
				keywords = append(keywords, "where")
			}
		}
	}

	// Sort clause, restricted to projected (or grouping) columns so the
	// statement stays valid under aggregation.
	orderSQL, orderDesc := "", ""
	if len(sortExprs) > 0 && (want == "order by" || c.flip()) {
		i := c.rng.Intn(len(sortExprs))
		dir, dirWord := "ASC", "ascending"
		if c.flip() {
			dir, dirWord = "DESC", "descending"
		}
		orderSQL = fmt.Sprintf(" ORDER BY %s %s", sortExprs[i], dir)
		orderDesc = fmt.Sprintf(", sorted by %s in %s order", sortNames[i], dirWord)
		keywords = append(keywords, "order by")
	}

	sql := "SELECT " + selectSQL + " FROM " + database.WrapIdent(table.Name) +
		joinSQL + whereSQL + groupSQL + orderSQL
	desc := headDesc + joinDesc + whereDesc + orderDesc

	// Validate against the engine. Rejected or empty candidates are thrown
	// away; the retry loop in the generator draws another one.
	out := exec.Run(ctx, c.db, sql)
	if !out.OK || len(out.Rows) == 0 {
		return Sample{}, false, nil
	}

	// Row windowing only makes sense without aggregation, and only pays off
	// when the executed result overflows a terminal.
	if !aggregated && len(out.Rows) > c.h.RowThreshold {
		limit := 5 + c.rng.Intn(11)
		sql += fmt.Sprintf(" LIMIT %d", limit)
		desc += fmt.Sprintf(", showing %d rows", limit)
		if c.flip() {
			offset := 1 + c.rng.Intn(limit)
			sql += fmt.Sprintf(" OFFSET %d", offset)
			desc += fmt.Sprintf(" starting after row %d", offset)
		}
		keywords = append(keywords, "limit")
	}

	return Sample{SQL: sql, Description: desc + ".", Keywords: keywords}, true, nil
}

// joinProjection aliases every column of both tables with a table prefix.
// The join column is projected once, from the base table; the partner's
// copy would duplicate it.
func (c *composer) joinProjection(snap *schema.Snapshot, table *schema.Table, partner string, pair relation.ColumnPair) []string {
	alias := func(tbl, col string) string {
		return fmt.Sprintf("%s.%s AS %s",
			database.WrapIdent(tbl), database.WrapIdent(col), database.WrapIdent(tbl+"_"+col))
	}

	out := []string{alias(table.Name, pair.Left)}
	for _, col := range table.ColumnNames() {
		if col != pair.Left {
			out = append(out, alias(table.Name, col))
		}
	}
	if pt := snap.Table(partner); pt != nil {
		for _, col := range pt.ColumnNames() {
			if col != pair.Right {
				out = append(out, alias(partner, col))
			}
		}
	}
	return out
}

// sortedPartners returns the joinable partner tables in sorted order, so a
// seeded random source draws from a stable sequence.
func (c *composer) sortedPartners(table string) []string {
	partners := make([]string, 0, len(c.rel[table]))
	for partner := range c.rel[table] {
		partners = append(partners, partner)
	}
	sort.Strings(partners)
	return partners
}

// amountColumns filters numeric columns down to the ones whose name looks
// like a quantity worth aggregating.
func (c *composer) amountColumns(numericCols []string) []string {
	var out []string
	for _, col := range numericCols {
		if c.h.AmountPattern.MatchString(col) {
			out = append(out, col)
		}
	}
	return out
}

// groupableColumns probes each categorical column and keeps those whose
// value distribution passes the even-distribution gate. Probe errors skip
// the column.
func (c *composer) groupableColumns(ctx context.Context, table string, categoricalCols []string) []string {
	var out []string
	for _, col := range categoricalCols {
		even, err := c.probe.evenlyDistributed(ctx, table, col, c.h.DistributionThreshold)
		if err == nil && even {
			out = append(out, col)
		}
	}
	return out
}

// pickColumns draws a small random subset of columns, preserving catalog
// order in the result.
func (c *composer) pickColumns(names []string) []string {
	max := len(names)
	if max > 3 {
		max = 3
	}
	n := 1 + c.rng.Intn(max)

	chosen := make(map[int]bool, n)
	for len(chosen) < n {
		chosen[c.rng.Intn(len(names))] = true
	}
	out := make([]string, 0, n)
	for i, name := range names {
		if chosen[i] {
			out = append(out, name)
		}
	}
	return out
}

// joinWords renders a column list as prose: "a", "a and b", "a, b and c".
func joinWords(words []string) string {
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	default:
		return strings.Join(words[:len(words)-1], ", ") + " and " + words[len(words)-1]
	}
}
