package nlq

import (
	"fmt"
	"strings"

	"github.com/koustreak/querytalk/internal/database"
	"github.com/koustreak/querytalk/internal/errs"
	"github.com/koustreak/querytalk/internal/relation"
	"github.com/koustreak/querytalk/internal/schema"
)

// Render turns a detected clause spec into a single SELECT statement.
// Clause order is fixed: SELECT, FROM, JOIN, WHERE, GROUP BY, ORDER BY,
// LIMIT, OFFSET. Identifiers are backtick-quoted; string values are
// single-quoted with escaping. Rendering is pure: same spec, same SQL.
func Render(spec ClauseSpec, snap *schema.Snapshot, joins relation.InterpretMap) (string, error) {
	if len(spec.Entities.Tables) == 0 {
		return "", errs.New(errs.ErrKindInvalidInput, "could not identify a table in the request")
	}
	table := spec.Entities.Tables[0]

	joined := false
	var second, joinCol string
	if spec.Join && len(spec.Entities.Tables) >= 2 {
		second = spec.Entities.Tables[1]
		col, ok := joinColumn(joins, table, second)
		if !ok {
			return "", errs.New(errs.ErrKindInvalidInput,
				fmt.Sprintf("no join path between %s and %s", table, second))
		}
		joinCol = col
		joined = true
	}

	// qualify resolves a column to its owning table when a join is present;
	// a bare identifier would be ambiguous for columns both tables share.
	qualify := func(col string) string {
		if joined {
			for _, name := range []string{table, second} {
				if t := snap.Table(name); t != nil && t.HasColumn(col) {
					return database.WrapIdent(name) + "." + database.WrapIdent(col)
				}
			}
		}
		return database.WrapIdent(col)
	}

	// Aggregation overrides any other projection, joined or not.
	aggAlias := ""
	var sel []string
	if spec.AggFunc != "" && spec.AggColumn != "" {
		aggAlias = strings.ToLower(spec.AggFunc) + "_" + spec.AggColumn
		agg := fmt.Sprintf("%s(%s) AS %s", spec.AggFunc, database.WrapIdent(spec.AggColumn), aggAlias)
		if spec.GroupBy != "" {
			sel = []string{database.WrapIdent(spec.GroupBy), agg}
		} else {
			sel = []string{agg}
		}
	} else if joined {
		sel = joinSelectList(spec, snap, table, second, joinCol)
	} else {
		sel = plainSelectList(spec, table)
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(sel, ", "))
	sb.WriteString(" FROM " + database.WrapIdent(table))

	if joined {
		sb.WriteString(fmt.Sprintf(" JOIN %s ON %s.%s = %s.%s",
			database.WrapIdent(second),
			database.WrapIdent(table), database.WrapIdent(joinCol),
			database.WrapIdent(second), database.WrapIdent(joinCol)))
	}

	if len(spec.Conditions) > 0 {
		predicates := make([]string, 0, len(spec.Conditions))
		for _, c := range spec.Conditions {
			predicates = append(predicates, fmt.Sprintf("%s %s %s",
				qualify(c.Column), c.Operator, renderValue(c.Value)))
		}
		sb.WriteString(" WHERE " + strings.Join(predicates, " AND "))
	}

	if spec.GroupBy != "" && spec.AggFunc != "" {
		sb.WriteString(" GROUP BY " + database.WrapIdent(spec.GroupBy))
	}

	if spec.SortColumn != "" {
		sortExpr := qualify(spec.SortColumn)
		if aggAlias != "" && spec.SortColumn == spec.AggColumn {
			// Sorting on the aggregated column targets the alias.
			sortExpr = aggAlias
		}
		sb.WriteString(" ORDER BY " + sortExpr + " " + spec.SortDirection)
	}

	if spec.Limit != nil {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", *spec.Limit))
		if spec.Offset > 0 {
			sb.WriteString(fmt.Sprintf(" OFFSET %d", spec.Offset))
		}
	}

	return sb.String(), nil
}

// plainSelectList builds the single-table projection from the mapped
// columns, falling back to every column.
func plainSelectList(spec ClauseSpec, table string) []string {
	cols := spec.Entities.Columns[table]
	if len(cols) == 0 {
		return []string{"*"}
	}
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		out = append(out, database.WrapIdent(c))
	}
	return out
}

// joinSelectList projects the mapped columns of both tables (every column
// when none were mapped), qualified and aliased with a table prefix. The
// shared join column is excluded; it appears only in the ON predicate.
func joinSelectList(spec ClauseSpec, snap *schema.Snapshot, left, right, joinCol string) []string {
	var out []string
	appendCols := func(tableName string) {
		t := snap.Table(tableName)
		if t == nil {
			return
		}
		cols := spec.Entities.Columns[tableName]
		if len(cols) == 0 {
			cols = t.ColumnNames()
		}
		for _, c := range cols {
			if c == joinCol {
				continue
			}
			out = append(out, fmt.Sprintf("%s.%s AS %s",
				database.WrapIdent(tableName), database.WrapIdent(c),
				database.WrapIdent(tableName+"_"+c)))
		}
	}
	appendCols(left)
	appendCols(right)
	return out
}

// joinColumn resolves a join predicate column for the table pair, checking
// both orderings of the relationship map.
func joinColumn(joins relation.InterpretMap, left, right string) (string, bool) {
	if cols, ok := joins[relation.TablePair{Left: left, Right: right}]; ok && len(cols) > 0 {
		return cols[0], true
	}
	if cols, ok := joins[relation.TablePair{Left: right, Right: left}]; ok && len(cols) > 0 {
		return cols[0], true
	}
	return "", false
}

func renderValue(v any) string {
	switch val := v.(type) {
	case int:
		return fmt.Sprintf("%d", val)
	case string:
		return database.QuoteString(val)
	default:
		return database.QuoteString(fmt.Sprintf("%v", val))
	}
}
