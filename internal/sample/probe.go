package sample

import (
	"context"
	"fmt"
	"strconv"

	"github.com/koustreak/querytalk/internal/database"
	"github.com/koustreak/querytalk/internal/errs"
)

// prober issues the small statistics queries the composer needs to pick
// realistic filter values and grouping columns.
type prober struct {
	db database.DB
}

func (p prober) rowCount(ctx context.Context, table string) (int, error) {
	stmt := fmt.Sprintf("SELECT COUNT(*) FROM %s", database.WrapIdent(table))
	var n int
	if err := p.db.QueryRow(ctx, stmt).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// numericRange returns the observed MIN and MAX of a numeric column. An
// empty table yields a NotFound error since NULL bounds are unusable.
func (p prober) numericRange(ctx context.Context, table, column string) (lo, hi float64, err error) {
	stmt := fmt.Sprintf("SELECT MIN(%s), MAX(%s) FROM %s",
		database.WrapIdent(column), database.WrapIdent(column), database.WrapIdent(table))
	var loVal, hiVal *float64
	if err := p.db.QueryRow(ctx, stmt).Scan(&loVal, &hiVal); err != nil {
		return 0, 0, err
	}
	if loVal == nil || hiVal == nil {
		return 0, 0, errs.New(errs.ErrKindNotFound, "column has no values to range over")
	}
	return *loVal, *hiVal, nil
}

// distinctValues samples up to limit distinct values of a column.
func (p prober) distinctValues(ctx context.Context, table, column string, limit int) ([]string, error) {
	stmt := fmt.Sprintf("SELECT DISTINCT %s FROM %s LIMIT %d",
		database.WrapIdent(column), database.WrapIdent(table), limit)
	rows, err := p.db.Query(ctx, stmt)
	if err != nil {
		return nil, err
	}
	scanned, columns, err := database.ScanRows(rows)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, nil
	}
	values := make([]string, 0, len(scanned))
	for _, row := range scanned {
		if v := row[columns[0]]; v != nil {
			values = append(values, fmt.Sprintf("%v", v))
		}
	}
	return values, nil
}

// evenlyDistributed reports whether a column's value distribution qualifies
// it as a grouping column: at least two buckets each holding at least the
// threshold share of rows. Remaining small buckets do not disqualify it.
func (p prober) evenlyDistributed(ctx context.Context, table, column string, threshold float64) (bool, error) {
	stmt := fmt.Sprintf("SELECT %s, COUNT(*) AS value_count FROM %s GROUP BY %s",
		database.WrapIdent(column), database.WrapIdent(table), database.WrapIdent(column))
	rows, err := p.db.Query(ctx, stmt)
	if err != nil {
		return false, err
	}
	scanned, _, err := database.ScanRows(rows)
	if err != nil {
		return false, err
	}

	counts := make([]float64, 0, len(scanned))
	total := 0.0
	for _, row := range scanned {
		n, ok := toFloat(row["value_count"])
		if !ok {
			return false, nil
		}
		counts = append(counts, n)
		total += n
	}
	if total == 0 {
		return false, nil
	}
	qualified := 0
	for _, n := range counts {
		if n/total >= threshold {
			qualified++
		}
	}
	return qualified > 1, nil
}

// toFloat normalises the scanned representations different drivers produce
// for COUNT(*) style values.
func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case int64:
		return float64(val), true
	case int:
		return float64(val), true
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
