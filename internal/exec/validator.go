// Package exec runs synthesized statements against a live connection and
// folds every failure mode into a reportable outcome. Interpretation can
// produce well-formed SQL that the engine still rejects, so execution
// errors are data here, not failures.
package exec

import (
	"context"

	"github.com/koustreak/querytalk/internal/database"
	"github.com/koustreak/querytalk/internal/logger"
)

// Outcome is the result of executing one statement. OK reports whether the
// engine accepted it; Message carries the engine's complaint when it did not.
type Outcome struct {
	OK      bool
	Columns []string
	Rows    []map[string]any
	Message string
}

// Run executes the statement and scans the full result set. It never
// returns an error: rejection by the engine is reported through the
// outcome so callers can surface it alongside the SQL itself.
func Run(ctx context.Context, db database.DB, sql string) Outcome {
	rows, err := db.Query(ctx, sql)
	if err != nil {
		logger.Global().With().Str("sql", sql).Err(err).Logger().Debug("statement rejected")
		return Outcome{Message: err.Error()}
	}

	scanned, columns, err := database.ScanRows(rows)
	if err != nil {
		return Outcome{Message: err.Error()}
	}
	return Outcome{OK: true, Columns: columns, Rows: scanned}
}
