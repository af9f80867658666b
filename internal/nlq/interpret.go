package nlq

import (
	"context"
	"errors"

	"github.com/koustreak/querytalk/internal/database"
	"github.com/koustreak/querytalk/internal/errs"
	"github.com/koustreak/querytalk/internal/exec"
	"github.com/koustreak/querytalk/internal/logger"
	"github.com/koustreak/querytalk/internal/relation"
	"github.com/koustreak/querytalk/internal/schema"
	"github.com/koustreak/querytalk/internal/text"
)

// Result is the outcome of interpreting one request: the synthesized SQL
// plus the execution outcome. OK is false when either no statement could be
// synthesized or the engine rejected it; Message then explains which.
type Result struct {
	SQL     string
	OK      bool
	Columns []string
	Rows    []map[string]any
	Message string
}

// Interpreter turns natural-language requests into executed SQL. Each call
// reads a fresh schema snapshot so interpretation always reflects current
// table shapes.
type Interpreter struct {
	db     database.DB
	cutoff float64
	log    *logger.Logger
}

// NewInterpreter builds an interpreter over db using the default similarity
// cutoff.
func NewInterpreter(db database.DB, log *logger.Logger) *Interpreter {
	if log == nil {
		log = logger.Global()
	}
	return &Interpreter{db: db, cutoff: text.DefaultCutoff, log: log}
}

// WithCutoff overrides the similarity cutoff used for schema matching.
func (in *Interpreter) WithCutoff(cutoff float64) *Interpreter {
	in.cutoff = cutoff
	return in
}

// Interpret runs the full pipeline: snapshot, normalize, detect, render,
// execute. A request that cannot be rendered yields OK=false with a
// human-readable message rather than an error; only schema inspection
// failures propagate as errors.
func (in *Interpreter) Interpret(ctx context.Context, request string) (Result, error) {
	snap, err := schema.Take(ctx, in.db)
	if err != nil {
		return Result{}, err
	}
	return in.interpretWith(ctx, request, snap), nil
}

// InterpretWithSnapshot behaves like Interpret but reuses a caller-held
// snapshot, for batch callers that interpret many requests against one
// schema state.
func (in *Interpreter) InterpretWithSnapshot(ctx context.Context, request string, snap *schema.Snapshot) Result {
	return in.interpretWith(ctx, request, snap)
}

func (in *Interpreter) interpretWith(ctx context.Context, request string, snap *schema.Snapshot) Result {
	rewritten, tokens := Normalize(request, snap)
	spec := DetectClauses(rewritten, tokens, snap, in.cutoff)

	sql, err := Render(spec, snap, relation.BuildInterpretMap(snap))
	if err != nil {
		in.log.With().Str("request", request).Err(err).Logger().Debug("request not renderable")
		return Result{Message: errorMessage(err)}
	}

	outcome := exec.Run(ctx, in.db, sql)
	return Result{
		SQL:     sql,
		OK:      outcome.OK,
		Columns: outcome.Columns,
		Rows:    outcome.Rows,
		Message: outcome.Message,
	}
}

func errorMessage(err error) string {
	var e *errs.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
