package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/koustreak/querytalk/internal/errs"
)

// mapError translates pgx errors into *errs.Error.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return errs.Wrap(
			classifyCode(pgErr.Code),
			fmt.Sprintf("%s: %s", msg, pgErr.Message),
			err,
		)
	}

	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

// classifyCode maps SQLSTATE classes to ErrKind.
// https://www.postgresql.org/docs/current/errcodes-appendix.html
func classifyCode(code string) errs.ErrKind {
	if len(code) < 2 {
		return errs.ErrKindQueryFailed
	}
	switch code[:2] {
	case "08": // connection exception
		return errs.ErrKindConnectionFailed
	case "28": // invalid authorization
		return errs.ErrKindConnectionFailed
	case "42": // syntax error or access rule violation
		return errs.ErrKindQueryFailed
	case "57": // operator intervention (includes query_canceled)
		return errs.ErrKindTimeout
	default:
		return errs.ErrKindQueryFailed
	}
}
