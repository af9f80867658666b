package exec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/querytalk/internal/database"
	"github.com/koustreak/querytalk/internal/errs"
)

type fakeDB struct {
	columns  []string
	rows     [][]any
	queryErr error
}

func (f *fakeDB) Ping(ctx context.Context) error { return nil }
func (f *fakeDB) Close()                         {}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (database.Rows, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &fakeRows{columns: f.columns, rows: f.rows}, nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) database.Row { return nil }
func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (int64, error)   { return 0, nil }
func (f *fakeDB) ListTables(ctx context.Context) ([]string, error)                   { return nil, nil }
func (f *fakeDB) InspectSchema(ctx context.Context) (*database.SchemaInfo, error)    { return nil, nil }

type fakeRows struct {
	columns []string
	rows    [][]any
	idx     int
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.idx-1]
	for i, d := range dest {
		*(d.(*any)) = row[i]
	}
	return nil
}

func (r *fakeRows) Columns() ([]string, error) { return r.columns, nil }
func (r *fakeRows) Close()                     {}
func (r *fakeRows) Err() error                 { return nil }

func TestRunSuccess(t *testing.T) {
	db := &fakeDB{
		columns: []string{"name", "total"},
		rows:    [][]any{{"alice", int64(3)}, {"bob", int64(1)}},
	}

	out := Run(context.Background(), db, "SELECT 1")
	assert.True(t, out.OK)
	assert.Empty(t, out.Message)
	assert.Equal(t, []string{"name", "total"}, out.Columns)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, "alice", out.Rows[0]["name"])
}

func TestRunEmptyResult(t *testing.T) {
	db := &fakeDB{columns: []string{"name"}}

	out := Run(context.Background(), db, "SELECT 1")
	assert.True(t, out.OK)
	assert.NotNil(t, out.Rows)
	assert.Empty(t, out.Rows)
}

func TestRunRejection(t *testing.T) {
	db := &fakeDB{queryErr: errs.New(errs.ErrKindQueryFailed, "unknown column")}

	out := Run(context.Background(), db, "SELECT nope")
	assert.False(t, out.OK)
	assert.Contains(t, out.Message, "unknown column")
	assert.Empty(t, out.Rows)
}
