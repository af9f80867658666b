package nlq

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/querytalk/internal/database"
	"github.com/koustreak/querytalk/internal/errs"
)

// fakeDB serves a fixed schema and canned query results.
type fakeDB struct {
	info     *database.SchemaInfo
	columns  []string
	rows     [][]any
	queryErr error
	queries  []string
}

func (f *fakeDB) Ping(ctx context.Context) error { return nil }
func (f *fakeDB) Close()                         {}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (database.Rows, error) {
	f.queries = append(f.queries, sql)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &fakeRows{columns: f.columns, rows: f.rows}, nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) database.Row {
	f.queries = append(f.queries, sql)
	return &fakeRow{}
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	f.queries = append(f.queries, sql)
	return 0, nil
}

func (f *fakeDB) ListTables(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(f.info.Tables))
	for _, t := range f.info.Tables {
		names = append(names, t.Name)
	}
	return names, nil
}

func (f *fakeDB) InspectSchema(ctx context.Context) (*database.SchemaInfo, error) {
	return f.info, nil
}

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

type fakeRow struct{}

func (r *fakeRow) Scan(dest ...any) error { return nil }

func testInfo() *database.SchemaInfo {
	return &database.SchemaInfo{Tables: []database.TableInfo{
		{Name: "orders", Columns: []database.ColumnInfo{
			{Name: "order_id", DataType: "int"},
			{Name: "customer_id", DataType: "int"},
			{Name: "amount", DataType: "decimal(10,2)"},
			{Name: "status", DataType: "varchar(20)"},
		}},
		{Name: "products", Columns: []database.ColumnInfo{
			{Name: "product_id", DataType: "int"},
			{Name: "price", DataType: "decimal(10,2)"},
			{Name: "category", DataType: "varchar(50)"},
		}},
	}}
}

func TestInterpretEndToEnd(t *testing.T) {
	db := &fakeDB{
		info:    testInfo(),
		columns: []string{"category", "avg_price"},
		rows:    [][]any{{"toys", 12.5}, {"books", 30.0}},
	}
	interp := NewInterpreter(db, nil)

	result, err := interp.Interpret(context.Background(), "average price of products grouped by category")
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t,
		"SELECT `category`, AVG(`price`) AS avg_price FROM `products` GROUP BY `category`",
		result.SQL)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "toys", result.Rows[0]["category"])
	assert.Equal(t, []string{"category", "avg_price"}, result.Columns)
}

func TestInterpretUnrenderableRequest(t *testing.T) {
	db := &fakeDB{info: testInfo()}
	interp := NewInterpreter(db, nil)

	result, err := interp.Interpret(context.Background(), "foo bar baz")
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Empty(t, result.SQL)
	assert.Contains(t, result.Message, "could not identify a table")
	assert.Empty(t, db.queries)
}

func TestInterpretEngineRejection(t *testing.T) {
	db := &fakeDB{
		info:     testInfo(),
		queryErr: errs.New(errs.ErrKindQueryFailed, "syntax error"),
	}
	interp := NewInterpreter(db, nil)

	result, err := interp.Interpret(context.Background(), "show orders")
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.NotEmpty(t, result.SQL)
	assert.Contains(t, result.Message, "syntax error")
}
