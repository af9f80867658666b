package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/querytalk/internal/database"
	"github.com/koustreak/querytalk/internal/sample"
)

// recordDB records executed statements and returns empty result sets.
type recordDB struct {
	queries []string
}

func (d *recordDB) Ping(ctx context.Context) error { return nil }
func (d *recordDB) Close()                         {}

func (d *recordDB) Query(ctx context.Context, sql string, args ...any) (database.Rows, error) {
	d.queries = append(d.queries, sql)
	return emptyRows{}, nil
}

func (d *recordDB) QueryRow(ctx context.Context, sql string, args ...any) database.Row { return nil }
func (d *recordDB) Exec(ctx context.Context, sql string, args ...any) (int64, error)   { return 0, nil }
func (d *recordDB) ListTables(ctx context.Context) ([]string, error)                   { return nil, nil }

func (d *recordDB) InspectSchema(ctx context.Context) (*database.SchemaInfo, error) {
	return &database.SchemaInfo{}, nil
}

type emptyRows struct{}

func (emptyRows) Next() bool                 { return false }
func (emptyRows) Scan(dest ...any) error     { return nil }
func (emptyRows) Columns() ([]string, error) { return nil, nil }
func (emptyRows) Close()                     {}
func (emptyRows) Err() error                 { return nil }

func TestRunSampleExecutesChosenQuery(t *testing.T) {
	db := &recordDB{}
	r := &repl{db: db, lastSamples: []sample.Sample{
		{SQL: "SELECT `order_id` FROM `orders`"},
		{SQL: "SELECT `name` FROM `customers`"},
	}}

	r.runSample(context.Background(), "2")
	require.Equal(t, []string{"SELECT `name` FROM `customers`"}, db.queries)
}

func TestRunSampleRejectsBadInput(t *testing.T) {
	db := &recordDB{}
	r := &repl{db: db, lastSamples: []sample.Sample{{SQL: "SELECT 1"}}}

	r.runSample(context.Background(), "0")
	r.runSample(context.Background(), "5")
	r.runSample(context.Background(), "two")
	assert.Empty(t, db.queries)
}

func TestRunSampleWithoutListing(t *testing.T) {
	db := &recordDB{}
	r := &repl{db: db}

	r.runSample(context.Background(), "1")
	assert.Empty(t, db.queries)
}
