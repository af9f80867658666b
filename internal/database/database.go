// Package database defines the driver-agnostic contract for talking to a
// relational engine. All layers above this package depend only on the DB
// interface; they never import the mysql or postgres packages directly.
package database

import "context"

// DB is the central contract for all database operations.
type DB interface {
	// Ping verifies the database is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the connection pool.
	Close()

	// Query executes a SQL statement that returns multiple rows.
	Query(ctx context.Context, sql string, args ...any) (Rows, error)

	// QueryRow executes a SQL statement that returns at most one row.
	QueryRow(ctx context.Context, sql string, args ...any) Row

	// Exec executes a DDL/DML statement and returns the affected row count.
	Exec(ctx context.Context, sql string, args ...any) (int64, error)

	// ListTables returns all user-defined table names in the connected schema.
	ListTables(ctx context.Context) ([]string, error)

	// InspectSchema returns table and column metadata for the connected schema.
	// Results reflect the live catalog at call time; callers that need a
	// stable view must snapshot the result themselves.
	InspectSchema(ctx context.Context) (*SchemaInfo, error)
}

// Rows is an abstraction over a database result set.
// Callers must always call Close() when done, even on error.
type Rows interface {
	// Next advances to the next row.
	// Returns false when no more rows exist or on error.
	Next() bool

	// Scan copies the current row's columns into the provided destinations.
	Scan(dest ...any) error

	// Columns returns the column names of the result set.
	Columns() ([]string, error)

	// Close releases resources held by the result set.
	Close()

	// Err returns any error encountered during iteration.
	Err() error
}

// Row is an abstraction over a single database row.
type Row interface {
	Scan(dest ...any) error
}

// ColumnInfo describes a single column in a table.
type ColumnInfo struct {
	Name      string
	DataType  string // engine-reported base type, e.g. "int", "varchar"
	Nullable  bool
	IsPrimary bool
}

// TableInfo describes a table and its columns in catalog order.
type TableInfo struct {
	Name    string
	Columns []ColumnInfo
}

// SchemaInfo is the full introspected database schema.
// Tables are ordered by name so repeated introspections are comparable.
type SchemaInfo struct {
	Tables []TableInfo
}

// Table returns the TableInfo with the given name, or nil if absent.
func (s *SchemaInfo) Table(name string) *TableInfo {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}
