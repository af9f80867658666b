// Package schema provides an immutable, classified view of the connected
// database's tables and columns. A Snapshot is taken fresh for every
// interpretation request and once per sample-generation session; it is never
// mutated afterwards, so no caching or locking is needed.
package schema

import (
	"context"
	"strings"

	"github.com/koustreak/querytalk/internal/database"
)

// Class partitions columns into the two groups the synthesizers care about:
// numeric columns are eligible for range filters and aggregation, categorical
// columns for equality filters and grouping.
type Class int

const (
	Categorical Class = iota
	Numeric
)

func (c Class) String() string {
	if c == Numeric {
		return "numeric"
	}
	return "categorical"
}

// Column is a classified column.
type Column struct {
	Name     string
	DataType string // engine-reported base type, kept for join compatibility checks
	Class    Class
}

// Table holds a table's columns in catalog order.
type Table struct {
	Name    string
	Columns []Column
}

// ColumnNames returns the column names in catalog order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// ByClass splits the table's column names into numeric and categorical lists.
func (t *Table) ByClass() (numeric, categorical []string) {
	for _, c := range t.Columns {
		if c.Class == Numeric {
			numeric = append(numeric, c.Name)
		} else {
			categorical = append(categorical, c.Name)
		}
	}
	return numeric, categorical
}

// Snapshot is a read-only view of the schema at a point in time.
type Snapshot struct {
	Tables []Table
}

// Take introspects the database and builds a classified Snapshot.
func Take(ctx context.Context, db database.DB) (*Snapshot, error) {
	info, err := db.InspectSchema(ctx)
	if err != nil {
		return nil, err
	}
	return FromInfo(info), nil
}

// FromInfo builds a Snapshot from already-introspected metadata.
func FromInfo(info *database.SchemaInfo) *Snapshot {
	snap := &Snapshot{Tables: make([]Table, 0, len(info.Tables))}
	for _, t := range info.Tables {
		table := Table{Name: t.Name, Columns: make([]Column, 0, len(t.Columns))}
		for _, c := range t.Columns {
			table.Columns = append(table.Columns, Column{
				Name:     c.Name,
				DataType: c.DataType,
				Class:    Classify(c.DataType),
			})
		}
		snap.Tables = append(snap.Tables, table)
	}
	return snap
}

// Classify maps an engine-reported data type to a column class.
// Anything that is not recognisably numeric is treated as categorical.
func Classify(dataType string) Class {
	t := strings.ToLower(dataType)
	for _, marker := range []string{"int", "float", "double", "decimal", "numeric", "real"} {
		if strings.Contains(t, marker) {
			return Numeric
		}
	}
	return Categorical
}

// TableNames returns all table names in snapshot order.
func (s *Snapshot) TableNames() []string {
	names := make([]string, len(s.Tables))
	for i, t := range s.Tables {
		names[i] = t.Name
	}
	return names
}

// Table returns the table with the given name, or nil if absent.
func (s *Snapshot) Table(name string) *Table {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}

// AllColumnNames returns every column name across all tables, in snapshot
// order, with duplicates preserved (two tables may share a column name).
func (s *Snapshot) AllColumnNames() []string {
	var names []string
	for _, t := range s.Tables {
		for _, c := range t.Columns {
			names = append(names, c.Name)
		}
	}
	return names
}

// HasColumn reports whether any table has a column with the given name.
func (s *Snapshot) HasColumn(name string) bool {
	for _, t := range s.Tables {
		if t.HasColumn(name) {
			return true
		}
	}
	return false
}
