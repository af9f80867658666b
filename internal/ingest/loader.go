package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/koustreak/querytalk/internal/database"
	"github.com/koustreak/querytalk/internal/errs"
	"github.com/koustreak/querytalk/internal/logger"
	"github.com/koustreak/querytalk/internal/relation"
	"github.com/koustreak/querytalk/internal/schema"
)

const defaultBatchSize = 1000

// dataset is one parsed CSV file ready for loading.
type dataset struct {
	Table   string
	Header  []string
	Records [][]string
}

// columnDef is a column with its inferred SQL type.
type columnDef struct {
	Name    string
	SQLType string
}

// foreignKey links a column to the primary key of another loaded table.
type foreignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// tableDef is the full DDL plan for one dataset.
type tableDef struct {
	Name        string
	Columns     []columnDef
	PrimaryKey  string
	ForeignKeys []foreignKey
}

// Loader ingests every dataset from a source into the database. Tables are
// created in dependency order so foreign key constraints resolve, and rows
// are inserted in batches.
type Loader struct {
	db        database.DB
	src       Source
	log       *logger.Logger
	batchSize int
}

// NewLoader builds a loader with the default batch size.
func NewLoader(db database.DB, src Source, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Global()
	}
	return &Loader{db: db, src: src, log: log, batchSize: defaultBatchSize}
}

// Load parses every dataset, plans the DDL, and creates and fills the
// tables. Planning happens before any DDL runs, so a malformed file aborts
// the whole load rather than leaving a partial schema.
func (l *Loader) Load(ctx context.Context) error {
	names, err := l.src.List(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return errs.New(errs.ErrKindNotFound, "source contains no datasets")
	}

	datasets := make([]dataset, 0, len(names))
	for _, name := range names {
		ds, err := l.parse(ctx, name)
		if err != nil {
			return err
		}
		datasets = append(datasets, ds)
	}

	defs := planTables(datasets)
	byName := make(map[string]dataset, len(datasets))
	for _, ds := range datasets {
		byName[ds.Table] = ds
	}

	for _, def := range orderByDependency(defs) {
		if err := l.createTable(ctx, def); err != nil {
			return err
		}
		if err := l.insertRows(ctx, def, byName[def.Name]); err != nil {
			return err
		}
		l.log.With().Str("table", def.Name).Int("rows", len(byName[def.Name].Records)).Logger().
			Info("dataset loaded")
	}
	return nil
}

// DropAll drops every table in the connected schema. Constraint checking is
// suspended for the duration so drop order does not matter.
func (l *Loader) DropAll(ctx context.Context) error {
	tables, err := l.db.ListTables(ctx)
	if err != nil {
		return err
	}

	if _, err := l.db.Exec(ctx, "SET FOREIGN_KEY_CHECKS = 0"); err != nil {
		return err
	}
	defer l.db.Exec(ctx, "SET FOREIGN_KEY_CHECKS = 1")

	for _, table := range tables {
		stmt := "DROP TABLE IF EXISTS " + database.WrapIdent(table)
		if _, err := l.db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) parse(ctx context.Context, name string) (dataset, error) {
	rc, err := l.src.Open(ctx, name)
	if err != nil {
		return dataset{}, err
	}
	defer rc.Close()

	records, err := csv.NewReader(rc).ReadAll()
	if err != nil {
		return dataset{}, errs.Wrap(errs.ErrKindInvalidInput, "failed to parse dataset "+name, err)
	}
	if len(records) == 0 {
		return dataset{}, errs.New(errs.ErrKindInvalidInput, "dataset "+name+" has no header row")
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return dataset{Table: name, Header: header, Records: records[1:]}, nil
}

// planTables infers column types and key relationships across the whole
// dataset batch. A column is a foreign key when its name equals another
// table's detected primary key.
func planTables(datasets []dataset) []tableDef {
	pks := make(map[string]string, len(datasets))
	for _, ds := range datasets {
		t := asSchemaTable(ds)
		if pk := relation.DetectPrimaryKey(&t); pk != "" {
			pks[ds.Table] = pk
		}
	}

	defs := make([]tableDef, 0, len(datasets))
	for _, ds := range datasets {
		def := tableDef{Name: ds.Table, PrimaryKey: pks[ds.Table]}
		for i, col := range ds.Header {
			values := make([]string, 0, len(ds.Records))
			for _, rec := range ds.Records {
				if i < len(rec) {
					values = append(values, rec[i])
				}
			}
			def.Columns = append(def.Columns, columnDef{Name: col, SQLType: InferColumnType(values)})

			for _, other := range datasets {
				if other.Table == ds.Table {
					continue
				}
				if pk, ok := pks[other.Table]; ok && pk == col {
					def.ForeignKeys = append(def.ForeignKeys, foreignKey{
						Column: col, RefTable: other.Table, RefColumn: pk,
					})
				}
			}
		}
		defs = append(defs, def)
	}
	return defs
}

// orderByDependency sorts tables so every referenced table is created
// before its referrers. Cycles fall back to input order.
func orderByDependency(defs []tableDef) []tableDef {
	placed := make(map[string]bool, len(defs))
	var ordered []tableDef

	remaining := defs
	for len(remaining) > 0 {
		var next []tableDef
		progressed := false
		for _, def := range remaining {
			ready := true
			for _, fk := range def.ForeignKeys {
				if !placed[fk.RefTable] {
					ready = false
					break
				}
			}
			if ready {
				placed[def.Name] = true
				ordered = append(ordered, def)
				progressed = true
			} else {
				next = append(next, def)
			}
		}
		if !progressed {
			ordered = append(ordered, next...)
			break
		}
		remaining = next
	}
	return ordered
}

func (l *Loader) createTable(ctx context.Context, def tableDef) error {
	parts := make([]string, 0, len(def.Columns)+1+len(def.ForeignKeys))
	for _, col := range def.Columns {
		parts = append(parts, database.WrapIdent(col.Name)+" "+col.SQLType)
	}
	if def.PrimaryKey != "" {
		parts = append(parts, "PRIMARY KEY ("+database.WrapIdent(def.PrimaryKey)+")")
	}
	for _, fk := range def.ForeignKeys {
		parts = append(parts, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
			database.WrapIdent(fk.Column), database.WrapIdent(fk.RefTable), database.WrapIdent(fk.RefColumn)))
	}

	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		database.WrapIdent(def.Name), strings.Join(parts, ", "))
	_, err := l.db.Exec(ctx, stmt)
	return err
}

func (l *Loader) insertRows(ctx context.Context, def tableDef, ds dataset) error {
	if len(ds.Records) == 0 {
		return nil
	}

	cols := make([]string, len(def.Columns))
	for i, col := range def.Columns {
		cols[i] = database.WrapIdent(col.Name)
	}
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ",
		database.WrapIdent(def.Name), strings.Join(cols, ", "))

	for start := 0; start < len(ds.Records); start += l.batchSize {
		end := start + l.batchSize
		if end > len(ds.Records) {
			end = len(ds.Records)
		}

		tuples := make([]string, 0, end-start)
		for _, rec := range ds.Records[start:end] {
			tuples = append(tuples, renderTuple(def.Columns, rec))
		}
		if _, err := l.db.Exec(ctx, prefix+strings.Join(tuples, ", ")); err != nil {
			return err
		}
	}
	return nil
}

// renderTuple renders one CSV record as a SQL value tuple. Empty fields
// become NULL; numeric types pass through unquoted after validation.
func renderTuple(cols []columnDef, rec []string) string {
	values := make([]string, len(cols))
	for i, col := range cols {
		var raw string
		if i < len(rec) {
			raw = rec[i]
		}
		values[i] = renderField(col.SQLType, raw)
	}
	return "(" + strings.Join(values, ", ") + ")"
}

func renderField(sqlType, raw string) string {
	if raw == "" {
		return "NULL"
	}
	switch sqlType {
	case "INT":
		if _, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return raw
		}
	case "DOUBLE":
		if _, err := strconv.ParseFloat(raw, 64); err == nil {
			return raw
		}
	}
	return database.QuoteString(raw)
}

// asSchemaTable lifts a dataset header into the schema shape the key
// detector works on.
func asSchemaTable(ds dataset) schema.Table {
	t := schema.Table{Name: ds.Table, Columns: make([]schema.Column, len(ds.Header))}
	for i, h := range ds.Header {
		t.Columns[i] = schema.Column{Name: h}
	}
	return t
}
