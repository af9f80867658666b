// Package relation infers join-eligible table pairs from naming convention
// and schema metadata alone; no data is scanned, so for a fixed snapshot
// the result is deterministic. A join is only ever proposed between pairs
// present in one of these maps.
package relation

import (
	"strings"

	"github.com/koustreak/querytalk/internal/schema"
	"github.com/koustreak/querytalk/internal/text"
)

// idSuffix marks foreign-key-like column names ("customer_id", "order_id").
const idSuffix = "_id"

// ColumnPair is a joinable column pair: Left belongs to the first table of
// the relationship, Right to the second.
type ColumnPair struct {
	Left  string
	Right string
}

// SampleMap relates each table to the tables it can join with, keyed
// table -> related table -> candidate join column pairs. Used by the
// randomized sample-query generator.
type SampleMap map[string]map[string][]ColumnPair

// TablePair is an ordered table pair.
type TablePair struct {
	Left  string
	Right string
}

// InterpretMap relates ordered table pairs to the column names usable as a
// join predicate. Used by the natural-language interpreter, which must
// tolerate partial table identification and therefore applies a looser rule
// than the sample generator.
type InterpretMap map[TablePair][]string

// DetectPrimaryKey finds a primary-key-like column in the table by testing
// three suffix patterns against the singularized table name:
// "<singular>_id", "<singular>id", and "<singular-without-underscores>id".
// Returns "" when none of the candidates exists.
func DetectPrimaryKey(t *schema.Table) string {
	singular := text.Singular(t.Name)
	candidates := []string{
		singular + "_id",
		singular + "id",
		strings.ReplaceAll(singular, "_", "") + "id",
	}
	for _, candidate := range candidates {
		if t.HasColumn(candidate) {
			return candidate
		}
	}
	return ""
}

// primaryKeys detects a primary-key-like column for every table.
func primaryKeys(snap *schema.Snapshot) map[string]string {
	pks := make(map[string]string, len(snap.Tables))
	for i := range snap.Tables {
		if pk := DetectPrimaryKey(&snap.Tables[i]); pk != "" {
			pks[snap.Tables[i].Name] = pk
		}
	}
	return pks
}

// BuildSampleMap pairs columns that share a name and a compatible base type
// across tables. Whenever one table carries a column equal to another
// table's detected primary key, the two end up linked through that column.
func BuildSampleMap(snap *schema.Snapshot) SampleMap {
	related := make(SampleMap, len(snap.Tables))

	for i := range snap.Tables {
		t1 := &snap.Tables[i]
		related[t1.Name] = make(map[string][]ColumnPair)

		for j := range snap.Tables {
			t2 := &snap.Tables[j]
			if t1.Name == t2.Name {
				continue
			}

			var pairs []ColumnPair
			for _, c1 := range t1.Columns {
				for _, c2 := range t2.Columns {
					if c1.Name == c2.Name && baseType(c1.DataType) == baseType(c2.DataType) {
						pairs = append(pairs, ColumnPair{Left: c1.Name, Right: c2.Name})
					}
				}
			}
			if len(pairs) > 0 {
				related[t1.Name][t2.Name] = pairs
			}
		}
	}
	return related
}

// BuildInterpretMap intersects raw column-name sets between every table pair
// and keeps the columns that are either a detected primary key of one of the
// two tables or end in the identifier suffix.
func BuildInterpretMap(snap *schema.Snapshot) InterpretMap {
	pks := primaryKeys(snap)
	related := make(InterpretMap)

	for i := range snap.Tables {
		t1 := &snap.Tables[i]
		for j := range snap.Tables {
			t2 := &snap.Tables[j]
			if t1.Name == t2.Name {
				continue
			}

			var common []string
			for _, c := range t1.Columns {
				if !t2.HasColumn(c.Name) {
					continue
				}
				if c.Name == pks[t1.Name] || c.Name == pks[t2.Name] || strings.HasSuffix(c.Name, idSuffix) {
					common = append(common, c.Name)
				}
			}
			if len(common) > 0 {
				related[TablePair{Left: t1.Name, Right: t2.Name}] = common
			}
		}
	}
	return related
}

// baseType strips any length/precision suffix: "varchar(255)" -> "varchar".
func baseType(dataType string) string {
	if idx := strings.IndexByte(dataType, '('); idx >= 0 {
		return dataType[:idx]
	}
	return dataType
}
