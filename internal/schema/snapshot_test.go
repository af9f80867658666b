package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/koustreak/querytalk/internal/database"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, Numeric, Classify("int"))
	assert.Equal(t, Numeric, Classify("BIGINT"))
	assert.Equal(t, Numeric, Classify("decimal(10,2)"))
	assert.Equal(t, Numeric, Classify("double precision"))
	assert.Equal(t, Categorical, Classify("varchar(255)"))
	assert.Equal(t, Categorical, Classify("datetime"))
	assert.Equal(t, Categorical, Classify("text"))
}

func testSnapshot() *Snapshot {
	return FromInfo(&database.SchemaInfo{
		Tables: []database.TableInfo{
			{Name: "orders", Columns: []database.ColumnInfo{
				{Name: "order_id", DataType: "int"},
				{Name: "customer_id", DataType: "int"},
				{Name: "amount", DataType: "decimal(10,2)"},
				{Name: "status", DataType: "varchar(20)"},
			}},
			{Name: "customers", Columns: []database.ColumnInfo{
				{Name: "customer_id", DataType: "int"},
				{Name: "name", DataType: "varchar(100)"},
			}},
		},
	})
}

func TestFromInfo(t *testing.T) {
	snap := testSnapshot()

	assert.Equal(t, []string{"orders", "customers"}, snap.TableNames())

	orders := snap.Table("orders")
	assert.NotNil(t, orders)
	assert.Equal(t, []string{"order_id", "customer_id", "amount", "status"}, orders.ColumnNames())
	assert.Nil(t, snap.Table("missing"))

	numeric, categorical := orders.ByClass()
	assert.Equal(t, []string{"order_id", "customer_id", "amount"}, numeric)
	assert.Equal(t, []string{"status"}, categorical)
}

func TestAllColumnNamesKeepsDuplicates(t *testing.T) {
	names := testSnapshot().AllColumnNames()
	count := 0
	for _, n := range names {
		if n == "customer_id" {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestHasColumn(t *testing.T) {
	snap := testSnapshot()
	assert.True(t, snap.HasColumn("amount"))
	assert.False(t, snap.HasColumn("price"))
}
