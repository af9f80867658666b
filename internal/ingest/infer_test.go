package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferColumnType(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"integers", []string{"1", "42", "-7"}, "INT"},
		{"floats", []string{"1.5", "2", "-0.25"}, "DOUBLE"},
		{"dates", []string{"2024-01-15", "2024-02-01"}, "DATETIME"},
		{"timestamps", []string{"2024-01-15 10:30:00"}, "DATETIME"},
		{"text", []string{"alice", "bob"}, "VARCHAR(50)"},
		{"mixed", []string{"1", "alice"}, "VARCHAR(50)"},
		{"empty values ignored", []string{"", "3", ""}, "INT"},
		{"all empty", []string{"", ""}, "VARCHAR(50)"},
		{"long text rounds up", []string{strings.Repeat("x", 60)}, "VARCHAR(100)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferColumnType(tt.values))
		})
	}
}

func TestTableName(t *testing.T) {
	assert.Equal(t, "orders", tableName("Orders.csv"))
	assert.Equal(t, "orders", tableName("datasets/Orders.CSV"))
	assert.Equal(t, "order_items", tableName("order_items.csv"))
}
