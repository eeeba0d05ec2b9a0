package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CahhBrownsville/Brownsville-project/internal/soda"
)

func TestFromRecordsSortsColumnUnion(t *testing.T) {
	table := FromRecords([]soda.Record{
		{"streetname": "PITKIN AVENUE", "complaintid": "1"},
		{"complaintid": "2", "zip": "11212"},
	})

	assert.Equal(t, []string{"complaintid", "streetname", "zip"}, table.Columns)
	require.Equal(t, 2, table.NumRows())
	assert.Equal(t, "PITKIN AVENUE", table.Get(0, "streetname"))
	// Keys absent from a record read as empty cells.
	assert.Equal(t, "", table.Get(0, "zip"))
	assert.Equal(t, "11212", table.Get(1, "zip"))
}

func TestFromRecordsStringifiesValues(t *testing.T) {
	table := FromRecords([]soda.Record{{
		"buildingid": float64(12345),
		"numfloors":  float64(2.5),
		"active":     true,
		"location":   map[string]any{"latitude": "40.66"},
		"missing":    nil,
	}})

	assert.Equal(t, "12345", table.Get(0, "buildingid"))
	assert.Equal(t, "2.5", table.Get(0, "numfloors"))
	assert.Equal(t, "true", table.Get(0, "active"))
	assert.Equal(t, `{"latitude":"40.66"}`, table.Get(0, "location"))
	assert.Equal(t, "", table.Get(0, "missing"))
}

func TestGetOutOfRange(t *testing.T) {
	table := NewTable("complaintid")
	table.Rows = append(table.Rows, []string{"1"})

	assert.Equal(t, "", table.Get(0, "nonexistent"))
	assert.Equal(t, "", table.Get(5, "complaintid"))
	assert.Equal(t, -1, table.ColumnIndex("nonexistent"))
}

func TestHead(t *testing.T) {
	table := NewTable("complaintid")
	table.Rows = [][]string{{"1"}, {"2"}, {"3"}}

	head := table.Head(2)
	assert.Equal(t, 2, head.NumRows())
	assert.Equal(t, 3, table.NumRows())

	// Asking past the end returns everything.
	assert.Equal(t, 3, table.Head(10).NumRows())
}

func TestAppendAlignsByColumnName(t *testing.T) {
	table := NewTable("complaintid", "status")
	table.Rows = [][]string{{"1", "OPEN"}}

	delta := NewTable("status", "complaintid", "statusdate")
	delta.Rows = [][]string{{"CLOSE", "2", "2021-03-01T00:00:00.000"}}

	table.Append(delta)

	require.Equal(t, 2, table.NumRows())
	assert.Equal(t, []string{"complaintid", "status", "statusdate"}, table.Columns)
	assert.Equal(t, "2", table.Get(1, "complaintid"))
	assert.Equal(t, "CLOSE", table.Get(1, "status"))
	// The new column reads empty for pre-existing rows.
	assert.Equal(t, "", table.Get(0, "statusdate"))
	assert.Equal(t, "2021-03-01T00:00:00.000", table.Get(1, "statusdate"))
}
