package dataset

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/CahhBrownsville/Brownsville-project/internal/soda"
)

// Table is an in-memory tabular slice of a dataset: a header plus string rows.
// Remote records arrive as loosely typed JSON objects; everything downstream
// (CSV caching, joining, schema coercion) works on the stringified form, so
// the conversion happens once here.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable creates an empty table with the given columns.
func NewTable(columns ...string) *Table {
	return &Table{Columns: columns}
}

// FromRecords builds a table from remote records. The column set is the union
// of all record keys in sorted order; JSON objects carry no key order, so
// sorting is the only way to get a stable header.
func FromRecords(records []soda.Record) *Table {
	seen := make(map[string]struct{})
	var columns []string
	for _, rec := range records {
		for key := range rec {
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				columns = append(columns, key)
			}
		}
	}
	sort.Strings(columns)

	t := &Table{Columns: columns}
	for _, rec := range records {
		row := make([]string, len(columns))
		for i, col := range columns {
			if val, ok := rec[col]; ok {
				row[i] = stringify(val)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// stringify renders a decoded JSON value as a cell. Scalars keep their text
// form; nested values (location columns and the like) are re-encoded as JSON.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

// NumRows returns the number of rows in the table.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1 when absent.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Get returns the cell at the given row for the named column. Absent columns
// read as empty, matching how a null cell reads.
func (t *Table) Get(row int, column string) string {
	idx := t.ColumnIndex(column)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	return t.Rows[row][idx]
}

// Head returns a copy of the table truncated to at most n rows.
func (t *Table) Head(n int) *Table {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	out := &Table{Columns: append([]string(nil), t.Columns...)}
	for _, row := range t.Rows[:n] {
		out.Rows = append(out.Rows, append([]string(nil), row...))
	}
	return out
}

// Append adds the other table's rows to this one, aligning cells by column
// name. Columns the other table introduces are added to the header, with
// existing rows reading empty for them.
func (t *Table) Append(other *Table) {
	for _, col := range other.Columns {
		if t.ColumnIndex(col) >= 0 {
			continue
		}
		t.Columns = append(t.Columns, col)
		for i := range t.Rows {
			t.Rows[i] = append(t.Rows[i], "")
		}
	}

	mapping := make([]int, len(other.Columns))
	for i, col := range other.Columns {
		mapping[i] = t.ColumnIndex(col)
	}

	for _, row := range other.Rows {
		aligned := make([]string, len(t.Columns))
		for i, cell := range row {
			aligned[mapping[i]] = cell
		}
		t.Rows = append(t.Rows, aligned)
	}
}
