// Package table holds the loosely-typed tabular structure shared by ingestion,
// the merge engine and the exporters.
package table

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotTemporal is returned when a time column holds a non-timestamp cell.
var ErrNotTemporal = errors.New("column is not temporal")

// Table is an ordered set of named columns. A cell is nil (null), string,
// float64, bool or Timestamp.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]any
}

// New creates an empty table with the given column names.
func New(columns ...string) (*Table, error) {
	t := &Table{
		columns: make([]string, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for _, c := range columns {
		if _, dup := t.index[c]; dup {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		t.index[c] = len(t.columns)
		t.columns = append(t.columns, c)
	}
	return t, nil
}

// MustNew is New for fixed column sets known to be unique.
func MustNew(columns ...string) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

func (t *Table) Len() int { return len(t.rows) }

func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// ColumnIndex returns the position of a column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// AppendRow adds one row; values must match the column count.
func (t *Table) AppendRow(values ...any) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.columns))
	}
	row := make([]any, len(values))
	copy(row, values)
	t.rows = append(t.rows, row)
	return nil
}

// Value returns the cell at row i of column name, nil if either is absent.
func (t *Table) Value(i int, name string) any {
	c, ok := t.index[name]
	if !ok || i < 0 || i >= len(t.rows) {
		return nil
	}
	return t.rows[i][c]
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []any {
	out := make([]any, len(t.columns))
	copy(out, t.rows[i])
	return out
}

// Set replaces one cell.
func (t *Table) Set(i int, name string, v any) error {
	c, ok := t.index[name]
	if !ok {
		return &MissingColumnError{Column: name, Table: "table"}
	}
	if i < 0 || i >= len(t.rows) {
		return fmt.Errorf("row %d out of range", i)
	}
	t.rows[i][c] = v
	return nil
}

// Column returns a copy of all cells of a column.
func (t *Table) Column(name string) ([]any, bool) {
	c, ok := t.index[name]
	if !ok {
		return nil, false
	}
	out := make([]any, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[c]
	}
	return out, true
}

// SetColumn adds a column, or overwrites it when it already exists, filling
// each row with fill(i).
func (t *Table) SetColumn(name string, fill func(i int) any) {
	c, ok := t.index[name]
	if !ok {
		c = len(t.columns)
		t.index[name] = c
		t.columns = append(t.columns, name)
		for i := range t.rows {
			t.rows[i] = append(t.rows[i], nil)
		}
	}
	for i := range t.rows {
		t.rows[i][c] = fill(i)
	}
}

// TimeColumn returns the cells of a column as timestamps; nil entries are nulls.
func (t *Table) TimeColumn(name string) ([]*Timestamp, error) {
	c, ok := t.index[name]
	if !ok {
		return nil, &MissingColumnError{Column: name, Table: "table"}
	}
	out := make([]*Timestamp, len(t.rows))
	for i, row := range t.rows {
		switch v := row[c].(type) {
		case nil:
		case Timestamp:
			ts := v
			out[i] = &ts
		default:
			return nil, fmt.Errorf("%w: %q row %d holds %T", ErrNotTemporal, name, i, v)
		}
	}
	return out, nil
}

// Clone returns a copy whose rows can be modified independently.
func (t *Table) Clone() *Table {
	return t.Take(nil)
}

// Take returns a new table made of the given rows in order. A nil order copies all rows.
func (t *Table) Take(order []int) *Table {
	out := &Table{
		columns: t.Columns(),
		index:   make(map[string]int, len(t.index)),
	}
	for k, v := range t.index {
		out.index[k] = v
	}
	if order == nil {
		out.rows = make([][]any, len(t.rows))
		for i := range t.rows {
			out.rows[i] = t.Row(i)
		}
		return out
	}
	out.rows = make([][]any, len(order))
	for i, src := range order {
		out.rows[i] = t.Row(src)
	}
	return out
}

// Records renders every row as strings, nulls as "".
func (t *Table) Records() [][]string {
	out := make([][]string, len(t.rows))
	for i, row := range t.rows {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = FormatCell(v)
		}
		out[i] = rec
	}
	return out
}

// FormatCell renders one cell for text outputs.
func FormatCell(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return formatFloat(c)
	case bool:
		if c {
			return "true"
		}
		return "false"
	case Timestamp:
		return c.String()
	default:
		return fmt.Sprint(c)
	}
}

type tableJSON struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

func (t *Table) MarshalJSON() ([]byte, error) {
	rows := t.rows
	if rows == nil {
		rows = [][]any{}
	}
	return json.Marshal(tableJSON{Columns: t.columns, Rows: rows})
}
