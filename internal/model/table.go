package model

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// ErrMissingColumn is returned when a required column is not in a table header.
var ErrMissingColumn = errors.New("missing column")

// Table is an in-memory CSV row-set.
// Every row has exactly len(Header) cells; an empty cell is a missing value.
type Table struct {
	// Header holds the column names in file order.
	Header []string `json:"header"`

	// Rows holds the cells of each record, aligned with Header.
	Rows [][]string `json:"rows"`
}

// NewTable creates an empty table with the given header.
func NewTable(header ...string) *Table {
	h := make([]string, len(header))
	copy(h, header)
	return &Table{
		Header: h,
		Rows:   make([][]string, 0),
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, h := range t.Header {
		if h == name {
			return i, true
		}
	}
	return -1, false
}

// MustColumns resolves several column names at once and fails on the first
// one that is absent.
func (t *Table) MustColumns(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		j, ok := t.ColumnIndex(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
		idx[i] = j
	}
	return idx, nil
}

// Column returns a copy of the values of the named column.
func (t *Table) Column(name string) ([]string, error) {
	j, ok := t.ColumnIndex(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
	}
	col := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		col[i] = row[j]
	}
	return col, nil
}

// AppendRow adds a row. Short rows are padded with empty cells and long rows
// are rejected.
func (t *Table) AppendRow(cells ...string) error {
	if len(cells) > len(t.Header) {
		return fmt.Errorf("row has %d cells, header has %d", len(cells), len(t.Header))
	}
	row := make([]string, len(t.Header))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
	return nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	c := NewTable(t.Header...)
	c.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]string, len(row))
		copy(r, row)
		c.Rows[i] = r
	}
	return c
}

// Concat stacks tables vertically.
// Columns are the union of all headers in first-seen order; cells of columns
// a table does not have are left empty.
func Concat(tables ...*Table) *Table {
	header := make([]string, 0)
	seen := make(map[string]bool)
	for _, t := range tables {
		for _, h := range t.Header {
			if !seen[h] {
				seen[h] = true
				header = append(header, h)
			}
		}
	}

	out := NewTable(header...)
	for _, t := range tables {
		pos := make([]int, len(t.Header))
		for i, h := range t.Header {
			pos[i], _ = out.ColumnIndex(h)
		}
		for _, row := range t.Rows {
			r := make([]string, len(header))
			for i, cell := range row {
				r[pos[i]] = cell
			}
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// ReadTable reads a CSV document with a header line.
func ReadTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("failed to read csv: no header line")
	}

	t := NewTable(records[0]...)
	for line, rec := range records[1:] {
		if err := t.AppendRow(rec...); err != nil {
			return nil, fmt.Errorf("failed to read csv: record %d: %w", line+2, err)
		}
	}
	return t, nil
}

// Write writes the table as CSV with a header line.
func (t *Table) Write(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Header); err != nil {
		return err
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return err
	}
	return writer.Error()
}
