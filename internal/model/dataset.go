package model

import (
	"fmt"
)

// GenericRecord is a schema-agnostic view of a single dataset row
type GenericRecord map[string]interface{}

// Column is a named, ordered sequence of cells.
// A cell is nil (absent), int64, float64, bool or string.
type Column struct {
	Name   string        `json:"name"`
	Values []interface{} `json:"values"`
}

// Dataset is an in-memory rectangular table. Every column holds the same number of cells.
type Dataset struct {
	Columns []Column `json:"columns"`
}

// NewDataset creates an empty dataset with the given column names
func NewDataset(names ...string) *Dataset {
	ds := &Dataset{Columns: make([]Column, len(names))}
	for i, name := range names {
		ds.Columns[i] = Column{Name: name, Values: []interface{}{}}
	}
	return ds
}

// AppendRow adds one row. values must line up with the columns.
func (d *Dataset) AppendRow(values ...interface{}) error {
	if len(values) != len(d.Columns) {
		return fmt.Errorf("row has %d values, dataset has %d columns", len(values), len(d.Columns))
	}
	for i := range d.Columns {
		d.Columns[i].Values = append(d.Columns[i].Values, values[i])
	}
	return nil
}

// NumRows returns the shared row count
func (d *Dataset) NumRows() int {
	if d == nil || len(d.Columns) == 0 {
		return 0
	}
	return len(d.Columns[0].Values)
}

// NumColumns returns the column count
func (d *Dataset) NumColumns() int {
	if d == nil {
		return 0
	}
	return len(d.Columns)
}

// Shape returns (rows, columns)
func (d *Dataset) Shape() (int, int) {
	return d.NumRows(), d.NumColumns()
}

// ColumnNames returns the column names in order
func (d *Dataset) ColumnNames() []string {
	if d == nil {
		return []string{}
	}
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of the named column, or -1
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column returns the named column
func (d *Dataset) Column(name string) (*Column, bool) {
	idx := d.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	return &d.Columns[idx], true
}

// Row returns row i as a record
func (d *Dataset) Row(i int) GenericRecord {
	rec := make(GenericRecord, len(d.Columns))
	for _, c := range d.Columns {
		rec[c.Name] = c.Values[i]
	}
	return rec
}

// RowValues returns row i as an ordered slice
func (d *Dataset) RowValues(i int) []interface{} {
	row := make([]interface{}, len(d.Columns))
	for j, c := range d.Columns {
		row[j] = c.Values[i]
	}
	return row
}

// Records returns every row as a record
func (d *Dataset) Records() []GenericRecord {
	n := d.NumRows()
	records := make([]GenericRecord, n)
	for i := 0; i < n; i++ {
		records[i] = d.Row(i)
	}
	return records
}

// Head returns a copy of the first n rows
func (d *Dataset) Head(n int) *Dataset {
	if n < 0 {
		n = 0
	}
	if rows := d.NumRows(); n > rows {
		n = rows
	}
	out := &Dataset{Columns: make([]Column, len(d.Columns))}
	for i, c := range d.Columns {
		values := make([]interface{}, n)
		copy(values, c.Values[:n])
		out.Columns[i] = Column{Name: c.Name, Values: values}
	}
	return out
}

// Clone returns a deep copy of the column structure. Cells are immutable scalars.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	return d.Head(d.NumRows())
}
