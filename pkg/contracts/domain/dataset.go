package domain

import (
	"fmt"
)

// Dataset is a single named table read from a library: rows keyed by an
// ordered index (usually dates) with one or more named columns.
//
// Values held in Index and in column Values are one of float64, int64,
// string, bool, time.Time or nil for a missing observation.
type Dataset struct {
	IndexName string   `json:"index_name" bson:"index_name"`
	Index     []any    `json:"index" bson:"index"`
	Columns   []Column `json:"columns" bson:"columns"`
}

// Column is one named series of a dataset, aligned with the dataset index
type Column struct {
	Name   string `json:"name" bson:"name"`
	Values []any  `json:"values" bson:"values"`
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	return len(d.Index)
}

// ColumnNames returns the column names in their stored order
func (d *Dataset) ColumnNames() []string {
	names := make([]string, 0, len(d.Columns))
	for _, c := range d.Columns {
		names = append(names, c.Name)
	}
	return names
}

// Column returns the first column with the given name
func (d *Dataset) Column(name string) (*Column, bool) {
	for i := range d.Columns {
		if d.Columns[i].Name == name {
			return &d.Columns[i], true
		}
	}
	return nil, false
}

// DropColumn removes every column with the given name and reports whether
// anything was removed. The order of the remaining columns is kept.
func (d *Dataset) DropColumn(name string) bool {
	kept := d.Columns[:0]
	dropped := false
	for _, c := range d.Columns {
		if c.Name == name {
			dropped = true
			continue
		}
		kept = append(kept, c)
	}
	d.Columns = kept
	return dropped
}

// Validate checks that every column is aligned with the index
func (d *Dataset) Validate() error {
	for _, c := range d.Columns {
		if len(c.Values) != len(d.Index) {
			return fmt.Errorf("column %q has %d values, index has %d", c.Name, len(c.Values), len(d.Index))
		}
	}
	return nil
}
