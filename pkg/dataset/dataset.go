// Package dataset pairs a schema with its rows. Readers in internal/sources
// produce datasets and the in-memory executor consumes them.
package dataset

import (
	"fmt"

	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/schema"
)

// Row holds one record, positionally aligned with the schema columns.
// A nil value is a null.
type Row []any

// Dataset is a named schema plus rows. Rows may be a sample of a larger
// table when the dataset was read from remote storage.
type Dataset struct {
	Schema *schema.Schema
	Rows   []Row
}

// New builds a dataset and checks that every row matches the schema width.
func New(s *schema.Schema, rows []Row) (*Dataset, error) {
	if s == nil {
		return nil, &errors.ValidationError{Field: "schema", Message: "cannot be nil"}
	}
	for i, row := range rows {
		if len(row) != s.Len() {
			return nil, errors.NewInvalidSchemaError(s.Name(), "",
				fmt.Sprintf("row %d has %d values, expected %d", i, len(row), s.Len()))
		}
	}
	return &Dataset{Schema: s, Rows: rows}, nil
}

// Name returns the dataset name.
func (d *Dataset) Name() string {
	return d.Schema.Name()
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Value returns the value of a named column in row i.
func (d *Dataset) Value(i int, column string) (any, error) {
	idx := d.Schema.Index(column)
	if idx < 0 {
		return nil, errors.NewMissingColumnError(d.Name(), column)
	}
	return d.Rows[i][idx], nil
}

// Column returns all values of a named column.
func (d *Dataset) Column(column string) ([]any, error) {
	idx := d.Schema.Index(column)
	if idx < 0 {
		return nil, errors.NewMissingColumnError(d.Name(), column)
	}
	values := make([]any, len(d.Rows))
	for i, row := range d.Rows {
		values[i] = row[idx]
	}
	return values, nil
}

// Records returns rows as maps keyed by column name, in row order.
func (d *Dataset) Records() []map[string]any {
	names := d.Schema.Names()
	out := make([]map[string]any, len(d.Rows))
	for i, row := range d.Rows {
		rec := make(map[string]any, len(names))
		for j, name := range names {
			rec[name] = row[j]
		}
		out[i] = rec
	}
	return out
}
