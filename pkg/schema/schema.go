// Package schema defines the column and schema types every merge stage reads.
// A Schema is an ordered, immutable list of columns that are unique by
// case-insensitive name.
package schema

import (
	"encoding/json"
	"strings"

	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/errors"
)

// Schema is the ordered column list of one dataset.
type Schema struct {
	name    string
	columns []Column
	index   map[string]int
}

// New validates columns and builds a Schema. Duplicate names (compared
// case-insensitively), empty names and overlong names are rejected with an
// InvalidSchemaError.
func New(name string, columns ...Column) (*Schema, error) {
	s := &Schema{
		name:    name,
		columns: make([]Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}

	for _, col := range columns {
		if strings.TrimSpace(col.Name) == "" {
			return nil, errors.NewInvalidSchemaError(name, col.Name, "column name is empty")
		}
		if len(col.Name) > constants.MaxColumnNameLength {
			return nil, errors.NewInvalidSchemaError(name, col.Name, "column name is too long")
		}
		col, ok := normalizeColumn(col)
		if !ok {
			return nil, errors.NewInvalidSchemaError(name, col.Name, "column type is empty")
		}
		key := col.Key()
		if _, dup := s.index[key]; dup {
			return nil, errors.NewInvalidSchemaError(name, col.Name, "duplicate column name")
		}
		s.index[key] = len(s.columns)
		s.columns = append(s.columns, col)
	}

	return s, nil
}

// normalizeColumn fills in whichever of Type and Declared is missing. A Type
// that is not a known tag is treated as a declared type.
func normalizeColumn(col Column) (Column, bool) {
	if col.Declared == "" {
		col.Declared = string(col.Type)
	}
	switch col.Type {
	case TypeNumeric, TypeString, TypeDate, TypeOther:
	default:
		col.Type = ParseType(col.Declared)
	}
	return col, strings.TrimSpace(col.Declared) != ""
}

// MustNew is like New but panics on error. Intended for tests and fixtures.
func MustNew(name string, columns ...Column) *Schema {
	s, err := New(name, columns...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the dataset name the schema belongs to.
func (s *Schema) Name() string {
	return s.name
}

// Len returns the number of columns.
func (s *Schema) Len() int {
	return len(s.columns)
}

// Columns returns a copy of the ordered column list.
func (s *Schema) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// At returns the column at position i.
func (s *Schema) At(i int) Column {
	return s.columns[i]
}

// Lookup finds a column by case-insensitive name.
func (s *Schema) Lookup(name string) (Column, bool) {
	i, ok := s.index[Key(name)]
	if !ok {
		return Column{}, false
	}
	return s.columns[i], true
}

// Index returns the position of a column, or -1.
func (s *Schema) Index(name string) int {
	if i, ok := s.index[Key(name)]; ok {
		return i
	}
	return -1
}

// Has reports whether the schema contains the named column.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[Key(name)]
	return ok
}

// Names returns the column names in order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.Name
	}
	return names
}

type schemaDoc struct {
	Name    string   `json:"name" yaml:"name"`
	Columns []Column `json:"columns" yaml:"columns"`
}

// MarshalJSON implements json.Marshaler.
func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(schemaDoc{Name: s.name, Columns: s.columns})
}

// UnmarshalJSON implements json.Unmarshaler and validates the columns.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var doc schemaDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	built, err := New(doc.Name, doc.Columns...)
	if err != nil {
		return err
	}
	*s = *built
	return nil
}

// MarshalYAML implements the goccy/go-yaml InterfaceMarshaler.
func (s *Schema) MarshalYAML() (any, error) {
	return schemaDoc{Name: s.name, Columns: s.columns}, nil
}

// Rename returns the same columns under a different dataset name.
func (s *Schema) Rename(name string) *Schema {
	c := *s
	c.name = name
	return &c
}
