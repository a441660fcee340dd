package schema

import "strings"

// Column describes one column of a dataset. Columns are values and are
// never modified after a Schema is built.
type Column struct {
	Name     string  `json:"name" yaml:"name"`
	Type     TypeTag `json:"type" yaml:"type"`
	Declared string  `json:"declared,omitempty" yaml:"declared,omitempty"`
	Nullable bool    `json:"nullable" yaml:"nullable"`
}

// NewColumn builds a column from a declared source type.
func NewColumn(name, declared string, nullable bool) Column {
	return Column{
		Name:     name,
		Type:     ParseType(declared),
		Declared: strings.TrimSpace(declared),
		Nullable: nullable,
	}
}

// Key returns the case-insensitive lookup key of a column name.
func Key(name string) string {
	return strings.ToLower(name)
}

// Key returns the case-insensitive lookup key of the column.
func (c Column) Key() string {
	return Key(c.Name)
}
