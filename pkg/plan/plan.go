// Package plan synthesizes lossless merge plans.
//
// A MergePlan describes how two datasets combine into one: the join kind,
// the join key, one coalesced column per mapping, one prefixed column per
// unmapped source column and two metadata columns. Every source column is
// represented exactly once, for every join kind. Plans are built once by
// Synthesize and then handed to an executor; callers treat them as
// read-only.
package plan

import (
	"fmt"

	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/match"
	"github.com/agentstation/tablemerge/pkg/schema"
)

// MetadataColumns are appended to every merge output, in this order.
var MetadataColumns = []string{constants.SourceTableColumn, constants.MergeTimestampColumn}

// OutputColumn is one column of the merged dataset.
type OutputColumn struct {
	Name   string `json:"name" yaml:"name"`
	Origin Origin `json:"origin" yaml:"origin"`
	// Left and Right name the source columns; empty when the side does not
	// contribute.
	Left  string `json:"left,omitempty" yaml:"left,omitempty"`
	Right string `json:"right,omitempty" yaml:"right,omitempty"`
	// Declared is the output type. Coalesced columns with incompatible
	// source types are widened to VARCHAR and Cast is set.
	Declared string `json:"declared" yaml:"declared"`
	Cast     bool   `json:"cast,omitempty" yaml:"cast,omitempty"`
}

// MergePlan is the complete specification of one merge.
type MergePlan struct {
	Left            string          `json:"left" yaml:"left"`
	Right           string          `json:"right" yaml:"right"`
	JoinKind        JoinKind        `json:"join_kind" yaml:"join_kind"`
	JoinKey         match.Mapping   `json:"join_key" yaml:"join_key"`
	Mappings        []match.Mapping `json:"mappings" yaml:"mappings"`
	UnmappedLeft    []schema.Column `json:"unmapped_left" yaml:"unmapped_left"`
	UnmappedRight   []schema.Column `json:"unmapped_right" yaml:"unmapped_right"`
	MetadataColumns []string        `json:"metadata_columns" yaml:"metadata_columns"`
	Columns         []OutputColumn  `json:"columns" yaml:"columns"`
	LeftPrefix      string          `json:"left_prefix" yaml:"left_prefix"`
	RightPrefix     string          `json:"right_prefix" yaml:"right_prefix"`
}

// Width returns the number of output columns.
func (p *MergePlan) Width() int {
	return len(p.Columns)
}

// ColumnNames returns the output column names in order.
func (p *MergePlan) ColumnNames() []string {
	names := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		names[i] = c.Name
	}
	return names
}

// OutputSchema builds the schema of the merged dataset.
func (p *MergePlan) OutputSchema(name string) (*schema.Schema, error) {
	cols := make([]schema.Column, len(p.Columns))
	for i, c := range p.Columns {
		cols[i] = schema.NewColumn(c.Name, c.Declared, true)
	}
	return schema.New(name, cols...)
}

// Check verifies the plan against the schemas it was built from: every
// mapped column resolves, every source column is represented exactly once
// and the output width obeys
// |mappings| + |unmappedLeft| + |unmappedRight| + |metadata|.
func (p *MergePlan) Check(left, right *schema.Schema) error {
	if err := checkResolves(p.Mappings, left, right); err != nil {
		return err
	}

	want := len(p.Mappings) + len(p.UnmappedLeft) + len(p.UnmappedRight) + len(p.MetadataColumns)
	if len(p.Columns) != want {
		return &errors.ValidationError{
			Field:   "columns",
			Value:   len(p.Columns),
			Message: fmt.Sprintf("plan has %d output columns, expected %d", len(p.Columns), want),
		}
	}

	seenLeft := make(map[string]int, left.Len())
	seenRight := make(map[string]int, right.Len())
	for _, c := range p.Columns {
		if c.Left != "" {
			seenLeft[schema.Key(c.Left)]++
		}
		if c.Right != "" {
			seenRight[schema.Key(c.Right)]++
		}
	}
	if err := checkOnce(left, seenLeft); err != nil {
		return err
	}
	return checkOnce(right, seenRight)
}

func checkOnce(s *schema.Schema, seen map[string]int) error {
	for _, c := range s.Columns() {
		if n := seen[c.Key()]; n != 1 {
			return &errors.ValidationError{
				Field:   "columns",
				Value:   c.Name,
				Message: fmt.Sprintf("column %s.%s appears %d times in the output", s.Name(), c.Name, n),
			}
		}
	}
	return nil
}

// checkResolves returns a MissingColumnError for the first mapping that
// names a column absent from its schema.
func checkResolves(mappings []match.Mapping, left, right *schema.Schema) error {
	for _, m := range mappings {
		if !left.Has(m.LeftColumn) {
			return errors.NewMissingColumnError(left.Name(), m.LeftColumn)
		}
		if !right.Has(m.RightColumn) {
			return errors.NewMissingColumnError(right.Name(), m.RightColumn)
		}
	}
	return nil
}
