// Package dedupe collapses rows that share a key into a single survivor.
//
// A Spec names the partition key and an optional tie-break column. The
// survivor of each partition is the row with the greatest tie-break value
// (or the least, for ascending order); nulls always sort last and exact
// ties go to the earliest row. Selection is deterministic and idempotent:
// deduplicating an already unique table returns it unchanged.
package dedupe

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/agentstation/tablemerge/pkg/dataset"
	"github.com/agentstation/tablemerge/pkg/errors"
)

// Direction is the tie-break sort order.
type Direction string

const (
	// Descending keeps the greatest tie-break value.
	Descending Direction = "DESC"
	// Ascending keeps the least tie-break value.
	Ascending Direction = "ASC"
)

// String returns the SQL keyword.
func (d Direction) String() string {
	return string(d)
}

// ParseDirection accepts "asc", "desc" or "" (descending), in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "DESC", "DESCENDING":
		return Descending, nil
	case "ASC", "ASCENDING":
		return Ascending, nil
	}
	return "", &errors.ValidationError{Field: "direction", Value: s, Message: "must be asc or desc"}
}

// Spec describes one deduplication.
type Spec struct {
	PartitionKey   string    `json:"partition_key" yaml:"partition_key"`
	TieBreakColumn string    `json:"tie_break_column,omitempty" yaml:"tie_break_column,omitempty"`
	Direction      Direction `json:"direction" yaml:"direction"`
}

// Validate checks that the spec names a partition key and a known direction.
func (s Spec) Validate() error {
	if strings.TrimSpace(s.PartitionKey) == "" {
		return &errors.ValidationError{Field: "partition_key", Message: "cannot be empty"}
	}
	switch s.Direction {
	case Descending, Ascending, "":
		return nil
	}
	return &errors.ValidationError{Field: "direction", Value: s.Direction, Message: "must be ASC or DESC"}
}

func (s Spec) direction() Direction {
	if s.Direction == "" {
		return Descending
	}
	return s.Direction
}

// RowSelectionRule selects one survivor row per partition key value.
type RowSelectionRule struct {
	spec Spec
}

// Deduplicate turns a spec into a row selection rule.
func Deduplicate(spec Spec) (*RowSelectionRule, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	spec.Direction = spec.direction()
	return &RowSelectionRule{spec: spec}, nil
}

// Spec returns the specification the rule was built from.
func (r *RowSelectionRule) Spec() Spec {
	return r.spec
}

// nullKey groups null partition values together, as SQL PARTITION BY does.
const nullKey = "\x00null"

// Select returns the ordinals of surviving rows in ascending order.
// It fails with a MissingColumnError when the dataset lacks a named column.
func (r *RowSelectionRule) Select(d *dataset.Dataset) ([]int, error) {
	keyIdx := d.Schema.Index(r.spec.PartitionKey)
	if keyIdx < 0 {
		return nil, errors.NewMissingColumnError(d.Name(), r.spec.PartitionKey)
	}
	orderIdx := -1
	if r.spec.TieBreakColumn != "" {
		orderIdx = d.Schema.Index(r.spec.TieBreakColumn)
		if orderIdx < 0 {
			return nil, errors.NewMissingColumnError(d.Name(), r.spec.TieBreakColumn)
		}
	}

	best := make(map[string]int)
	order := make([]string, 0)
	for i, row := range d.Rows {
		k := partition(row[keyIdx])
		cur, seen := best[k]
		if !seen {
			best[k] = i
			order = append(order, k)
			continue
		}
		if orderIdx >= 0 && r.better(row[orderIdx], d.Rows[cur][orderIdx]) {
			best[k] = i
		}
	}

	survivors := make([]int, 0, len(order))
	for _, k := range order {
		survivors = append(survivors, best[k])
	}
	slices.Sort(survivors)
	return survivors, nil
}

// better reports whether candidate strictly beats current. Nulls lose to
// every value; equal values keep the earlier row.
func (r *RowSelectionRule) better(candidate, current any) bool {
	switch {
	case dataset.IsNull(candidate):
		return false
	case dataset.IsNull(current):
		return true
	}
	c := dataset.Compare(candidate, current)
	if r.spec.Direction == Ascending {
		return c < 0
	}
	return c > 0
}

func partition(v any) string {
	if dataset.IsNull(v) {
		return nullKey
	}
	return dataset.KeyString(v)
}

// Apply deduplicates a dataset and reports statistics. The input is not
// modified.
func Apply(d *dataset.Dataset, spec Spec) (*dataset.Dataset, Stats, error) {
	rule, err := Deduplicate(spec)
	if err != nil {
		return nil, Stats{}, err
	}
	keep, err := rule.Select(d)
	if err != nil {
		return nil, Stats{}, err
	}
	rows := make([]dataset.Row, len(keep))
	for i, idx := range keep {
		rows[i] = d.Rows[idx]
	}
	return &dataset.Dataset{Schema: d.Schema, Rows: rows}, NewStats(d.Len(), len(rows)), nil
}

// Stats summarizes one deduplication.
type Stats struct {
	Before     int     `json:"before" yaml:"before"`
	After      int     `json:"after" yaml:"after"`
	Removed    int     `json:"removed" yaml:"removed"`
	Percentage float64 `json:"percentage_removed" yaml:"percentage_removed"`
}

// NewStats computes removal counts. The percentage is rounded to two
// decimals and is 0 for an empty input.
func NewStats(before, after int) Stats {
	s := Stats{Before: before, After: after, Removed: before - after}
	if before > 0 {
		s.Percentage = Round2(float64(s.Removed) / float64(before) * 100)
	}
	return s
}

// String returns a one-line summary.
func (s Stats) String() string {
	return fmt.Sprintf("%d -> %d rows (%d removed, %.2f%%)", s.Before, s.After, s.Removed, s.Percentage)
}

// Round2 rounds to two decimal places.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}
