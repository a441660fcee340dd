package plan

import (
	"fmt"

	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/match"
	"github.com/agentstation/tablemerge/pkg/schema"
)

// Synthesize builds a merge plan from a finalized mapping list and both
// schemas. It fails with a NoJoinKeyError when no join key can be chosen,
// a MissingColumnError when a mapping does not resolve and an
// InvalidSchemaError when two output columns would share a name. No partial
// plan is returned.
func Synthesize(mappings []match.Mapping, left, right *schema.Schema, kind JoinKind, opts ...Option) (*MergePlan, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, &errors.ValidationError{Field: "join", Value: kind, Message: "unknown join kind"}
	}
	if left == nil || right == nil {
		return nil, &errors.ValidationError{Field: "schema", Message: "both schemas are required"}
	}
	if err := match.Validate(mappings); err != nil {
		return nil, err
	}
	if err := checkResolves(mappings, left, right); err != nil {
		return nil, err
	}

	key, err := selectJoinKey(mappings, left.Name(), right.Name(), o.joinKey)
	if err != nil {
		return nil, err
	}

	p := &MergePlan{
		Left:            left.Name(),
		Right:           right.Name(),
		JoinKind:        kind,
		JoinKey:         key,
		Mappings:        append([]match.Mapping(nil), mappings...),
		UnmappedLeft:    unmapped(left, mappings, func(m match.Mapping) string { return m.LeftColumn }),
		UnmappedRight:   unmapped(right, mappings, func(m match.Mapping) string { return m.RightColumn }),
		MetadataColumns: append([]string(nil), MetadataColumns...),
		LeftPrefix:      o.leftPrefix,
		RightPrefix:     o.rightPrefix,
	}

	cols, err := outputColumns(p, left, right)
	if err != nil {
		return nil, err
	}
	p.Columns = cols
	return p, nil
}

// selectJoinKey picks the first mapping flagged as a join key, else the
// first with confidence of at least 90, else the highest confidence with
// the earliest mapping winning ties. An explicit name overrides the rules.
func selectJoinKey(mappings []match.Mapping, left, right, explicit string) (match.Mapping, error) {
	if len(mappings) == 0 {
		return match.Mapping{}, errors.NewNoJoinKeyError(left, right, "mapping list is empty", nil)
	}

	if explicit != "" {
		k := schema.Key(explicit)
		for _, m := range mappings {
			if schema.Key(m.UnifiedName) == k || schema.Key(m.LeftColumn) == k {
				return m, nil
			}
		}
		return match.Mapping{}, errors.NewNoJoinKeyError(left, right,
			fmt.Sprintf("key %q matches no mapping", explicit), candidates(mappings))
	}

	for _, m := range mappings {
		if m.IsJoinKey {
			return m, nil
		}
	}
	for _, m := range mappings {
		if m.Confidence >= constants.JoinKeyConfidenceFloor {
			return m, nil
		}
	}
	best := mappings[0]
	for _, m := range mappings[1:] {
		if m.Confidence > best.Confidence {
			best = m
		}
	}
	return best, nil
}

func candidates(mappings []match.Mapping) []string {
	out := make([]string, len(mappings))
	for i, m := range mappings {
		out[i] = m.UnifiedName
	}
	return out
}

// unmapped returns the columns of s that no mapping references, in schema order.
func unmapped(s *schema.Schema, mappings []match.Mapping, side func(match.Mapping) string) []schema.Column {
	used := make(map[string]struct{}, len(mappings))
	for _, m := range mappings {
		used[schema.Key(side(m))] = struct{}{}
	}
	out := []schema.Column{}
	for _, c := range s.Columns() {
		if _, ok := used[c.Key()]; !ok {
			out = append(out, c)
		}
	}
	return out
}

func outputColumns(p *MergePlan, left, right *schema.Schema) ([]OutputColumn, error) {
	width := len(p.Mappings) + len(p.UnmappedLeft) + len(p.UnmappedRight) + len(p.MetadataColumns)
	cols := make([]OutputColumn, 0, width)
	names := make(map[string]OutputColumn, width)

	add := func(c OutputColumn) error {
		if prev, dup := names[schema.Key(c.Name)]; dup {
			return errors.NewInvalidSchemaError(p.Left+"+"+p.Right, c.Name,
				fmt.Sprintf("output name collides with %s column %q", prev.Origin, prev.Name))
		}
		names[schema.Key(c.Name)] = c
		cols = append(cols, c)
		return nil
	}

	for _, m := range p.Mappings {
		lc, _ := left.Lookup(m.LeftColumn)
		rc, _ := right.Lookup(m.RightColumn)
		c := OutputColumn{
			Name:     m.UnifiedName,
			Origin:   OriginCoalesced,
			Left:     lc.Name,
			Right:    rc.Name,
			Declared: lc.Declared,
		}
		if !schema.Compatible(lc, rc) {
			c.Declared = "VARCHAR"
			c.Cast = true
		}
		if err := add(c); err != nil {
			return nil, err
		}
	}
	for _, lc := range p.UnmappedLeft {
		if err := add(OutputColumn{Name: p.LeftPrefix + lc.Name, Origin: OriginLeftOnly, Left: lc.Name, Declared: lc.Declared}); err != nil {
			return nil, err
		}
	}
	for _, rc := range p.UnmappedRight {
		if err := add(OutputColumn{Name: p.RightPrefix + rc.Name, Origin: OriginRightOnly, Right: rc.Name, Declared: rc.Declared}); err != nil {
			return nil, err
		}
	}
	if err := add(OutputColumn{Name: constants.SourceTableColumn, Origin: OriginMetadata, Declared: "VARCHAR"}); err != nil {
		return nil, err
	}
	if err := add(OutputColumn{Name: constants.MergeTimestampColumn, Origin: OriginMetadata, Declared: "TIMESTAMP"}); err != nil {
		return nil, err
	}
	return cols, nil
}
