package conflict

import (
	"fmt"

	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/match"
	"github.com/agentstation/tablemerge/pkg/schema"
)

// Classify checks every mapping against both schemas and returns the
// conflicts found, in mapping order. Only declared types are consulted.
func Classify(mappings []match.Mapping, left, right *schema.Schema) []Conflict {
	conflicts := []Conflict{}
	for _, m := range mappings {
		lc, lok := left.Lookup(m.LeftColumn)
		rc, rok := right.Lookup(m.RightColumn)

		if !lok || !rok {
			conflicts = append(conflicts, missing(m, left, right, lok, rok))
			continue
		}

		if !schema.Compatible(lc, rc) {
			conflicts = append(conflicts, Conflict{
				Kind:        KindTypeMismatch,
				Severity:    DefaultSeverity(KindTypeMismatch),
				LeftColumn:  m.LeftColumn,
				RightColumn: m.RightColumn,
				Description: fmt.Sprintf("type mismatch: %s (%s) vs %s (%s)",
					lc.Name, declared(lc), rc.Name, declared(rc)),
			})
		}
	}
	return conflicts
}

// missing builds the MISSING_COLUMN conflict for a mapping whose columns do
// not both resolve.
func missing(m match.Mapping, left, right *schema.Schema, lok, rok bool) Conflict {
	var err error
	switch {
	case !lok && !rok:
		err = fmt.Errorf("%w; %w",
			errors.NewMissingColumnError(left.Name(), m.LeftColumn),
			errors.NewMissingColumnError(right.Name(), m.RightColumn))
	case !lok:
		err = errors.NewMissingColumnError(left.Name(), m.LeftColumn)
	default:
		err = errors.NewMissingColumnError(right.Name(), m.RightColumn)
	}
	return Conflict{
		Kind:        KindMissingColumn,
		Severity:    DefaultSeverity(KindMissingColumn),
		LeftColumn:  m.LeftColumn,
		RightColumn: m.RightColumn,
		Description: err.Error(),
	}
}

func declared(c schema.Column) string {
	if c.Declared != "" {
		return c.Declared
	}
	return c.Type.String()
}
