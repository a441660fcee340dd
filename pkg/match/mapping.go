package match

import (
	"fmt"

	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/schema"
)

// Mapping is a proposed correspondence between one left and one right column.
type Mapping struct {
	LeftColumn     string `json:"left_column" yaml:"left_column"`
	RightColumn    string `json:"right_column" yaml:"right_column"`
	UnifiedName    string `json:"unified_name" yaml:"unified_name"`
	Confidence     int    `json:"confidence" yaml:"confidence"`
	Reasoning      string `json:"reasoning" yaml:"reasoning"`
	Transformation string `json:"transformation,omitempty" yaml:"transformation,omitempty"`
	IsJoinKey      bool   `json:"is_join_key" yaml:"is_join_key"`
}

// String returns a short description of the mapping.
func (m Mapping) String() string {
	return fmt.Sprintf("%s <-> %s as %s (%d%%)", m.LeftColumn, m.RightColumn, m.UnifiedName, m.Confidence)
}

// Validate checks a mapping set for fan-out: each left and each right
// column may appear in at most one mapping. Names compare case-insensitively.
func Validate(mappings []Mapping) error {
	left := make(map[string]struct{}, len(mappings))
	right := make(map[string]struct{}, len(mappings))
	for _, m := range mappings {
		if m.Confidence < 0 || m.Confidence > 100 {
			return &errors.ValidationError{
				Field:   "confidence",
				Value:   m.Confidence,
				Message: fmt.Sprintf("mapping %s: confidence must be within [0,100]", m),
			}
		}
		lk, rk := schema.Key(m.LeftColumn), schema.Key(m.RightColumn)
		if _, dup := left[lk]; dup {
			return &errors.ValidationError{
				Field:   "left_column",
				Value:   m.LeftColumn,
				Message: "column appears in more than one mapping",
			}
		}
		if _, dup := right[rk]; dup {
			return &errors.ValidationError{
				Field:   "right_column",
				Value:   m.RightColumn,
				Message: "column appears in more than one mapping",
			}
		}
		left[lk] = struct{}{}
		right[rk] = struct{}{}
	}
	return nil
}
