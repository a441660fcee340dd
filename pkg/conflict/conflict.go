// Package conflict validates column mappings against schema metadata.
//
// Classification never fails: a mapping that names a column absent from its
// schema becomes a CRITICAL conflict, a type family mismatch becomes a HIGH
// conflict, and every other condition is advisory. Conflicts are attached to
// the merge result for review; they never block plan synthesis.
package conflict

import "fmt"

// Kind identifies the class of a conflict.
type Kind string

const (
	// KindMissingColumn means a mapping references a column its schema lacks.
	KindMissingColumn Kind = "MISSING_COLUMN"
	// KindTypeMismatch means the mapped columns have incompatible declared types.
	KindTypeMismatch Kind = "TYPE_MISMATCH"
	// KindValueRange means sampled values fall outside a compatible range.
	KindValueRange Kind = "VALUE_RANGE"
	// KindSemantic means the columns likely differ in meaning.
	KindSemantic Kind = "SEMANTIC"
	// KindDuplicateRisk means the merge may produce duplicate rows.
	KindDuplicateRisk Kind = "DUPLICATE_RISK"
)

// String returns the kind name.
func (k Kind) String() string {
	return string(k)
}

// Description returns a short human-readable label for the kind.
func (k Kind) Description() string {
	switch k {
	case KindMissingColumn:
		return "Missing column"
	case KindTypeMismatch:
		return "Type mismatch"
	case KindValueRange:
		return "Value range"
	case KindSemantic:
		return "Semantic difference"
	case KindDuplicateRisk:
		return "Duplicate risk"
	}
	return "Unknown"
}

// Severity ranks how urgently a conflict needs attention.
type Severity string

const (
	// SeverityCritical blocks automatic acceptance.
	SeverityCritical Severity = "CRITICAL"
	// SeverityHigh needs review when several accumulate.
	SeverityHigh Severity = "HIGH"
	// SeverityMedium is worth a look.
	SeverityMedium Severity = "MEDIUM"
	// SeverityLow is informational.
	SeverityLow Severity = "LOW"
)

// String returns the severity name.
func (s Severity) String() string {
	return string(s)
}

// Rank orders severities from LOW (1) to CRITICAL (4).
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// DefaultSeverity returns the severity the classifier assigns to a kind.
func DefaultSeverity(k Kind) Severity {
	switch k {
	case KindMissingColumn:
		return SeverityCritical
	case KindTypeMismatch:
		return SeverityHigh
	case KindValueRange, KindSemantic:
		return SeverityMedium
	case KindDuplicateRisk:
		return SeverityLow
	}
	return SeverityLow
}

// Conflict is one problem found with a mapping.
type Conflict struct {
	Kind        Kind     `json:"kind" yaml:"kind"`
	Severity    Severity `json:"severity" yaml:"severity"`
	LeftColumn  string   `json:"left_column,omitempty" yaml:"left_column,omitempty"`
	RightColumn string   `json:"right_column,omitempty" yaml:"right_column,omitempty"`
	Description string   `json:"description" yaml:"description"`
}

// String returns a one-line summary.
func (c Conflict) String() string {
	return fmt.Sprintf("[%s] %s: %s", c.Severity, c.Kind, c.Description)
}
