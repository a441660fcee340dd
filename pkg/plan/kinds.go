package plan

import (
	"strings"

	"github.com/agentstation/tablemerge/pkg/errors"
)

// JoinKind selects which rows survive the merge.
type JoinKind string

const (
	// JoinFullOuter keeps every row from both sides.
	JoinFullOuter JoinKind = "FULL_OUTER"
	// JoinInner keeps only rows whose key appears on both sides.
	JoinInner JoinKind = "INNER"
	// JoinLeft keeps every left row.
	JoinLeft JoinKind = "LEFT"
	// JoinRight keeps every right row.
	JoinRight JoinKind = "RIGHT"
)

// String returns the join kind name.
func (k JoinKind) String() string {
	return string(k)
}

// SQL returns the join clause keyword.
func (k JoinKind) SQL() string {
	switch k {
	case JoinFullOuter:
		return "FULL OUTER JOIN"
	case JoinInner:
		return "INNER JOIN"
	case JoinLeft:
		return "LEFT JOIN"
	case JoinRight:
		return "RIGHT JOIN"
	}
	return ""
}

// KeepsUnmatchedLeft reports whether left rows without a partner survive.
func (k JoinKind) KeepsUnmatchedLeft() bool {
	switch k {
	case JoinFullOuter, JoinLeft:
		return true
	case JoinInner, JoinRight:
		return false
	}
	return false
}

// KeepsUnmatchedRight reports whether right rows without a partner survive.
func (k JoinKind) KeepsUnmatchedRight() bool {
	switch k {
	case JoinFullOuter, JoinRight:
		return true
	case JoinInner, JoinLeft:
		return false
	}
	return false
}

// Valid reports whether k is a known join kind.
func (k JoinKind) Valid() bool {
	return k.SQL() != ""
}

// JoinKinds lists every supported join kind.
func JoinKinds() []JoinKind {
	return []JoinKind{JoinFullOuter, JoinInner, JoinLeft, JoinRight}
}

// ParseJoinKind accepts the canonical names in any case, with '-', '_' or
// a space as separator, plus the short forms "full" and "outer".
func ParseJoinKind(s string) (JoinKind, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	norm = strings.TrimSuffix(norm, "_JOIN")
	switch norm {
	case "FULL_OUTER", "FULL", "OUTER", "":
		return JoinFullOuter, nil
	case "INNER":
		return JoinInner, nil
	case "LEFT", "LEFT_OUTER":
		return JoinLeft, nil
	case "RIGHT", "RIGHT_OUTER":
		return JoinRight, nil
	}
	return "", &errors.ValidationError{
		Field:   "join",
		Value:   s,
		Message: "unknown join kind (want full_outer, inner, left or right)",
	}
}

// Provenance tags each merged row with the side(s) it came from.
type Provenance string

const (
	// ProvenanceBoth marks a row whose key was present on both sides.
	ProvenanceBoth Provenance = "BOTH"
	// ProvenanceLeftOnly marks a row found only on the left.
	ProvenanceLeftOnly Provenance = "LEFT_ONLY"
	// ProvenanceRightOnly marks a row found only on the right.
	ProvenanceRightOnly Provenance = "RIGHT_ONLY"
)

// String returns the provenance tag.
func (p Provenance) String() string {
	return string(p)
}

// ProvenanceOf derives the tag from join key presence on each side. A row
// with no key on either side is tagged RIGHT_ONLY, as the SQL CASE does.
func ProvenanceOf(leftKey, rightKey bool) Provenance {
	switch {
	case leftKey && rightKey:
		return ProvenanceBoth
	case leftKey:
		return ProvenanceLeftOnly
	default:
		return ProvenanceRightOnly
	}
}

// Origin describes where an output column's values come from.
type Origin string

const (
	// OriginCoalesced is a mapped pair, left value first.
	OriginCoalesced Origin = "COALESCED"
	// OriginLeftOnly is an unmapped left column carried under a prefix.
	OriginLeftOnly Origin = "LEFT_ONLY"
	// OriginRightOnly is an unmapped right column carried under a prefix.
	OriginRightOnly Origin = "RIGHT_ONLY"
	// OriginMetadata is a column added by the merge itself.
	OriginMetadata Origin = "METADATA"
)

// String returns the origin name.
func (o Origin) String() string {
	return string(o)
}
