// Package match proposes column mappings between two schemas.
//
// Matching runs two passes in strict priority. The first pairs columns whose
// names are equal ignoring case. The second walks an ordered table of
// semantic synonym rules. Columns left unpaired by both passes are returned
// as unmatched; they are never dropped and later become prefixed output
// columns. Matching is deterministic: ties are broken by column order only.
package match

import (
	"strings"

	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/schema"
)

// Result is the outcome of matching two schemas.
type Result struct {
	Mappings       []Mapping       `json:"mappings" yaml:"mappings"`
	UnmatchedLeft  []schema.Column `json:"unmatched_left" yaml:"unmatched_left"`
	UnmatchedRight []schema.Column `json:"unmatched_right" yaml:"unmatched_right"`
}

// Counts returns the number of exact and semantic mappings.
func (r *Result) Counts() (exact, semantic int) {
	for _, m := range r.Mappings {
		if m.Reasoning == ExactReasoning {
			exact++
		} else {
			semantic++
		}
	}
	return exact, semantic
}

// ExactReasoning is the reasoning recorded on exact name matches.
const ExactReasoning = "exact name match"

// Matcher pairs columns of two schemas. It holds only a read-only rule
// catalog and may be used concurrently.
type Matcher struct {
	catalog *Catalog
}

// New creates a Matcher with the given options.
func New(opts ...Option) (*Matcher, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Matcher{catalog: o.catalog}, nil
}

// Catalog returns the rule catalog in use.
func (m *Matcher) Catalog() *Catalog {
	return m.catalog
}

// Match runs the exact and semantic passes over two schemas. Neither schema
// is modified.
func (m *Matcher) Match(left, right *schema.Schema) Result {
	st := newState(left, right)
	st = exactPass(st)
	st = semanticPass(st, m.catalog)
	return st.result()
}

// Match pairs two schemas with the default rule catalog.
func Match(left, right *schema.Schema) Result {
	m := &Matcher{catalog: DefaultCatalog()}
	return m.Match(left, right)
}

// state is threaded through the passes. Each pass returns a new state;
// the input state is not reused after a pass.
type state struct {
	left, right         []schema.Column
	usedLeft, usedRight []bool
	unified             map[string]struct{}
	mappings            []Mapping
}

func newState(left, right *schema.Schema) state {
	return state{
		left:      left.Columns(),
		right:     right.Columns(),
		usedLeft:  make([]bool, left.Len()),
		usedRight: make([]bool, right.Len()),
		unified:   make(map[string]struct{}),
	}
}

func (s state) pair(li, ri int, m Mapping) state {
	s.usedLeft[li] = true
	s.usedRight[ri] = true
	s.unified[m.UnifiedName] = struct{}{}
	s.mappings = append(s.mappings, m)
	return s
}

func (s state) result() Result {
	r := Result{
		Mappings:       s.mappings,
		UnmatchedLeft:  []schema.Column{},
		UnmatchedRight: []schema.Column{},
	}
	if r.Mappings == nil {
		r.Mappings = []Mapping{}
	}
	for i, c := range s.left {
		if !s.usedLeft[i] {
			r.UnmatchedLeft = append(r.UnmatchedLeft, c)
		}
	}
	for i, c := range s.right {
		if !s.usedRight[i] {
			r.UnmatchedRight = append(r.UnmatchedRight, c)
		}
	}
	return r
}

// exactPass pairs columns whose names are equal ignoring case.
func exactPass(s state) state {
	for li, lc := range s.left {
		if s.usedLeft[li] {
			continue
		}
		lower := strings.ToLower(lc.Name)
		for ri, rc := range s.right {
			if s.usedRight[ri] || strings.ToLower(rc.Name) != lower {
				continue
			}
			s = s.pair(li, ri, Mapping{
				LeftColumn:  lc.Name,
				RightColumn: rc.Name,
				UnifiedName: lower,
				Confidence:  constants.ExactMatchConfidence,
				Reasoning:   ExactReasoning,
				IsJoinKey:   looksLikeJoinKey(lower),
			})
			break
		}
	}
	return s
}

// semanticPass applies the rule table in order. For each rule, every
// still-unmapped left column in the rule's left set is paired with the
// first still-unmapped right column in the rule's right set. A rule whose
// unified name is already taken by an earlier mapping is skipped so output
// names stay unique.
func semanticPass(s state, catalog *Catalog) state {
	if catalog == nil {
		return s
	}
	leftNorm := normalizeAll(s.left)
	rightNorm := normalizeAll(s.right)

	for i := range catalog.Rules {
		rule := &catalog.Rules[i]
		for li, lc := range s.left {
			if s.usedLeft[li] || !rule.matchesLeft(leftNorm[li]) {
				continue
			}
			if _, taken := s.unified[rule.Unified]; taken {
				break
			}
			for ri, rc := range s.right {
				if s.usedRight[ri] || !rule.matchesRight(rightNorm[ri]) {
					continue
				}
				s = s.pair(li, ri, Mapping{
					LeftColumn:     lc.Name,
					RightColumn:    rc.Name,
					UnifiedName:    rule.Unified,
					Confidence:     rule.Confidence,
					Reasoning:      "Semantic match: " + rule.Reasoning,
					Transformation: rule.Transformation,
					IsJoinKey:      unifiedIsJoinKey(rule.Unified),
				})
				break
			}
		}
	}
	return s
}

func normalizeAll(cols []schema.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = Normalize(c.Name)
	}
	return out
}
