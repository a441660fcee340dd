// Package report assembles the reporting payload for a reconciliation:
// the merge plan, mappings, conflicts, review decision and, when the merge
// was executed, row counts, dedupe statistics and quality profiles.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/tablemerge"
	"github.com/agentstation/tablemerge/pkg/conflict"
	"github.com/agentstation/tablemerge/pkg/dedupe"
	"github.com/agentstation/tablemerge/pkg/executor"
	"github.com/agentstation/tablemerge/pkg/match"
	"github.com/agentstation/tablemerge/pkg/plan"
	"github.com/agentstation/tablemerge/pkg/quality"
	"github.com/agentstation/tablemerge/pkg/review"
)

// Report is the complete record of one reconciliation.
type Report struct {
	Left           string              `json:"left" yaml:"left"`
	Right          string              `json:"right" yaml:"right"`
	GeneratedAt    utc.Time            `json:"generated_at" yaml:"generated_at"`
	Mappings       []match.Mapping     `json:"mappings" yaml:"mappings"`
	UnmatchedLeft  []string            `json:"unmatched_left" yaml:"unmatched_left"`
	UnmatchedRight []string            `json:"unmatched_right" yaml:"unmatched_right"`
	Conflicts      []conflict.Conflict `json:"conflicts" yaml:"conflicts"`
	Plan           *plan.MergePlan     `json:"plan" yaml:"plan"`
	Review         review.Decision     `json:"review" yaml:"review"`

	Execution *executor.Result   `json:"execution,omitempty" yaml:"execution,omitempty"`
	Dedupe    *dedupe.Stats      `json:"dedupe,omitempty" yaml:"dedupe,omitempty"`
	Quality   []*quality.Profile `json:"quality,omitempty" yaml:"quality,omitempty"`
}

// New builds a report from a reconciliation result.
func New(res *tablemerge.Result, at time.Time) *Report {
	r := &Report{
		Left:        res.Left,
		Right:       res.Right,
		GeneratedAt: utc.New(at.UTC()),
		Mappings:    res.Match.Mappings,
		Conflicts:   res.Conflicts,
		Plan:        res.Plan,
		Review:      res.Review,
	}
	for _, c := range res.Match.UnmatchedLeft {
		r.UnmatchedLeft = append(r.UnmatchedLeft, c.Name)
	}
	for _, c := range res.Match.UnmatchedRight {
		r.UnmatchedRight = append(r.UnmatchedRight, c.Name)
	}
	if r.Conflicts == nil {
		r.Conflicts = []conflict.Conflict{}
	}
	return r
}

// WithExecution attaches executor output.
func (r *Report) WithExecution(res *executor.Result) *Report {
	r.Execution = res
	return r
}

// WithDedupe attaches dedupe statistics.
func (r *Report) WithDedupe(stats dedupe.Stats) *Report {
	r.Dedupe = &stats
	return r
}

// WithQuality attaches quality profiles.
func (r *Report) WithQuality(profiles ...*quality.Profile) *Report {
	r.Quality = append(r.Quality, profiles...)
	return r
}

// QualityPassed reports whether every attached profile passed.
func (r *Report) QualityPassed() bool {
	for _, p := range r.Quality {
		if !p.Passed() {
			return false
		}
	}
	return true
}

// Summary returns a human-readable one-line summary.
func (r *Report) Summary() string {
	parts := []string{
		fmt.Sprintf("%s + %s: %d mappings", r.Left, r.Right, len(r.Mappings)),
	}
	if r.Plan != nil {
		parts = append(parts, fmt.Sprintf("%s on %s, %d output columns",
			r.Plan.JoinKind, r.Plan.JoinKey.UnifiedName, r.Plan.Width()))
	}
	s := r.Review.Summary
	if s.Total == 0 {
		parts = append(parts, "no conflicts")
	} else {
		parts = append(parts, fmt.Sprintf("%d conflicts (%d critical, %d high)", s.Total, s.Critical, s.High))
	}
	if r.Execution != nil {
		c := r.Execution.Counts
		parts = append(parts, fmt.Sprintf("%d + %d -> %d rows", c.Left, c.Right, c.Output))
	}
	if r.Dedupe != nil {
		parts = append(parts, "dedupe "+r.Dedupe.String())
	}
	if len(r.Quality) > 0 && !r.QualityPassed() {
		parts = append(parts, "quality checks failed")
	}
	if r.Review.RequiresReview {
		parts = append(parts, "REVIEW REQUIRED")
	}
	return strings.Join(parts, "; ")
}
