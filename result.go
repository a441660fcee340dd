package tablemerge

import (
	"github.com/agentstation/tablemerge/pkg/conflict"
	"github.com/agentstation/tablemerge/pkg/match"
	"github.com/agentstation/tablemerge/pkg/plan"
	"github.com/agentstation/tablemerge/pkg/review"
	"github.com/agentstation/tablemerge/pkg/schema"
)

// Pair is one left/right schema pair to reconcile.
type Pair struct {
	Left  *schema.Schema
	Right *schema.Schema
}

// Result is the outcome of reconciling one pair.
type Result struct {
	Left      string              `json:"left" yaml:"left"`
	Right     string              `json:"right" yaml:"right"`
	Match     match.Result        `json:"match" yaml:"match"`
	Conflicts []conflict.Conflict `json:"conflicts" yaml:"conflicts"`
	Plan      *plan.MergePlan     `json:"plan" yaml:"plan"`
	Review    review.Decision     `json:"review" yaml:"review"`
}

// RequiresReview reports whether the result escalates to review.
func (r *Result) RequiresReview() bool {
	return r.Review.RequiresReview
}
