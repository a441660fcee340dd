// Package review decides whether a reconciliation needs a human look.
//
// The decision combines the conflict escalation predicate with the mapping
// confidence threshold. The threshold never affects matching or synthesis;
// it is consulted only here.
package review

import (
	"fmt"

	"github.com/agentstation/tablemerge/pkg/conflict"
	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/match"
)

// Decision is the payload handed to a review service.
type Decision struct {
	RequiresReview bool                `json:"requires_review" yaml:"requires_review"`
	Threshold      int                 `json:"confidence_threshold" yaml:"confidence_threshold"`
	Summary        conflict.Summary    `json:"summary" yaml:"summary"`
	Conflicts      []conflict.Conflict `json:"conflicts" yaml:"conflicts"`
	LowConfidence  []match.Mapping     `json:"low_confidence,omitempty" yaml:"low_confidence,omitempty"`
	Reasons        []string            `json:"reasons,omitempty" yaml:"reasons,omitempty"`
}

// ValidateThreshold checks that a confidence threshold lies within [0,100].
func ValidateThreshold(threshold int) error {
	if threshold < 0 || threshold > 100 {
		return &errors.ValidationError{
			Field:   "confidence_threshold",
			Value:   threshold,
			Message: "must be within [0,100]",
		}
	}
	return nil
}

// Evaluate builds a decision. Review is required when the conflicts
// escalate (any CRITICAL, or more than two HIGH) or when any mapping's
// confidence is below threshold.
func Evaluate(conflicts []conflict.Conflict, mappings []match.Mapping, threshold int) (Decision, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return Decision{}, err
	}

	d := Decision{
		Threshold: threshold,
		Summary:   conflict.Summarize(conflicts),
		Conflicts: append([]conflict.Conflict{}, conflicts...),
	}

	if d.Summary.Critical > 0 {
		d.Reasons = append(d.Reasons, fmt.Sprintf("%d critical conflict(s)", d.Summary.Critical))
	}
	if d.Summary.High > constants.MaxHighConflicts {
		d.Reasons = append(d.Reasons, fmt.Sprintf("%d high-severity conflicts (more than %d)", d.Summary.High, constants.MaxHighConflicts))
	}
	for _, m := range mappings {
		if m.Confidence < threshold {
			d.LowConfidence = append(d.LowConfidence, m)
			d.Reasons = append(d.Reasons, fmt.Sprintf("mapping %s has confidence %d below %d", m.UnifiedName, m.Confidence, threshold))
		}
	}

	d.RequiresReview = d.Summary.RequiresReview() || len(d.LowConfidence) > 0
	return d, nil
}

// Default evaluates with the default confidence threshold.
func Default(conflicts []conflict.Conflict, mappings []match.Mapping) Decision {
	d, _ := Evaluate(conflicts, mappings, constants.DefaultConfidenceThreshold)
	return d
}
