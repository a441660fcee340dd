package conflict

import "github.com/agentstation/tablemerge/pkg/constants"

// Summary counts conflicts by severity.
type Summary struct {
	Total    int `json:"total" yaml:"total"`
	Critical int `json:"critical" yaml:"critical"`
	High     int `json:"high" yaml:"high"`
	Medium   int `json:"medium" yaml:"medium"`
	Low      int `json:"low" yaml:"low"`
}

// Summarize counts a conflict list by severity.
func Summarize(conflicts []Conflict) Summary {
	s := Summary{Total: len(conflicts)}
	for _, c := range conflicts {
		switch c.Severity {
		case SeverityCritical:
			s.Critical++
		case SeverityHigh:
			s.High++
		case SeverityMedium:
			s.Medium++
		case SeverityLow:
			s.Low++
		}
	}
	return s
}

// RequiresReview reports whether the summary escalates to mandatory review.
func (s Summary) RequiresReview() bool {
	return s.Critical > 0 || s.High > constants.MaxHighConflicts
}

// RequiresReview is the escalation predicate: any CRITICAL conflict, or
// more than two HIGH ones. It depends on nothing but the conflict list.
func RequiresReview(conflicts []Conflict) bool {
	return Summarize(conflicts).RequiresReview()
}

// Highest returns the most severe conflict severity, or "" for an empty list.
func Highest(conflicts []Conflict) Severity {
	var top Severity
	for _, c := range conflicts {
		if c.Severity.Rank() > top.Rank() {
			top = c.Severity
		}
	}
	return top
}
