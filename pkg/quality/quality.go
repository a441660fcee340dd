// Package quality profiles a dataset for duplicate keys and null values.
package quality

import (
	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/dataset"
	"github.com/agentstation/tablemerge/pkg/dedupe"
	"github.com/agentstation/tablemerge/pkg/errors"
)

// Status is the outcome of a quality check.
type Status string

const (
	// StatusPassed means no issue was found.
	StatusPassed Status = "PASSED"
	// StatusWarning means issues were found but stay within the threshold.
	StatusWarning Status = "WARNING"
	// StatusFailed means the threshold was exceeded.
	StatusFailed Status = "FAILED"
)

// String returns the status name.
func (s Status) String() string {
	return string(s)
}

// Passed reports whether the status is not FAILED.
func (s Status) Passed() bool {
	switch s {
	case StatusPassed, StatusWarning:
		return true
	case StatusFailed:
		return false
	}
	return false
}

// statusFor grades a percentage against a threshold.
func statusFor(pct, threshold float64) Status {
	switch {
	case pct == 0:
		return StatusPassed
	case pct <= threshold:
		return StatusWarning
	default:
		return StatusFailed
	}
}

// Profile bundles both checks for one dataset.
type Profile struct {
	Dataset    string           `json:"dataset" yaml:"dataset"`
	Duplicates *DuplicateReport `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
	Nulls      *NullReport      `json:"nulls" yaml:"nulls"`
}

// Passed reports whether every check in the profile passed.
func (p *Profile) Passed() bool {
	if p.Duplicates != nil && !p.Duplicates.Status.Passed() {
		return false
	}
	return p.Nulls == nil || p.Nulls.Status.Passed()
}

type options struct {
	key                string
	duplicateThreshold float64
	nullThreshold      float64
}

// Option configures profiling.
type Option func(*options) error

// WithKey sets the key column checked for duplicates. Without a key the
// duplicate check is skipped.
func WithKey(column string) Option {
	return func(o *options) error {
		o.key = column
		return nil
	}
}

// WithDuplicateThreshold sets the maximum acceptable duplicate percentage.
func WithDuplicateThreshold(pct float64) Option {
	return func(o *options) error {
		if pct < 0 || pct > 100 {
			return &errors.ValidationError{Field: "duplicate_threshold", Value: pct, Message: "must be within [0,100]"}
		}
		o.duplicateThreshold = pct
		return nil
	}
}

// WithNullThreshold sets the maximum acceptable null percentage per column.
func WithNullThreshold(pct float64) Option {
	return func(o *options) error {
		if pct < 0 || pct > 100 {
			return &errors.ValidationError{Field: "null_threshold", Value: pct, Message: "must be within [0,100]"}
		}
		o.nullThreshold = pct
		return nil
	}
}

// Run profiles a dataset.
func Run(d *dataset.Dataset, opts ...Option) (*Profile, error) {
	o := &options{
		duplicateThreshold: constants.DefaultDuplicateThreshold,
		nullThreshold:      constants.DefaultNullThreshold,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	p := &Profile{Dataset: d.Name(), Nulls: CheckNulls(d, o.nullThreshold)}
	if o.key != "" {
		dup, err := DetectDuplicates(d, o.key, o.duplicateThreshold)
		if err != nil {
			return nil, err
		}
		p.Duplicates = dup
	}
	return p, nil
}

func round2(f float64) float64 {
	return dedupe.Round2(f)
}
