package plan

import (
	"strings"

	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/errors"
)

type options struct {
	leftPrefix  string
	rightPrefix string
	joinKey     string
}

func defaultOptions() *options {
	return &options{
		leftPrefix:  constants.DefaultLeftPrefix,
		rightPrefix: constants.DefaultRightPrefix,
	}
}

// Option configures plan synthesis.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithPrefixes sets the prefixes applied to unmapped left and right columns.
func WithPrefixes(left, right string) Option {
	return func(o *options) error {
		if err := ValidatePrefixes(left, right); err != nil {
			return err
		}
		o.leftPrefix = left
		o.rightPrefix = right
		return nil
	}
}

// WithJoinKey pins the join key to the mapping whose unified name or left
// column equals name, ignoring case. An empty name keeps automatic selection.
func WithJoinKey(name string) Option {
	return func(o *options) error {
		o.joinKey = strings.TrimSpace(name)
		return nil
	}
}

// ValidatePrefixes checks that both prefixes are set and differ ignoring case.
func ValidatePrefixes(left, right string) error {
	if strings.TrimSpace(left) == "" || strings.TrimSpace(right) == "" {
		return &errors.ValidationError{Field: "prefix", Message: "prefixes cannot be empty"}
	}
	if strings.EqualFold(left, right) {
		return &errors.ValidationError{Field: "prefix", Value: left, Message: "left and right prefixes must differ"}
	}
	return nil
}
