package tablemerge

import (
	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/match"
	"github.com/agentstation/tablemerge/pkg/plan"
	"github.com/agentstation/tablemerge/pkg/review"
)

// config holds engine settings.
type config struct {
	threshold   int
	joinKind    plan.JoinKind
	joinKey     string
	leftPrefix  string
	rightPrefix string
	catalog     *match.Catalog
	concurrency int

	duplicateThreshold float64
}

func defaultConfig() *config {
	return &config{
		threshold:   constants.DefaultConfidenceThreshold,
		joinKind:    plan.JoinFullOuter,
		leftPrefix:  constants.DefaultLeftPrefix,
		rightPrefix: constants.DefaultRightPrefix,
		catalog:     match.DefaultCatalog(),
		concurrency: constants.MaxConcurrentPairs,

		duplicateThreshold: constants.DefaultDuplicateThreshold,
	}
}

// Option is a function that configures an Engine.
type Option func(*config) error

func (c *config) apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// WithConfidenceThreshold sets the confidence below which a mapping is
// flagged for review.
func WithConfidenceThreshold(threshold int) Option {
	return func(c *config) error {
		if err := review.ValidateThreshold(threshold); err != nil {
			return err
		}
		c.threshold = threshold
		return nil
	}
}

// WithJoinKind sets the join used by Reconcile.
func WithJoinKind(kind plan.JoinKind) Option {
	return func(c *config) error {
		if !kind.Valid() {
			return &errors.ValidationError{Field: "join", Value: kind, Message: "unknown join kind"}
		}
		c.joinKind = kind
		return nil
	}
}

// WithJoinKey pins the join key Reconcile uses, by unified or left column name.
func WithJoinKey(name string) Option {
	return func(c *config) error {
		c.joinKey = name
		return nil
	}
}

// WithPrefixes sets the prefixes for unmapped left and right columns.
func WithPrefixes(left, right string) Option {
	return func(c *config) error {
		if err := plan.ValidatePrefixes(left, right); err != nil {
			return err
		}
		c.leftPrefix = left
		c.rightPrefix = right
		return nil
	}
}

// WithCatalog replaces the semantic rule catalog.
func WithCatalog(catalog *match.Catalog) Option {
	return func(c *config) error {
		if catalog == nil {
			return &errors.ValidationError{Field: "catalog", Message: "cannot be nil"}
		}
		c.catalog = catalog
		return nil
	}
}

// WithRulesFile loads the semantic rule catalog from a YAML file.
func WithRulesFile(path string) Option {
	return func(c *config) error {
		if path == "" {
			return nil
		}
		catalog, err := match.LoadCatalog(path)
		if err != nil {
			return err
		}
		c.catalog = catalog
		return nil
	}
}

// WithConcurrency bounds how many pairs ReconcileAll processes at once.
func WithConcurrency(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return &errors.ValidationError{Field: "concurrency", Value: n, Message: "must be at least 1"}
		}
		c.concurrency = n
		return nil
	}
}

// WithDuplicateThreshold sets the duplicate key percentage above which
// ReconcileData raises its duplicate-risk conflict to MEDIUM.
func WithDuplicateThreshold(pct float64) Option {
	return func(c *config) error {
		if pct < 0 || pct > 100 {
			return &errors.ValidationError{Field: "duplicate_threshold", Value: pct, Message: "must be within [0,100]"}
		}
		c.duplicateThreshold = pct
		return nil
	}
}
