package match

import "github.com/agentstation/tablemerge/pkg/errors"

type options struct {
	catalog *Catalog
}

func defaultOptions() *options {
	return &options{catalog: DefaultCatalog()}
}

// Option configures a Matcher.
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

// WithCatalog replaces the default semantic rule catalog.
func WithCatalog(c *Catalog) Option {
	return func(o *options) error {
		if c == nil {
			return &errors.ValidationError{Field: "catalog", Message: "cannot be nil"}
		}
		o.catalog = c
		return nil
	}
}

// WithCatalogFile loads the semantic rule catalog from a YAML file.
func WithCatalogFile(path string) Option {
	return func(o *options) error {
		c, err := LoadCatalog(path)
		if err != nil {
			return err
		}
		o.catalog = c
		return nil
	}
}

// WithoutSemanticRules disables the semantic pass, leaving exact matching only.
func WithoutSemanticRules() Option {
	return func(o *options) error {
		o.catalog = &Catalog{Version: 1}
		return nil
	}
}
