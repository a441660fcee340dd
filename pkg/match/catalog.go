package match

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/tablemerge/pkg/errors"
)

//go:embed rules/semantic.yaml
var defaultCatalogYAML []byte

// Rule is one entry of the semantic synonym table.
type Rule struct {
	Name           string   `json:"name,omitempty" yaml:"name,omitempty"`
	Left           []string `json:"left" yaml:"left"`
	Right          []string `json:"right" yaml:"right"`
	Unified        string   `json:"unified" yaml:"unified"`
	Confidence     int      `json:"confidence" yaml:"confidence"`
	Reasoning      string   `json:"reasoning" yaml:"reasoning"`
	Transformation string   `json:"transformation,omitempty" yaml:"transformation,omitempty"`

	left  map[string]struct{}
	right map[string]struct{}
}

// matchesLeft reports whether a normalized left column name is in the rule's left set.
func (r *Rule) matchesLeft(normalized string) bool {
	_, ok := r.left[normalized]
	return ok
}

// matchesRight reports whether a normalized right column name is in the rule's right set.
func (r *Rule) matchesRight(normalized string) bool {
	_, ok := r.right[normalized]
	return ok
}

// Catalog is a versioned, ordered list of semantic rules. A compiled
// catalog is read-only and safe to share between goroutines.
type Catalog struct {
	Version int    `json:"version" yaml:"version"`
	Rules   []Rule `json:"rules" yaml:"rules"`
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML, "rules/semantic.yaml")
})

// DefaultCatalog returns the embedded rule catalog. It is parsed once.
func DefaultCatalog() *Catalog {
	c, err := defaultCatalog()
	if err != nil {
		panic(fmt.Sprintf("embedded rule catalog is invalid: %v", err))
	}
	return c
}

// LoadCatalog reads and compiles a rule catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return ParseCatalog(data, path)
}

// ParseCatalog decodes and compiles a YAML rule catalog. The file name is
// only used in error messages.
func ParseCatalog(data []byte, file string) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.WrapParse("yaml", file, err)
	}
	if err := c.compile(); err != nil {
		return nil, errors.NewConfigError("rules", file, err)
	}
	return &c, nil
}

// compile validates every rule and builds its normalized pattern sets.
func (c *Catalog) compile() error {
	if c.Version < 1 {
		return &errors.ValidationError{Field: "version", Value: c.Version, Message: "must be at least 1"}
	}
	for i := range c.Rules {
		r := &c.Rules[i]
		field := fmt.Sprintf("rules[%d]", i)
		switch {
		case len(r.Left) == 0:
			return &errors.ValidationError{Field: field + ".left", Message: "no patterns"}
		case len(r.Right) == 0:
			return &errors.ValidationError{Field: field + ".right", Message: "no patterns"}
		case r.Unified == "":
			return &errors.ValidationError{Field: field + ".unified", Message: "cannot be empty"}
		case r.Confidence < 0 || r.Confidence > 100:
			return &errors.ValidationError{Field: field + ".confidence", Value: r.Confidence, Message: "must be within [0,100]"}
		}
		r.left = patternSet(r.Left)
		r.right = patternSet(r.Right)
	}
	return nil
}

func patternSet(patterns []string) map[string]struct{} {
	set := make(map[string]struct{}, len(patterns))
	for _, p := range patterns {
		set[Normalize(p)] = struct{}{}
	}
	return set
}
