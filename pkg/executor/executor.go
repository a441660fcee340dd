// Package executor materializes merge plans and deduplications against
// storage. The in-memory executor evaluates plans over registered
// datasets; the Postgres executor renders them as SQL and runs them
// through pgx.
package executor

import (
	"context"
	"time"

	"github.com/agentstation/tablemerge/pkg/dataset"
	"github.com/agentstation/tablemerge/pkg/dedupe"
	"github.com/agentstation/tablemerge/pkg/plan"
)

// Counts reports row counts around one merge.
type Counts struct {
	Left   int `json:"left" yaml:"left"`
	Right  int `json:"right" yaml:"right"`
	Output int `json:"output" yaml:"output"`
}

// Result is the outcome of executing a plan.
type Result struct {
	Target   string        `json:"target" yaml:"target"`
	Counts   Counts        `json:"counts" yaml:"counts"`
	SQL      string        `json:"sql,omitempty" yaml:"sql,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	// Output holds the merged rows when the executor keeps them in memory.
	Output *dataset.Dataset `json:"-" yaml:"-"`
}

// Executor materializes plans into a target table.
type Executor interface {
	// Execute runs the plan and writes the merged rows to target.
	Execute(ctx context.Context, p *plan.MergePlan, target string) (*Result, error)

	// Deduplicate copies source into target keeping one row per key.
	Deduplicate(ctx context.Context, source, target string, spec dedupe.Spec) (dedupe.Stats, error)
}

// Compile-time interface checks.
var (
	_ Executor = (*Memory)(nil)
	_ Executor = (*Postgres)(nil)
)
