package executor

import (
	"context"
	"sync"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/dataset"
	"github.com/agentstation/tablemerge/pkg/dedupe"
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/logging"
	"github.com/agentstation/tablemerge/pkg/plan"
)

// Memory executes plans over datasets held in memory. Tables are looked up
// by dataset name. It is safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	tables map[string]*dataset.Dataset
	now    func() utc.Time
}

// MemoryOption configures a Memory executor.
type MemoryOption func(*Memory)

// WithClock sets the clock used for the merge timestamp column.
func WithClock(now func() utc.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemory creates an in-memory executor holding the given datasets.
func NewMemory(datasets []*dataset.Dataset, opts ...MemoryOption) *Memory {
	m := &Memory{
		tables: make(map[string]*dataset.Dataset, len(datasets)),
		now:    utc.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.Register(datasets...)
	return m
}

// Register adds or replaces datasets by name.
func (m *Memory) Register(datasets ...*dataset.Dataset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range datasets {
		m.tables[d.Name()] = d
	}
}

// Table returns a registered dataset.
func (m *Memory) Table(name string) (*dataset.Dataset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.tables[name]
	if !ok {
		return nil, errors.NewNotFoundError("table", name)
	}
	return d, nil
}

// Execute evaluates the plan over the registered left and right datasets
// and registers the output under target.
func (m *Memory) Execute(ctx context.Context, p *plan.MergePlan, target string) (*Result, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, errors.ErrCanceled
	}
	ctx = logging.WithJoinKind(logging.WithOperation(ctx, "execute"), p.JoinKind.String())

	left, err := m.Table(p.Left)
	if err != nil {
		return nil, err
	}
	right, err := m.Table(p.Right)
	if err != nil {
		return nil, err
	}

	out, err := Evaluate(p, left, right, target, m.now().Time)
	if err != nil {
		return nil, err
	}
	m.Register(out)

	res := &Result{
		Target:   target,
		Counts:   Counts{Left: left.Len(), Right: right.Len(), Output: out.Len()},
		Duration: time.Since(start),
		Output:   out,
	}
	logging.FromContext(ctx).Debug().
		Str("target", target).
		Int("left_rows", res.Counts.Left).
		Int("right_rows", res.Counts.Right).
		Int("output_rows", res.Counts.Output).
		Msg("Merge executed in memory")
	return res, nil
}

// Deduplicate applies spec to a registered table and registers the result
// under target.
func (m *Memory) Deduplicate(ctx context.Context, source, target string, spec dedupe.Spec) (dedupe.Stats, error) {
	if err := ctx.Err(); err != nil {
		return dedupe.Stats{}, errors.ErrCanceled
	}
	src, err := m.Table(source)
	if err != nil {
		return dedupe.Stats{}, err
	}
	out, stats, err := dedupe.Apply(src, spec)
	if err != nil {
		return dedupe.Stats{}, err
	}
	m.Register(&dataset.Dataset{Schema: out.Schema.Rename(target), Rows: out.Rows})
	logging.FromContext(logging.WithOperation(ctx, "dedupe")).Debug().
		Str("source", source).
		Str("target", target).
		Int("removed", stats.Removed).
		Msg("Deduplicated in memory")
	return stats, nil
}

// Evaluate joins left and right as the plan describes and returns the
// merged dataset named target. Rows are emitted in left order, each left
// row followed by its partners; unmatched right rows follow at the end.
// Null keys never join.
func Evaluate(p *plan.MergePlan, left, right *dataset.Dataset, target string, at time.Time) (*dataset.Dataset, error) {
	if err := p.Check(left.Schema, right.Schema); err != nil {
		return nil, err
	}
	out, err := p.OutputSchema(target)
	if err != nil {
		return nil, err
	}

	lk := left.Schema.Index(p.JoinKey.LeftColumn)
	rk := right.Schema.Index(p.JoinKey.RightColumn)
	cols := compile(p, left, right, lk, rk, at)

	byKey := make(map[string][]int)
	for i, row := range right.Rows {
		if dataset.IsNull(row[rk]) {
			continue
		}
		k := dataset.KeyString(row[rk])
		byKey[k] = append(byKey[k], i)
	}

	rows := make([]dataset.Row, 0, left.Len()+right.Len())
	emit := func(l, r dataset.Row) {
		row := make(dataset.Row, len(cols))
		for i, f := range cols {
			row[i] = f(l, r)
		}
		rows = append(rows, row)
	}

	matched := make([]bool, right.Len())
	for _, lrow := range left.Rows {
		var partners []int
		if !dataset.IsNull(lrow[lk]) {
			partners = byKey[dataset.KeyString(lrow[lk])]
		}
		if len(partners) == 0 {
			if p.JoinKind.KeepsUnmatchedLeft() {
				emit(lrow, nil)
			}
			continue
		}
		for _, ri := range partners {
			matched[ri] = true
			emit(lrow, right.Rows[ri])
		}
	}
	if p.JoinKind.KeepsUnmatchedRight() {
		for i, rrow := range right.Rows {
			if !matched[i] {
				emit(nil, rrow)
			}
		}
	}

	return &dataset.Dataset{Schema: out, Rows: rows}, nil
}

type columnFunc func(l, r dataset.Row) any

func compile(p *plan.MergePlan, left, right *dataset.Dataset, lk, rk int, at time.Time) []columnFunc {
	pick := func(row dataset.Row, idx int, cast bool) any {
		if row == nil || dataset.IsNull(row[idx]) {
			return nil
		}
		if cast {
			return dataset.Format(row[idx])
		}
		return row[idx]
	}

	funcs := make([]columnFunc, 0, len(p.Columns))
	for _, c := range p.Columns {
		switch c.Origin {
		case plan.OriginCoalesced:
			li, ri, cast := left.Schema.Index(c.Left), right.Schema.Index(c.Right), c.Cast
			funcs = append(funcs, func(l, r dataset.Row) any {
				if v := pick(l, li, cast); v != nil {
					return v
				}
				return pick(r, ri, cast)
			})
		case plan.OriginLeftOnly:
			li := left.Schema.Index(c.Left)
			funcs = append(funcs, func(l, _ dataset.Row) any { return pick(l, li, false) })
		case plan.OriginRightOnly:
			ri := right.Schema.Index(c.Right)
			funcs = append(funcs, func(_, r dataset.Row) any { return pick(r, ri, false) })
		case plan.OriginMetadata:
			switch c.Name {
			case constants.SourceTableColumn:
				funcs = append(funcs, func(l, r dataset.Row) any {
					return plan.ProvenanceOf(pick(l, lk, false) != nil, pick(r, rk, false) != nil).String()
				})
			case constants.MergeTimestampColumn:
				funcs = append(funcs, func(_, _ dataset.Row) any { return at })
			default:
				funcs = append(funcs, func(_, _ dataset.Row) any { return nil })
			}
		}
	}
	return funcs
}
