package executor_test

import (
	"context"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tablemerge/pkg/dataset"
	"github.com/agentstation/tablemerge/pkg/dedupe"
	pkgerrors "github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/executor"
	"github.com/agentstation/tablemerge/pkg/match"
	"github.com/agentstation/tablemerge/pkg/plan"
	"github.com/agentstation/tablemerge/pkg/schema"
)

var fixed = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func build(t *testing.T, s *schema.Schema, rows ...dataset.Row) *dataset.Dataset {
	t.Helper()
	d, err := dataset.New(s, rows)
	require.NoError(t, err)
	return d
}

func customersAndClients(t *testing.T) (*dataset.Dataset, *dataset.Dataset) {
	t.Helper()
	left := build(t, schema.MustNew("customers",
		schema.NewColumn("id", "INT", false),
		schema.NewColumn("name", "VARCHAR", true),
	),
		dataset.Row{1, "Ada"},
		dataset.Row{2, "Grace"},
		dataset.Row{3, "Linus"},
	)
	right := build(t, schema.MustNew("clients",
		schema.NewColumn("id", "INT", false),
		schema.NewColumn("fullname", "VARCHAR", true),
	),
		dataset.Row{2, "Grace Hopper"},
		dataset.Row{3, "Linus Torvalds"},
		dataset.Row{4, "Ken Thompson"},
	)
	return left, right
}

func synth(t *testing.T, left, right *dataset.Dataset, kind plan.JoinKind) *plan.MergePlan {
	t.Helper()
	p, err := plan.Synthesize(match.Match(left.Schema, right.Schema).Mappings, left.Schema, right.Schema, kind)
	require.NoError(t, err)
	return p
}

func TestMemoryExecuteFullOuter(t *testing.T) {
	left, right := customersAndClients(t)
	p := synth(t, left, right, plan.JoinFullOuter)
	ex := executor.NewMemory([]*dataset.Dataset{left, right}, executor.WithClock(func() utc.Time { return utc.New(fixed) }))

	res, err := ex.Execute(context.Background(), p, "merged")
	require.NoError(t, err)

	assert.Equal(t, executor.Counts{Left: 3, Right: 3, Output: 4}, res.Counts)
	assert.Equal(t, []string{"id", "ds_left_name", "ds_right_fullname", "_SOURCE_TABLE", "_MERGE_TIMESTAMP"}, res.Output.Schema.Names())
	assert.Equal(t, []dataset.Row{
		{1, "Ada", nil, "LEFT_ONLY", fixed},
		{2, "Grace", "Grace Hopper", "BOTH", fixed},
		{3, "Linus", "Linus Torvalds", "BOTH", fixed},
		{4, nil, "Ken Thompson", "RIGHT_ONLY", fixed},
	}, res.Output.Rows)

	stored, err := ex.Table("merged")
	require.NoError(t, err)
	assert.Same(t, res.Output, stored)
}

func TestMemoryExecuteStampsUTC(t *testing.T) {
	left, right := customersAndClients(t)
	before := time.Now()
	res, err := executor.NewMemory([]*dataset.Dataset{left, right}).
		Execute(context.Background(), synth(t, left, right, plan.JoinInner), "merged")
	require.NoError(t, err)

	stamps, err := res.Output.Column("_MERGE_TIMESTAMP")
	require.NoError(t, err)
	require.Len(t, stamps, 2)
	at, ok := stamps[0].(time.Time)
	require.True(t, ok)
	assert.Equal(t, time.UTC, at.Location())
	assert.False(t, at.Before(before.Truncate(time.Second)))
	assert.Equal(t, stamps[0], stamps[1], "one timestamp per run")
}

func TestMemoryExecuteJoinKinds(t *testing.T) {
	left, right := customersAndClients(t)

	tests := []struct {
		kind plan.JoinKind
		want int
		tags []any
	}{
		{plan.JoinFullOuter, 4, []any{"LEFT_ONLY", "BOTH", "BOTH", "RIGHT_ONLY"}},
		{plan.JoinInner, 2, []any{"BOTH", "BOTH"}},
		{plan.JoinLeft, 3, []any{"LEFT_ONLY", "BOTH", "BOTH"}},
		{plan.JoinRight, 3, []any{"BOTH", "BOTH", "RIGHT_ONLY"}},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			out, err := executor.Evaluate(synth(t, left, right, tt.kind), left, right, "out", fixed)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Len())
			tags, err := out.Column("_SOURCE_TABLE")
			require.NoError(t, err)
			assert.Equal(t, tt.tags, tags)
		})
	}
}

func TestEvaluateDisjointKeysRowCountLaw(t *testing.T) {
	s := func(name string) *schema.Schema {
		return schema.MustNew(name, schema.NewColumn("key", "INT", false), schema.NewColumn("v", "TEXT", true))
	}
	left := build(t, s("l"), dataset.Row{1, "a"}, dataset.Row{2, "b"}, dataset.Row{3, "c"})
	right := build(t, s("r"), dataset.Row{10, "x"}, dataset.Row{20, "y"})

	out, err := executor.Evaluate(synth(t, left, right, plan.JoinFullOuter), left, right, "out", fixed)
	require.NoError(t, err)
	assert.Equal(t, left.Len()+right.Len(), out.Len())
}

func TestEvaluateLargeIntegerKeysStayDistinct(t *testing.T) {
	s := func(name string) *schema.Schema {
		return schema.MustNew(name, schema.NewColumn("key", "BIGINT", false), schema.NewColumn("v", "TEXT", true))
	}
	left := build(t, s("l"), dataset.Row{int64(9007199254740992), "a"})
	right := build(t, s("r"), dataset.Row{int64(9007199254740993), "x"})

	out, err := executor.Evaluate(synth(t, left, right, plan.JoinFullOuter), left, right, "out", fixed)
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())

	keys, _ := out.Column("key")
	tags, _ := out.Column("_SOURCE_TABLE")
	assert.Equal(t, []any{int64(9007199254740992), int64(9007199254740993)}, keys)
	assert.Equal(t, []any{"LEFT_ONLY", "RIGHT_ONLY"}, tags)
}

func TestEvaluateGeneralRowCountLaw(t *testing.T) {
	s := func(name string) *schema.Schema {
		return schema.MustNew(name, schema.NewColumn("key", "INT", true))
	}
	left := build(t, s("l"), dataset.Row{1}, dataset.Row{2}, dataset.Row{3}, dataset.Row{nil})
	right := build(t, s("r"), dataset.Row{2}, dataset.Row{3}, dataset.Row{4}, dataset.Row{nil})

	out, err := executor.Evaluate(synth(t, left, right, plan.JoinFullOuter), left, right, "out", fixed)
	require.NoError(t, err)
	// uniqueLeft {1, null} + uniqueRight {4, null} + both {2, 3}
	assert.Equal(t, 6, out.Len())

	tags, _ := out.Column("_SOURCE_TABLE")
	assert.Equal(t, []any{"LEFT_ONLY", "BOTH", "BOTH", "RIGHT_ONLY", "RIGHT_ONLY", "RIGHT_ONLY"}, tags)
}

func TestEvaluateCoalesceIsLeftBiasedAndCasts(t *testing.T) {
	left := build(t, schema.MustNew("l",
		schema.NewColumn("id", "INT", false),
		schema.NewColumn("amount", "NUMBER", true),
		schema.NewColumn("email", "VARCHAR", true),
	),
		dataset.Row{1, 10.5, nil},
		dataset.Row{2, nil, "left@example.com"},
	)
	right := build(t, schema.MustNew("r",
		schema.NewColumn("id", "INT", false),
		schema.NewColumn("amount", "VARCHAR", true),
		schema.NewColumn("email", "VARCHAR", true),
	),
		dataset.Row{1, "11", "right@example.com"},
		dataset.Row{2, "20", "other@example.com"},
	)

	out, err := executor.Evaluate(synth(t, left, right, plan.JoinInner), left, right, "out", fixed)
	require.NoError(t, err)

	amounts, _ := out.Column("amount")
	emails, _ := out.Column("email")
	assert.Equal(t, []any{"10.5", "20"}, amounts)
	assert.Equal(t, []any{"right@example.com", "left@example.com"}, emails)
}

func TestMemoryExecuteErrors(t *testing.T) {
	left, right := customersAndClients(t)
	p := synth(t, left, right, plan.JoinFullOuter)

	_, err := executor.NewMemory([]*dataset.Dataset{left}).Execute(context.Background(), p, "out")
	assert.True(t, pkgerrors.IsNotFound(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = executor.NewMemory([]*dataset.Dataset{left, right}).Execute(ctx, p, "out")
	assert.True(t, pkgerrors.IsCanceled(err))
}

func TestMemoryDeduplicate(t *testing.T) {
	d := build(t, schema.MustNew("events",
		schema.NewColumn("id", "INT", false),
		schema.NewColumn("seq", "INT", true),
	),
		dataset.Row{1, 1}, dataset.Row{1, 2}, dataset.Row{2, 1},
	)
	ex := executor.NewMemory([]*dataset.Dataset{d})

	stats, err := ex.Deduplicate(context.Background(), "events", "events_unique", dedupe.Spec{PartitionKey: "id", TieBreakColumn: "seq"})
	require.NoError(t, err)
	assert.Equal(t, dedupe.Stats{Before: 3, After: 2, Removed: 1, Percentage: 33.33}, stats)

	out, err := ex.Table("events_unique")
	require.NoError(t, err)
	assert.Equal(t, "events_unique", out.Name())
	assert.Equal(t, []dataset.Row{{1, 2}, {2, 1}}, out.Rows)

	_, err = ex.Deduplicate(context.Background(), "nope", "x", dedupe.Spec{PartitionKey: "id"})
	assert.True(t, pkgerrors.IsNotFound(err))
}
