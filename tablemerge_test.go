package tablemerge

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tablemerge/pkg/conflict"
	"github.com/agentstation/tablemerge/pkg/dataset"
	"github.com/agentstation/tablemerge/pkg/dedupe"
	pkgerrors "github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/logging"
	"github.com/agentstation/tablemerge/pkg/match"
	"github.com/agentstation/tablemerge/pkg/plan"
	"github.com/agentstation/tablemerge/pkg/schema"
)

func newEngine(t *testing.T, opts ...Option) Engine {
	t.Helper()
	e, err := New(opts...)
	require.NoError(t, err)
	return e
}

func TestReconcilePrefixesUnmatchedColumns(t *testing.T) {
	left := schema.MustNew("customers",
		schema.NewColumn("id", "INT", false),
		schema.NewColumn("name", "VARCHAR", true),
	)
	right := schema.MustNew("clients",
		schema.NewColumn("id", "INT", false),
		schema.NewColumn("fullname", "VARCHAR", true),
	)

	res, err := newEngine(t).Reconcile(context.Background(), left, right)
	require.NoError(t, err)

	assert.Equal(t, "customers", res.Left)
	assert.Equal(t, "clients", res.Right)
	assert.Len(t, res.Match.Mappings, 1)
	assert.Equal(t, []string{"id", "ds_left_name", "ds_right_fullname", "_SOURCE_TABLE", "_MERGE_TIMESTAMP"}, res.Plan.ColumnNames())
	assert.Empty(t, res.Conflicts)
	assert.False(t, res.RequiresReview())
}

func TestReconcileFlagsTypeMismatchAndLowConfidence(t *testing.T) {
	left := schema.MustNew("l",
		schema.NewColumn("id", "INT", false),
		schema.NewColumn("amount", "NUMBER", true),
		schema.NewColumn("phone", "VARCHAR", true),
	)
	right := schema.MustNew("r",
		schema.NewColumn("id", "INT", false),
		schema.NewColumn("amount", "VARCHAR", true),
		schema.NewColumn("mobile_phone", "VARCHAR", true),
	)

	res, err := newEngine(t).Reconcile(context.Background(), left, right)
	require.NoError(t, err)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, conflict.KindTypeMismatch, res.Conflicts[0].Kind)
	assert.False(t, res.RequiresReview(), "phone mapping at 85 clears the default threshold")

	strict, err := newEngine(t, WithConfidenceThreshold(90)).Reconcile(context.Background(), left, right)
	require.NoError(t, err)
	assert.True(t, strict.RequiresReview())
	require.Len(t, strict.Review.LowConfidence, 1)
	assert.Equal(t, "phone_number", strict.Review.LowConfidence[0].UnifiedName)
}

func TestReconcileNoJoinKey(t *testing.T) {
	left := schema.MustNew("l", schema.NewColumn("a", "INT", true))
	right := schema.MustNew("r", schema.NewColumn("b", "INT", true))

	_, err := newEngine(t).Reconcile(context.Background(), left, right)
	assert.True(t, pkgerrors.IsNoJoinKey(err))
}

func TestReconcileKeepsConflictsWhenSynthesisFails(t *testing.T) {
	left := schema.MustNew("l",
		schema.NewColumn("id", "INT", false),
		schema.NewColumn("amount", "NUMBER", true),
		schema.NewColumn("ds_right_x", "VARCHAR", true),
	)
	right := schema.MustNew("r",
		schema.NewColumn("id", "INT", false),
		schema.NewColumn("amount", "VARCHAR", true),
		schema.NewColumn("x", "VARCHAR", true),
		schema.NewColumn("ds_right_x", "VARCHAR", true),
	)
	e := newEngine(t)
	var fired atomic.Int32
	e.OnReconciled(func(*Result) { fired.Add(1) })

	res, err := e.Reconcile(context.Background(), left, right)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvalidSchema(err))
	require.NotNil(t, res)
	assert.Nil(t, res.Plan)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, conflict.KindTypeMismatch, res.Conflicts[0].Kind)
	assert.Equal(t, res.Conflicts, e.Classify(res.Match.Mappings, left, right))
	assert.True(t, res.RequiresReview())
	assert.Contains(t, res.Review.Reasons[len(res.Review.Reasons)-1], "no merge plan")
	assert.Equal(t, int32(0), fired.Load())
}

func TestReconcileCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := schema.MustNew("s", schema.NewColumn("id", "INT", false))
	_, err := newEngine(t).Reconcile(ctx, s, s)
	assert.True(t, pkgerrors.IsCanceled(err))
}

func TestReconcileOptions(t *testing.T) {
	left := schema.MustNew("l",
		schema.NewColumn("id", "INT", false),
		schema.NewColumn("email", "VARCHAR", true),
		schema.NewColumn("x", "VARCHAR", true),
	)
	right := schema.MustNew("r",
		schema.NewColumn("id", "INT", false),
		schema.NewColumn("email", "VARCHAR", true),
		schema.NewColumn("y", "VARCHAR", true),
	)
	e := newEngine(t, WithJoinKind(plan.JoinInner), WithJoinKey("email"), WithPrefixes("a_", "b_"))

	res, err := e.Reconcile(context.Background(), left, right)
	require.NoError(t, err)
	assert.Equal(t, plan.JoinInner, res.Plan.JoinKind)
	assert.Equal(t, "email", res.Plan.JoinKey.UnifiedName)
	assert.Contains(t, res.Plan.ColumnNames(), "a_x")
	assert.Contains(t, res.Plan.ColumnNames(), "b_y")
}

func TestNewRejectsBadOptions(t *testing.T) {
	tests := []Option{
		WithConfidenceThreshold(-1),
		WithJoinKind("SIDEWAYS"),
		WithPrefixes("p_", "p_"),
		WithCatalog(nil),
		WithConcurrency(0),
		WithDuplicateThreshold(200),
	}
	for _, opt := range tests {
		_, err := New(opt)
		assert.True(t, pkgerrors.IsValidationError(err))
	}
	_, err := New(WithRulesFile("does/not/exist.yaml"))
	assert.Error(t, err)
}

func TestReconcileAll(t *testing.T) {
	good := schema.MustNew("good", schema.NewColumn("id", "INT", false))
	other := schema.MustNew("other", schema.NewColumn("id", "INT", false))
	lonely := schema.MustNew("lonely", schema.NewColumn("zzz", "INT", false))

	pairs := []Pair{
		{Left: good, Right: other},
		{Left: good, Right: lonely},
		{Left: other, Right: good},
	}
	results, err := newEngine(t, WithConcurrency(2)).ReconcileAll(context.Background(), pairs)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsNoJoinKey(err))
	assert.Contains(t, err.Error(), "pair 1 (good, lonely)")
	require.Len(t, results, 3)
	assert.Equal(t, "other", results[0].Right)
	assert.Nil(t, results[1])
	assert.Equal(t, "other", results[2].Left)
}

func TestReconcileAllLogsFailedPairs(t *testing.T) {
	tl := logging.CaptureLoggingForTest(t)
	good := schema.MustNew("good", schema.NewColumn("id", "INT", false))
	lonely := schema.MustNew("lonely", schema.NewColumn("zzz", "INT", false))

	results, err := newEngine(t).ReconcileAll(context.Background(), []Pair{{Left: good, Right: lonely}})
	require.Error(t, err)
	assert.Equal(t, []*Result{nil}, results)

	tl.AssertContains(t, "Pair not reconciled")
	tl.AssertContains(t, `"pair":0`)
	tl.AssertContains(t, "no join key")
}

func TestReconcileData(t *testing.T) {
	s := func(name string) *schema.Schema {
		return schema.MustNew(name, schema.NewColumn("id", "INT", false), schema.NewColumn("v", "TEXT", true))
	}
	left, err := dataset.New(s("l"), []dataset.Row{{1, "a"}, {1, "b"}, {2, "c"}})
	require.NoError(t, err)
	right, err := dataset.New(s("r"), []dataset.Row{{1, "x"}, {2, "y"}})
	require.NoError(t, err)

	res, err := newEngine(t).ReconcileData(context.Background(), left, right)
	require.NoError(t, err)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, conflict.KindDuplicateRisk, res.Conflicts[0].Kind)
	assert.Equal(t, conflict.SeverityMedium, res.Conflicts[0].Severity)
	assert.Equal(t, "id", res.Conflicts[0].LeftColumn)
	assert.Equal(t, 1, res.Review.Summary.Total)
	assert.False(t, res.RequiresReview())
}

func TestHooks(t *testing.T) {
	e := newEngine(t, WithConfidenceThreshold(100))
	var reconciled, escalated atomic.Int32
	e.OnReconciled(func(*Result) { reconciled.Add(1) })
	e.OnReviewRequired(func(*Result) { escalated.Add(1) })

	left := schema.MustNew("l", schema.NewColumn("id", "INT", false), schema.NewColumn("cust_id", "INT", false))
	right := schema.MustNew("r", schema.NewColumn("id", "INT", false), schema.NewColumn("client_id", "INT", false))
	same := schema.MustNew("s", schema.NewColumn("id", "INT", false))

	_, err := e.Reconcile(context.Background(), left, right)
	require.NoError(t, err)
	_, err = e.Reconcile(context.Background(), same, same)
	require.NoError(t, err)

	assert.Equal(t, int32(2), reconciled.Load())
	assert.Equal(t, int32(1), escalated.Load())
}

func TestEngineDelegates(t *testing.T) {
	e := newEngine(t)
	left := schema.MustNew("l", schema.NewColumn("amount", "NUMBER", true))
	right := schema.MustNew("r", schema.NewColumn("amount", "VARCHAR", true))

	m := e.Match(left, right)
	assert.Equal(t, match.Match(left, right), m)
	assert.Len(t, e.Classify(m.Mappings, left, right), 1)

	p, err := e.Synthesize(m.Mappings, left, right, plan.JoinLeft)
	require.NoError(t, err)
	assert.Equal(t, plan.JoinLeft, p.JoinKind)

	rule, err := e.Deduplicate(dedupe.Spec{PartitionKey: "amount"})
	require.NoError(t, err)
	assert.Equal(t, dedupe.Descending, rule.Spec().Direction)
	assert.Equal(t, 1, e.Catalog().Version)
}

func TestReconcileLogsPair(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	left := schema.MustNew("orders", schema.NewColumn("order_id", "INT", false))
	right := schema.MustNew("invoices", schema.NewColumn("order_id", "INT", false))

	_, err := newEngine(t).Reconcile(ctx, left, right)
	require.NoError(t, err)

	tl.AssertContains(t, "Reconciled schemas")
	tl.AssertContains(t, `"left":"orders"`)
	tl.AssertContains(t, `"right":"invoices"`)
	assert.Equal(t, 2, tl.Count())
}
