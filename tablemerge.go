// Package tablemerge reconciles two tabular datasets into one lossless
// merge plan.
//
// An Engine runs the column matcher, then the conflict classifier and the
// plan synthesizer side by side, and finally attaches a review decision.
// Everything it does is pure computation over schemas; reading data and
// executing plans belong to internal/sources and pkg/executor.
package tablemerge

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/tablemerge/pkg/conflict"
	"github.com/agentstation/tablemerge/pkg/dataset"
	"github.com/agentstation/tablemerge/pkg/dedupe"
	pkgerrors "github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/logging"
	"github.com/agentstation/tablemerge/pkg/match"
	"github.com/agentstation/tablemerge/pkg/plan"
	"github.com/agentstation/tablemerge/pkg/quality"
	"github.com/agentstation/tablemerge/pkg/review"
	"github.com/agentstation/tablemerge/pkg/schema"
)

// Engine reconciles schema pairs.
type Engine interface {
	// Match proposes column mappings between two schemas.
	Match(left, right *schema.Schema) match.Result

	// Classify checks mappings against both schemas.
	Classify(mappings []match.Mapping, left, right *schema.Schema) []conflict.Conflict

	// Synthesize builds a lossless merge plan.
	Synthesize(mappings []match.Mapping, left, right *schema.Schema, kind plan.JoinKind) (*plan.MergePlan, error)

	// Deduplicate turns a spec into a row selection rule.
	Deduplicate(spec dedupe.Spec) (*dedupe.RowSelectionRule, error)

	// Reconcile matches two schemas, then classifies and synthesizes
	// concurrently and attaches a review decision. When synthesis fails
	// the partial result is returned with the error. Its Plan is nil, its
	// Conflicts are complete and its Review is escalated.
	Reconcile(ctx context.Context, left, right *schema.Schema) (*Result, error)

	// ReconcileData reconciles two datasets and adds duplicate-risk
	// conflicts found in their join key samples. It returns a partial
	// result on synthesis failure, as Reconcile does.
	ReconcileData(ctx context.Context, left, right *dataset.Dataset) (*Result, error)

	// ReconcileAll reconciles independent pairs concurrently.
	ReconcileAll(ctx context.Context, pairs []Pair) ([]*Result, error)

	// Catalog returns the semantic rule catalog in use.
	Catalog() *match.Catalog

	// OnReconciled registers a callback for completed reconciliations.
	// Hooks may run concurrently during ReconcileAll.
	OnReconciled(ReconciledHook)

	// OnReviewRequired registers a callback for results that need review.
	OnReviewRequired(ReviewRequiredHook)
}

// engine is the internal implementation of the Engine interface
type engine struct {
	config  *config
	matcher *match.Matcher
	hooks   *hooks
}

// New creates an Engine with the given options.
func New(opts ...Option) (Engine, error) {
	cfg := defaultConfig()
	if err := cfg.apply(opts...); err != nil {
		return nil, fmt.Errorf("applying options: %w", err)
	}
	m, err := match.New(match.WithCatalog(cfg.catalog))
	if err != nil {
		return nil, err
	}
	return &engine{config: cfg, matcher: m, hooks: newHooks()}, nil
}

func (e *engine) Catalog() *match.Catalog {
	return e.matcher.Catalog()
}

func (e *engine) OnReconciled(fn ReconciledHook) {
	e.hooks.OnReconciled(fn)
}

func (e *engine) OnReviewRequired(fn ReviewRequiredHook) {
	e.hooks.OnReviewRequired(fn)
}

func (e *engine) Match(left, right *schema.Schema) match.Result {
	return e.matcher.Match(left, right)
}

func (e *engine) Classify(mappings []match.Mapping, left, right *schema.Schema) []conflict.Conflict {
	return conflict.Classify(mappings, left, right)
}

func (e *engine) Synthesize(mappings []match.Mapping, left, right *schema.Schema, kind plan.JoinKind) (*plan.MergePlan, error) {
	return plan.Synthesize(mappings, left, right, kind, e.planOptions()...)
}

func (e *engine) planOptions() []plan.Option {
	return []plan.Option{
		plan.WithPrefixes(e.config.leftPrefix, e.config.rightPrefix),
		plan.WithJoinKey(e.config.joinKey),
	}
}

func (e *engine) Deduplicate(spec dedupe.Spec) (*dedupe.RowSelectionRule, error) {
	return dedupe.Deduplicate(spec)
}

func (e *engine) Reconcile(ctx context.Context, left, right *schema.Schema) (*Result, error) {
	res, err := e.reconcile(ctx, left, right)
	if err != nil {
		return res, err
	}
	e.hooks.trigger(res)
	return res, nil
}

func (e *engine) reconcile(ctx context.Context, left, right *schema.Schema) (*Result, error) {
	if left == nil || right == nil {
		return nil, &pkgerrors.ValidationError{Field: "schema", Message: "both schemas are required"}
	}
	if err := ctx.Err(); err != nil {
		return nil, pkgerrors.ErrCanceled
	}
	ctx = logging.WithPair(ctx, left.Name(), right.Name())
	logger := logging.FromContext(ctx)

	matched := e.matcher.Match(left, right)
	exact, semantic := matched.Counts()
	logger.Debug().
		Int("exact", exact).
		Int("semantic", semantic).
		Int("unmatched_left", len(matched.UnmatchedLeft)).
		Int("unmatched_right", len(matched.UnmatchedRight)).
		Msg("Matched columns")

	// Classification never depends on the plan, so its conflicts are kept
	// even when synthesis fails.
	var (
		conflicts []conflict.Conflict
		merge     *plan.MergePlan
		synthErr  error
		g         errgroup.Group
	)
	g.Go(func() error {
		conflicts = conflict.Classify(matched.Mappings, left, right)
		return nil
	})
	g.Go(func() error {
		merge, synthErr = plan.Synthesize(matched.Mappings, left, right, e.config.joinKind, e.planOptions()...)
		return nil
	})
	_ = g.Wait()

	decision, err := review.Evaluate(conflicts, matched.Mappings, e.config.threshold)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Left:      left.Name(),
		Right:     right.Name(),
		Match:     matched,
		Conflicts: conflicts,
		Plan:      merge,
		Review:    decision,
	}
	if synthErr != nil {
		logger.Debug().Err(synthErr).Int("conflicts", len(conflicts)).Msg("Synthesis failed")
		res.Review.RequiresReview = true
		res.Review.Reasons = append(res.Review.Reasons, "no merge plan: "+synthErr.Error())
		return res, synthErr
	}

	logger.Debug().
		Str("join_key", merge.JoinKey.UnifiedName).
		Str("join", merge.JoinKind.String()).
		Int("conflicts", len(conflicts)).
		Bool("requires_review", decision.RequiresReview).
		Msg("Reconciled schemas")
	return res, nil
}

func (e *engine) ReconcileData(ctx context.Context, left, right *dataset.Dataset) (*Result, error) {
	if left == nil || right == nil {
		return nil, &pkgerrors.ValidationError{Field: "dataset", Message: "both datasets are required"}
	}
	res, err := e.reconcile(ctx, left.Schema, right.Schema)
	if err != nil {
		return res, err
	}

	sides := []struct {
		name string
		data *dataset.Dataset
		key  string
	}{
		{"left", left, res.Plan.JoinKey.LeftColumn},
		{"right", right, res.Plan.JoinKey.RightColumn},
	}
	for _, side := range sides {
		report, err := quality.DetectDuplicates(side.data, side.key, e.config.duplicateThreshold)
		if err != nil {
			return nil, err
		}
		if c, ok := report.Conflict(side.name); ok {
			res.Conflicts = append(res.Conflicts, c)
		}
	}
	res.Review, err = review.Evaluate(res.Conflicts, res.Match.Mappings, e.config.threshold)
	if err != nil {
		return nil, err
	}
	e.hooks.trigger(res)
	return res, nil
}

// ReconcileAll reconciles pairs with at most the configured number in
// flight. Results keep the order of pairs; a failed pair leaves a nil
// entry and contributes to the joined error.
func (e *engine) ReconcileAll(ctx context.Context, pairs []Pair) ([]*Result, error) {
	results := make([]*Result, len(pairs))
	errs := make([]error, len(pairs))

	var g errgroup.Group
	g.SetLimit(e.config.concurrency)
	for i, p := range pairs {
		g.Go(func() error {
			res, err := e.Reconcile(ctx, p.Left, p.Right)
			if err != nil {
				errs[i] = fmt.Errorf("pair %d (%s, %s): %w", i, nameOf(p.Left), nameOf(p.Right), err)
				logging.FromContext(logging.WithError(ctx, err)).Warn().
					Int("pair", i).
					Msg("Pair not reconciled")
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results, errors.Join(errs...)
}

func nameOf(s *schema.Schema) string {
	if s == nil {
		return "<nil>"
	}
	return s.Name()
}
