package executor

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/dedupe"
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/logging"
	"github.com/agentstation/tablemerge/pkg/plan"
)

// DB is the subset of *pgxpool.Pool the Postgres executor uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres materializes plans with CREATE TABLE ... AS SELECT. Plan dataset
// names are used as table references and may be schema-qualified.
type Postgres struct {
	db      DB
	timeout time.Duration
}

// PostgresOption configures a Postgres executor.
type PostgresOption func(*Postgres)

// WithTimeout bounds each statement. Zero disables the bound.
func WithTimeout(d time.Duration) PostgresOption {
	return func(p *Postgres) {
		p.timeout = d
	}
}

// NewPostgres creates a Postgres executor over db.
func NewPostgres(db DB, opts ...PostgresOption) *Postgres {
	p := &Postgres{db: db, timeout: constants.ExecuteTimeout}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// withTimeout applies the statement timeout unless the parent deadline is
// already sooner.
func (p *Postgres) withTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(parent)
	}
	if deadline, ok := parent.Deadline(); ok && time.Until(deadline) <= p.timeout {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, p.timeout)
}

// Execute creates target from the plan's merge query and counts rows on
// each side.
func (p *Postgres) Execute(ctx context.Context, mp *plan.MergePlan, target string) (*Result, error) {
	start := time.Now()
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	ctx = logging.WithJoinKind(logging.WithOperation(ctx, "execute"), mp.JoinKind.String())

	sql := mp.CreateTableSQL(target, mp.Left, mp.Right)
	logging.FromContext(ctx).Debug().
		Str("target", target).
		Msg("Creating merged table")

	if _, err := p.db.Exec(ctx, sql); err != nil {
		return nil, errors.WrapResource("create", "table", target, err)
	}

	res := &Result{Target: target, SQL: sql}
	var err error
	if res.Counts.Left, err = p.count(ctx, mp.Left); err != nil {
		return nil, err
	}
	if res.Counts.Right, err = p.count(ctx, mp.Right); err != nil {
		return nil, err
	}
	if res.Counts.Output, err = p.count(ctx, target); err != nil {
		return nil, err
	}
	res.Duration = time.Since(start)
	return res, nil
}

// Deduplicate creates target holding one row per key of source, then drops
// the ranking column.
func (p *Postgres) Deduplicate(ctx context.Context, source, target string, spec dedupe.Spec) (dedupe.Stats, error) {
	if err := spec.Validate(); err != nil {
		return dedupe.Stats{}, err
	}
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	before, err := p.count(ctx, source)
	if err != nil {
		return dedupe.Stats{}, err
	}
	if _, err := p.db.Exec(ctx, spec.CreateTableSQL(target, source, nil)); err != nil {
		return dedupe.Stats{}, errors.WrapResource("create", "table", target, err)
	}
	drop := "ALTER TABLE " + plan.QuoteQualified(target) + " DROP COLUMN " + plan.QuoteIdent(dedupe.RowNumberColumn)
	if _, err := p.db.Exec(ctx, drop); err != nil {
		return dedupe.Stats{}, errors.WrapResource("alter", "table", target, err)
	}
	after, err := p.count(ctx, target)
	if err != nil {
		return dedupe.Stats{}, err
	}
	stats := dedupe.NewStats(before, after)
	logging.FromContext(logging.WithOperation(ctx, "dedupe")).Debug().
		Str("source", source).
		Str("target", target).
		Int("removed", stats.Removed).
		Msg("Deduplicated table")
	return stats, nil
}

func (p *Postgres) count(ctx context.Context, table string) (int, error) {
	var n int64
	if err := p.db.QueryRow(ctx, "SELECT COUNT(*) FROM "+plan.QuoteQualified(table)).Scan(&n); err != nil {
		return 0, errors.WrapResource("count", "table", table, err)
	}
	return int(n), nil
}
