package reconcile

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/agentstation/utc"
	"github.com/spf13/cobra"

	"github.com/agentstation/tablemerge"
	"github.com/agentstation/tablemerge/internal/cmd/alerts"
	"github.com/agentstation/tablemerge/internal/cmd/application"
	"github.com/agentstation/tablemerge/internal/cmd/globals"
	"github.com/agentstation/tablemerge/internal/cmd/output"
	"github.com/agentstation/tablemerge/internal/sources"
	"github.com/agentstation/tablemerge/pkg/dataset"
	"github.com/agentstation/tablemerge/pkg/dedupe"
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/executor"
	"github.com/agentstation/tablemerge/pkg/logging"
	"github.com/agentstation/tablemerge/pkg/quality"
	"github.com/agentstation/tablemerge/pkg/report"
)

// mergeFlags holds flags specific to the merge command.
type mergeFlags struct {
	force       bool
	dedupeKey   string
	dedupeOrder string
	dedupeAsc   bool
	profile     bool
}

func (f *mergeFlags) dedupeSpec() (*dedupe.Spec, error) {
	if f.dedupeKey == "" {
		if f.dedupeOrder != "" {
			return nil, &errors.ValidationError{Field: "dedupe-order", Message: "requires --dedupe-key"}
		}
		return nil, nil
	}
	spec := dedupe.Spec{PartitionKey: f.dedupeKey, TieBreakColumn: f.dedupeOrder, Direction: dedupe.Descending}
	if f.dedupeAsc {
		spec.Direction = dedupe.Ascending
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// NewMergeCommand creates the merge command.
func NewMergeCommand(app application.Application) *cobra.Command {
	var (
		planFlags *globals.PlanFlags
		flags     mergeFlags
	)
	cmd := &cobra.Command{
		Use:     "merge LEFT RIGHT --out TARGET",
		GroupID: "core",
		Short:   "Reconcile and execute a merge",
		Long: `Merge reconciles two datasets and materializes the plan.

When both sources are pg: tables the merge runs inside the database and
TARGET names the new table. Otherwise the rows are joined in memory and
TARGET is a CSV file with a typed header.

A result that requires review is refused unless --force is given.`,
		Example: `  tablemerge merge customers.csv clients.csv --out merged.csv
  tablemerge merge pg:public.customers pg:public.clients --out public.customers_merged
  tablemerge merge a.csv b.csv --out m.csv --dedupe-key id --dedupe-order updated_at --profile`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := globals.ParseOut(cmd)
			if target == "" {
				return &errors.ValidationError{Field: "out", Message: "is required"}
			}
			spec, err := flags.dedupeSpec()
			if err != nil {
				return err
			}
			engine, err := engineFor(cmd, app, planFlags)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			p, err := loadPair(ctx, app, args[0], args[1])
			if err != nil {
				return err
			}
			res, err := engine.ReconcileData(ctx, p.left, p.right)
			if err != nil {
				return err
			}
			if res.RequiresReview() {
				if !flags.force {
					return fmt.Errorf("review required (%s); rerun with --force to merge anyway",
						strings.Join(res.Review.Reasons, "; "))
				}
				a := alerts.ForReview(res.Review)
				a.Message += ", merging anyway (--force)"
				if err := alerts.NewWriter(cmd.ErrOrStderr(), false).Write(a); err != nil {
					return err
				}
			}

			rep := report.New(res, utc.Now().Time)
			m := &merger{app: app, spec: spec, profile: flags.profile}
			if p.sameDatabase() {
				err = m.inDatabase(ctx, res, target, rep)
			} else {
				err = m.inMemory(ctx, p, res, target, rep)
			}
			if err != nil {
				return err
			}

			return render(cmd, app, rep, func() output.Document {
				return output.ReportDocument(rep, wide(app))
			})
		},
	}
	planFlags = globals.AddPlanFlags(cmd)
	globals.AddOutFlag(cmd, "Output CSV path, or table name when both sources are pg: tables")
	cmd.Flags().BoolVar(&flags.force, "force", false, "merge even when review is required")
	cmd.Flags().StringVar(&flags.dedupeKey, "dedupe-key", "", "deduplicate the merged rows on this column")
	cmd.Flags().StringVar(&flags.dedupeOrder, "dedupe-order", "", "tie-break column for deduplication")
	cmd.Flags().BoolVar(&flags.dedupeAsc, "dedupe-asc", false, "keep the smallest tie-break value")
	cmd.Flags().BoolVar(&flags.profile, "profile", false, "attach quality profiles of the merged output")
	return cmd
}

// merger runs one merge with optional dedupe and profiling.
type merger struct {
	app     application.Application
	spec    *dedupe.Spec
	profile bool
}

func (m *merger) inMemory(ctx context.Context, p *pair, res *tablemerge.Result, path string, rep *report.Report) error {
	if p.leftType == sources.TypePostgres || p.rightType == sources.TypePostgres {
		logging.FromContext(ctx).Warn().
			Msg("Merging a sampled table in memory; use pg: sources on both sides to merge full tables")
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	exec := executor.NewMemory([]*dataset.Dataset{p.left, p.right})
	run, err := exec.Execute(ctx, res.Plan, name)
	if err != nil {
		return err
	}
	rep.WithExecution(run)

	out := run.Output
	if m.spec != nil {
		stats, err := exec.Deduplicate(ctx, name, name+"_deduped", *m.spec)
		if err != nil {
			return err
		}
		rep.WithDedupe(stats)
		if out, err = exec.Table(name + "_deduped"); err != nil {
			return err
		}
		out = &dataset.Dataset{Schema: out.Schema.Rename(name), Rows: out.Rows}
	}

	if err := sources.WriteCSVFile(path, out); err != nil {
		return err
	}
	logging.FromContext(ctx).Info().
		Str("path", path).
		Int("rows", out.Len()).
		Msg("Merged dataset written")

	return m.attachProfile(out, res, rep)
}

func (m *merger) inDatabase(ctx context.Context, res *tablemerge.Result, target string, rep *report.Report) error {
	db, err := m.app.Database(ctx)
	if err != nil {
		return err
	}
	exec := executor.NewPostgres(db)

	merged := target
	if m.spec != nil {
		merged = target + "_merged"
	}
	run, err := exec.Execute(ctx, res.Plan, merged)
	if err != nil {
		return err
	}
	rep.WithExecution(run)

	if m.spec != nil {
		stats, err := exec.Deduplicate(ctx, merged, target, *m.spec)
		if err != nil {
			return err
		}
		rep.WithDedupe(stats)
	}
	logging.FromContext(ctx).Info().
		Str("table", target).
		Int("rows", run.Counts.Output).
		Msg("Merged table created")

	if !m.profile {
		return nil
	}
	r, err := m.app.Open(ctx, "pg:"+target)
	if err != nil {
		return err
	}
	out, err := r.Read(ctx)
	if err != nil {
		return err
	}
	return m.attachProfile(out, res, rep)
}

// attachProfile profiles the merged output on the join key.
func (m *merger) attachProfile(out *dataset.Dataset, res *tablemerge.Result, rep *report.Report) error {
	if !m.profile {
		return nil
	}
	opts := append([]quality.Option{quality.WithKey(res.Plan.JoinKey.UnifiedName)}, m.app.QualityOptions()...)
	prof, err := quality.Run(out, opts...)
	if err != nil {
		return err
	}
	rep.WithQuality(prof)
	return nil
}
