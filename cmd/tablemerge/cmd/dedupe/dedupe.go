// Package dedupe implements the dedupe command.
package dedupe

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/tablemerge/internal/cmd/application"
	"github.com/agentstation/tablemerge/internal/cmd/globals"
	"github.com/agentstation/tablemerge/internal/cmd/output"
	"github.com/agentstation/tablemerge/internal/cmd/table"
	"github.com/agentstation/tablemerge/internal/sources"
	"github.com/agentstation/tablemerge/pkg/dedupe"
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/executor"
	"github.com/agentstation/tablemerge/pkg/logging"
)

// result is the machine-readable dedupe command result.
type result struct {
	Source string        `json:"source" yaml:"source"`
	Target string        `json:"target,omitempty" yaml:"target,omitempty"`
	Spec   dedupe.Spec   `json:"spec" yaml:"spec"`
	Stats  *dedupe.Stats `json:"stats,omitempty" yaml:"stats,omitempty"`
	SQL    string        `json:"sql,omitempty" yaml:"sql,omitempty"`
}

// NewCommand creates the dedupe command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		flags   *globals.DedupeFlags
		showSQL bool
	)
	cmd := &cobra.Command{
		Use:     "dedupe SOURCE --key COLUMN",
		GroupID: "data",
		Short:   "Keep one row per key",
		Long: `Dedupe keeps one row per partition key value. With --order the row with
the largest tie-break value wins (smallest with --asc); otherwise the first
row in source order is kept.

A pg: source with --out is deduplicated inside the database into a new
table. Other sources are read, deduplicated in memory and written to --out
as CSV. Without --out only the statistics are reported.`,
		Example: `  tablemerge dedupe merged.csv --key id --order updated_at --out clean.csv
  tablemerge dedupe pg:public.merged --key id --out public.merged_clean
  tablemerge dedupe pg:public.merged --key id --order ts --sql`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := flags.Spec()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			src, target := args[0], globals.ParseOut(cmd)
			out := result{Source: src, Target: target, Spec: spec}

			switch {
			case showSQL:
				name := strings.TrimPrefix(src, "pg:")
				if target != "" {
					out.SQL = spec.CreateTableSQL(target, name, nil)
				} else {
					out.SQL = spec.SQL(name, nil)
				}
			case strings.HasPrefix(src, "pg:") && target != "":
				db, err := app.Database(ctx)
				if err != nil {
					return err
				}
				stats, err := executor.NewPostgres(db).Deduplicate(ctx, strings.TrimPrefix(src, "pg:"), target, spec)
				if err != nil {
					return err
				}
				out.Stats = &stats
			default:
				r, err := app.Open(ctx, src)
				if err != nil {
					return err
				}
				d, err := r.Read(ctx)
				if err != nil {
					return err
				}
				deduped, stats, err := dedupe.Apply(d, spec)
				if err != nil {
					return err
				}
				out.Stats = &stats
				if target != "" {
					if strings.HasPrefix(target, "pg:") {
						return &errors.ValidationError{Field: "out", Message: "a table target needs a pg: source"}
					}
					if err := sources.WriteCSVFile(target, deduped); err != nil {
						return err
					}
				}
			}

			if out.Stats != nil {
				logging.FromContext(ctx).Info().
					Str("source", src).
					Str("stats", out.Stats.String()).
					Msg("Deduplicated")
			}
			return output.Render(cmd.OutOrStdout(), output.Format(app.OutputFormat()), out, func() output.Document {
				doc := output.Document{Title: "Deduplicate " + src, Code: out.SQL, CodeLanguage: "sql"}
				if out.Stats != nil {
					doc.Summary = out.Stats.String()
					doc.Add("Rows", table.StatsToTableData(*out.Stats))
				}
				if target != "" && out.SQL == "" {
					doc.Note("written to " + target)
				}
				return doc
			})
		},
	}
	flags = globals.AddDedupeFlags(cmd)
	globals.AddOutFlag(cmd, "Output CSV path, or table name for a pg: source")
	cmd.Flags().BoolVar(&showSQL, "sql", false, "print the dedupe SQL instead of running it")
	return cmd
}
