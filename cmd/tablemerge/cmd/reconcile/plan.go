package reconcile

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/tablemerge/internal/cmd/application"
	"github.com/agentstation/tablemerge/internal/cmd/globals"
	"github.com/agentstation/tablemerge/internal/cmd/output"
	"github.com/agentstation/tablemerge/pkg/plan"
)

// planOutput is the machine-readable plan command result.
type planOutput struct {
	Plan *plan.MergePlan `json:"plan" yaml:"plan"`
	SQL  string          `json:"sql,omitempty" yaml:"sql,omitempty"`
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(app application.Application) *cobra.Command {
	var (
		flags   *globals.PlanFlags
		showSQL bool
	)
	cmd := &cobra.Command{
		Use:     "plan LEFT RIGHT",
		GroupID: "core",
		Short:   "Synthesize a lossless merge plan",
		Long: `Plan builds the merge plan for two datasets: one coalesced column per
mapping, one prefixed column per unmapped source column, and the
_SOURCE_TABLE and _MERGE_TIMESTAMP metadata columns. Every source column
appears exactly once, whatever the join kind.`,
		Example: `  tablemerge plan customers.csv clients.csv
  tablemerge plan customers.csv clients.csv --join inner --key email
  tablemerge plan pg:public.customers pg:public.clients --sql`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := engineFor(cmd, app, flags)
			if err != nil {
				return err
			}
			p, err := loadPair(cmd.Context(), app, args[0], args[1])
			if err != nil {
				return err
			}
			res, err := engine.Reconcile(cmd.Context(), p.left.Schema, p.right.Schema)
			if err != nil {
				return err
			}

			out := planOutput{Plan: res.Plan}
			if showSQL {
				out.SQL = res.Plan.SQL(p.left.Name(), p.right.Name())
			}
			return render(cmd, app, out, func() output.Document {
				return output.PlanDocument(res.Plan, out.SQL)
			})
		},
	}
	flags = globals.AddPlanFlags(cmd)
	cmd.Flags().BoolVar(&showSQL, "sql", false, "also render the plan as SQL")
	return cmd
}
