package reconcile

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/tablemerge/internal/cmd/application"
	"github.com/agentstation/tablemerge/internal/cmd/globals"
	"github.com/agentstation/tablemerge/internal/cmd/output"
)

// NewMatchCommand creates the match command.
func NewMatchCommand(app application.Application) *cobra.Command {
	var flags *globals.PlanFlags
	cmd := &cobra.Command{
		Use:     "match LEFT RIGHT",
		GroupID: "core",
		Short:   "Propose column mappings between two datasets",
		Long: `Match pairs the columns of two datasets. Names that are equal ignoring
case map with confidence 100; the semantic rule catalog then pairs synonyms
such as cust_id and client_id.`,
		Example: `  tablemerge match customers.csv clients.csv
  tablemerge match pg:public.customers s3://exports/clients.csv -o wide
  tablemerge match left.csv right.csv --rules my-rules.yaml -o json`,
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

			res := engine.Match(p.left.Schema, p.right.Schema)
			return render(cmd, app, res, func() output.Document {
				return output.MatchDocument(res, wide(app))
			})
		},
	}
	flags = globals.AddPlanFlags(cmd)
	return cmd
}
