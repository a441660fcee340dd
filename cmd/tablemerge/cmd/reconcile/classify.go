package reconcile

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/tablemerge/internal/cmd/alerts"
	"github.com/agentstation/tablemerge/internal/cmd/application"
	"github.com/agentstation/tablemerge/internal/cmd/globals"
	"github.com/agentstation/tablemerge/internal/cmd/output"
	"github.com/agentstation/tablemerge/pkg/logging"
)

// NewClassifyCommand creates the classify command.
func NewClassifyCommand(app application.Application) *cobra.Command {
	var (
		flags        *globals.PlanFlags
		failOnReview bool
	)
	cmd := &cobra.Command{
		Use:     "classify LEFT RIGHT",
		GroupID: "core",
		Short:   "Classify conflicts and decide whether review is required",
		Long: `Classify matches two datasets and checks every mapping for missing
columns and incompatible types. Duplicate join keys in the sampled rows are
reported as duplicate risk. Review is required when any conflict is
CRITICAL, when more than two are HIGH, or when a mapping falls below the
confidence threshold.`,
		Example: `  tablemerge classify customers.csv clients.csv
  tablemerge classify a.csv b.csv --threshold 90 --fail-on-review`,
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
			// A pair without a merge plan still gets its conflicts reported.
			res, err := engine.ReconcileData(cmd.Context(), p.left, p.right)
			if err != nil {
				if res == nil {
					return err
				}
				logging.FromContext(logging.WithError(cmd.Context(), err)).Warn().Msg("No merge plan for this pair")
			}

			if err := render(cmd, app, res.Review, func() output.Document {
				return output.ReviewDocument(res.Review)
			}); err != nil {
				return err
			}
			if err := alerts.NewWriter(cmd.ErrOrStderr(), false).Write(alerts.ForReview(res.Review)); err != nil {
				return err
			}
			if failOnReview && res.RequiresReview() {
				return fmt.Errorf("review required: %s", strings.Join(res.Review.Reasons, "; "))
			}
			return nil
		},
	}
	flags = globals.AddPlanFlags(cmd)
	cmd.Flags().BoolVar(&failOnReview, "fail-on-review", false, "exit non-zero when review is required")
	return cmd
}
