// Package rules implements the rules command.
package rules

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/tablemerge"
	"github.com/agentstation/tablemerge/internal/cmd/application"
	"github.com/agentstation/tablemerge/internal/cmd/output"
	"github.com/agentstation/tablemerge/internal/cmd/table"
)

// NewCommand creates the rules command.
func NewCommand(app application.Application) *cobra.Command {
	var rulesFile string
	cmd := &cobra.Command{
		Use:     "rules",
		GroupID: "core",
		Short:   "List the semantic matching rules",
		Long: `Rules lists the catalog used to pair columns whose names differ. The
built-in catalog is used unless --rules or rules_file names a YAML catalog.`,
		Example: `  tablemerge rules
  tablemerge rules --rules my-rules.yaml -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []tablemerge.Option
			if cmd.Flags().Changed("rules") {
				opts = append(opts, tablemerge.WithRulesFile(rulesFile))
			}
			engine, err := app.Engine(opts...)
			if err != nil {
				return err
			}
			catalog := engine.Catalog()
			return output.Render(cmd.OutOrStdout(), output.Format(app.OutputFormat()), catalog, func() output.Document {
				doc := output.Document{
					Title:   "Semantic rules",
					Summary: fmt.Sprintf("catalog v%d, %d rules", catalog.Version, len(catalog.Rules)),
				}
				doc.Add("Rules", table.RulesToTableData(catalog))
				return doc
			})
		},
	}
	cmd.Flags().StringVar(&rulesFile, "rules", "", "YAML rule catalog replacing the built-in one")
	return cmd
}
