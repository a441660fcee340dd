// Package profile implements the profile command.
package profile

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/tablemerge/internal/cmd/application"
	"github.com/agentstation/tablemerge/internal/cmd/output"
	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/quality"
)

// NewCommand creates the profile command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		key        string
		failOnFail bool
	)
	cmd := &cobra.Command{
		Use:     "profile SOURCE...",
		GroupID: "data",
		Short:   "Check duplicate keys and null rates",
		Long: `Profile checks each source for null values per column and, with --key,
for duplicate key values. A check passes below its threshold, warns up to
twice the threshold and fails beyond that.`,
		Example: `  tablemerge profile merged.csv --key id
  tablemerge profile pg:public.customers s3://exports/clients.csv -o markdown`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := app.QualityOptions()
			if key != "" {
				opts = append(opts, quality.WithKey(key))
			}

			profiles := make([]*quality.Profile, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(constants.MaxConcurrentPairs)
			for i, uri := range args {
				g.Go(func() error {
					r, err := app.Open(ctx, uri)
					if err != nil {
						return err
					}
					d, err := r.Read(ctx)
					if err != nil {
						return err
					}
					profiles[i], err = quality.Run(d, opts...)
					return err
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if err := output.Render(cmd.OutOrStdout(), output.Format(app.OutputFormat()), profiles, func() output.Document {
				return output.ProfileDocument(profiles...)
			}); err != nil {
				return err
			}
			if failOnFail {
				for _, p := range profiles {
					if !p.Passed() {
						return fmt.Errorf("quality checks failed for %s", p.Dataset)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&key, "key", "k", "", "column checked for duplicate values")
	cmd.Flags().BoolVar(&failOnFail, "fail", false, "exit non-zero when a check fails")
	return cmd
}
