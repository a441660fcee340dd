package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/tablemerge/cmd/tablemerge/cmd/dedupe"
	"github.com/agentstation/tablemerge/cmd/tablemerge/cmd/profile"
	"github.com/agentstation/tablemerge/cmd/tablemerge/cmd/reconcile"
	"github.com/agentstation/tablemerge/cmd/tablemerge/cmd/rules"
)

// registerCommands adds all subcommands to the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Reconciliation commands
	rootCmd.AddCommand(reconcile.NewMatchCommand(a))
	rootCmd.AddCommand(reconcile.NewClassifyCommand(a))
	rootCmd.AddCommand(reconcile.NewPlanCommand(a))
	rootCmd.AddCommand(reconcile.NewMergeCommand(a))
	rootCmd.AddCommand(rules.NewCommand(a))

	// Data commands
	rootCmd.AddCommand(dedupe.NewCommand(a))
	rootCmd.AddCommand(profile.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.CreateVersionCommand())
}

// CreateVersionCommand creates the version command.
func (a *App) CreateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("tablemerge %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
