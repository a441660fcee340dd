package globals

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/tablemerge/pkg/dedupe"
)

// DedupeFlags holds flags for commands that deduplicate a dataset.
type DedupeFlags struct {
	Key   string
	Order string
	Asc   bool
}

// AddDedupeFlags adds dedupe flags to a command. --key is required.
func AddDedupeFlags(cmd *cobra.Command) *DedupeFlags {
	flags := &DedupeFlags{}

	cmd.Flags().StringVarP(&flags.Key, "key", "k", "",
		"Partition key: one row is kept per value")
	cmd.Flags().StringVar(&flags.Order, "order", "",
		"Tie-break column deciding which row is kept")
	cmd.Flags().BoolVar(&flags.Asc, "asc", false,
		"Keep the smallest tie-break value instead of the largest")
	_ = cmd.MarkFlagRequired("key")

	return flags
}

// Spec builds the dedupe spec and validates it.
func (f *DedupeFlags) Spec() (dedupe.Spec, error) {
	spec := dedupe.Spec{
		PartitionKey:   f.Key,
		TieBreakColumn: f.Order,
		Direction:      dedupe.Descending,
	}
	if f.Asc {
		spec.Direction = dedupe.Ascending
	}
	return spec, spec.Validate()
}

// ParseOut returns the --out flag value.
// The command must have had AddOutFlag called on it, otherwise this will panic.
func ParseOut(cmd *cobra.Command) string {
	return mustGetString(cmd, "out")
}

// AddOutFlag adds the --out destination flag to a command.
func AddOutFlag(cmd *cobra.Command, usage string) {
	cmd.Flags().String("out", "", usage)
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
