// Package globals provides shared flag structures and utilities for CLI commands.
package globals

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/tablemerge"
	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/plan"
)

// PlanFlags holds the policy overrides accepted by every command that
// reconciles a pair. Unset flags leave the configured value in place.
type PlanFlags struct {
	Join        string
	Key         string
	LeftPrefix  string
	RightPrefix string
	Threshold   int
	Rules       string
}

// AddPlanFlags adds plan flags to a command.
func AddPlanFlags(cmd *cobra.Command) *PlanFlags {
	flags := &PlanFlags{}

	cmd.Flags().StringVarP(&flags.Join, "join", "j", "",
		"Join kind: full_outer, inner, left, right")
	cmd.Flags().StringVarP(&flags.Key, "key", "k", "",
		"Join key (unified or left column name)")
	cmd.Flags().StringVar(&flags.LeftPrefix, "left-prefix", "",
		"Prefix for unmapped left columns")
	cmd.Flags().StringVar(&flags.RightPrefix, "right-prefix", "",
		"Prefix for unmapped right columns")
	cmd.Flags().IntVar(&flags.Threshold, "threshold", 0,
		"Confidence below which a mapping needs review (0-100)")
	cmd.Flags().StringVar(&flags.Rules, "rules", "",
		"Semantic rule catalog YAML file")

	return flags
}

// Options converts the flags that were set on cmd into engine options.
// Setting only one prefix pairs it with the built-in default for the other.
func (f *PlanFlags) Options(cmd *cobra.Command) ([]tablemerge.Option, error) {
	var opts []tablemerge.Option
	if changed(cmd, "join") {
		kind, err := plan.ParseJoinKind(f.Join)
		if err != nil {
			return nil, err
		}
		opts = append(opts, tablemerge.WithJoinKind(kind))
	}
	if changed(cmd, "key") {
		opts = append(opts, tablemerge.WithJoinKey(f.Key))
	}
	if changed(cmd, "left-prefix") || changed(cmd, "right-prefix") {
		left, right := f.LeftPrefix, f.RightPrefix
		if left == "" {
			left = constants.DefaultLeftPrefix
		}
		if right == "" {
			right = constants.DefaultRightPrefix
		}
		opts = append(opts, tablemerge.WithPrefixes(left, right))
	}
	if changed(cmd, "threshold") {
		opts = append(opts, tablemerge.WithConfidenceThreshold(f.Threshold))
	}
	if changed(cmd, "rules") {
		opts = append(opts, tablemerge.WithRulesFile(f.Rules))
	}
	return opts, nil
}

func changed(cmd *cobra.Command, name string) bool {
	flag := cmd.Flags().Lookup(name)
	return flag != nil && flag.Changed
}
