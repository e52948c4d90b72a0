// Package cli holds the countdown command tree.
package cli

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	ephemeral  bool
}

func New() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "countdown",
		Short:         "A single countdown timer for the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd.Context(), opts)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default countdown.yaml in the user config dir)")
	cmd.PersistentFlags().BoolVar(&opts.ephemeral, "ephemeral", false, "keep timer state in memory and record no history")

	AddCommands(cmd, opts)
	return cmd
}

func AddCommands(topLevel *cobra.Command, opts *rootOptions) {
	addRun(topLevel, opts)
	addStatus(topLevel, opts)
	addMinutes(topLevel, opts)
	addWake(topLevel, opts)
	addHistory(topLevel, opts)
}
