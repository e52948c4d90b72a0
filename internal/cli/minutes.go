package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"countdown/internal/timer"
)

func addMinutes(topLevel *cobra.Command, opts *rootOptions) {
	cmd := &cobra.Command{
		Use:   "minutes N",
		Short: "set the countdown length in minutes",
		Long:  "Set the countdown length. A stopped timer takes it at once; a running or paused one keeps its length until it finishes.",
		Example: `
countdown minutes 50
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("minutes must be a whole number, got %q", args[0])
			}

			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.prefs.SetTimerLengthMinutes(minutes); err != nil {
				return err
			}
			if a.prefs.TimerState() == timer.Stopped {
				a.prefs.SetSecondsRemaining(a.prefs.ConfiguredLengthSeconds())
			}
			a.log.Infow("timer length changed", "minutes", minutes)
			fmt.Fprintf(cmd.OutOrStdout(), "Timer length set to %d minutes.\n", minutes)
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
