package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"countdown/internal/timer"
)

func addHistory(topLevel *cobra.Command, opts *rootOptions) {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "list finished countdowns, newest first",
		Example: `
countdown history
countdown history --limit 5
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.history == nil {
				return errors.New("history is disabled (history.path is empty)")
			}
			logs, err := a.history.GetLogs(limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(logs) == 0 {
				fmt.Fprintln(out, "No finished countdowns yet.")
				return nil
			}
			now := a.clock.Now()
			for _, l := range logs {
				fmt.Fprintf(out, "%s  %-8s %s of %s  (%s)\n",
					l.StoppedAt.Local().Format("Jan 02 15:04"),
					l.Outcome,
					timer.FormatRemaining(int64(l.Elapsed/time.Second)),
					timer.FormatRemaining(int64(l.Length/time.Second)),
					humanize.RelTime(l.StoppedAt, now, "ago", "from now"),
				)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of entries to show")

	topLevel.AddCommand(cmd)
}
