package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"countdown/internal/handoff"
	"countdown/internal/prefs"
	"countdown/internal/timer"
)

type statusReport struct {
	State            string          `yaml:"state"`
	Remaining        string          `yaml:"remaining"`
	SecondsRemaining int64           `yaml:"seconds_remaining"`
	LengthSeconds    int64           `yaml:"length_seconds"`
	WakeAt           string          `yaml:"wake_at,omitempty"`
	Persisted        prefs.Persisted `yaml:"persisted"`
}

func addStatus(topLevel *cobra.Command, opts *rootOptions) {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "show the timer as it stands right now",
		Example: `
countdown status
countdown status --yaml
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			r := buildStatus(a, a.clock.Now())
			if asYAML {
				return yaml.NewEncoder(cmd.OutOrStdout()).Encode(r)
			}
			printStatus(cmd.OutOrStdout(), r, a, a.clock.Now())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the status and the stored record as YAML")

	topLevel.AddCommand(cmd)
}

// buildStatus reports the timer as a resume at now would find it, without
// changing anything.
func buildStatus(a *app, now time.Time) statusReport {
	p := a.prefs.Load()
	snap := handoff.Reconcile(p, now.Unix())
	remaining := max(snap.SecondsRemaining, 0)

	r := statusReport{
		State:            snap.State.String(),
		Remaining:        timer.FormatRemaining(remaining),
		SecondsRemaining: remaining,
		LengthSeconds:    snap.LengthSeconds,
		Persisted:        p,
	}
	if snap.State != timer.Stopped && snap.SecondsRemaining <= 0 {
		r.State = "Expired"
	}
	if at, ok := a.scheduler.Pending(); ok {
		r.WakeAt = at.Format(time.RFC3339)
	}
	return r
}

func printStatus(w io.Writer, r statusReport, a *app, now time.Time) {
	fmt.Fprintf(w, "State:     %s\n", r.State)
	fmt.Fprintf(w, "Remaining: %s of %s\n", r.Remaining, timer.FormatRemaining(r.LengthSeconds))
	if at, ok := a.scheduler.Pending(); ok {
		fmt.Fprintf(w, "Wake:      %s (%s)\n", at.Local().Format("15:04:05"), humanize.RelTime(at, now, "ago", "from now"))
	}
}
