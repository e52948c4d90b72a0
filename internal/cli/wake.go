package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"countdown/internal"
	"countdown/internal/handoff"
	"countdown/internal/wake"
)

func addWake(topLevel *cobra.Command, opts *rootOptions) {
	var wait bool

	cmd := &cobra.Command{
		Use:   "wake",
		Short: "finish a countdown whose wake is due",
		Long: `Deliver the scheduled wake if its time has passed. With --wait, stay
running until the wake is due and deliver it then, following any change
another countdown process makes to it.`,
		Example: `
countdown wake
countdown wake --wait &
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctrl := a.controller(internal.NewTickSource(a.clock))
			out := cmd.OutOrStdout()
			if !wait {
				deliverDue(out, a, ctrl)
				return nil
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return waitForWake(ctx, out, a, ctrl)
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", false, "block until the scheduled wake is due")

	topLevel.AddCommand(cmd)
}

func deliverDue(out io.Writer, a *app, ctrl *handoff.Controller) {
	if ctrl.CheckOverdue() {
		fmt.Fprintln(out, "Countdown finished.")
		return
	}
	if at, ok := a.scheduler.Pending(); ok {
		fmt.Fprintf(out, "Wake due %s.\n", humanize.RelTime(at, a.clock.Now(), "ago", "from now"))
		return
	}
	fmt.Fprintln(out, "No wake scheduled.")
}

func waitForWake(ctx context.Context, out io.Writer, a *app, ctrl *handoff.Controller) error {
	fired := make(chan struct{}, 1)
	a.scheduler.OnFire(func(wake.Handle) {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	defer a.scheduler.OnFire(nil)

	for {
		a.scheduler.Reload()
		if ctrl.CheckOverdue() {
			fmt.Fprintln(out, "Countdown finished.")
			return nil
		}
		if !a.scheduler.Arm() {
			fmt.Fprintln(out, "No wake scheduled.")
			return nil
		}
		a.log.Debugw("waiting for wake", "handle", a.scheduler.Current())

		select {
		case <-fired:
		case <-ctx.Done():
			return nil
		}
	}
}
