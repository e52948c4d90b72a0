package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"countdown/internal"
	"countdown/internal/metrics"
	"countdown/internal/wake"
)

func addRun(topLevel *cobra.Command, opts *rootOptions) {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "open the countdown timer (the default command)",
		Example: `
countdown run
countdown --ephemeral
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd.Context(), opts)
		},
	}

	topLevel.AddCommand(cmd)
}

func runUI(ctx context.Context, opts *rootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.cfg.Metrics.Listen != "" {
		if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
			return err
		}
		go func() {
			if err := metrics.Serve(ctx, a.cfg.Metrics.Listen); err != nil {
				a.log.Warnw("metrics listener stopped", "addr", a.cfg.Metrics.Listen, "error", err)
			}
		}()
	}

	ticks := internal.NewTickSource(a.clock)
	ctrl := a.controller(ticks)
	var history internal.HistoryReader
	if a.history != nil {
		history = a.history
	}
	m := internal.NewModel(ctrl, ticks, history, a.log)

	popts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if a.cfg.UI.ReportFocus {
		popts = append(popts, tea.WithReportFocus())
	}
	p := tea.NewProgram(m, popts...)

	a.scheduler.OnFire(func(h wake.Handle) {
		p.Send(internal.WakeMsg{Handle: h})
	})
	defer a.scheduler.OnFire(nil)

	a.log.Infow("countdown started", "store", a.cfg.Store.Backend, "notify", a.cfg.Notify.Backend)
	_, err = p.Run()
	return err
}
