package cli

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"countdown/internal/clock"
	"countdown/internal/config"
	"countdown/internal/handoff"
	"countdown/internal/logger"
	"countdown/internal/notify"
	"countdown/internal/prefs"
	"countdown/internal/timelog"
	"countdown/internal/timer"
	"countdown/internal/wake"
)

// app is everything a command needs, opened from configuration.
type app struct {
	cfg       *config.Config
	log       *zap.SugaredLogger
	clock     clock.Clock
	kv        prefs.KV
	prefs     *prefs.Preferences
	scheduler *wake.Scheduler
	presenter notify.Presenter
	history   *timelog.Repository // nil when disabled
}

func openApp(opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.ephemeral {
		cfg.Store.Backend = "memory"
		cfg.History.Path = ""
	}

	log, err := logger.New(logger.Config{
		File:       cfg.Log.File,
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return nil, err
	}

	kv, err := prefs.Open(cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open preferences: %w", err)
	}

	a := &app{
		cfg:   cfg,
		log:   log,
		clock: clock.System,
		kv:    kv,
		prefs: prefs.New(kv, cfg.Timer.DefaultMinutes, log),
	}
	a.scheduler = wake.New(kv, a.clock, log)

	a.presenter, err = notify.New(cfg.Notify.Backend, kv, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.History.Path != "" {
		repo, err := timelog.NewRepository(cfg.History.Path)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open history: %w", err)
		}
		a.history = repo
	}
	return a, nil
}

func (a *app) controller(ticks timer.TickSource) *handoff.Controller {
	d := handoff.Deps{
		Prefs:     a.prefs,
		Scheduler: a.scheduler,
		Presenter: a.presenter,
		Clock:     a.clock,
		Log:       a.log,
	}
	if a.history != nil {
		d.History = a.history
	}
	return handoff.New(d, ticks)
}

func (a *app) Close() error {
	var errs []error
	if a.history != nil {
		errs = append(errs, a.history.Close())
	}
	if a.kv != nil {
		errs = append(errs, a.kv.Close())
	}
	_ = a.log.Sync()
	return errors.Join(errs...)
}
