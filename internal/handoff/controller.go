// Package handoff moves the countdown between the in-process tick source and
// the deferred wake scheduler as the application loses and regains the
// foreground.
package handoff

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"countdown/internal/clock"
	"countdown/internal/metrics"
	"countdown/internal/notify"
	"countdown/internal/prefs"
	"countdown/internal/timelog"
	"countdown/internal/timer"
	"countdown/internal/wake"
)

type Scheduler interface {
	Schedule(at time.Time) (wake.Handle, error)
	Cancel() error
	Current() wake.Handle
	Overdue(now time.Time) (wake.Handle, bool)
}

// History receives finished countdowns.
type History interface {
	CreateLog(log *timelog.TimeLog) error
}

type Deps struct {
	Prefs     *prefs.Preferences
	Scheduler Scheduler
	Presenter notify.Presenter
	Clock     clock.Clock
	History   History // optional
	Log       *zap.SugaredLogger
}

type Controller struct {
	machine   *timer.Machine
	prefs     *prefs.Preferences
	scheduler Scheduler
	presenter notify.Presenter
	clock     clock.Clock
	history   History
	log       *zap.SugaredLogger

	// suspended is true until the first Resume and after every Suspend.
	suspended bool
}

// New builds the controller and the timer machine it drives. ticks is the
// in-process tick source the machine starts and cancels.
func New(d Deps, ticks timer.TickSource) *Controller {
	c := &Controller{
		prefs:     d.Prefs,
		scheduler: d.Scheduler,
		presenter: d.Presenter,
		clock:     d.Clock,
		history:   d.History,
		log:       d.Log,
		suspended: true,
	}
	c.machine = timer.New(d.Prefs, ticks, d.Clock, timer.Hooks{
		OnTransition: c.transitioned,
		OnFinalize:   c.record,
	})
	return c
}

func (c *Controller) Machine() *timer.Machine { return c.machine }

// Suspended reports whether the timer is currently handed off to the
// background path.
func (c *Controller) Suspended() bool { return c.suspended }

// Suspend hands the countdown to the background: a running timer stops
// ticking in-process and a wake is scheduled for its expiry. The snapshot is
// persisted in every state. Suspending twice in a row does nothing the second
// time.
func (c *Controller) Suspend() {
	if c.suspended {
		return
	}
	c.suspended = true

	now := c.clock.Now().Unix()
	snap := c.machine.Snapshot()

	switch snap.State {
	case timer.Running:
		c.machine.Halt()
		wakeUpTime := time.Unix(now+snap.SecondsRemaining, 0)
		if _, err := c.scheduler.Schedule(wakeUpTime); err != nil {
			c.log.Warnw("wake not scheduled, expiry will be noticed on resume", "error", err)
			metrics.RecordWake("failed")
		} else {
			metrics.RecordWake("scheduled")
		}
		c.prefs.SetAlarmSetTime(now)
		c.machine.SetAlarmSetAt(now)
		c.present("running", c.presenter.ShowRunning(wakeUpTime))
	case timer.Paused:
		c.present("paused", c.presenter.ShowPaused())
	}

	c.prefs.SetPreviousTimerLengthSeconds(snap.LengthSeconds)
	c.prefs.SetSecondsRemaining(snap.SecondsRemaining)
	c.prefs.SetTimerState(snap.State)
	c.prefs.SetRunningSince(0)
	metrics.SetSecondsRemaining(snap.SecondsRemaining)

	c.log.Infow("suspended", "state", snap.State, "remaining", snap.SecondsRemaining)
}

// Resume takes the countdown back from the background path: it reconciles the
// persisted snapshot against the wall clock, finalizes a countdown that
// expired meanwhile or restarts ticking, then cancels any pending wake and
// hides the notification.
func (c *Controller) Resume() timer.Snapshot {
	now := c.clock.Now().Unix()
	persisted := c.prefs.Load()
	snap := Reconcile(persisted, now)
	snap.AlarmSetAt = 0

	c.machine.Restore(snap)
	outcome := strings.ToLower(snap.State.String())
	switch {
	case snap.SecondsRemaining <= 0:
		c.machine.Finalize(timer.ReasonExpiredInBackground)
		outcome = "expired"
	case snap.State == timer.Running:
		c.machine.ResumeTicking()
	}

	pending := c.scheduler.Current() != ""
	if err := c.scheduler.Cancel(); err != nil {
		c.log.Warnw("wake cancel failed", "error", err)
	} else if pending {
		metrics.RecordWake("cancelled")
	}
	c.prefs.SetAlarmSetTime(0)
	c.present("hide", c.presenter.Hide())

	final := c.machine.Snapshot()
	c.prefs.SetPreviousTimerLengthSeconds(final.LengthSeconds)
	c.prefs.SetSecondsRemaining(final.SecondsRemaining)
	c.prefs.SetTimerState(final.State)
	c.suspended = false

	metrics.RecordReconciliation(outcome)
	metrics.SetSecondsRemaining(final.SecondsRemaining)
	c.log.Infow("resumed",
		"outcome", outcome,
		"state", final.State,
		"remaining", final.SecondsRemaining,
		"alarm_set_at", persisted.AlarmSetTime)
	return final
}

// DeliverWake handles a wake that fired while the timer was in the
// background. Stale handles are ignored, and so is any wake for a timer the
// store no longer records as Running: a stopped timer has nothing to expire
// and a paused one must never expire in the background. The return value
// reports whether the wake expired the timer.
func (c *Controller) DeliverWake(h wake.Handle) bool {
	if h == "" || h != c.scheduler.Current() {
		c.log.Debugw("stale wake ignored", "handle", h)
		metrics.RecordWake("ignored")
		return false
	}
	if state := c.prefs.TimerState(); state != timer.Running {
		if err := c.scheduler.Cancel(); err != nil {
			c.log.Warnw("wake cancel failed", "error", err)
		}
		c.log.Infow("wake ignored", "handle", h, "state", state)
		metrics.RecordWake("ignored")
		return false
	}

	length := c.prefs.PreviousTimerLengthSeconds()
	c.prefs.SetTimerState(timer.Stopped)
	c.prefs.SetAlarmSetTime(0)
	if err := c.scheduler.Cancel(); err != nil {
		c.log.Warnw("wake cancel failed", "error", err)
	}
	metrics.RecordWake("delivered")

	c.record(timer.Finished{
		LengthSeconds:  length,
		ElapsedSeconds: length,
		Reason:         timer.ReasonExpiredInBackground,
		At:             c.clock.Now(),
	})
	c.present("expired", c.presenter.ShowExpired())
	c.log.Infow("timer expired in background", "handle", h)
	return true
}

// CheckOverdue delivers a persisted wake whose time passed while no process
// was running to fire it.
func (c *Controller) CheckOverdue() bool {
	h, ok := c.scheduler.Overdue(c.clock.Now())
	if !ok {
		return false
	}
	return c.DeliverWake(h)
}

// SetMinutes changes the configured length. A stopped timer picks it up at
// once; otherwise it applies from the next finalize.
func (c *Controller) SetMinutes(minutes int) error {
	if err := c.prefs.SetTimerLengthMinutes(minutes); err != nil {
		return err
	}
	c.machine.Reset()
	c.log.Infow("timer length changed", "minutes", minutes)
	return nil
}

func (c *Controller) transitioned(from, to timer.State) {
	metrics.RecordTransition(from.String(), to.String())
	c.log.Debugw("timer transition", "from", from, "to", to)
	if to == timer.Paused {
		// A paused timer must never expire in the background.
		if err := c.scheduler.Cancel(); err != nil {
			c.log.Warnw("wake cancel failed", "error", err)
		}
		c.prefs.SetAlarmSetTime(0)
	}
}

func (c *Controller) record(f timer.Finished) {
	c.log.Infow("countdown finished", "reason", f.Reason, "length", f.LengthSeconds, "elapsed", f.ElapsedSeconds)
	if c.history == nil {
		return
	}
	if err := c.history.CreateLog(timelog.FromFinished(f)); err != nil {
		c.log.Warnw("history not recorded", "error", err)
	}
}

func (c *Controller) present(kind string, err error) {
	if err != nil {
		c.log.Warnw("notification failed", "kind", kind, "error", err)
	}
}
