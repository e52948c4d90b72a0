// Package timer implements the single countdown: its state machine, tick
// handling and the values the view derives from it.
package timer

import (
	"errors"
	"fmt"
	"time"

	"countdown/internal/clock"
)

var ErrInvalidTransition = errors.New("invalid timer transition")

// Snapshot is the durable record of the timer.
type Snapshot struct {
	LengthSeconds    int64
	SecondsRemaining int64
	State            State
	// AlarmSetAt is the epoch second a background wake was scheduled, 0 if none.
	AlarmSetAt int64
}

// Reason says why a countdown was finalized.
type Reason int

const (
	ReasonStopped Reason = iota
	ReasonExpired
	ReasonExpiredInBackground
)

func (r Reason) String() string {
	switch r {
	case ReasonStopped:
		return "stopped"
	case ReasonExpired:
		return "expired"
	case ReasonExpiredInBackground:
		return "expired_in_background"
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// Finished describes a countdown as it was just before finalize reset it.
type Finished struct {
	LengthSeconds  int64
	ElapsedSeconds int64
	Reason         Reason
	At             time.Time
}

// Store is the part of the preference store the machine reads and writes.
// Writes are best effort.
type Store interface {
	ConfiguredLengthSeconds() int64
	SetPreviousTimerLengthSeconds(int64)
	SetSecondsRemaining(int64)
	SetTimerState(State)
	SetRunningSince(int64)
}

// TickSource delivers one Tick per second for up to the given number of
// seconds, then calls Finish. Cancel drops any tick not yet delivered and is
// safe to repeat.
type TickSource interface {
	Begin(seconds int64)
	Cancel()
}

type Hooks struct {
	OnTransition func(from, to State)
	OnFinalize   func(Finished)
}

type Machine struct {
	snap    Snapshot
	store   Store
	ticks   TickSource
	clock   clock.Clock
	hooks   Hooks
	ticking bool
}

// New returns a stopped machine sized to the configured length.
func New(store Store, ticks TickSource, clk clock.Clock, hooks Hooks) *Machine {
	length := store.ConfiguredLengthSeconds()
	return &Machine{
		snap:  Snapshot{LengthSeconds: length, SecondsRemaining: length, State: Stopped},
		store: store,
		ticks: ticks,
		clock: clk,
		hooks: hooks,
	}
}

func (m *Machine) Snapshot() Snapshot { return m.snap }
func (m *Machine) State() State       { return m.snap.State }
func (m *Machine) Controls() Controls { return ControlsFor(m.snap.State) }
func (m *Machine) Ticking() bool      { return m.ticking }

// Display is the remaining time as shown to the user.
func (m *Machine) Display() string { return FormatRemaining(m.snap.SecondsRemaining) }

// Elapsed is LengthSeconds - SecondsRemaining, clamped to [0, LengthSeconds].
func (m *Machine) Elapsed() int64 {
	return elapsed(m.snap)
}

// Progress is Elapsed as a fraction of the length.
func (m *Machine) Progress() float64 {
	if m.snap.LengthSeconds <= 0 {
		return 0
	}
	return float64(m.Elapsed()) / float64(m.snap.LengthSeconds)
}

func (m *Machine) Start() error {
	if m.snap.State == Running {
		return fmt.Errorf("%w: start while %s", ErrInvalidTransition, m.snap.State)
	}
	if m.snap.SecondsRemaining <= 0 {
		m.Finalize(ReasonExpired)
		return nil
	}
	m.setState(Running)
	m.beginTicking()
	return nil
}

func (m *Machine) Pause() error {
	if m.snap.State != Running {
		return fmt.Errorf("%w: pause while %s", ErrInvalidTransition, m.snap.State)
	}
	m.Halt()
	m.setState(Paused)
	m.store.SetSecondsRemaining(m.snap.SecondsRemaining)
	m.store.SetTimerState(Paused)
	m.store.SetRunningSince(0)
	return nil
}

func (m *Machine) Stop() error {
	if m.snap.State == Stopped {
		return fmt.Errorf("%w: stop while %s", ErrInvalidTransition, m.snap.State)
	}
	m.Finalize(ReasonStopped)
	return nil
}

// Tick consumes one second. Ticks arriving while not ticking are ignored.
func (m *Machine) Tick() {
	if m.snap.State != Running || !m.ticking {
		return
	}
	m.snap.SecondsRemaining--
	if m.snap.SecondsRemaining <= 0 {
		m.Finalize(ReasonExpired)
	}
}

// Finish is the tick source's own end-of-countdown signal.
func (m *Machine) Finish() {
	if m.snap.State != Running || !m.ticking {
		return
	}
	m.Finalize(ReasonExpired)
}

// Finalize returns the timer to Stopped with a fresh length from the store.
func (m *Machine) Finalize(reason Reason) {
	before := m.snap
	m.Halt()

	length := m.store.ConfiguredLengthSeconds()
	m.snap.LengthSeconds = length
	m.snap.SecondsRemaining = length
	m.setState(Stopped)

	m.store.SetSecondsRemaining(length)
	m.store.SetTimerState(Stopped)
	m.store.SetRunningSince(0)

	if m.hooks.OnFinalize != nil {
		m.hooks.OnFinalize(Finished{
			LengthSeconds:  before.LengthSeconds,
			ElapsedSeconds: elapsed(before),
			Reason:         reason,
			At:             m.clock.Now(),
		})
	}
}

// Reset picks up a changed configured length. It only applies while Stopped.
func (m *Machine) Reset() {
	if m.snap.State != Stopped {
		return
	}
	length := m.store.ConfiguredLengthSeconds()
	m.snap.LengthSeconds = length
	m.snap.SecondsRemaining = length
	m.store.SetSecondsRemaining(length)
}

// Halt cancels in-process ticking without changing state.
func (m *Machine) Halt() {
	m.ticks.Cancel()
	m.ticking = false
}

// Restore replaces the snapshot with one reconstructed from the store.
func (m *Machine) Restore(s Snapshot) {
	m.Halt()
	if s.State == Stopped {
		s.SecondsRemaining = s.LengthSeconds
	}
	m.snap = s
}

// ResumeTicking restarts in-process ticking of a Running timer from its
// current remaining seconds.
func (m *Machine) ResumeTicking() {
	if m.snap.State != Running || m.ticking {
		return
	}
	if m.snap.SecondsRemaining <= 0 {
		m.Finalize(ReasonExpired)
		return
	}
	m.beginTicking()
}

func (m *Machine) SetAlarmSetAt(epoch int64) { m.snap.AlarmSetAt = epoch }

func (m *Machine) beginTicking() {
	m.ticks.Begin(m.snap.SecondsRemaining)
	m.ticking = true
	m.store.SetPreviousTimerLengthSeconds(m.snap.LengthSeconds)
	m.store.SetSecondsRemaining(m.snap.SecondsRemaining)
	m.store.SetTimerState(Running)
	m.store.SetRunningSince(m.clock.Now().Unix())
}

func (m *Machine) setState(to State) {
	from := m.snap.State
	m.snap.State = to
	if from != to && m.hooks.OnTransition != nil {
		m.hooks.OnTransition(from, to)
	}
}

func elapsed(s Snapshot) int64 {
	e := s.LengthSeconds - s.SecondsRemaining
	if e < 0 {
		return 0
	}
	if e > s.LengthSeconds {
		return s.LengthSeconds
	}
	return e
}
