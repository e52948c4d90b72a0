// Package wake schedules the one-shot wake that finishes a countdown while the
// timer is not in the foreground.
//
// The target is persisted alongside the timer preferences, so a wake whose
// process died can still be found (Overdue) by the next process, and an
// in-process timer fires the callback while the process lives.
package wake

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"countdown/internal/clock"
	"countdown/internal/prefs"
)

// Handle identifies one scheduled wake.
type Handle string

const (
	KeyWakeAt     = "wake_at"
	KeyWakeHandle = "wake_handle"
)

type Scheduler struct {
	mu     sync.Mutex
	kv     prefs.KV
	clock  clock.Clock
	log    *zap.SugaredLogger
	timer  clock.Timer
	handle Handle
	at     time.Time
	fire   func(Handle)
}

// New returns a scheduler that knows about any wake persisted in kv, but does
// not arm an in-process timer for it.
func New(kv prefs.KV, clk clock.Clock, log *zap.SugaredLogger) *Scheduler {
	s := &Scheduler{kv: kv, clock: clk, log: log}
	s.handle, s.at = s.load()
	return s
}

// OnFire sets the callback run, on the timer's goroutine, when a wake fires.
func (s *Scheduler) OnFire(f func(Handle)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fire = f
}

// Schedule arms a wake for at, superseding any earlier one. A failure to
// persist the target is logged; the in-process wake is still armed.
func (s *Scheduler) Schedule(at time.Time) (Handle, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("wake handle: %w", err)
	}
	h := Handle(id.String())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.handle = h
	s.at = at

	if err := s.persist(at.Unix(), string(h)); err != nil {
		s.log.Warnw("wake target not persisted, wake limited to this process", "handle", h, "error", err)
	}

	d := at.Sub(s.clock.Now())
	if d < 0 {
		d = 0
	}
	s.timer = s.clock.AfterFunc(d, func() { s.deliver(h) })
	s.log.Debugw("wake scheduled", "handle", h, "at", at)
	return h, nil
}

// Cancel removes the scheduled wake. It is safe to call when nothing is
// scheduled.
func (s *Scheduler) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.handle = ""
	s.at = time.Time{}
	if err := s.persist(0, ""); err != nil {
		return fmt.Errorf("clear wake target: %w", err)
	}
	return nil
}

// Current is the handle of the outstanding wake, "" if none.
func (s *Scheduler) Current() Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}

// Pending reports the target of the outstanding wake.
func (s *Scheduler) Pending() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == "" {
		return time.Time{}, false
	}
	return s.at, true
}

// Overdue reports the outstanding wake if its target is at or before now.
func (s *Scheduler) Overdue(now time.Time) (Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == "" || s.at.After(now) {
		return "", false
	}
	return s.handle, true
}

// Reload refreshes the outstanding wake from the store, which another process
// may have replaced or cancelled. An armed timer for a handle that is no
// longer current is stopped.
func (s *Scheduler) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, at := s.load()
	if h != s.handle {
		s.stopLocked()
	}
	s.handle, s.at = h, at
}

// Arm starts an in-process timer for the outstanding wake, typically one
// loaded from the store. It reports false when nothing is scheduled.
func (s *Scheduler) Arm() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == "" {
		return false
	}
	s.stopLocked()
	h := s.handle
	d := max(s.at.Sub(s.clock.Now()), 0)
	s.timer = s.clock.AfterFunc(d, func() { s.deliver(h) })
	return true
}

func (s *Scheduler) deliver(h Handle) {
	s.mu.Lock()
	if s.handle != h {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	fire := s.fire
	s.mu.Unlock()

	s.log.Infow("wake fired", "handle", h)
	if fire != nil {
		fire(h)
	}
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) persist(at int64, handle string) error {
	if err := s.kv.Set(KeyWakeAt, strconv.FormatInt(at, 10)); err != nil {
		return err
	}
	return s.kv.Set(KeyWakeHandle, handle)
}

func (s *Scheduler) load() (Handle, time.Time) {
	rawAt, ok, err := s.kv.Get(KeyWakeAt)
	if err != nil || !ok {
		return "", time.Time{}
	}
	at, err := strconv.ParseInt(rawAt, 10, 64)
	if err != nil || at <= 0 {
		return "", time.Time{}
	}
	h, ok, err := s.kv.Get(KeyWakeHandle)
	if err != nil || !ok || h == "" {
		return "", time.Time{}
	}
	return Handle(h), time.Unix(at, 0)
}
