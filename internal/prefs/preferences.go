package prefs

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"countdown/internal/timer"
)

const (
	KeyTimerLengthMinutes         = "timer_length_minutes"
	KeyPreviousTimerLengthSeconds = "previous_timer_length_seconds"
	KeySecondsRemaining           = "seconds_remaining"
	KeyTimerState                 = "timer_state"
	KeyAlarmSetTime               = "alarm_set_time"
	KeyRunningSince               = "running_since"
)

// MaxMinutes bounds the configurable timer length.
const MaxMinutes = 24 * 60

// Preferences gives the timer's preference keys their types. Missing or
// unreadable values fall back to defaults; writes are best effort and only
// logged on failure.
type Preferences struct {
	kv             KV
	defaultMinutes int64
	log            *zap.SugaredLogger
}

func New(kv KV, defaultMinutes int, log *zap.SugaredLogger) *Preferences {
	if defaultMinutes <= 0 {
		defaultMinutes = 1
	}
	return &Preferences{kv: kv, defaultMinutes: int64(defaultMinutes), log: log}
}

// KV exposes the underlying store for collaborators that keep their own keys.
func (p *Preferences) KV() KV { return p.kv }

func (p *Preferences) TimerLengthMinutes() int64 {
	v, ok := p.getInt(KeyTimerLengthMinutes)
	if !ok || v <= 0 || v > MaxMinutes {
		return p.defaultMinutes
	}
	return v
}

// SetTimerLengthMinutes is the settings entry point; unlike the timer's own
// writes it reports failure.
func (p *Preferences) SetTimerLengthMinutes(minutes int) error {
	if minutes < 1 || minutes > MaxMinutes {
		return fmt.Errorf("timer length must be between 1 and %d minutes, got %d", MaxMinutes, minutes)
	}
	if err := p.kv.Set(KeyTimerLengthMinutes, strconv.Itoa(minutes)); err != nil {
		return fmt.Errorf("save timer length: %w", err)
	}
	return nil
}

func (p *Preferences) ConfiguredLengthSeconds() int64 {
	return p.TimerLengthMinutes() * 60
}

func (p *Preferences) PreviousTimerLengthSeconds() int64 {
	v, _ := p.getInt(KeyPreviousTimerLengthSeconds)
	return v
}

func (p *Preferences) SetPreviousTimerLengthSeconds(v int64) {
	p.setInt(KeyPreviousTimerLengthSeconds, v)
}

func (p *Preferences) SecondsRemaining() int64 {
	v, _ := p.getInt(KeySecondsRemaining)
	return v
}

func (p *Preferences) SetSecondsRemaining(v int64) {
	p.setInt(KeySecondsRemaining, v)
}

func (p *Preferences) TimerState() timer.State {
	raw, ok := p.get(KeyTimerState)
	if !ok {
		return timer.Stopped
	}
	s, err := timer.ParseState(raw)
	if err != nil {
		p.log.Warnw("unreadable timer state, treating as stopped", "value", raw, "error", err)
		return timer.Stopped
	}
	return s
}

func (p *Preferences) SetTimerState(s timer.State) {
	p.set(KeyTimerState, s.String())
}

// AlarmSetTime is the epoch second a background wake was scheduled, 0 if none.
func (p *Preferences) AlarmSetTime() int64 {
	v, _ := p.getInt(KeyAlarmSetTime)
	return v
}

func (p *Preferences) SetAlarmSetTime(v int64) {
	p.setInt(KeyAlarmSetTime, v)
}

// RunningSince is the epoch second at which SecondsRemaining was last accurate
// for a timer ticking in-process, 0 if none.
func (p *Preferences) RunningSince() int64 {
	v, _ := p.getInt(KeyRunningSince)
	return v
}

func (p *Preferences) SetRunningSince(v int64) {
	p.setInt(KeyRunningSince, v)
}

// Persisted is the raw stored timer record.
type Persisted struct {
	TimerLengthMinutes         int64       `yaml:"timer_length_minutes"`
	PreviousTimerLengthSeconds int64       `yaml:"previous_timer_length_seconds"`
	SecondsRemaining           int64       `yaml:"seconds_remaining"`
	State                      timer.State `yaml:"-"`
	StateName                  string      `yaml:"timer_state"`
	AlarmSetTime               int64       `yaml:"alarm_set_time"`
	RunningSince               int64       `yaml:"running_since"`
}

func (p *Preferences) Load() Persisted {
	s := p.TimerState()
	return Persisted{
		TimerLengthMinutes:         p.TimerLengthMinutes(),
		PreviousTimerLengthSeconds: p.PreviousTimerLengthSeconds(),
		SecondsRemaining:           p.SecondsRemaining(),
		State:                      s,
		StateName:                  s.String(),
		AlarmSetTime:               p.AlarmSetTime(),
		RunningSince:               p.RunningSince(),
	}
}

func (p *Preferences) get(key string) (string, bool) {
	v, ok, err := p.kv.Get(key)
	if err != nil {
		p.log.Warnw("preference read failed", "key", key, "error", err)
		return "", false
	}
	return v, ok
}

func (p *Preferences) getInt(key string) (int64, bool) {
	raw, ok := p.get(key)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.log.Warnw("unreadable preference", "key", key, "value", raw, "error", err)
		return 0, false
	}
	return v, true
}

func (p *Preferences) set(key, value string) {
	if err := p.kv.Set(key, value); err != nil {
		p.log.Warnw("preference write failed", "key", key, "error", err)
	}
}

func (p *Preferences) setInt(key string, v int64) {
	p.set(key, strconv.FormatInt(v, 10))
}
