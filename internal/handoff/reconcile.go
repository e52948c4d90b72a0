package handoff

import (
	"countdown/internal/prefs"
	"countdown/internal/timer"
)

// Reconcile rebuilds the snapshot a foreground resume starts from, charging
// the wall-clock time that passed since the persisted remaining seconds were
// last accurate. The result may have SecondsRemaining <= 0, meaning the
// countdown expired while the timer was away.
func Reconcile(p prefs.Persisted, now int64) timer.Snapshot {
	length := p.TimerLengthMinutes * 60
	if p.State != timer.Stopped && p.PreviousTimerLengthSeconds > 0 {
		length = p.PreviousTimerLengthSeconds
	}

	remaining := length
	if p.State == timer.Running || p.State == timer.Paused {
		remaining = p.SecondsRemaining
	}
	if remaining > length {
		remaining = length
	}

	if p.State != timer.Stopped {
		switch {
		case p.AlarmSetTime > 0:
			remaining -= since(now, p.AlarmSetTime)
		case p.State == timer.Running && p.RunningSince > 0:
			remaining -= since(now, p.RunningSince)
		}
	}

	return timer.Snapshot{
		LengthSeconds:    length,
		SecondsRemaining: remaining,
		State:            p.State,
		AlarmSetAt:       p.AlarmSetTime,
	}
}

// since never goes negative, so a clock that moved backwards costs nothing.
func since(now, then int64) int64 {
	if now < then {
		return 0
	}
	return now - then
}
