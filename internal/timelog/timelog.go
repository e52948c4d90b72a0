package timelog

import (
	"time"

	"countdown/internal/timer"
)

type Outcome string

const (
	OutcomeStopped Outcome = "stopped"
	OutcomeExpired Outcome = "expired"
)

// TimeLog records one countdown that ended, by the user or by expiry.
type TimeLog struct {
	ID        int64
	StoppedAt time.Time
	Length    time.Duration
	Elapsed   time.Duration
	Outcome   Outcome
}

// FromFinished converts the timer's finalize record into a log entry.
func FromFinished(f timer.Finished) *TimeLog {
	outcome := OutcomeExpired
	if f.Reason == timer.ReasonStopped {
		outcome = OutcomeStopped
	}
	return &TimeLog{
		StoppedAt: f.At,
		Length:    time.Duration(f.LengthSeconds) * time.Second,
		Elapsed:   time.Duration(f.ElapsedSeconds) * time.Second,
		Outcome:   outcome,
	}
}
