package clock

import "time"

// Timer is a pending AfterFunc call that can be stopped.
type Timer interface {
	Stop() bool
}

// Clock provides the wall clock and deferred callbacks so timer behaviour can
// be driven by tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// System is the Clock backed by the time package.
var System Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
