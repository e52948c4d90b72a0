package timer

import (
	"fmt"
	"strings"
)

// State is the persisted timer state. The zero value is Stopped.
type State int

const (
	Stopped State = iota
	Paused
	Running
)

var stateNames = [...]string{"Stopped", "Paused", "Running"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// ParseState reads a State written by String, ignoring case.
func ParseState(v string) (State, error) {
	for i, name := range stateNames {
		if strings.EqualFold(strings.TrimSpace(v), name) {
			return State(i), nil
		}
	}
	return Stopped, fmt.Errorf("unknown timer state %q", v)
}

// Controls says which of the start, pause and stop actions are available.
type Controls struct {
	Start bool
	Pause bool
	Stop  bool
}

func ControlsFor(s State) Controls {
	switch s {
	case Running:
		return Controls{Start: false, Pause: true, Stop: true}
	case Paused:
		return Controls{Start: true, Pause: false, Stop: true}
	default:
		return Controls{Start: true, Pause: false, Stop: false}
	}
}

// FormatRemaining renders seconds as m:ss. Minutes are not padded and
// negative values render as 0:00.
func FormatRemaining(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
