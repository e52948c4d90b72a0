package internal

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"countdown/internal/clock"
	"countdown/internal/timer"
)

type tickMsg struct {
	gen int
}

// finishMsg is the tick source's own signal that the seconds it was started
// with have all been delivered.
type finishMsg struct {
	gen int
}

// TickSource drives the machine's in-process countdown with a chain of
// tea.Tick commands. Every Begin and Cancel starts a new generation, so ticks
// already in flight from an earlier one are dropped. Ticks are scheduled
// against the instant Begin was called, so handling time does not accumulate
// into drift.
type TickSource struct {
	clock    clock.Clock
	interval time.Duration
	gen      int
	active   bool
	pending  bool

	anchor time.Time
	fired  int64
	budget int64
}

func NewTickSource(clk clock.Clock) *TickSource {
	return &TickSource{clock: clk, interval: time.Second}
}

// Begin starts a chain delivering seconds ticks, then a finishMsg.
func (t *TickSource) Begin(seconds int64) {
	t.gen++
	t.active = true
	t.pending = true
	t.anchor = t.clock.Now()
	t.fired = 0
	t.budget = seconds
}

func (t *TickSource) Cancel() {
	t.gen++
	t.active = false
	t.pending = false
}

func (t *TickSource) Active() bool { return t.active }

// Cmd returns the first tick of a chain started by Begin, once.
func (t *TickSource) Cmd() tea.Cmd {
	if !t.pending {
		return nil
	}
	t.pending = false
	return t.next()
}

func (t *TickSource) handle(msg tickMsg, m *timer.Machine) tea.Cmd {
	if !t.active || msg.gen != t.gen {
		return nil
	}
	t.fired++
	m.Tick()
	if !t.active || msg.gen != t.gen {
		return nil
	}
	if t.fired >= t.budget {
		gen := t.gen
		return func() tea.Msg { return finishMsg{gen: gen} }
	}
	return t.next()
}

func (t *TickSource) finish(msg finishMsg, m *timer.Machine) {
	if !t.active || msg.gen != t.gen {
		return
	}
	m.Finish()
	t.Cancel()
}

// delay is how long until the next tick is due, measured from the anchor.
func (t *TickSource) delay() time.Duration {
	due := t.anchor.Add(time.Duration(t.fired+1) * t.interval)
	return max(due.Sub(t.clock.Now()), 0)
}

func (t *TickSource) next() tea.Cmd {
	gen := t.gen
	return tea.Tick(t.delay(), func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}
