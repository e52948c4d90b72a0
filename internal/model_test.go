package internal

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"countdown/internal/clock"
	"countdown/internal/handoff"
	"countdown/internal/notify"
	"countdown/internal/prefs"
	"countdown/internal/timelog"
	"countdown/internal/timer"
	"countdown/internal/wake"
)

var epoch = time.Unix(1_700_000_000, 0)

type stubHistory struct {
	logs []timelog.TimeLog
	err  error
}

func (h *stubHistory) GetLogs(limit int) ([]timelog.TimeLog, error) {
	if h.err != nil {
		return nil, h.err
	}
	return h.logs[:min(limit, len(h.logs))], nil
}

type harness struct {
	m         *Model
	clk       *clock.Fake
	prefs     *prefs.Preferences
	scheduler *wake.Scheduler
	ticks     *TickSource
}

func newHarness(t *testing.T, minutes int) *harness {
	t.Helper()
	log := zaptest.NewLogger(t).Sugar()
	clk := clock.NewFake(epoch)
	kv := prefs.NewMemory()
	p := prefs.New(kv, minutes, log)
	sched := wake.New(kv, clk, log)
	ticks := NewTickSource(clk)
	ctrl := handoff.New(handoff.Deps{
		Prefs:     p,
		Scheduler: sched,
		Presenter: notify.None{},
		Clock:     clk,
		Log:       log,
	}, ticks)
	m := NewModel(ctrl, ticks, &stubHistory{}, log)
	m.Update(m.Init()())
	return &harness{m: m, clk: clk, prefs: p, scheduler: sched, ticks: ticks}
}

func (h *harness) press(keys string) tea.Cmd {
	_, cmd := h.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)})
	return cmd
}

func (h *harness) special(t tea.KeyType) tea.Cmd {
	_, cmd := h.m.Update(tea.KeyMsg{Type: t})
	return cmd
}

func (h *harness) tick() tea.Cmd {
	_, cmd := h.m.Update(tickMsg{gen: h.ticks.gen})
	return cmd
}

func TestStartupShowsStoppedTimer(t *testing.T) {
	h := newHarness(t, 25)

	assert.Equal(t, timer.Stopped, h.m.Machine().State())
	assert.Equal(t, "25:00", h.m.Machine().Display())
	assert.True(t, h.m.keys.Start.Enabled())
	assert.False(t, h.m.keys.Pause.Enabled())
	assert.False(t, h.m.keys.Stop.Enabled())
	assert.Contains(t, h.m.View(), "25:00")
}

func TestStartTicksDown(t *testing.T) {
	h := newHarness(t, 1)

	cmd := h.press("s")
	require.NotNil(t, cmd)
	assert.Equal(t, timer.Running, h.m.Machine().State())
	assert.True(t, h.ticks.Active())
	assert.False(t, h.m.keys.Start.Enabled())
	assert.True(t, h.m.keys.Pause.Enabled())
	assert.True(t, h.m.keys.Stop.Enabled())

	require.NotNil(t, h.tick())
	h.tick()
	assert.Equal(t, "0:58", h.m.Machine().Display())
}

func TestStaleTickIsDropped(t *testing.T) {
	h := newHarness(t, 1)
	h.press("s")
	stale := tickMsg{gen: h.ticks.gen}

	h.press("p")
	h.press("s")
	_, cmd := h.m.Update(stale)
	assert.Nil(t, cmd)
	assert.Equal(t, int64(60), h.m.Machine().Snapshot().SecondsRemaining)
}

func TestDisabledKeysAreInert(t *testing.T) {
	h := newHarness(t, 5)

	h.press("p")
	h.press("x")
	assert.Equal(t, timer.Stopped, h.m.Machine().State())
	assert.NoError(t, h.m.Err)
	assert.NotContains(t, h.m.View(), "pause")
}

func TestPauseAndStop(t *testing.T) {
	h := newHarness(t, 5)
	h.press("s")
	h.tick()

	h.press("p")
	assert.Equal(t, timer.Paused, h.m.Machine().State())
	assert.False(t, h.ticks.Active())
	assert.Equal(t, "resume", h.m.keys.Start.Help().Desc)
	assert.Contains(t, h.m.View(), "Paused")

	h.press("x")
	assert.Equal(t, timer.Stopped, h.m.Machine().State())
	assert.Equal(t, "5:00", h.m.Machine().Display())
}

func TestExpiryByTicks(t *testing.T) {
	h := newHarness(t, 1)
	h.press("s")
	for i := 0; i < 59; i++ {
		require.NotNil(t, h.tick())
	}
	assert.Nil(t, h.tick())
	assert.Equal(t, timer.Stopped, h.m.Machine().State())
	assert.Equal(t, "1:00", h.m.Machine().Display())
}

func TestTickSourceFinishesWhenSecondsRunOut(t *testing.T) {
	h := newHarness(t, 1)
	h.press("s")
	h.ticks.budget = 2

	require.NotNil(t, h.tick())
	cmd := h.tick()
	require.NotNil(t, cmd)
	msg, ok := cmd().(finishMsg)
	require.True(t, ok)
	assert.Equal(t, h.ticks.gen, msg.gen)
	assert.Equal(t, timer.Running, h.m.Machine().State())

	h.m.Update(msg)
	assert.Equal(t, timer.Stopped, h.m.Machine().State())
	assert.False(t, h.ticks.Active())
	assert.Equal(t, "1:00", h.m.Machine().Display())
	assert.True(t, h.m.keys.Start.Enabled())
}

func TestStaleFinishIsDropped(t *testing.T) {
	h := newHarness(t, 1)
	h.press("s")
	stale := finishMsg{gen: h.ticks.gen}

	h.press("p")
	h.m.Update(stale)
	assert.Equal(t, timer.Paused, h.m.Machine().State())

	h.press("s")
	h.m.Update(stale)
	assert.Equal(t, timer.Running, h.m.Machine().State())
	assert.True(t, h.ticks.Active())
}

func TestTicksStayOnSchedule(t *testing.T) {
	h := newHarness(t, 5)
	h.press("s")
	assert.Equal(t, time.Second, h.ticks.delay())

	h.clk.Advance(1300 * time.Millisecond)
	require.NotNil(t, h.tick())
	assert.Equal(t, 700*time.Millisecond, h.ticks.delay())

	h.clk.Advance(2 * time.Second)
	require.NotNil(t, h.tick())
	assert.Equal(t, time.Duration(0), h.ticks.delay())
}

func TestBlurAndFocusHandOff(t *testing.T) {
	h := newHarness(t, 25)
	h.press("s")
	gen := h.ticks.gen

	h.m.Update(tea.BlurMsg{})
	assert.False(t, h.ticks.Active())
	assert.NotEmpty(t, h.scheduler.Current())

	_, cmd := h.m.Update(tickMsg{gen: gen})
	assert.Nil(t, cmd)

	h.clk.Advance(2 * time.Second)
	_, cmd = h.m.Update(tea.FocusMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, int64(1498), h.m.Machine().Snapshot().SecondsRemaining)
	assert.True(t, h.ticks.Active())
	assert.Empty(t, h.scheduler.Current())
}

func TestKeyWhileSuspendedResumesFirst(t *testing.T) {
	h := newHarness(t, 25)
	h.press("s")
	h.m.Update(tea.BlurMsg{})
	h.clk.Advance(10 * time.Second)

	h.press("p")
	assert.Equal(t, timer.Paused, h.m.Machine().State())
	assert.Equal(t, int64(1490), h.m.Machine().Snapshot().SecondsRemaining)
	assert.Empty(t, h.scheduler.Current())
}

func TestWakeWhileBlurred(t *testing.T) {
	h := newHarness(t, 1)
	h.press("s")
	h.m.Update(tea.BlurMsg{})
	handle := h.scheduler.Current()

	h.m.Update(WakeMsg{Handle: handle})
	assert.True(t, h.m.Expired)
	assert.Equal(t, timer.Stopped, h.prefs.TimerState())

	h.m.Update(tea.FocusMsg{})
	assert.Equal(t, timer.Stopped, h.m.Machine().State())
	assert.Contains(t, h.m.View(), "Time's up")

	h.press("s")
	assert.False(t, h.m.Expired)
}

func TestQuitSuspendsFirst(t *testing.T) {
	h := newHarness(t, 25)
	h.press("s")

	cmd := h.press("q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.NotEmpty(t, h.scheduler.Current())
	assert.Equal(t, epoch.Unix(), h.prefs.AlarmSetTime())
}

func TestCtrlZSuspends(t *testing.T) {
	h := newHarness(t, 25)
	h.press("s")

	cmd := h.special(tea.KeyCtrlZ)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.SuspendMsg{}, cmd())
	assert.NotEmpty(t, h.scheduler.Current())

	h.clk.Advance(5 * time.Second)
	h.m.Update(tea.ResumeMsg{})
	assert.Equal(t, int64(1495), h.m.Machine().Snapshot().SecondsRemaining)
	assert.Empty(t, h.scheduler.Current())
}

func TestMinutesForm(t *testing.T) {
	h := newHarness(t, 25)

	h.press("m")
	require.True(t, h.m.ShowMinutesForm)
	h.press("1")
	h.press("a")
	h.press("0")
	assert.Equal(t, "10", h.m.minutes.Value())
	h.special(tea.KeyEnter)

	assert.False(t, h.m.ShowMinutesForm)
	assert.Equal(t, int64(10), h.prefs.TimerLengthMinutes())
	assert.Equal(t, "10:00", h.m.Machine().Display())
}

func TestMinutesFormRejectsZero(t *testing.T) {
	h := newHarness(t, 25)

	h.press("m")
	h.press("0")
	h.special(tea.KeyEnter)
	assert.True(t, h.m.ShowMinutesForm)
	assert.Error(t, h.m.Err)

	h.special(tea.KeyEsc)
	assert.False(t, h.m.ShowMinutesForm)
	assert.NoError(t, h.m.Err)
	assert.Equal(t, int64(25), h.prefs.TimerLengthMinutes())
}

func TestLogView(t *testing.T) {
	h := newHarness(t, 25)
	h.m.history = &stubHistory{logs: []timelog.TimeLog{
		{ID: 2, StoppedAt: epoch, Length: 25 * time.Minute, Elapsed: 25 * time.Minute, Outcome: timelog.OutcomeExpired},
		{ID: 1, StoppedAt: epoch.Add(-time.Hour), Length: 25 * time.Minute, Elapsed: 3 * time.Minute, Outcome: timelog.OutcomeStopped},
	}}

	h.press("l")
	require.True(t, h.m.ShowLogView)
	assert.Len(t, h.m.Logs, 2)
	view := h.m.View()
	assert.Contains(t, view, "[expired]")
	assert.Contains(t, view, "03:00 of 25:00")

	h.special(tea.KeyDown)
	assert.Equal(t, 1, h.m.LogViewScroll)
	h.special(tea.KeyDown)
	assert.Equal(t, 1, h.m.LogViewScroll)

	h.special(tea.KeyEsc)
	assert.False(t, h.m.ShowLogView)
}

func TestLogViewWithoutHistory(t *testing.T) {
	h := newHarness(t, 25)
	h.m.history = &stubHistory{err: errors.New("closed")}

	h.press("l")
	assert.True(t, h.m.ShowLogView)
	assert.Contains(t, h.m.View(), "No finished countdowns yet.")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00", formatDuration(0))
	assert.Equal(t, "25:00", formatDuration(25*time.Minute))
	assert.Equal(t, "1:02:03", formatDuration(time.Hour+2*time.Minute+3*time.Second))
}
