package internal

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"countdown/internal/handoff"
	"countdown/internal/timelog"
	"countdown/internal/timer"
	"countdown/internal/wake"
)

const logViewLimit = 50

// WakeMsg carries a fired wake onto the program loop.
type WakeMsg struct {
	Handle wake.Handle
}

type startMsg struct{}

// HistoryReader lists finished countdowns, newest first.
type HistoryReader interface {
	GetLogs(limit int) ([]timelog.TimeLog, error)
}

type Model struct {
	ctrl    *handoff.Controller
	ticks   *TickSource
	history HistoryReader
	log     *zap.SugaredLogger

	keys     keyMap
	help     help.Model
	progress progress.Model
	width    int

	// Minutes form state
	ShowMinutesForm bool
	minutes         textinput.Model

	// History viewer state
	ShowLogView   bool
	LogViewScroll int
	Logs          []timelog.TimeLog

	// Expired is set when the countdown ran out while the timer was away.
	Expired bool
	Err     error
}

// NewModel wires the view to a controller whose machine ticks from ticks.
// history may be nil.
func NewModel(ctrl *handoff.Controller, ticks *TickSource, history HistoryReader, log *zap.SugaredLogger) *Model {
	m := &Model{
		ctrl:     ctrl,
		ticks:    ticks,
		history:  history,
		log:      log,
		keys:     newKeyMap(),
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		minutes:  newMinutesInput(),
	}
	m.syncKeys()
	return m
}

func (m *Model) Init() tea.Cmd {
	return func() tea.Msg { return startMsg{} }
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case startMsg:
		if m.ctrl.CheckOverdue() {
			m.Expired = true
		}
		return m, m.resume()
	case tickMsg:
		cmd := m.ticks.handle(msg, m.ctrl.Machine())
		m.syncKeys()
		return m, cmd
	case finishMsg:
		m.ticks.finish(msg, m.ctrl.Machine())
		m.syncKeys()
		return m, nil
	case WakeMsg:
		if m.ctrl.DeliverWake(msg.Handle) {
			m.Expired = true
		}
		return m, nil
	case tea.BlurMsg:
		m.ctrl.Suspend()
		return m, nil
	case tea.FocusMsg, tea.ResumeMsg:
		return m, m.resume()
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.progress.Width = min(max(msg.Width-10, 10), 60)
		return m, nil
	}
	return m, nil
}

func (m *Model) View() string {
	if m.ShowLogView {
		return m.logView()
	}
	if m.ShowMinutesForm {
		return m.minutesFormView()
	}
	return m.mainView()
}

// Machine exposes the timer being shown.
func (m *Model) Machine() *timer.Machine {
	return m.ctrl.Machine()
}

func (m *Model) resume() tea.Cmd {
	snap := m.ctrl.Resume()
	if snap.State != timer.Stopped {
		m.Expired = false
	}
	m.syncKeys()
	return m.ticks.Cmd()
}

func (m *Model) syncKeys() {
	mc := m.ctrl.Machine()
	m.keys.apply(mc.Controls(), mc.State())
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.ctrl.Suspended() && !key.Matches(msg, m.keys.Quit) {
		// Keys arriving while the terminal reported lost focus mean it is back.
		cmds = append(cmds, m.resume())
	}

	switch {
	case m.ShowLogView:
		m.handleLogViewInput(msg)
		return m, tea.Batch(cmds...)
	case m.ShowMinutesForm:
		cmds = append(cmds, m.handleMinutesInput(msg))
		return m, tea.Batch(cmds...)
	}

	mc := m.ctrl.Machine()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.ctrl.Suspend()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Suspend):
		m.ctrl.Suspend()
		return m, tea.Suspend
	case key.Matches(msg, m.keys.Start):
		m.Expired = false
		m.Err = mc.Start()
	case key.Matches(msg, m.keys.Pause):
		m.Err = mc.Pause()
	case key.Matches(msg, m.keys.Stop):
		m.Err = mc.Stop()
	case key.Matches(msg, m.keys.Minutes):
		m.ShowMinutesForm = true
		m.minutes.Reset()
		m.Err = nil
		cmds = append(cmds, m.minutes.Focus())
	case key.Matches(msg, m.keys.History):
		m.openLogView()
	}
	if errors.Is(m.Err, timer.ErrInvalidTransition) {
		m.log.Debugw("ignored control", "key", msg.String(), "error", m.Err)
		m.Err = nil
	}

	m.syncKeys()
	cmds = append(cmds, m.ticks.Cmd())
	return m, tea.Batch(cmds...)
}

func (m *Model) openLogView() {
	m.ShowLogView = true
	m.LogViewScroll = 0
	m.Logs = nil
	if m.history == nil {
		return
	}
	logs, err := m.history.GetLogs(logViewLimit)
	if err != nil {
		m.log.Warnw("history unavailable", "error", err)
		return
	}
	m.Logs = logs
}

func (m *Model) handleLogViewInput(msg tea.KeyMsg) {
	switch msg.String() {
	case "ctrl+c", "q", "esc", "l":
		m.ShowLogView = false
		m.Logs = nil
	case "up", "k":
		if m.LogViewScroll > 0 {
			m.LogViewScroll--
		}
	case "down", "j":
		maxScroll := max(len(m.Logs)-1, 0)
		if m.LogViewScroll < maxScroll {
			m.LogViewScroll++
		}
	}
}

func newMinutesInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "→ Minutes: "
	ti.Placeholder = strconv.Itoa(25)
	ti.CharLimit = 4
	ti.PromptStyle = inputStyle
	ti.TextStyle = inputStyle
	ti.Validate = digitsOnly
	return ti
}

func digitsOnly(s string) error {
	for _, r := range s {
		if r < '0' || r > '9' {
			return errors.New("minutes are digits only")
		}
	}
	return nil
}

func (m *Model) closeMinutesForm() {
	m.ShowMinutesForm = false
	m.minutes.Blur()
	m.minutes.Reset()
	m.Err = nil
}

func (m *Model) handleMinutesInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.closeMinutesForm()
		return nil
	case "enter":
		minutes, err := strconv.Atoi(strings.TrimSpace(m.minutes.Value()))
		if err != nil {
			m.Err = errors.New("enter a number of minutes")
			return nil
		}
		if err := m.ctrl.SetMinutes(minutes); err != nil {
			m.Err = err
			return nil
		}
		m.closeMinutesForm()
		return nil
	}
	if msg.Type == tea.KeyRunes && digitsOnly(string(msg.Runes)) != nil {
		return nil
	}
	var cmd tea.Cmd
	m.minutes, cmd = m.minutes.Update(msg)
	return cmd
}
