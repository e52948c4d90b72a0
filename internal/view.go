package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"countdown/internal/timelog"
	"countdown/internal/timer"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			Align(lipgloss.Center)

	timerDisplayStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("69")).
				Bold(true)

	timerRunningStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")).
				Bold(true)

	expiredStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	logHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	logTagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	logTimeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	inactiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)
)

func formatDuration(d time.Duration) string {
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

func (m *Model) mainView() string {
	mc := m.ctrl.Machine()
	snap := mc.Snapshot()

	display := timerDisplayStyle.Render(mc.Display())
	status := inactiveStyle.Render("Stopped")
	switch snap.State {
	case timer.Running:
		display = timerRunningStyle.Render(mc.Display())
		status = timerRunningStyle.Render("Running")
	case timer.Paused:
		status = pausedStyle.Render("Paused")
	}

	var sb strings.Builder
	sb.WriteString(display)
	sb.WriteString("\n\n")
	sb.WriteString(m.progress.ViewAs(mc.Progress()))
	sb.WriteString(fmt.Sprintf("\n\n%s\n", status))
	sb.WriteString(fmt.Sprintf("Length: %s\n", formatDuration(time.Duration(snap.LengthSeconds)*time.Second)))
	if m.Expired {
		sb.WriteString("\n")
		sb.WriteString(expiredStyle.Render("Time's up"))
		sb.WriteString("\n")
	}

	var out strings.Builder
	out.WriteString(titleStyle.Width(60).Render("Countdown"))
	out.WriteString("\n\n")
	out.WriteString(boxStyle.Width(56).Render(sb.String()))
	out.WriteString("\n\n")
	if m.Err != nil {
		out.WriteString(errorStyle.Render(m.Err.Error()))
		out.WriteString("\n")
	}
	out.WriteString(m.help.View(m.keys))
	return out.String()
}

func (m *Model) minutesFormView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Width(60).Render("Timer Length"))
	sb.WriteString("\n\n")

	form := fmt.Sprintf("%s\n\n%s",
		m.minutes.View(),
		helpStyle.Render("Enter: Save | Esc: Cancel"),
	)
	if m.Err != nil {
		form += "\n\n" + errorStyle.Render(m.Err.Error())
	}
	sb.WriteString(boxStyle.Width(40).Render(form))
	return sb.String()
}

func (m *Model) logView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Width(60).Render("History"))
	sb.WriteString("\n\n")

	if len(m.Logs) == 0 {
		sb.WriteString(inactiveStyle.Render("No finished countdowns yet."))
	} else {
		sb.WriteString(logHeaderStyle.Render(fmt.Sprintf("%d entries", len(m.Logs))))
		sb.WriteString("\n")
		end := min(m.LogViewScroll+10, len(m.Logs))
		for _, l := range m.Logs[m.LogViewScroll:end] {
			sb.WriteString(formatLogEntry(l))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Up/Down: Scroll | Esc: Back"))
	return sb.String()
}

func formatLogEntry(l timelog.TimeLog) string {
	timeStr := logTimeStyle.Render(l.StoppedAt.Local().Format("Jan 02 15:04"))
	return fmt.Sprintf("  %s  %s of %s %s",
		timeStr,
		formatDuration(l.Elapsed),
		formatDuration(l.Length),
		logTagStyle.Render("["+string(l.Outcome)+"]"),
	)
}
