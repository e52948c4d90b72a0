// Package notify shows the timer's out-of-foreground notifications.
package notify

import (
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"countdown/internal/prefs"
)

// Presenter shows one timer notification at a time; every call replaces the
// previous notification.
type Presenter interface {
	ShowRunning(wakeUpTime time.Time) error
	ShowPaused() error
	ShowExpired() error
	Hide() error
}

// New selects a presenter by backend name. "desktop" falls back to "log" when
// notify-send is not installed.
func New(backend string, kv prefs.KV, log *zap.SugaredLogger) (Presenter, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "desktop":
		if _, err := exec.LookPath("notify-send"); err != nil {
			log.Warnw("notify-send not found, logging notifications instead", "error", err)
			return NewLog(log), nil
		}
		return NewDesktop(kv, log), nil
	case "log":
		return NewLog(log), nil
	case "none", "":
		return None{}, nil
	}
	return nil, fmt.Errorf("unknown notification backend %q", backend)
}

// None discards notifications.
type None struct{}

func (None) ShowRunning(time.Time) error { return nil }
func (None) ShowPaused() error           { return nil }
func (None) ShowExpired() error          { return nil }
func (None) Hide() error                 { return nil }

// Log writes notifications to the log instead of the desktop.
type Log struct {
	log *zap.SugaredLogger
}

func NewLog(log *zap.SugaredLogger) *Log {
	return &Log{log: log}
}

func (l *Log) ShowRunning(wakeUpTime time.Time) error {
	l.log.Infow("notification", "kind", "running", "ends_at", wakeUpTime.Format(time.RFC3339))
	return nil
}

func (l *Log) ShowPaused() error {
	l.log.Infow("notification", "kind", "paused")
	return nil
}

func (l *Log) ShowExpired() error {
	l.log.Infow("notification", "kind", "expired")
	return nil
}

func (l *Log) Hide() error {
	l.log.Debugw("notification", "kind", "hidden")
	return nil
}
