package notify

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"countdown/internal/prefs"
)

// KeyNotificationID remembers the shown notification so a later process can
// replace or close it.
const KeyNotificationID = "notification_id"

const commandTimeout = 5 * time.Second

// Runner executes an external command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Desktop shows freedesktop notifications through notify-send and closes them
// over D-Bus with gdbus.
type Desktop struct {
	kv  prefs.KV
	log *zap.SugaredLogger
	run Runner
	now func() time.Time
}

func NewDesktop(kv prefs.KV, log *zap.SugaredLogger) *Desktop {
	return &Desktop{kv: kv, log: log, run: execRunner, now: time.Now}
}

func (d *Desktop) ShowRunning(wakeUpTime time.Time) error {
	body := fmt.Sprintf("Ends at %s (%s)",
		wakeUpTime.Format("15:04:05"),
		humanize.RelTime(wakeUpTime, d.now(), "ago", "from now"))
	return d.show("Timer is running", body, "normal")
}

func (d *Desktop) ShowPaused() error {
	return d.show("Timer is paused", "Resume?", "low")
}

func (d *Desktop) ShowExpired() error {
	return d.show("Timer expired!", "Start again?", "critical")
}

func (d *Desktop) Hide() error {
	id := d.id()
	if id == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	_, err := d.run(ctx, "gdbus", "call", "--session",
		"--dest", "org.freedesktop.Notifications",
		"--object-path", "/org/freedesktop/Notifications",
		"--method", "org.freedesktop.Notifications.CloseNotification", id)
	d.setID("")
	if err != nil {
		return fmt.Errorf("close notification %s: %w", id, err)
	}
	return nil
}

func (d *Desktop) show(title, body, urgency string) error {
	args := []string{"--app-name=countdown", "--urgency=" + urgency, "--print-id"}
	if id := d.id(); id != "" {
		args = append(args, "--replace-id="+id)
	}
	args = append(args, title, body)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	out, err := d.run(ctx, "notify-send", args...)
	if err != nil {
		return fmt.Errorf("notify-send: %w", err)
	}
	d.setID(strings.TrimSpace(string(out)))
	return nil
}

func (d *Desktop) id() string {
	v, _, err := d.kv.Get(KeyNotificationID)
	if err != nil {
		d.log.Debugw("notification id unreadable", "error", err)
		return ""
	}
	return v
}

func (d *Desktop) setID(id string) {
	if err := d.kv.Set(KeyNotificationID, id); err != nil {
		d.log.Debugw("notification id not saved", "error", err)
	}
}
