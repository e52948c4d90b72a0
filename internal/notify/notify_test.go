package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"countdown/internal/prefs"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls []call
	out   string
	err   error
}

func (f *fakeRunner) run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	return []byte(f.out), f.err
}

func newDesktop(t *testing.T, kv prefs.KV, r *fakeRunner) *Desktop {
	t.Helper()
	d := NewDesktop(kv, zaptest.NewLogger(t).Sugar())
	d.run = r.run
	d.now = func() time.Time { return time.Date(2026, 1, 2, 15, 0, 0, 0, time.Local) }
	return d
}

func TestDesktopReplacesPreviousNotification(t *testing.T) {
	r := &fakeRunner{out: "17\n"}
	d := newDesktop(t, prefs.NewMemory(), r)

	wake := time.Date(2026, 1, 2, 15, 25, 0, 0, time.Local)
	require.NoError(t, d.ShowRunning(wake))
	require.NoError(t, d.ShowPaused())

	require.Len(t, r.calls, 2)
	first := strings.Join(r.calls[0].args, " ")
	assert.Equal(t, "notify-send", r.calls[0].name)
	assert.NotContains(t, first, "--replace-id")
	assert.Contains(t, first, "Ends at 15:25:00")
	assert.Contains(t, first, "from now")
	assert.Contains(t, strings.Join(r.calls[1].args, " "), "--replace-id=17")
}

func TestDesktopHideClosesAndForgets(t *testing.T) {
	kv := prefs.NewMemory()
	r := &fakeRunner{out: "9"}
	d := newDesktop(t, kv, r)

	require.NoError(t, d.Hide())
	assert.Empty(t, r.calls, "nothing shown, nothing to close")

	require.NoError(t, d.ShowExpired())
	require.NoError(t, d.Hide())
	require.Len(t, r.calls, 2)
	assert.Equal(t, "gdbus", r.calls[1].name)
	assert.Equal(t, "9", r.calls[1].args[len(r.calls[1].args)-1])

	require.NoError(t, d.Hide())
	assert.Len(t, r.calls, 2)
}

func TestDesktopIDSharedThroughStore(t *testing.T) {
	kv := prefs.NewMemory()
	r := &fakeRunner{out: "42"}
	require.NoError(t, newDesktop(t, kv, r).ShowExpired())

	// a second process closes what the first one showed
	r2 := &fakeRunner{}
	require.NoError(t, newDesktop(t, kv, r2).Hide())
	require.Len(t, r2.calls, 1)
	assert.Equal(t, "42", r2.calls[0].args[len(r2.calls[0].args)-1])
}

func TestDesktopErrors(t *testing.T) {
	r := &fakeRunner{err: errors.New("no bus")}
	d := newDesktop(t, prefs.NewMemory(), r)
	require.Error(t, d.ShowPaused())
}

func TestNewBackends(t *testing.T) {
	log := zaptest.NewLogger(t).Sugar()
	p, err := New("none", prefs.NewMemory(), log)
	require.NoError(t, err)
	assert.IsType(t, None{}, p)

	p, err = New("log", prefs.NewMemory(), log)
	require.NoError(t, err)
	require.NoError(t, p.ShowRunning(time.Now()))
	require.NoError(t, p.ShowPaused())
	require.NoError(t, p.ShowExpired())
	require.NoError(t, p.Hide())

	_, err = New("pager", prefs.NewMemory(), log)
	require.Error(t, err)
}
