package handoff

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"countdown/internal/prefs"
	"countdown/internal/timer"
)

func TestReconcile(t *testing.T) {
	const now = 1_700_000_100

	tests := []struct {
		name          string
		in            prefs.Persisted
		wantState     timer.State
		wantLength    int64
		wantRemaining int64
	}{
		{
			name:          "stopped uses configured length",
			in:            prefs.Persisted{TimerLengthMinutes: 25, PreviousTimerLengthSeconds: 60, SecondsRemaining: 12},
			wantState:     timer.Stopped,
			wantLength:    1500,
			wantRemaining: 1500,
		},
		{
			name:          "stopped ignores a leftover alarm",
			in:            prefs.Persisted{TimerLengthMinutes: 1, AlarmSetTime: now - 500},
			wantState:     timer.Stopped,
			wantLength:    60,
			wantRemaining: 60,
		},
		{
			name: "running charges time since alarm",
			in: prefs.Persisted{
				TimerLengthMinutes: 5, PreviousTimerLengthSeconds: 1500, SecondsRemaining: 1000,
				State: timer.Running, AlarmSetTime: now - 40, RunningSince: now - 900,
			},
			wantState:     timer.Running,
			wantLength:    1500,
			wantRemaining: 960,
		},
		{
			name: "running without alarm charges time since ticking began",
			in: prefs.Persisted{
				TimerLengthMinutes: 25, PreviousTimerLengthSeconds: 1500, SecondsRemaining: 1500,
				State: timer.Running, RunningSince: now - 30,
			},
			wantState:     timer.Running,
			wantLength:    1500,
			wantRemaining: 1470,
		},
		{
			name: "paused is not charged",
			in: prefs.Persisted{
				TimerLengthMinutes: 25, PreviousTimerLengthSeconds: 1500, SecondsRemaining: 700,
				State: timer.Paused, RunningSince: now - 30,
			},
			wantState:     timer.Paused,
			wantLength:    1500,
			wantRemaining: 700,
		},
		{
			name: "clock moved backwards",
			in: prefs.Persisted{
				TimerLengthMinutes: 25, PreviousTimerLengthSeconds: 1500, SecondsRemaining: 800,
				State: timer.Running, AlarmSetTime: now + 3600,
			},
			wantState:     timer.Running,
			wantLength:    1500,
			wantRemaining: 800,
		},
		{
			name: "expired while away",
			in: prefs.Persisted{
				TimerLengthMinutes: 1, PreviousTimerLengthSeconds: 60, SecondsRemaining: 60,
				State: timer.Running, AlarmSetTime: now - 61,
			},
			wantState:     timer.Running,
			wantLength:    60,
			wantRemaining: -1,
		},
		{
			name: "missing previous length falls back to configured",
			in: prefs.Persisted{
				TimerLengthMinutes: 2, SecondsRemaining: 500, State: timer.Paused,
			},
			wantState:     timer.Paused,
			wantLength:    120,
			wantRemaining: 120,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(tt.in, now)
			assert.Equal(t, tt.wantState, got.State)
			assert.Equal(t, tt.wantLength, got.LengthSeconds)
			assert.Equal(t, tt.wantRemaining, got.SecondsRemaining)
		})
	}
}
