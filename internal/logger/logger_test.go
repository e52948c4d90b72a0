package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "countdown.log")
	log, err := New(Config{File: path, Level: "debug"})
	require.NoError(t, err)

	log.Infow("timer started", "seconds", 1500)
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"timer started"`)
	assert.Contains(t, string(data), `"seconds":1500`)
}

func TestNewRespectsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "countdown.log")
	log, err := New(Config{File: path, Level: "warn"})
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{File: filepath.Join(t.TempDir(), "x.log"), Level: "loud"})
	require.Error(t, err)
}

func TestNewWithoutFileIsNop(t *testing.T) {
	log, err := New(Config{})
	require.NoError(t, err)
	log.Info("discarded")
}

func TestValOr(t *testing.T) {
	assert.Equal(t, 10, valOr(0, 10))
	assert.Equal(t, 10, valOr(-1, 10))
	assert.Equal(t, 4, valOr(4, 10))
}
