package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Default rotation settings, applied when a Config field is zero.
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 7
)

// Config describes where log records go. The terminal belongs to the UI, so
// records are written to File only; an empty File discards them.
type Config struct {
	File       string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// New builds a JSON zap logger over a lumberjack-rotated file.
func New(c Config) (*zap.SugaredLogger, error) {
	if c.File == "" {
		return zap.NewNop().Sugar(), nil
	}
	level, err := zapcore.ParseLevel(valOrString(c.Level, "info"))
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	w := &lj.Logger{
		Filename:   c.File,
		MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.Compress,
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), zap.NewAtomicLevelAt(level))
	return zap.New(core).Sugar(), nil
}

func valOr(v int, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func valOrString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
