// Package logger wraps zap construction so both binaries build their
// structured logger the same way.
package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// Logger holds the process-wide zap logger.
type Logger struct {
	// Log is a no-op logger until Init succeeds.
	Log *zap.Logger
}

// New returns a Logger backed by a no-op zap logger.
func New() *Logger {
	return &Logger{Log: zap.NewNop()}
}

// Init replaces Log with a production logger at the given level
// ("debug", "info", "warn", "error").
func (l *Logger) Init(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl

	zl, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	l.Log = zl
	return nil
}

// OrNop returns log, or a no-op logger when log is nil.
func OrNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
