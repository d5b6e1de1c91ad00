package emu

import (
	"context"
	"log/slog"
)

// LevelTrace is the slog level used for per-instruction execution traces.
const LevelTrace slog.Level = slog.LevelDebug - 4

// Trace logs msg at LevelTrace on logger.
func Trace(logger *slog.Logger, msg string, args ...any) {
	logger.Log(context.Background(), LevelTrace, msg, args...)
}

// TraceEnabled reports whether logger emits LevelTrace records.
func TraceEnabled(logger *slog.Logger) bool {
	return logger.Enabled(context.Background(), LevelTrace)
}
