// Package logtest provides zap loggers for tests.
package logtest

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// Test returns a logger that writes through tb.
func Test(tb testing.TB) *zap.Logger {
	tb.Helper()
	return zaptest.NewLogger(tb, zaptest.Level(zapcore.DebugLevel))
}

// Observed returns a logger whose entries at or above lvl can be inspected.
func Observed(tb testing.TB, lvl zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	tb.Helper()
	core, logs := observer.New(lvl)
	return zap.New(core), logs
}
