package testutil

import (
	"bytes"
	"log/slog"
	"testing"
)

// tWriter forwards each log line to t.Log.
type tWriter struct {
	t testing.TB
}

func (w tWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(bytes.TrimRight(p, "\n")))
	return len(p), nil
}

// Logger returns a debug-level logger whose output shows up in the test log
// (visible with -v or on failure).
func Logger(t testing.TB) *slog.Logger {
	return slog.New(slog.NewTextHandler(tWriter{t: t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
