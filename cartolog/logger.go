// Package cartolog provides the process-wide logger used by cartograph.
//
// Logging is disabled by default (a zero-cost nop handler) and can be
// enabled by the host application with SetLogger. The renderer logs at
// Warn when it skips a layer whose datasource query failed, writes no
// per-layer timing lines, and never logs in the per-edge/per-pixel hot
// path.
package cartolog

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }

func newNopLogger() *slog.Logger {
	return slog.New(nopHandler{})
}

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger installs l as the process-wide logger. A nil l restores the
// no-op logger.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
		loggerPtr.Store(l)
		return
	}
	loggerPtr.Store(l)
}

// Logger returns the currently installed process-wide logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
