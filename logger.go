// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package jfa

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all records.
// Enabled returns false so callers skip message formatting entirely,
// keeping disabled logging effectively free.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so
// SetLogger can race with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for jfa and its subpackages. By
// default jfa produces no log output. Pass nil to restore the silent
// default.
//
// Levels used:
//   - [slog.LevelDebug]: per-frame diagnostics (skipped cameras,
//     pass resolutions, flood iteration counts)
//   - [slog.LevelInfo]: resource bundle recreation
//   - [slog.LevelWarn]: non-fatal issues (GPU fallback to CPU)
//
// SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. Subpackages call this to share
// the configuration without import cycles.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
