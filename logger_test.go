// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package jfa

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerDefaultsToNop(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger returned nil")
	}
	l.Info("discarded")
	if l.Enabled(context.Background(), slog.LevelError) {
		t.Error("nop logger reports enabled")
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer SetLogger(nil)

	Logger().Info("outline ready", "cameras", 2)
	if !strings.Contains(buf.String(), "outline ready") {
		t.Errorf("log output missing message: %q", buf.String())
	}
}

func TestSetLoggerNilRestoresNop(t *testing.T) {
	SetLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("nil SetLogger did not restore the nop logger")
	}
}
