// pkg/log/log_test.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, tc := range []struct {
		s   string
		lvl slog.Level
		ok  bool
	}{
		{"debug", slog.LevelDebug, true},
		{"info", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	} {
		lvl, ok := ParseLevel(tc.s)
		if lvl != tc.lvl || ok != tc.ok {
			t.Errorf("%s: got (%v, %v), expected (%v, %v)", tc.s, lvl, ok, tc.lvl, tc.ok)
		}
	}
}

func TestNilLogger(t *testing.T) {
	var lg *Logger
	// None of these should crash.
	lg.Debug("debug")
	lg.Debugf("debug %d", 1)
	lg.Info("info")
	lg.Infof("info %d", 1)
	if lg.With("a", 1) != nil {
		t.Errorf("With on nil logger should return nil")
	}
}

func TestNewWritesLogFile(t *testing.T) {
	dir := t.TempDir()
	lg := New("debug", dir)
	lg.Debug("synchronizing", slog.String("feature", "f1"))

	b, err := os.ReadFile(filepath.Join(dir, "geoscope.slog"))
	if err != nil {
		t.Fatalf("unable to read log file: %v", err)
	}
	if !strings.Contains(string(b), "synchronizing") {
		t.Errorf("log file doesn't contain the debug message")
	}
	if !strings.Contains(string(b), "callstack") {
		t.Errorf("log records should include a callstack")
	}
}

func TestCallstack(t *testing.T) {
	fr := Callstack()
	if len(fr) == 0 {
		t.Fatalf("empty callstack")
	}
	for _, f := range fr {
		if f.File == "" || f.Line == 0 {
			t.Errorf("incomplete stack frame %+v", f)
		}
	}
	if last := fr[len(fr)-1]; !strings.HasPrefix(last.Function, "testing.") {
		t.Errorf("expected the stack to end in the test harness, got %s", last)
	}
}
