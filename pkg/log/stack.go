// pkg/log/stack.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// Frame identifies one caller in a logged call stack.
type Frame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

// Callstack returns the callers of the function that is logging. It stops
// at main or the test harness.
func Callstack() []Frame {
	var pcs [16]uintptr
	n := runtime.Callers(3, pcs[:])
	if n == 0 {
		return nil
	}

	var stack []Frame
	for it := runtime.CallersFrames(pcs[:n]); ; {
		f, more := it.Next()
		stack = append(stack, Frame{
			File:     filepath.Base(f.File),
			Line:     f.Line,
			Function: shortFunction(f.Function),
		})
		if !more || f.Function == "main.main" || strings.HasPrefix(f.Function, "testing.") {
			return stack
		}
	}
}

// shortFunction strips the import path, e.g. "scene.(*Context).Tick".
func shortFunction(fn string) string {
	if i := strings.LastIndexByte(fn, '/'); i >= 0 {
		fn = fn[i+1:]
	}
	return strings.TrimPrefix(fn, "main.")
}

func (f Frame) String() string {
	return fmt.Sprintf("%s:%d:%s", f.File, f.Line, f.Function)
}
