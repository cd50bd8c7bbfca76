// pkg/util/util_test.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestErrorLogger(t *testing.T) {
	var e ErrorLogger
	if e.HaveErrors() || e.Err() != nil {
		t.Fatalf("fresh ErrorLogger reports errors")
	}

	e.Push("layer.geojson")
	e.Push("feature 3")
	e.ErrorString("bad color %q", "#12")
	e.Pop()
	e.Error(errors.New("no features"))
	e.Pop()

	if e.CurrentDepth() != 0 {
		t.Errorf("expected depth 0, got %d", e.CurrentDepth())
	}
	expected := "layer.geojson / feature 3: bad color \"#12\"\nlayer.geojson: no features"
	if e.String() != expected {
		t.Errorf("got %q, expected %q", e.String(), expected)
	}
	if err := e.Err(); err == nil || !strings.Contains(err.Error(), "no features") {
		t.Errorf("Err() = %v", err)
	}
}

func TestCheckDepthPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for unbalanced Push")
		}
	}()

	var e ErrorLogger
	func() {
		defer e.CheckDepth(e.CurrentDepth())
		e.Push("unbalanced")
	}()
}

func TestUnmarshalJSON(t *testing.T) {
	type T struct {
		A int `json:"a"`
	}
	var v T
	err := UnmarshalJSON([]byte("{\n  \"a\": \"x\"\n}"), &v)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected error on line 2, got %v", err)
	}

	err = UnmarshalJSON([]byte("{\n\n  \"a\": 1,\n}"), &v)
	if err == nil || !strings.Contains(err.Error(), "line 4") {
		t.Errorf("expected syntax error on line 4, got %v", err)
	}

	if err := UnmarshalJSON([]byte(`{"a": 12}`), &v); err != nil || v.A != 12 {
		t.Errorf("got %+v, %v", v, err)
	}
}

func TestCheckJSON(t *testing.T) {
	type Inner struct {
		Width float32 `json:"width"`
	}
	type Config struct {
		Name   string           `json:"name"`
		Count  int              `json:"count,omitempty"`
		Inner  *Inner           `json:"inner"`
		Layers []string         `json:"layers"`
		Colors map[string]Inner `json:"colors"`
	}

	var e ErrorLogger
	CheckJSON[Config]([]byte(`{"name": "x", "count": 3, "inner": {"width": 2}, "layers": ["a"], "colors": {"red": {"width": 1}}}`), &e)
	if e.HaveErrors() {
		t.Errorf("unexpected errors: %s", e.String())
	}

	e = ErrorLogger{}
	CheckJSON[Config]([]byte(`{"nmae": "x", "count": "3", "inner": {"widht": 2}, "layers": [1]}`), &e)
	lines := strings.Split(e.String(), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 errors, got %q", lines)
	}
	for _, s := range []string{"count: string value", "inner: The entry \"widht\"", "layers / [0]: float64 value",
		"The entry \"nmae\""} {
		if !slices.ContainsFunc(lines, func(l string) bool { return strings.Contains(l, s) }) {
			t.Errorf("missing error containing %q in %q", s, lines)
		}
	}
}

func TestSortedMapKeys(t *testing.T) {
	if k := SortedMapKeys(map[string]int{"c": 1, "a": 2, "b": 3}); !slices.Equal(k, []string{"a", "b", "c"}) {
		t.Errorf("SortedMapKeys returned %v", k)
	}
	if k := SortedMapKeys(map[int]bool{}); len(k) != 0 {
		t.Errorf("SortedMapKeys of an empty map returned %v", k)
	}
}
