// cmd/geoscope/jitter_test.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"math"
	"slices"
	"testing"

	"github.com/geoscope/geoscope/pkg/feature"

	"github.com/twpayne/go-geom"
)

func jitterLayer(t *testing.T) (*feature.Layer, *feature.Feature, *feature.Feature) {
	l := feature.NewLayer("tracks")
	line := feature.New("line", feature.NewLineString(geom.XY, 0, 0, 1, 0, 2, 0), nil)
	pt := feature.New("pt", feature.NewPoint(5, 5), nil)
	for _, f := range []*feature.Feature{line, pt} {
		if err := l.Add(f); err != nil {
			t.Fatal(err)
		}
	}
	return l, line, pt
}

func TestJitter(t *testing.T) {
	l, line, pt := jitterLayer(t)
	orig := slices.Clone(line.Geometry().(feature.LineString).FlatCoords())

	j := NewJitter(metersPerDegree, true, 3)
	if j.Amount != 1 {
		t.Errorf("expected 1 degree, got %f", j.Amount)
	}
	j.Step([]*feature.Layer{l})

	if !line.Dynamic() || pt.Dynamic() {
		t.Errorf("expected only the line to be mutated")
	}
	flat := line.Geometry().(feature.LineString).FlatCoords()
	moved := 0
	for i := 0; i < len(flat); i += 2 {
		dx, dy := flat[i]-orig[i], flat[i+1]-orig[i+1]
		if dx != 0 || dy != 0 {
			moved++
		}
		if math.Abs(dx) > 1 || math.Abs(dy) > 1 {
			t.Errorf("vertex %d moved by %f,%f", i/2, dx, dy)
		}
	}
	if moved != 1 {
		t.Errorf("expected one vertex moved, got %d", moved)
	}

	// The same seed replays the same moves.
	l2, line2, _ := jitterLayer(t)
	NewJitter(metersPerDegree, true, 3).Step([]*feature.Layer{l2})
	if !slices.Equal(flat, line2.Geometry().(feature.LineString).FlatCoords()) {
		t.Errorf("jitter not reproducible")
	}
}

type changeRecorder struct{ ids []string }

func (c *changeRecorder) HandleEvent(e feature.Event) {
	if e.Type == feature.EventChange {
		c.ids = append(c.ids, e.Feature.ID())
	}
}

func TestJitterVisitsEachLineOnce(t *testing.T) {
	order := func(seed uint64) []string {
		l := feature.NewLayer("tracks")
		for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
			if err := l.Add(feature.New(id, feature.NewLineString(geom.XY, 0, 0, 1, 1), nil)); err != nil {
				t.Fatal(err)
			}
		}
		var rec changeRecorder
		l.AddListener(&rec)
		NewJitter(10, true, seed).Step([]*feature.Layer{l})
		return rec.ids
	}

	for seed := range uint64(4) {
		ids := order(seed)
		sorted := slices.Sorted(slices.Values(ids))
		if !slices.Equal(sorted, []string{"a", "b", "c", "d", "e", "f"}) {
			t.Errorf("seed %d: expected each line changed once, got %v", seed, ids)
		}
		if again := order(seed); !slices.Equal(ids, again) {
			t.Errorf("seed %d: visit order not reproducible: %v vs %v", seed, ids, again)
		}
	}
}
