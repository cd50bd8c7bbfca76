// cmd/geoscope/watch_test.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/geoscope/geoscope/pkg/proj"
	"github.com/geoscope/geoscope/pkg/renderer"
	"github.com/geoscope/geoscope/pkg/scene"
)

func writeLayer(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLayerWatcher(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.geojson"), filepath.Join(dir, "b.geojson")
	writeLayer(t, a, testLayer)
	writeLayer(t, b, testLayer)

	w, err := NewLayerWatcher([]string{a, b}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	// Unrelated files in the directory are ignored.
	writeLayer(t, filepath.Join(dir, "notes.txt"), "hello")
	writeLayer(t, b, testLayer)

	select {
	case i := <-w.Changed:
		if i != 1 {
			t.Errorf("expected layer 1 to change, got %d", i)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no change reported")
	}
}

func TestReloadLayer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routes.geojson")
	writeLayer(t, path, testLayer)
	layers, err := loadLayers([]string{path}, nil)
	if err != nil {
		t.Fatal(err)
	}
	l := layers[0]
	route := l.Feature("route")

	globe := renderer.NewGlobe(nil)
	c, err := scene.NewContext(l, globe, proj.NewStaticProvider(proj.EPSG4326), scene.DefaultConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	c.Sync()

	// The route is restyled and the area removed.
	edited := strings.Replace(testLayer, `"stroke-width": 3`, `"stroke-width": 6`, 1)
	edited = edited[:strings.Index(edited, `,
    {"type": "Feature", "id": "area"`)] + "\n  ]\n}"
	writeLayer(t, path, edited)
	reloadLayer(path, l, nil)

	if l.Len() != 1 || l.Feature("route") != route {
		t.Fatalf("expected the route to be kept and the area removed")
	}
	if s := c.Stats(); s.InPlaceUpdates != 1 || s.Deletes != 1 {
		t.Errorf("unexpected stats %+v", s)
	}
	e := c.Registry().Get(scene.Key{Feature: "route"})
	if pl := e.Handles[0].Primitive().(*renderer.Polyline); pl.Width != 6 {
		t.Errorf("route not restyled: width %f", pl.Width)
	}
	if err := c.CheckConsistency(); err != nil {
		t.Error(err)
	}

	// A broken file leaves the layer alone.
	writeLayer(t, path, `{"type": "FeatureCollection", "features": [`)
	reloadLayer(path, l, nil)
	if l.Len() != 1 {
		t.Errorf("layer changed by unreadable file")
	}
}

func TestRunWatchStops(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routes.geojson")
	writeLayer(t, path, testLayer)
	layers, err := loadLayers([]string{path}, nil)
	if err != nil {
		t.Fatal(err)
	}

	*watch = true
	*dumpFile = filepath.Join(dir, "scene.msgpack.zst")
	defer func() { *watch, *dumpFile = false, "" }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := run(ctx, DefaultConfig(), []string{path}, layers, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(*dumpFile); err != nil {
		t.Errorf("snapshot not written: %v", err)
	}
}
