// cmd/geoscope/main_test.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/geoscope/geoscope/pkg/proj"
	"github.com/geoscope/geoscope/pkg/renderer"
)

func TestParseConfig(t *testing.T) {
	config, err := ParseConfig([]byte(`{"projection": "EPSG:900913", "scene": {"bearing_segments": 12}}`))
	if err != nil {
		t.Fatal(err)
	}
	if config.Projection != "EPSG:900913" || config.Scene.BearingSegments != 12 {
		t.Errorf("overrides not applied: %+v", config)
	}
	if config.FrameRate != 30 || config.Scene.EllipseSegments != 64 {
		t.Errorf("defaults lost: %+v", config)
	}

	for _, test := range []struct {
		json string
		err  string
	}{
		{json: `{"projecton": "EPSG:3857"}`, err: "misspelled"},
		{json: `{"projection": "EPSG:27700"}`, err: "projection"},
		{json: `{"scene": {"ellipse_segments": 2}}`, err: "scene"},
		{json: `{"frame_rate": "fast"}`, err: "frame_rate"},
		{json: `{"camera": {"latitude": 100}}`, err: "latitude"},
	} {
		if _, err := ParseConfig([]byte(test.json)); err == nil {
			t.Errorf("%s: expected an error", test.json)
		} else if !strings.Contains(err.Error(), test.err) {
			t.Errorf("%s: expected error mentioning %q, got %v", test.json, test.err, err)
		}
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig("", nil)
	if err != nil {
		t.Fatal(err)
	}
	if proj.Code(config.Projection) != proj.EPSG4326 {
		t.Errorf("unexpected default projection %q", config.Projection)
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"), nil); err == nil {
		t.Errorf("expected error for missing file")
	}
}

const testLayer = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "route",
     "geometry": {"type": "LineString", "coordinates": [[-71, 42], [-72, 42.5], [-73, 43]]},
     "properties": {"stroke": "#ff0000", "stroke-width": 3}},
    {"type": "Feature", "id": "area",
     "geometry": {"type": "Polygon", "coordinates": [[[-71, 42], [-70, 42], [-70, 43], [-71, 42]]]},
     "properties": {}}
  ]
}`

func TestRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routes.geojson")
	if err := os.WriteFile(path, []byte(testLayer), 0o644); err != nil {
		t.Fatal(err)
	}

	layers, err := loadLayers([]string{path}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(layers) != 1 || layers[0].Len() != 2 || layers[0].Name != "routes" {
		t.Fatalf("unexpected layers %+v", layers)
	}

	if _, err := loadLayers([]string{filepath.Join(dir, "missing.geojson")}, nil); err == nil {
		t.Errorf("expected error for missing layer")
	}

	*dumpFile = filepath.Join(dir, "scene.msgpack.zst")
	*frames = 3
	defer func() { *dumpFile, *frames = "", 1 }()
	if err := run(context.Background(), DefaultConfig(), []string{path}, layers, nil); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(*dumpFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	s, err := renderer.DecodeSnapshot(f)
	if err != nil {
		t.Fatal(err)
	}
	// The route's polyline plus the area's fill and outline.
	if len(s.Primitives) != 3 {
		t.Errorf("expected 3 primitives in snapshot, got %d", len(s.Primitives))
	}
}

func TestRunJitter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routes.geojson")
	if err := os.WriteFile(path, []byte(testLayer), 0o644); err != nil {
		t.Fatal(err)
	}
	layers, err := loadLayers([]string{path}, nil)
	if err != nil {
		t.Fatal(err)
	}

	*dumpFile = filepath.Join(dir, "scene.msgpack.zst")
	*frames = 5
	*jitter = 100
	defer func() { *dumpFile, *frames, *jitter = "", 1, 0 }()
	if err := run(context.Background(), DefaultConfig(), []string{path}, layers, nil); err != nil {
		t.Fatal(err)
	}

	if !layers[0].Feature("route").Dynamic() {
		t.Errorf("route not animated")
	}
	f, err := os.Open(*dumpFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	s, err := renderer.DecodeSnapshot(f)
	if err != nil {
		t.Fatal(err)
	}
	// The animated route is drawn as two segments.
	if len(s.Primitives) != 4 {
		t.Errorf("expected 4 primitives in snapshot, got %d", len(s.Primitives))
	}
}
