// pkg/feature/feature_test.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package feature

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/twpayne/go-geom"
)

type recorder struct {
	events []string
}

func (r *recorder) HandleEvent(e Event) {
	r.events = append(r.events, e.Type.String()+":"+e.Feature.ID())
}

func TestLayerEvents(t *testing.T) {
	l := NewLayer("test")
	var r recorder
	l.AddListener(&r)

	a := New("a", NewPoint(1, 2), nil)
	b := New("b", NewLineString(geom.XY, 0, 0, 1, 1), nil)
	if err := l.Add(a); err != nil {
		t.Fatal(err)
	}
	if err := l.Add(b); err != nil {
		t.Fatal(err)
	}
	if err := l.Add(New("a", NewPoint(0, 0), nil)); !errors.Is(err, ErrDuplicateFeature) {
		t.Errorf("expected ErrDuplicateFeature, got %v", err)
	}
	if err := NewLayer("other").Add(a); !errors.Is(err, ErrFeatureInLayer) {
		t.Errorf("expected ErrFeatureInLayer, got %v", err)
	}

	a.SetStyle(DefaultStyle())
	b.MutateGeometry(func(g Geometry) Geometry {
		g.(LineString).FlatCoords()[2] = 5
		return nil
	})
	if !b.Dynamic() {
		t.Errorf("MutateGeometry should mark the feature dynamic")
	}
	b.SetGeometry(NewLineString(geom.XY, 0, 0, 2, 2))
	if b.Dynamic() {
		t.Errorf("SetGeometry should clear the dynamic flag")
	}
	if !l.Remove("a") || l.Remove("a") {
		t.Errorf("unexpected Remove results")
	}
	l.Clear()

	expected := []string{"add:a", "add:b", "style-change:a", "change:b", "change:b", "remove:a", "remove:b"}
	if !slices.Equal(r.events, expected) {
		t.Errorf("got events %v, expected %v", r.events, expected)
	}
	if l.Len() != 0 || a.Layer() != nil {
		t.Errorf("layer not empty after Clear")
	}

	// Changes to features no longer in a layer are not reported.
	l.RemoveListener(&r)
	a.SetStyle(nil)
	if len(r.events) != len(expected) {
		t.Errorf("unexpected events after removal: %v", r.events[len(expected):])
	}
}

func TestMerge(t *testing.T) {
	l := NewLayer("test")
	a := New("a", NewPoint(1, 2), nil)
	b := New("b", NewLineString(geom.XY, 0, 0, 1, 1), nil)
	c := New("c", NewPoint(5, 5), DefaultStyle())
	for _, f := range []*Feature{a, b, c} {
		if err := l.Add(f); err != nil {
			t.Fatal(err)
		}
	}
	var r recorder
	l.AddListener(&r)

	src := NewLayer("reloaded")
	for _, f := range []*Feature{
		New("a", NewPoint(1, 2), nil),
		New("b", NewLineString(geom.XY, 0, 0, 3, 3), nil),
		New("c", NewPoint(5, 5), nil),
		New("d", NewPoint(7, 7), nil),
	} {
		if err := src.Add(f); err != nil {
			t.Fatal(err)
		}
	}
	src.Feature("d").SetProperty("name", "new")
	srcRevision := src.Feature("b").Revision()

	l.Merge(src)
	expected := []string{"change:b", "style-change:c", "add:d"}
	if !slices.Equal(r.events, expected) {
		t.Errorf("got events %v, expected %v", r.events, expected)
	}
	if l.Feature("b") != b || l.Feature("c") != c {
		t.Errorf("merged features lost their identity")
	}
	d := l.Feature("d")
	if d == nil || d == src.Feature("d") || d.Layer() != l {
		t.Fatalf("new feature not copied into the layer")
	}
	if v, _ := d.Property("name"); v != "new" {
		t.Errorf("properties not copied: %v", v)
	}
	if src.Len() != 4 || src.Feature("b").Revision() != srcRevision {
		t.Errorf("source layer modified")
	}

	// The geometry is copied, not shared.
	b.MutateGeometry(func(g Geometry) Geometry {
		g.(LineString).FlatCoords()[0] = 9
		return nil
	})
	if src.Feature("b").Geometry().(LineString).FlatCoords()[0] != 0 {
		t.Errorf("merged geometry aliases the source")
	}

	r.events = nil
	l.Merge(NewLayer("empty"))
	if l.Len() != 0 || len(r.events) != 4 {
		t.Errorf("expected everything removed, got %v", r.events)
	}
}

func TestWalkAndClone(t *testing.T) {
	g := Collection{
		NewPoint(1, 2, 3),
		Collection{NewPoint(4, 5), NewLineString(geom.XY, 0, 0, 1, 1)},
		Ellipse{Center: geom.Coord{1, 2}, SemiMajor: 10, SemiMinor: 5},
	}

	var kinds []Kind
	var idx []int
	Walk(g, func(i int, m Geometry) {
		idx = append(idx, i)
		kinds = append(kinds, m.Kind())
	})
	if !slices.Equal(idx, []int{0, 1, 2, 3, 4, 5}) {
		t.Errorf("unexpected indices %v", idx)
	}
	expected := []Kind{KindCollection, KindPoint, KindCollection, KindPoint, KindLineString, KindEllipse}
	if !slices.Equal(kinds, expected) {
		t.Errorf("got kinds %v, expected %v", kinds, expected)
	}

	c := Clone(g).(Collection)
	c[0].(Point).FlatCoords()[2] = 100
	c[2].(Ellipse).Center[0] = 100
	if g[0].(Point).Z() != 3 || g[2].(Ellipse).Center[0] != 1 {
		t.Errorf("Clone shares coordinates with the original")
	}
}

func TestBearingLine(t *testing.T) {
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := BearingLine{Origin: geom.Coord{0, 0}, Bearing: 90, Range: 1000, Rate: 6, Epoch: epoch}
	if h := b.BearingAt(epoch.Add(10 * time.Second)); h != 150 {
		t.Errorf("expected bearing 150, got %f", h)
	}
	b.Rate = 0
	if h := b.BearingAt(epoch.Add(time.Hour)); h != 90 {
		t.Errorf("expected fixed bearing 90, got %f", h)
	}
	if !New("b", b, nil).Dynamic() {
		t.Errorf("bearing lines are always dynamic")
	}
}

const testGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "pin",
     "geometry": {"type": "Point", "coordinates": [-122.4, 37.8, 50]},
     "properties": {"marker-url": "icons/pin.png", "marker-size": "large", "title": "SF"}},
    {"type": "Feature", "id": 7,
     "geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]},
     "properties": {"stroke": "#ff0000", "stroke-width": 3}},
    {"type": "Feature",
     "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [1, 0], [1, 1], [0, 0]]]},
     "properties": null},
    {"type": "Feature", "id": "empty", "geometry": null, "properties": {}},
    {"type": "Feature", "id": "gc",
     "geometry": {"type": "GeometryCollection", "geometries": [
       {"type": "Point", "coordinates": [1, 2]},
       {"type": "LineString", "coordinates": [[1, 2], [3, 4]]}]},
     "properties": {"fill": "#00ff00", "fill-opacity": 0.5, "extrude": 100}}
  ]
}`

func TestLoadGeoJSON(t *testing.T) {
	fsys := fstest.MapFS{
		"layers/test.geojson":  {Data: []byte(testGeoJSON)},
		"layers/icons/pin.png": {Data: []byte("not really a png")},
	}

	l, err := LoadGeoJSON(fsys, "layers/test.geojson")
	if err == nil || !strings.Contains(err.Error(), "feature empty") {
		t.Errorf("expected error for feature without geometry, got %v", err)
	}
	if l == nil {
		t.Fatalf("expected partial layer")
	}
	if l.Name != "test" {
		t.Errorf("expected layer name \"test\", got %q", l.Name)
	}

	ids := make([]string, 0, l.Len())
	for _, f := range l.Features() {
		ids = append(ids, f.ID())
	}
	if !slices.Equal(ids, []string{"pin", "7", "test-2", "gc"}) {
		t.Errorf("unexpected feature ids %v", ids)
	}

	pin := l.Feature("pin")
	if pin.Geometry().Kind() != KindPoint || pin.Geometry().(Point).Layout() != geom.XYZ {
		t.Errorf("pin geometry %v", pin.Geometry())
	}
	if s := pin.Style(); s.Image == nil || string(s.Image.Data) != "not really a png" || s.Image.Scale != 1.5 {
		t.Errorf("unexpected icon %+v", s.Image)
	} else if s.Text == nil || s.Text.Label != "SF" {
		t.Errorf("unexpected label %+v", s.Text)
	}

	if s := l.Feature("7").Style(); s.Stroke.Color.R != 1 || s.Stroke.Color.G != 0 || s.Stroke.Width != 3 {
		t.Errorf("unexpected stroke %+v", s.Stroke)
	}
	if s := l.Feature("test-2").Style(); s.Fill == nil || s.Fill.Color != DefaultStyle().Fill.Color {
		t.Errorf("expected default style, got %+v", s)
	}

	gc := l.Feature("gc")
	if c, ok := gc.Geometry().(Collection); !ok || len(c) != 2 {
		t.Errorf("unexpected collection %v", gc.Geometry())
	}
	if s := gc.Style(); s.Extrude != 100 || s.Fill.Color.A != 0.5 || s.Fill.Color.G != 1 {
		t.Errorf("unexpected style %+v", s)
	}
	if v, ok := gc.Property("extrude"); !ok || v.(float64) != 100 {
		t.Errorf("properties not copied: %v", v)
	}
}

func TestLoadGeoJSONErrors(t *testing.T) {
	fsys := fstest.MapFS{
		"bad.geojson":  {Data: []byte(`{"type": "Topology"}`)},
		"icon.geojson": {Data: []byte(`{"type": "FeatureCollection", "features": [{"type": "Feature", "id": "a", "geometry": {"type": "Point", "coordinates": [0, 0]}, "properties": {"marker-url": "missing.png", "stroke": "red"}}]}`)},
	}

	if _, err := LoadGeoJSON(fsys, "nonexistent.geojson"); err == nil {
		t.Errorf("expected error for missing file")
	}
	if l, err := LoadGeoJSON(fsys, "bad.geojson"); err == nil || l != nil {
		t.Errorf("expected error for non-FeatureCollection")
	}

	l, err := LoadGeoJSON(fsys, "icon.geojson")
	if err == nil || !strings.Contains(err.Error(), "missing.png") || !strings.Contains(err.Error(), "Invalid color") {
		t.Errorf("expected icon and color errors, got %v", err)
	}
	if f := l.Feature("a"); f == nil || f.Style().Image == nil || f.Style().Image.Data != nil {
		t.Errorf("expected unresolved icon")
	}
}
