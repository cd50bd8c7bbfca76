// pkg/feature/geojson.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package feature

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/geoscope/geoscope/pkg/renderer"
	"github.com/geoscope/geoscope/pkg/util"

	"github.com/twpayne/go-geom/encoding/geojson"
)

// LoadGeoJSON reads a GeoJSON FeatureCollection from fsys and returns a
// layer holding its features. Feature styles are taken from simplestyle
// properties ("stroke", "stroke-width", "stroke-opacity", "fill",
// "fill-opacity", "marker-url", "marker-color", "marker-size", "title"),
// plus "extrude" and "clamp-to-ground"; features without any use
// DefaultStyle. Problems with individual features are accumulated and
// returned together with the layer holding the features that did load.
func LoadGeoJSON(fsys fs.FS, name string) (*Layer, error) {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}

	var fc geojson.FeatureCollection
	if err := util.UnmarshalJSON(b, &fc); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	var e util.ErrorLogger
	e.Push(name)
	defer e.Pop()

	l := NewLayer(strings.TrimSuffix(path.Base(name), path.Ext(name)))
	for i, gf := range fc.Features {
		id := gf.ID
		if id == "" {
			id = fmt.Sprintf("%s-%d", l.Name, i)
		}
		e.Push("feature " + id)

		if gf.Geometry == nil {
			e.Error(ErrNoGeometry)
			e.Pop()
			continue
		}
		g, err := FromGeom(gf.Geometry)
		if err != nil {
			e.Error(err)
			e.Pop()
			continue
		}

		f := New(id, g, parseStyle(gf.Properties, fsys, path.Dir(name), &e))
		for k, v := range gf.Properties {
			f.properties[k] = v
		}
		if err := l.Add(f); err != nil {
			e.Error(err)
		}
		e.Pop()
	}

	return l, e.Err()
}

func parseStyle(props map[string]any, fsys fs.FS, dir string, e *util.ErrorLogger) *Style {
	str := func(k string) (string, bool) {
		v, ok := props[k]
		if !ok {
			return "", false
		}
		s, ok := v.(string)
		if !ok {
			e.ErrorString("%s: expected string, got %T", k, v)
		}
		return s, ok
	}
	num := func(k string, def float64) float64 {
		v, ok := props[k]
		if !ok {
			return def
		}
		f, ok := v.(float64)
		if !ok {
			e.ErrorString("%s: expected number, got %T", k, v)
			return def
		}
		return f
	}
	color := func(k string, def renderer.RGB) (renderer.RGB, bool) {
		s, ok := str(k)
		if !ok {
			return def, false
		}
		rgb, err := renderer.ParseRGB(s)
		if err != nil {
			e.Error(err)
			return def, false
		}
		return rgb, true
	}

	def := DefaultStyle()
	s := &Style{}
	found := false

	stroke, ok := color("stroke", def.Stroke.Color.RGB())
	_, hasWidth := props["stroke-width"]
	if ok || hasWidth {
		found = true
	}
	s.Stroke = &Stroke{
		Color: stroke.WithAlpha(float32(num("stroke-opacity", 1))),
		Width: float32(num("stroke-width", float64(def.Stroke.Width))),
	}

	fill, ok := color("fill", def.Fill.Color.RGB())
	found = found || ok
	s.Fill = &Fill{Color: fill.WithAlpha(float32(num("fill-opacity", float64(def.Fill.Color.A))))}

	if src, ok := str("marker-url"); ok {
		found = true
		icon := &Icon{Src: src, Scale: 1, Color: renderer.RGBA{R: 1, G: 1, B: 1, A: 1}}
		if !strings.Contains(src, "://") {
			// Remote icons are not fetched; they stay unresolved.
			icon.Data = readIcon(fsys, path.Join(dir, src), e)
		}
		if c, ok := color("marker-color", renderer.RGB{R: 1, G: 1, B: 1}); ok {
			icon.Color = c.WithAlpha(1)
		}
		if sz, ok := str("marker-size"); ok {
			icon.Scale = map[string]float32{"small": 0.5, "medium": 1, "large": 1.5}[sz]
			if icon.Scale == 0 {
				e.ErrorString("marker-size: %q: expected small, medium, or large", sz)
				icon.Scale = 1
			}
		}
		s.Image = icon
	}

	if title, ok := str("title"); ok {
		found = true
		s.Text = &Text{Label: title, Color: renderer.RGBA{R: 1, G: 1, B: 1, A: 1}, Scale: 1}
	}

	if h := num("extrude", 0); h > 0 {
		found = true
		s.Extrude = h
	}
	if v, ok := props["clamp-to-ground"]; ok {
		found = true
		if b, ok := v.(bool); ok {
			s.ClampToGround = b
		} else {
			e.ErrorString("clamp-to-ground: expected boolean, got %T", v)
		}
	}

	if !found {
		return def
	}
	return s
}

func readIcon(fsys fs.FS, name string, e *util.ErrorLogger) []byte {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		e.Error(err)
		return nil
	}
	return b
}
