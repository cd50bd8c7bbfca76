// pkg/scene/line.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scene

import (
	"github.com/geoscope/geoscope/pkg/feature"

	"github.com/twpayne/go-geom"
)

// lines builds a polyline for each vertex run. The pool is chosen for all
// of the runs together so that a multi-line's parts stay together.
func (c *Context) lines(r Request, flat []float64, layout geom.Layout, ends []int) ([]built, bool) {
	if r.Style.Stroke == nil {
		return nil, false
	}

	var all [][]lla
	for _, run := range runs(flat, layout.Stride(), ends) {
		pts, ok := c.geographic(r, run, layout)
		if !ok {
			return nil, false
		}
		if len(pts) >= 2 {
			all = append(all, pts)
		}
	}
	if len(all) == 0 {
		return nil, false
	}

	pool := poolFor(r.Style, all...)
	b := make([]built, len(all))
	for i, pts := range all {
		t := tag(r.Key, "line", i)
		if ends == nil {
			t = tag(r.Key, "line")
		}
		b[i] = built{pool: pool, prim: polyline(t, cartesian(pts), r.Style.Stroke)}
	}
	return b, true
}

func buildLineString(c *Context, r Request) ([]built, bool) {
	g, ok := r.Geometry.(feature.LineString)
	if !ok {
		c.kindMismatch(feature.KindLineString, r)
		return nil, false
	}
	return c.lines(r, g.FlatCoords(), g.Layout(), nil)
}

func buildMultiLineString(c *Context, r Request) ([]built, bool) {
	g, ok := r.Geometry.(feature.MultiLineString)
	if !ok {
		c.kindMismatch(feature.KindMultiLineString, r)
		return nil, false
	}
	return c.lines(r, g.FlatCoords(), g.Layout(), g.Ends())
}
