// pkg/scene/point.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scene

import (
	"github.com/geoscope/geoscope/pkg/feature"
	"github.com/geoscope/geoscope/pkg/math"
	"github.com/geoscope/geoscope/pkg/renderer"

	"github.com/twpayne/go-geom"
)

// billboards builds one billboard for each coordinate. Billboards require
// a resolvable icon.
func (c *Context) billboards(r Request, flat []float64, layout geom.Layout) ([]built, bool) {
	img := c.resolveIcon(r.Style.Image)
	if img == nil {
		return nil, false
	}
	pts, ok := c.geographic(r, flat, layout)
	if !ok || len(pts) == 0 {
		return nil, false
	}

	icon := r.Style.Image
	b := make([]built, len(pts))
	for i, p := range pts {
		bb := &renderer.Billboard{
			Base:     renderer.Base{Tag: tag(r.Key, "billboard", i)},
			Position: math.Cartesian(p[0], p[1], p[2]),
			Image:    img,
			Scale:    icon.Scale,
			Color:    icon.Color,
		}
		if len(pts) == 1 {
			bb.Tag = tag(r.Key, "billboard")
		}
		if t := r.Style.Text; t != nil {
			bb.Label = t.Label
			bb.LabelColor = t.Color
		}
		b[i] = built{pool: poolFor(r.Style, pts[i:i+1]), prim: bb}
	}
	return b, true
}

func buildPoint(c *Context, r Request) ([]built, bool) {
	g, ok := r.Geometry.(feature.Point)
	if !ok {
		c.kindMismatch(feature.KindPoint, r)
		return nil, false
	}
	return c.billboards(r, g.FlatCoords(), g.Layout())
}

func buildMultiPoint(c *Context, r Request) ([]built, bool) {
	g, ok := r.Geometry.(feature.MultiPoint)
	if !ok {
		c.kindMismatch(feature.KindMultiPoint, r)
		return nil, false
	}
	return c.billboards(r, g.FlatCoords(), g.Layout())
}
