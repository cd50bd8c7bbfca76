// pkg/scene/ellipse.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scene

import (
	"slices"

	"github.com/geoscope/geoscope/pkg/feature"
	"github.com/geoscope/geoscope/pkg/math"
	"github.com/geoscope/geoscope/pkg/renderer"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mmp/earcut-go"
)

// buildEllipse synthesizes a body and an outline from the ellipse's
// parameters. Flat ellipses are filled in the plane tangent to the
// surface at their center; ellipses with a height become ellipsoids whose
// outline is the equator.
func buildEllipse(c *Context, r Request) ([]built, bool) {
	g, ok := r.Geometry.(feature.Ellipse)
	if !ok {
		c.kindMismatch(feature.KindEllipse, r)
		return nil, false
	}
	s := r.Style
	if (s.Fill == nil && s.Stroke == nil) || g.SemiMajor <= 0 || g.SemiMinor <= 0 {
		return nil, false
	}
	center, ok := c.coord(r, g.Center)
	if !ok {
		return nil, false
	}
	nsegs := max(c.config.EllipseSegments, 3)

	local := func(p mgl64.Vec3) mgl64.Vec3 {
		return math.LocalToCartesian(center[0], center[1], center[2], p)
	}
	ring := math.EllipseRing(g.SemiMajor, g.SemiMinor, g.Rotation, nsegs)
	outline := make([]mgl64.Vec3, 0, len(ring)+1)
	for _, p := range ring {
		outline = append(outline, local(mgl64.Vec3{p[0], p[1], 0}))
	}
	outline = append(outline, outline[0])

	pool := poolFor(s, []lla{center})
	if g.Height > 0 {
		pool = renderer.VolumePool
	}

	var b []built
	if s.Fill != nil {
		body := &renderer.Mesh{
			Base:  renderer.Base{Tag: tag(r.Key, "body")},
			Color: s.Fill.Color,
		}
		if g.Height > 0 {
			pts, indices := math.Ellipsoid(g.SemiMajor, g.SemiMinor, g.Height, g.Rotation, nsegs,
				max(c.config.EllipsoidStacks, 2))
			for _, p := range pts {
				body.Positions = append(body.Positions, local(p))
			}
			body.Indices = indices
		} else {
			vertices := make([]earcut.Vertex, len(ring))
			index := make(map[[2]float64]int32, len(ring))
			for i, p := range ring {
				vertices[i].P = p
				index[p] = int32(i)
			}
			for _, tri := range earcut.Triangulate(earcut.Polygon{Rings: [][]earcut.Vertex{vertices}}) {
				for _, v := range tri.Vertices {
					body.Indices = append(body.Indices, index[v.P])
				}
			}
			body.Positions = slices.Clone(outline[:len(ring)])
		}
		b = append(b, built{pool: pool, prim: body})
	}
	if s.Stroke != nil {
		b = append(b, built{pool: pool, prim: polyline(tag(r.Key, "outline"), outline, s.Stroke)})
	}
	return b, true
}
