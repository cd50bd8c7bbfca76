// pkg/scene/polygon.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scene

import (
	"fmt"

	"github.com/geoscope/geoscope/pkg/feature"
	"github.com/geoscope/geoscope/pkg/renderer"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mmp/earcut-go"
	"github.com/twpayne/go-geom"
)

// rings returns the geographic vertices of each ring of a polygon, with
// the closing vertex dropped.
func (c *Context) rings(r Request, flat []float64, layout geom.Layout, ends []int) ([][]lla, bool) {
	var rs [][]lla
	for _, run := range runs(flat, layout.Stride(), ends) {
		pts, ok := c.geographic(r, run, layout)
		if !ok {
			return nil, false
		}
		if n := len(pts); n > 1 && pts[0][0] == pts[n-1][0] && pts[0][1] == pts[n-1][1] {
			pts = pts[:n-1]
		}
		rs = append(rs, pts)
	}
	return rs, true
}

// triangulate returns triangle indices into the concatenation of the
// rings. The first ring is the outer boundary and the rest are holes.
func triangulate(rs [][]lla) []int32 {
	index := make(map[[2]float64]int32)
	var rings [][]earcut.Vertex
	n := int32(0)
	for _, ring := range rs {
		vertices := make([]earcut.Vertex, len(ring))
		for i, p := range ring {
			vertices[i].P = [2]float64{p[0], p[1]}
			if _, ok := index[vertices[i].P]; !ok {
				index[vertices[i].P] = n
			}
			n++
		}
		rings = append(rings, vertices)
	}

	var indices []int32
	for _, tri := range earcut.Triangulate(earcut.Polygon{Rings: rings}) {
		for _, v := range tri.Vertices {
			indices = append(indices, index[v.P])
		}
	}
	return indices
}

func raise(pts []lla, h float64) []lla {
	r := make([]lla, len(pts))
	for i, p := range pts {
		r[i] = lla{p[0], p[1], p[2] + h}
	}
	return r
}

func closed(pts []lla) []lla {
	if len(pts) == 0 {
		return pts
	}
	return append(pts[:len(pts):len(pts)], pts[0])
}

// walls returns a mesh of quads joining each ring edge to the edge above
// it at the given height.
func walls(rs [][]lla, h float64) ([]mgl64.Vec3, []int32) {
	var pos []mgl64.Vec3
	var indices []int32
	for _, ring := range rs {
		n := len(ring)
		base := int32(len(pos))
		pos = append(pos, cartesian(ring)...)
		pos = append(pos, cartesian(raise(ring, h))...)
		for i := range n {
			b0, b1 := base+int32(i), base+int32((i+1)%n)
			t0, t1 := b0+int32(n), b1+int32(n)
			indices = append(indices, b0, b1, t1, b0, t1, t0)
		}
	}
	return pos, indices
}

// polygon builds the fill and outlines of one polygon. Parts are prefixed
// with prefix so that the members of a multi-polygon have distinct tags.
func (c *Context) polygon(r Request, flat []float64, layout geom.Layout, ends []int, prefix string) ([]built, bool) {
	s := r.Style
	if s.Fill == nil && s.Stroke == nil {
		return nil, false
	}
	rs, ok := c.rings(r, flat, layout, ends)
	if !ok || len(rs) == 0 || len(rs[0]) < 3 {
		return nil, false
	}

	pool := poolFor(s, rs...)
	top := rs
	if s.Extrude > 0 {
		top = make([][]lla, len(rs))
		for i, ring := range rs {
			top[i] = raise(ring, s.Extrude)
		}
	}

	var b []built
	if s.Fill != nil {
		if indices := triangulate(top); len(indices) > 0 {
			var pos []mgl64.Vec3
			for _, ring := range top {
				pos = append(pos, cartesian(ring)...)
			}
			b = append(b, built{pool: pool, prim: &renderer.Mesh{
				Base:      renderer.Base{Tag: tag(r.Key, prefix+"fill")},
				Positions: pos,
				Indices:   indices,
				Color:     s.Fill.Color,
			}})
		}
		if s.Extrude > 0 {
			pos, indices := walls(rs, s.Extrude)
			b = append(b, built{pool: pool, prim: &renderer.Mesh{
				Base:      renderer.Base{Tag: tag(r.Key, prefix+"walls")},
				Positions: pos,
				Indices:   indices,
				Color:     s.Fill.Color,
			}})
		}
	}
	if s.Stroke != nil {
		for i, ring := range top {
			if len(ring) < 2 {
				continue
			}
			t := tag(r.Key, prefix+"outline", i)
			b = append(b, built{pool: pool, prim: polyline(t, cartesian(closed(ring)), s.Stroke)})
		}
	}
	return b, len(b) > 0
}

func buildPolygon(c *Context, r Request) ([]built, bool) {
	g, ok := r.Geometry.(feature.Polygon)
	if !ok {
		c.kindMismatch(feature.KindPolygon, r)
		return nil, false
	}
	return c.polygon(r, g.FlatCoords(), g.Layout(), g.Ends(), "")
}

func buildMultiPolygon(c *Context, r Request) ([]built, bool) {
	g, ok := r.Geometry.(feature.MultiPolygon)
	if !ok {
		c.kindMismatch(feature.KindMultiPolygon, r)
		return nil, false
	}

	var b []built
	for i := range g.NumPolygons() {
		p := g.Polygon(i)
		pb, ok := c.polygon(r, p.FlatCoords(), p.Layout(), p.Ends(), fmt.Sprintf("p%d-", i))
		if !ok {
			return nil, false
		}
		b = append(b, pb...)
	}
	return b, len(b) > 0
}
