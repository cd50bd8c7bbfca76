// pkg/scene/dynamic.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scene

import (
	"slices"
	"time"

	"github.com/geoscope/geoscope/pkg/feature"
	"github.com/geoscope/geoscope/pkg/renderer"

	"github.com/brunoga/deep"
	"github.com/twpayne/go-geom"
)

// segments is the state of a segmented entry as of its last rewrite.
// Ends holds the endpoints of each segment in vertex-run order.
type segments struct {
	Ends   [][2]lla
	Pool   renderer.PoolKind
	Stroke feature.Stroke
}

// segmentConverter draws each edge of a geometry as its own two-vertex
// polyline so that edits to a few vertices rewrite only the edges that
// touch them.
type segmentConverter struct {
	kind feature.Kind
}

var (
	_ Converter = segmentConverter{}
	_ Ticker    = segmentConverter{}
)

// edges returns the segment endpoints for the geometry at time now.
func (s segmentConverter) edges(c *Context, r Request, now time.Time) ([][2]lla, bool) {
	if r.Geometry == nil || r.Geometry.Kind() != s.kind {
		c.kindMismatch(s.kind, r)
		return nil, false
	}

	switch g := r.Geometry.(type) {
	case feature.LineString:
		return c.runEdges(r, g.FlatCoords(), g.Layout(), nil, false)
	case feature.Polygon:
		return c.runEdges(r, g.FlatCoords(), g.Layout(), g.Ends(), true)
	case feature.MultiLineString:
		return c.runEdges(r, g.FlatCoords(), g.Layout(), g.Ends(), false)
	case feature.BearingLine:
		return c.bearingEdges(r, g, now)
	default:
		c.kindMismatch(s.kind, r)
		return nil, false
	}
}

// runEdges returns the edges between consecutive vertices of each run.
// Rings are closed if their last vertex does not repeat the first.
func (c *Context) runEdges(r Request, flat []float64, layout geom.Layout, ends []int, rings bool) ([][2]lla, bool) {
	var e [][2]lla
	for _, run := range runs(flat, layout.Stride(), ends) {
		pts, ok := c.geographic(r, run, layout)
		if !ok {
			return nil, false
		}
		if rings && len(pts) > 2 && pts[0] != pts[len(pts)-1] {
			pts = closed(pts)
		}
		for i := 1; i < len(pts); i++ {
			e = append(e, [2]lla{pts[i-1], pts[i]})
		}
	}
	return e, true
}

func segmentPool(s *feature.Style, ends [][2]lla) renderer.PoolKind {
	pts := make([]lla, 0, 2*len(ends))
	for _, e := range ends {
		pts = append(pts, e[0], e[1])
	}
	return poolFor(s, pts)
}

func (s segmentConverter) Create(c *Context, r Request) bool {
	if r.Style.Stroke == nil {
		return false
	}
	ends, ok := s.edges(c, r, c.scene.CurrentTime())
	if !ok || len(ends) == 0 {
		return false
	}

	pool := segmentPool(r.Style, ends)
	b := make([]built, len(ends))
	for i, e := range ends {
		b[i] = built{pool: pool, prim: polyline(tag(r.Key, "seg", i), cartesian(e[:]), r.Style.Stroke)}
	}
	e := c.register(r.Key, s.kind, true, b)
	e.source = r.Feature
	e.ticker = s
	e.segs = deep.MustCopy(&segments{Ends: ends, Pool: pool, Stroke: *r.Style.Stroke})
	return true
}

func (s segmentConverter) Retrieve(c *Context, r Request) []*Entry {
	return c.lookup(r.Key)
}

func (s segmentConverter) Update(c *Context, r Request, existing []*Entry) bool {
	if len(existing) != 1 {
		return false
	}
	return s.update(c, r, existing[0], c.scene.CurrentTime())
}

// update rewrites the segments whose endpoints moved, or all of them if
// the stroke changed. It fails without changing anything if the number
// of segments or their pool would change.
func (s segmentConverter) update(c *Context, r Request, e *Entry, now time.Time) bool {
	if e.segs == nil || r.Style.Stroke == nil {
		return false
	}
	ends, ok := s.edges(c, r, now)
	if !ok || len(ends) != len(e.segs.Ends) || len(ends) != len(e.Handles) {
		return false
	}
	pool := segmentPool(r.Style, ends)
	if pool != e.segs.Pool {
		return false
	}
	lines := make([]*renderer.Polyline, len(e.Handles))
	for i, h := range e.Handles {
		if lines[i], ok = h.prim.(*renderer.Polyline); !ok || h.pool != pool {
			return false
		}
	}

	restyle := !strokeEqual(e.segs.Stroke, *r.Style.Stroke)
	for i, end := range ends {
		// Vertices are snapped individually so that segments sharing a
		// vertex agree on it; small moves accumulate against what is drawn.
		moved := false
		for j := range end {
			if c.near(e.segs.Ends[i][j], end[j]) {
				end[j] = e.segs.Ends[i][j]
			} else {
				moved = true
			}
		}
		ends[i] = end
		if !moved && !restyle {
			continue
		}
		// A replacement polyline keeps the handle and only its contents
		// are rewritten.
		pl := polyline(tag(r.Key, "seg", i), cartesian(end[:]), r.Style.Stroke)
		copyPrimitive(lines[i], pl)
		if moved {
			c.stats.SegmentRewrites++
		}
	}

	e.source = r.Feature
	e.segs = deep.MustCopy(&segments{Ends: ends, Pool: pool, Stroke: *r.Style.Stroke})
	return true
}

// Delete detaches the segments; the Context erases the entry.
func (s segmentConverter) Delete(c *Context, r Request, existing []*Entry) bool {
	for _, e := range existing {
		c.detachAll(e)
		e.segs = nil
	}
	return len(existing) > 0
}

// Tick patches the entry from the feature's current geometry, recreating
// it if that cannot be done in place.
func (s segmentConverter) Tick(c *Context, e *Entry, now time.Time) {
	f := e.source
	if f == nil {
		return
	}
	r := request(f)
	r.Key = e.Key
	r.Geometry = geometryAt(f.Geometry(), e.Key.Index)
	if r.Geometry != nil && r.Geometry.Kind() == s.kind && s.update(c, r, e, now) {
		return
	}
	c.lg.Debugf("%s: unable to patch segments; updating feature", e.Key)
	c.UpdateFeature(f)
}

// near reports whether two positions are within the configured movement
// threshold; with no threshold only identical positions are near.
func (c *Context) near(a, b lla) bool {
	if c.config.MoveEpsilon <= 0 {
		return a == b
	}
	v := cartesian([]lla{a, b})
	return v[0].Sub(v[1]).Len() <= c.config.MoveEpsilon
}

func strokeEqual(a, b feature.Stroke) bool {
	return a.Color == b.Color && a.Width == b.Width && slices.Equal(a.Dash, b.Dash)
}

// geometryAt returns the geometry with the given depth-first index.
func geometryAt(g feature.Geometry, index int) feature.Geometry {
	var m feature.Geometry
	feature.Walk(g, func(i int, sub feature.Geometry) {
		if i == index {
			m = sub
		}
	})
	return m
}
