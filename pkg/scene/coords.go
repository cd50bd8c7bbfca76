// pkg/scene/coords.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scene

import (
	"fmt"

	"github.com/geoscope/geoscope/pkg/feature"
	"github.com/geoscope/geoscope/pkg/math"
	"github.com/geoscope/geoscope/pkg/renderer"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/twpayne/go-geom"
)

// lla is a longitude, latitude (degrees) and altitude (meters).
type lla [3]float64

// geographic transforms flat coordinates in the active projection to
// longitude-latitude-altitude. Coordinates without a Z ordinate are given
// zero altitude, as are all coordinates of features clamped to the ground.
func (c *Context) geographic(r Request, flat []float64, layout geom.Layout) ([]lla, bool) {
	t, err := c.transforms.Get()
	if err != nil {
		c.lg.Warnf("%s: %v", r.Key, err)
		return nil, false
	}
	stride := layout.Stride()
	out, err := t.ApplyFlat(flat, stride)
	if err != nil {
		c.lg.Warnf("%s: %v", r.Key, err)
		return nil, false
	}

	zi := layout.ZIndex()
	pts := make([]lla, 0, len(out)/stride)
	for i := 0; i+stride <= len(out); i += stride {
		p := lla{out[i], out[i+1], 0}
		if zi != -1 && !r.Style.ClampToGround {
			p[2] = out[i+zi]
		}
		pts = append(pts, p)
	}
	return pts, true
}

// coord transforms a single coordinate.
func (c *Context) coord(r Request, co geom.Coord) (lla, bool) {
	pts, ok := c.geographic(r, co, layoutForCoord(co))
	if !ok || len(pts) != 1 {
		return lla{}, false
	}
	return pts[0], true
}

func layoutForCoord(co geom.Coord) geom.Layout {
	if len(co) >= 3 {
		return geom.XYZ
	}
	return geom.XY
}

func cartesian(pts []lla) []mgl64.Vec3 {
	v := make([]mgl64.Vec3, len(pts))
	for i, p := range pts {
		v[i] = math.Cartesian(p[0], p[1], p[2])
	}
	return v
}

// poolFor returns the pool for primitives at the given positions:
// anything above or below the surface, or extruded, is volumetric.
func poolFor(s *feature.Style, pts ...[]lla) renderer.PoolKind {
	if s.Extrude > 0 {
		return renderer.VolumePool
	}
	if s.ClampToGround {
		return renderer.SurfacePool
	}
	for _, run := range pts {
		for _, p := range run {
			if p[2] != 0 {
				return renderer.VolumePool
			}
		}
	}
	return renderer.SurfacePool
}

// runs splits a flat coordinate array into vertex runs according to ends,
// which holds the end offset of each run as go-geom does. A nil ends is a
// single run.
func runs(flat []float64, stride int, ends []int) [][]float64 {
	if ends == nil {
		return [][]float64{flat}
	}
	r := make([][]float64, 0, len(ends))
	start := 0
	for _, end := range ends {
		r = append(r, flat[start:end])
		start = end
	}
	return r
}

func tag(k Key, part string, i ...int) string {
	if len(i) > 0 {
		return fmt.Sprintf("%s/%s-%d", k, part, i[0])
	}
	return fmt.Sprintf("%s/%s", k, part)
}

// dashPattern converts alternating on/off lengths in pixels into a 16-bit
// stipple pattern, repeating the lengths as needed. An empty or all-zero
// dash is solid.
func dashPattern(dash []float32) uint16 {
	total := float32(0)
	for _, d := range dash {
		total += d
	}
	if total <= 0 {
		return 0
	}
	if len(dash)%2 == 1 {
		// An odd number of lengths alternates on and off when repeated.
		dash = append(append([]float32(nil), dash...), dash...)
	}

	var pattern uint16
	bit, seg := 0, 0
	remaining := dash[0]
	for bit < 16 {
		for remaining <= 0 {
			seg = (seg + 1) % len(dash)
			remaining = dash[seg]
		}
		if seg%2 == 0 {
			pattern |= 1 << bit
		}
		remaining--
		bit++
	}
	return pattern
}

func polyline(tag string, pos []mgl64.Vec3, s *feature.Stroke) *renderer.Polyline {
	return &renderer.Polyline{
		Base:      renderer.Base{Tag: tag},
		Positions: pos,
		Width:     s.Width,
		Color:     s.Color,
		Dash:      dashPattern(s.Dash),
	}
}
