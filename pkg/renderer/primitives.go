// pkg/renderer/primitives.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"image"

	"github.com/go-gl/mathgl/mgl64"
)

// Primitive is a drawable object that lives in a Collection. Positions are
// earth-centered, earth-fixed cartesian coordinates in meters.
type Primitive interface {
	// Header returns the bookkeeping fields shared by all primitives.
	Header() *Base

	generateCommands(cb *CommandBuffer, g *Globe)
}

// Base holds the fields shared by all primitive types. Revision is
// incremented each time the primitive's buffers are rewritten.
type Base struct {
	Tag      string
	Revision int
}

func (b *Base) Header() *Base { return b }

// Touch records that the primitive's contents have been rewritten.
func (b *Base) Touch() { b.Revision++ }

// Billboard is a screen-aligned image drawn at a point, optionally with a
// text label.
type Billboard struct {
	Base
	Position   mgl64.Vec3
	Image      image.Image
	Scale      float32
	Color      RGBA
	Label      string
	LabelColor RGBA
}

// Polyline is a connected series of line segments.
type Polyline struct {
	Base
	Positions []mgl64.Vec3
	Width     float32
	Color     RGBA
	// Dash is a 16-bit on/off pattern; zero draws a solid line.
	Dash uint16
}

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Base
	Positions []mgl64.Vec3
	Indices   []int32
	Color     RGBA
}

var (
	_ Primitive = (*Billboard)(nil)
	_ Primitive = (*Polyline)(nil)
	_ Primitive = (*Mesh)(nil)
)

// relative returns the positions as float32 offsets from the globe's
// origin so that precision is not lost to the earth's radius.
func relative(pos []mgl64.Vec3, origin mgl64.Vec3) [][3]float32 {
	v := make([][3]float32, len(pos))
	for i, p := range pos {
		d := p.Sub(origin)
		v[i] = [3]float32{float32(d[0]), float32(d[1]), float32(d[2])}
	}
	return v
}

func (b *Billboard) generateCommands(cb *CommandBuffer, g *Globe) {
	if b.Image == nil {
		return
	}
	vtx := cb.Float3Buffer(relative([]mgl64.Vec3{b.Position}, g.Origin))
	idx := cb.IntBuffer([]int32{0})

	cb.EnableTexture(g.textureID(b.Image))
	cb.SetRGBA(b.Color)
	cb.PointSize(b.Scale * float32(b.Image.Bounds().Dx()))
	cb.VertexArray(vtx, 3, 12)
	cb.DrawPoints(idx, 1)
	cb.DisableTexture()
}

func (p *Polyline) generateCommands(cb *CommandBuffer, g *Globe) {
	if len(p.Positions) < 2 {
		return
	}
	vtx := cb.Float3Buffer(relative(p.Positions, g.Origin))
	ind := make([]int32, 0, 2*(len(p.Positions)-1))
	for i := range len(p.Positions) - 1 {
		ind = append(ind, int32(i), int32(i+1))
	}
	idx := cb.IntBuffer(ind)

	cb.SetRGBA(p.Color)
	cb.LineWidth(p.Width)
	if p.Dash != 0 {
		cb.LineStipple(1, p.Dash)
	}
	cb.VertexArray(vtx, 3, 12)
	cb.DrawLines(idx, len(ind))
	if p.Dash != 0 {
		cb.DisableLineStipple()
	}
}

func (m *Mesh) generateCommands(cb *CommandBuffer, g *Globe) {
	if len(m.Positions) == 0 || len(m.Indices) < 3 {
		return
	}
	vtx := cb.Float3Buffer(relative(m.Positions, g.Origin))
	idx := cb.IntBuffer(m.Indices)

	if !m.Color.Opaque() {
		cb.Blend()
	}
	cb.SetRGBA(m.Color)
	cb.VertexArray(vtx, 3, 12)
	cb.DrawTriangles(idx, len(m.Indices))
	if !m.Color.Opaque() {
		cb.DisableBlend()
	}
}
