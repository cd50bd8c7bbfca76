// pkg/renderer/globe.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"fmt"
	"image"
	gomath "math"
	"slices"
	"time"

	"github.com/geoscope/geoscope/pkg/log"
	"github.com/geoscope/geoscope/pkg/math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Also available as a global, though only used by CommandBuffer
var lg *log.Logger

// Globe is a headless Scene. It keeps the primitive collections attached
// to it, encodes them into command buffers, and can execute those buffers
// to account for what would have been drawn.
type Globe struct {
	// Origin is subtracted from all positions before they are converted to
	// float32; it is generally the camera's position.
	Origin mgl64.Vec3
	// ViewProjection is loaded at the start of each frame.
	ViewProjection mgl32.Mat4
	// Background is the color the frame is cleared to.
	Background RGBA

	lg          *log.Logger
	collections []*Collection
	now         time.Time
	textures    map[image.Image]uint32
	nextTexture uint32
}

var _ Scene = (*Globe)(nil)

func NewGlobe(l *log.Logger) *Globe {
	lg = l
	g := &Globe{
		lg:       l,
		textures: make(map[image.Image]uint32),
	}
	g.LookAt(0, 0, 2*math.EarthSemiMajorAxis)
	return g
}

// LookAt positions the camera above the given longitude and latitude at
// the specified altitude, looking at the center of the earth.
func (g *Globe) LookAt(lon, lat, alt float64) {
	g.Origin = math.Cartesian(lon, lat, alt)
	_, north, _ := math.ENUFrame(lon, lat)

	proj := mgl32.Perspective(mgl32.DegToRad(45), 16./9., 1, float32(2*math.EarthSemiMajorAxis+alt))
	// The view is relative to Origin, so the eye sits at zero.
	target := mgl32.Vec3{float32(-g.Origin[0]), float32(-g.Origin[1]), float32(-g.Origin[2])}
	up := mgl32.Vec3{float32(north[0]), float32(north[1]), float32(north[2])}
	view := mgl32.LookAtV(mgl32.Vec3{}, target, up)
	g.ViewProjection = proj.Mul4(view)
}

func (g *Globe) AddCollection(kind PoolKind) *Collection {
	c := newCollection(kind)
	g.collections = append(g.collections, c)
	return c
}

func (g *Globe) RemoveCollection(c *Collection) {
	if i := slices.Index(g.collections, c); i != -1 {
		g.collections = slices.Delete(g.collections, i, i+1)
	} else {
		g.lg.Warnf("%p: RemoveCollection called with unattached collection", c)
	}
}

func (g *Globe) Collections() []*Collection {
	return slices.Clone(g.collections)
}

// SetCurrentTime fixes the scene clock; the zero time reverts to the wall
// clock.
func (g *Globe) SetCurrentTime(t time.Time) {
	g.now = t
}

func (g *Globe) CurrentTime() time.Time {
	if g.now.IsZero() {
		return time.Now()
	}
	return g.now
}

func (g *Globe) textureID(img image.Image) uint32 {
	if id, ok := g.textures[img]; ok {
		return id
	}
	g.nextTexture++
	g.textures[img] = g.nextTexture
	g.lg.Debugf("Created tex id %d: %dx%d", g.nextTexture, img.Bounds().Dx(), img.Bounds().Dy())
	return g.nextTexture
}

// Draw encodes all attached collections into cb, surface collections
// first so that volumetric primitives are drawn over them.
func (g *Globe) Draw(cb *CommandBuffer) {
	cb.ResetState()
	cb.LoadProjectionMatrix(g.ViewProjection)
	cb.ClearRGBA(g.Background)
	for _, kind := range []PoolKind{SurfacePool, VolumePool} {
		for _, c := range g.collections {
			if c.Kind == kind {
				c.GenerateCommands(cb, g)
			}
		}
	}
	cb.DisableVertexArray()
	cb.ResetState()
}

// Execute walks the commands in cb, checking that they are well-formed
// and returning statistics about what they would draw.
func (g *Globe) Execute(cb *CommandBuffer) (stats RendererStats, err error) {
	stats.nBuffers++
	stats.bufferBytes += 4 * len(cb.Buf)

	i := 0
	need := func(n int) bool {
		if i+n > len(cb.Buf) {
			err = fmt.Errorf("command at %d truncated: %w", i, ErrMalformedCommands)
			return false
		}
		return true
	}
	ui32 := func() uint32 {
		v := cb.Buf[i]
		i++
		return v
	}
	// Offsets are in bytes from the start of the buffer and must refer to
	// a buffer's payload.
	checkRange := func(offset uint32, count int32) bool {
		if offset%4 != 0 || int(offset/4)+int(count) > len(cb.Buf) || count < 0 {
			err = fmt.Errorf("offset %d count %d out of range: %w", offset, count, ErrMalformedCommands)
			return false
		}
		return true
	}
	var vertexCount int

	for i < len(cb.Buf) && err == nil {
		cmd := cb.Buf[i]
		i++
		switch cmd {
		case RendererLoadProjectionMatrix:
			if need(16) {
				i += 16
			}

		case RendererClearRGBA, RendererSetRGBA:
			if need(4) {
				for range 4 {
					if f := gomath.Float32frombits(ui32()); f < 0 || f > 1 {
						err = fmt.Errorf("color component %f: %w", f, ErrMalformedCommands)
					}
				}
			}

		case RendererBlend, RendererDisableBlend, RendererDisableTexture, RendererDisableVertexArray,
			RendererDisableLineStipple, RendererResetState:
			if cmd == RendererDisableVertexArray || cmd == RendererResetState {
				vertexCount = 0
			}

		case RendererFloatBuffer, RendererIntBuffer:
			if need(1) {
				n := int(ui32())
				if need(n) {
					i += n
				}
			}

		case RendererEnableTexture, RendererLineWidth, RendererPointSize:
			if need(1) {
				i++
			}

		case RendererLineStipple:
			if need(2) {
				i += 2
			}

		case RendererVertexArray:
			if need(3) {
				offset, nc, stride := ui32(), int32(ui32()), int32(ui32())
				if nc != 3 || stride != 12 {
					err = fmt.Errorf("vertex array with %d components stride %d: %w", nc, stride, ErrMalformedCommands)
				} else if off := int(offset / 4); off >= 1 && off <= len(cb.Buf) {
					vertexCount = int(cb.Buf[off-1]) / 3
				} else {
					err = fmt.Errorf("vertex offset %d: %w", offset, ErrMalformedCommands)
				}
			}

		case RendererDrawPoints, RendererDrawLines, RendererDrawTriangles:
			if !need(2) {
				break
			}
			offset, count := ui32(), int32(ui32())
			if !checkRange(offset, count) {
				break
			}
			for _, ix := range cb.Buf[offset/4 : offset/4+uint32(count)] {
				if int(ix) >= vertexCount {
					err = fmt.Errorf("index %d with %d vertices: %w", ix, vertexCount, ErrMalformedCommands)
					break
				}
			}

			stats.nDrawCalls++
			switch cmd {
			case RendererDrawPoints:
				stats.nPoints += int(count)
			case RendererDrawLines:
				stats.nLines += int(count / 2)
			case RendererDrawTriangles:
				stats.nTriangles += int(count / 3)
			}

		default:
			err = fmt.Errorf("unhandled command %d: %w", cmd, ErrMalformedCommands)
		}
	}

	if err != nil {
		g.lg.Error("command buffer", "error", err)
	}
	return
}
