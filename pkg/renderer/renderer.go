// pkg/renderer/renderer.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"fmt"
	"log/slog"
	"time"
)

// PoolKind distinguishes the two primitive collections a scene offers:
// primitives draped over the terrain surface and free-standing volumetric
// primitives.
type PoolKind int

const (
	SurfacePool PoolKind = iota
	VolumePool
	NumPoolKinds
)

func (p PoolKind) String() string {
	switch p {
	case SurfacePool:
		return "surface"
	case VolumePool:
		return "volume"
	default:
		return fmt.Sprintf("PoolKind(%d)", int(p))
	}
}

// Scene is the retained-mode scene that primitive collections are attached
// to. Globe is the only implementation.
type Scene interface {
	// AddCollection creates a new, empty collection of the given kind and
	// attaches it to the scene.
	AddCollection(kind PoolKind) *Collection

	// RemoveCollection detaches the collection from the scene. It is a
	// no-op if the collection is not attached.
	RemoveCollection(c *Collection)

	// CurrentTime returns the scene's clock, used for time-varying
	// primitives.
	CurrentTime() time.Time
}

// RendererStats encapsulates assorted statistics from rendering.
type RendererStats struct {
	nBuffers, bufferBytes       int
	nDrawCalls                  int
	nPoints, nLines, nTriangles int
}

func (rs RendererStats) DrawCalls() int { return rs.nDrawCalls }
func (rs RendererStats) Points() int    { return rs.nPoints }
func (rs RendererStats) Lines() int     { return rs.nLines }
func (rs RendererStats) Triangles() int { return rs.nTriangles }

func (rs *RendererStats) String() string {
	return fmt.Sprintf("%d buffers (%.2f MB), %d draw calls: %d points, %d lines, %d tris",
		rs.nBuffers, float32(rs.bufferBytes)/(1024*1024), rs.nDrawCalls, rs.nPoints, rs.nLines, rs.nTriangles)
}

func (rs *RendererStats) Merge(s RendererStats) {
	rs.nBuffers += s.nBuffers
	rs.bufferBytes += s.bufferBytes
	rs.nDrawCalls += s.nDrawCalls
	rs.nPoints += s.nPoints
	rs.nLines += s.nLines
	rs.nTriangles += s.nTriangles
}

func (rs RendererStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("buffers", rs.nBuffers),
		slog.Int("buffer_memory", rs.bufferBytes),
		slog.Int("draw_calls", rs.nDrawCalls),
		slog.Int("points_drawn", rs.nPoints),
		slog.Int("lines", rs.nLines),
		slog.Int("tris", rs.nTriangles),
	)
}
