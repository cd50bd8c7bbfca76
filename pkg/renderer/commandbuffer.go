// pkg/renderer/commandbuffer.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	gomath "math"
	"sync"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// The command buffer stores a series of rendering commands, represented by
// the following values. Each one is followed in the buffer by a number of
// command arguments, after which the next command follows. Comments after
// each command briefly describe its arguments.
//
// Vertex and index buffers are stored directly in the CommandBuffer,
// following RendererFloatBuffer and RendererIntBuffer commands; the first
// argument after those commands is the length of the buffer and then its
// values follow directly. Commands that use buffers are directed to them
// via the byte offset from the start of the command buffer where the
// buffer begins.
const (
	RendererLoadProjectionMatrix = iota // 16 float32: matrix
	RendererClearRGBA                   // 4 float32: RGBA
	RendererBlend                       // no args: src alpha, 1-src alpha
	RendererDisableBlend                // no args
	RendererSetRGBA                     // 4 float32: RGBA
	RendererFloatBuffer                 // int32 size, then size*float32 values
	RendererIntBuffer                   // int32: size, then size*int32 values
	RendererEnableTexture               // int32 handle
	RendererDisableTexture              // no args
	RendererVertexArray                 // byte offset to array values, n components, stride (bytes)
	RendererDisableVertexArray          // no args
	RendererLineWidth                   // float32
	RendererLineStipple                 // int32 factor, int32 pattern
	RendererDisableLineStipple          // no args
	RendererPointSize                   // float32
	RendererDrawPoints                  // 2 int32: offset to the index buffer, count
	RendererDrawLines                   // 2 int32: offset to the index buffer, count
	RendererDrawTriangles               // 2 int32: offset to the index buffer, count
	RendererResetState                  // no args
)

// CommandBuffer encodes a sequence of rendering commands in an
// API-agnostic manner so that the globe's primitives can be baked once per
// frame and then consumed by whichever backend executes them.
type CommandBuffer struct {
	Buf []uint32
}

// CommandBuffers are managed using a sync.Pool so that their buf slice
// allocations persist across multiple uses.
var commandBufferPool = sync.Pool{New: func() any { return &CommandBuffer{} }}

func GetCommandBuffer() *CommandBuffer {
	return commandBufferPool.Get().(*CommandBuffer)
}

func ReturnCommandBuffer(cb *CommandBuffer) {
	cb.Reset()
	commandBufferPool.Put(cb)
}

// Reset resets the command buffer's length to zero so that it can be
// reused.
func (cb *CommandBuffer) Reset() {
	cb.Buf = cb.Buf[:0]
}

// growFor ensures that at least n more values can be added to the end of
// the buffer without going past its capacity.
func (cb *CommandBuffer) growFor(n int) {
	if len(cb.Buf)+n > cap(cb.Buf) {
		sz := 2 * cap(cb.Buf)
		if sz < 1024 {
			sz = 1024
		}
		if sz < len(cb.Buf)+n {
			sz = 2 * (len(cb.Buf) + n)
		}
		b := make([]uint32, len(cb.Buf), sz)
		copy(b, cb.Buf)
		cb.Buf = b
	}
}

func (cb *CommandBuffer) appendFloats(floats ...float32) {
	for _, f := range floats {
		cb.Buf = append(cb.Buf, gomath.Float32bits(f))
	}
}

func (cb *CommandBuffer) appendInts(ints ...int) {
	for _, i := range ints {
		if i != int(uint32(i)) {
			lg.Errorf("%d: attempting to add non-32-bit value to CommandBuffer", i)
		}
		cb.Buf = append(cb.Buf, uint32(i))
	}
}

// LoadProjectionMatrix adds a command that sets the combined
// projection-view matrix. mgl32 matrices are column-major, which is the
// order the backend expects.
func (cb *CommandBuffer) LoadProjectionMatrix(m mgl32.Mat4) {
	cb.appendInts(RendererLoadProjectionMatrix)
	cb.appendFloats(m[:]...)
}

// ClearRGBA adds a command to the command buffer to clear the framebuffer
// to the specified color.
func (cb *CommandBuffer) ClearRGBA(color RGBA) {
	cb.appendInts(RendererClearRGBA)
	cb.appendFloats(color.R, color.G, color.B, color.A)
}

// SetRGBA adds a command to the command buffer to set the current RGBA
// color. Subsequent draw commands will inherit this color.
func (cb *CommandBuffer) SetRGBA(rgba RGBA) {
	cb.appendInts(RendererSetRGBA)
	cb.appendFloats(rgba.R, rgba.G, rgba.B, rgba.A)
}

func (cb *CommandBuffer) Blend() {
	cb.appendInts(RendererBlend)
}

func (cb *CommandBuffer) DisableBlend() {
	cb.appendInts(RendererDisableBlend)
}

// Float3Buffer stores the provided slice of [3]float32 values in the
// CommandBuffer and returns the byte offset where the first value of the
// slice is stored; this offset can then be passed to VertexArray.
func (cb *CommandBuffer) Float3Buffer(buf [][3]float32) int {
	cb.appendInts(RendererFloatBuffer, 3*len(buf))
	offset := 4 * len(cb.Buf)
	if len(buf) == 0 {
		return offset
	}

	n := 3 * len(buf)
	cb.growFor(n)
	start := len(cb.Buf)
	cb.Buf = cb.Buf[:start+n]
	copy(cb.Buf[start:start+n], unsafe.Slice((*uint32)(unsafe.Pointer(&buf[0])), n))

	return offset
}

// IntBuffer stores the provided slice of int32 values in the command buffer
// and returns the byte offset where the first value of the slice is stored.
func (cb *CommandBuffer) IntBuffer(buf []int32) int {
	cb.appendInts(RendererIntBuffer, len(buf))
	offset := 4 * len(cb.Buf)
	if len(buf) == 0 {
		return offset
	}

	n := len(buf)
	cb.growFor(n)
	start := len(cb.Buf)
	cb.Buf = cb.Buf[:start+n]
	copy(cb.Buf[start:start+n], unsafe.Slice((*uint32)(unsafe.Pointer(&buf[0])), n))

	return offset
}

// EnableTexture enables texturing from the specified texture id.
func (cb *CommandBuffer) EnableTexture(id uint32) {
	cb.appendInts(RendererEnableTexture, int(id))
}

func (cb *CommandBuffer) DisableTexture() {
	cb.appendInts(RendererDisableTexture)
}

// VertexArray adds a command to the command buffer that specifies an array
// of vertex coordinates to use for a subsequent draw command. offset gives
// the offset into the current command buffer where the vertices begin
// (e.g., as returned by Float3Buffer), nComps is the number of components
// per vertex and stride gives the stride in bytes between vertices.
func (cb *CommandBuffer) VertexArray(offset, nComps, stride int) {
	cb.appendInts(RendererVertexArray, offset, nComps, stride)
}

func (cb *CommandBuffer) DisableVertexArray() {
	cb.appendInts(RendererDisableVertexArray)
}

// LineWidth adds a command to the command buffer that sets the width in
// pixels of subsequent lines that are drawn.
func (cb *CommandBuffer) LineWidth(w float32) {
	cb.appendInts(RendererLineWidth)
	cb.appendFloats(w)
}

// LineStipple sets a 16-bit on/off pattern for subsequent lines, with each
// bit repeated factor times.
func (cb *CommandBuffer) LineStipple(factor int, pattern uint16) {
	cb.appendInts(RendererLineStipple, factor, int(pattern))
}

func (cb *CommandBuffer) DisableLineStipple() {
	cb.appendInts(RendererDisableLineStipple)
}

func (cb *CommandBuffer) PointSize(s float32) {
	cb.appendInts(RendererPointSize)
	cb.appendFloats(s)
}

// DrawPoints adds a command to draw count points, each given by one index
// in the index buffer at offset.
func (cb *CommandBuffer) DrawPoints(offset, count int) {
	cb.appendInts(RendererDrawPoints, offset, count)
}

// DrawLines adds a command to the command buffer to draw a number of
// lines; each line is specified by two indices in the index buffer.
// offset gives the offset in the current command buffer where the index
// buffer is (e.g., as returned by IntBuffer), and count gives the total
// number of indices.
func (cb *CommandBuffer) DrawLines(offset, count int) {
	cb.appendInts(RendererDrawLines, offset, count)
}

// DrawTriangles adds a command to the command buffer to draw a number of
// triangles; each is specified by three vertices in the index
// buffer.
func (cb *CommandBuffer) DrawTriangles(offset, count int) {
	cb.appendInts(RendererDrawTriangles, offset, count)
}

// ResetState adds a command to the comment buffer that resets all of the
// assorted graphics state (blending, texturing, vertex arrays, stipple) to
// default values.
func (cb *CommandBuffer) ResetState() {
	cb.appendInts(RendererResetState)
}
