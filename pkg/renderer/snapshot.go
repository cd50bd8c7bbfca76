// pkg/renderer/snapshot.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"cmp"
	"fmt"
	"io"
	"reflect"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// PrimitiveState is a canonical description of a single primitive's
// visible state. Revision is not included, so that two
// scenes built along different paths compare equal when they look the
// same.
type PrimitiveState struct {
	Tag        string       `msgpack:"tag"`
	Pool       PoolKind     `msgpack:"pool"`
	Type       string       `msgpack:"type"`
	Positions  [][3]float64 `msgpack:"pos,omitempty"`
	Indices    []int32      `msgpack:"idx,omitempty"`
	Color      RGBA         `msgpack:"color"`
	Width      float32      `msgpack:"width,omitempty"`
	Dash       uint16       `msgpack:"dash,omitempty"`
	Scale      float32      `msgpack:"scale,omitempty"`
	Label      string       `msgpack:"label,omitempty"`
	LabelColor RGBA         `msgpack:"label_color"`
	ImageSize  [2]int       `msgpack:"image_size"`
}

// Snapshot describes everything attached to a Globe, sorted by tag.
type Snapshot struct {
	Primitives []PrimitiveState `msgpack:"primitives"`
}

func (g *Globe) Snapshot() Snapshot {
	var s Snapshot
	for _, c := range g.collections {
		for _, p := range c.prims {
			s.Primitives = append(s.Primitives, primitiveState(c.Kind, p))
		}
	}
	slices.SortFunc(s.Primitives, func(a, b PrimitiveState) int {
		return cmp.Or(cmp.Compare(a.Tag, b.Tag), cmp.Compare(a.Pool, b.Pool))
	})
	return s
}

func positions(p []mgl64.Vec3) [][3]float64 {
	if len(p) == 0 {
		return nil
	}
	v := make([][3]float64, len(p))
	for i := range p {
		v[i] = [3]float64(p[i])
	}
	return v
}

func primitiveState(pool PoolKind, p Primitive) PrimitiveState {
	ps := PrimitiveState{Tag: p.Header().Tag, Pool: pool}
	switch prim := p.(type) {
	case *Billboard:
		ps.Type = "billboard"
		ps.Positions = positions([]mgl64.Vec3{prim.Position})
		ps.Color = prim.Color
		ps.Scale = prim.Scale
		ps.Label = prim.Label
		ps.LabelColor = prim.LabelColor
		if prim.Image != nil {
			b := prim.Image.Bounds()
			ps.ImageSize = [2]int{b.Dx(), b.Dy()}
		}
	case *Polyline:
		ps.Type = "polyline"
		ps.Positions = positions(prim.Positions)
		ps.Color = prim.Color
		ps.Width = prim.Width
		ps.Dash = prim.Dash
	case *Mesh:
		ps.Type = "mesh"
		ps.Positions = positions(prim.Positions)
		ps.Indices = slices.Clone(prim.Indices)
		ps.Color = prim.Color
	default:
		panic(fmt.Sprintf("%T: unhandled primitive type", p))
	}
	return ps
}

// Equal reports whether the two snapshots describe the same scene.
func (s Snapshot) Equal(o Snapshot) bool {
	return reflect.DeepEqual(s, o)
}

// Diff returns the tags of primitives that differ between the two
// snapshots.
func (s Snapshot) Diff(o Snapshot) []string {
	a := make(map[string][]PrimitiveState)
	for _, p := range s.Primitives {
		a[p.Tag] = append(a[p.Tag], p)
	}
	b := make(map[string][]PrimitiveState)
	for _, p := range o.Primitives {
		b[p.Tag] = append(b[p.Tag], p)
	}

	var diff []string
	for tag, pa := range a {
		if !reflect.DeepEqual(pa, b[tag]) {
			diff = append(diff, tag)
		}
	}
	for tag := range b {
		if _, ok := a[tag]; !ok {
			diff = append(diff, tag)
		}
	}
	slices.Sort(diff)
	return diff
}

// Encode writes the snapshot as zstd-compressed msgpack.
func (s Snapshot) Encode(w io.Writer) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	defer zw.Close()

	if err := msgpack.NewEncoder(zw).Encode(s); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to close zstd writer: %w", err)
	}
	return nil
}

// DecodeSnapshot reads a snapshot written by Snapshot.Encode.
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	var s Snapshot
	if err := msgpack.NewDecoder(zr).Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return s, nil
}
