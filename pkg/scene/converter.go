// pkg/scene/converter.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scene

import (
	"fmt"
	"time"

	"github.com/geoscope/geoscope/pkg/feature"
	"github.com/geoscope/geoscope/pkg/renderer"
)

// Request carries what a converter needs to know about the geometry it is
// asked to handle. Geometry is the geometry at Key, which for members of
// a collection is not the feature's top-level geometry.
type Request struct {
	Key      Key
	Feature  *feature.Feature
	Geometry feature.Geometry
	Style    *feature.Style
}

// Converter turns geometries of one kind into primitives. Converters are
// stateless; the primitives they create are attached and detached only
// through the Context.
type Converter interface {
	// Create builds and attaches primitives for the request, returning
	// false if it could not, e.g. because a required icon is missing.
	Create(c *Context, r Request) bool

	// Retrieve returns the registry entries holding the request's
	// primitives, or nil if there are none.
	Retrieve(c *Context, r Request) []*Entry

	// Update revises the existing primitives in place. It returns false
	// if that is not possible, in which case the caller deletes and
	// recreates them.
	Update(c *Context, r Request, existing []*Entry) bool

	// Delete detaches the existing primitives.
	Delete(c *Context, r Request, existing []*Entry) bool
}

// Ticker is implemented by converters whose primitives change with time.
// Tick is called once per frame for each entry the converter created.
type Ticker interface {
	Tick(c *Context, e *Entry, now time.Time)
}

// built is a primitive that has been constructed but not yet attached.
type built struct {
	pool renderer.PoolKind
	prim renderer.Primitive
}

// staticConverter implements the converter contract for kinds whose
// primitives are rebuilt wholesale from the geometry on every change. The
// same build function serves Create and Update, so an in-place update
// leaves the scene exactly as delete followed by create would.
type staticConverter struct {
	kind  feature.Kind
	build func(c *Context, r Request) ([]built, bool)
}

func (s staticConverter) Create(c *Context, r Request) bool {
	b, ok := s.build(c, r)
	if !ok || len(b) == 0 {
		return false
	}
	c.register(r.Key, s.kind, false, b)
	return true
}

func (s staticConverter) Retrieve(c *Context, r Request) []*Entry {
	return c.lookup(r.Key)
}

func (s staticConverter) Update(c *Context, r Request, existing []*Entry) bool {
	if len(existing) != 1 {
		return false
	}
	b, ok := s.build(c, r)
	if !ok {
		return false
	}
	return c.replace(existing[0], b)
}

func (s staticConverter) Delete(c *Context, r Request, existing []*Entry) bool {
	for _, e := range existing {
		c.detachAll(e)
	}
	return len(existing) > 0
}

// defaultConverters returns the converter for each geometry kind; the
// second table overrides the first for dynamic features.
func defaultConverters() (static, dynamic [feature.NumKinds]Converter) {
	static = [feature.NumKinds]Converter{
		feature.KindPoint:           staticConverter{kind: feature.KindPoint, build: buildPoint},
		feature.KindLineString:      staticConverter{kind: feature.KindLineString, build: buildLineString},
		feature.KindPolygon:         staticConverter{kind: feature.KindPolygon, build: buildPolygon},
		feature.KindMultiPoint:      staticConverter{kind: feature.KindMultiPoint, build: buildMultiPoint},
		feature.KindMultiLineString: staticConverter{kind: feature.KindMultiLineString, build: buildMultiLineString},
		feature.KindMultiPolygon:    staticConverter{kind: feature.KindMultiPolygon, build: buildMultiPolygon},
		feature.KindCollection:      collectionConverter{},
		feature.KindEllipse:         staticConverter{kind: feature.KindEllipse, build: buildEllipse},
		feature.KindBearingLine:     segmentConverter{kind: feature.KindBearingLine},
	}
	dynamic = [feature.NumKinds]Converter{
		feature.KindLineString:      segmentConverter{kind: feature.KindLineString},
		feature.KindPolygon:         segmentConverter{kind: feature.KindPolygon},
		feature.KindMultiLineString: segmentConverter{kind: feature.KindMultiLineString},
		feature.KindBearingLine:     segmentConverter{kind: feature.KindBearingLine},
	}

	for k, cv := range static {
		if cv == nil {
			panic(fmt.Sprintf("no converter for %s", feature.Kind(k)))
		}
	}
	return
}

// kindMismatch handles a converter being given a geometry it cannot
// convert. It is a programming error: fatal in debug builds and otherwise
// logged and ignored.
func (c *Context) kindMismatch(want feature.Kind, r Request) {
	err := fmt.Errorf("%s: %s converter given %T: %w", r.Key, want, r.Geometry, ErrKindMismatch)
	assert(err)
	c.lg.Error("kind mismatch", "error", err)
	c.stats.KindMismatches++
}
