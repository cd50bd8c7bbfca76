// pkg/scene/context.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package scene keeps the primitives of a 3D globe in step with the
// features of a map layer. A Context listens to one layer and is the only
// writer of the two primitive collections it creates for it.
package scene

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"slices"
	"time"

	"github.com/geoscope/geoscope/pkg/feature"
	"github.com/geoscope/geoscope/pkg/log"
	"github.com/geoscope/geoscope/pkg/proj"
	"github.com/geoscope/geoscope/pkg/renderer"
	"github.com/geoscope/geoscope/pkg/util"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/iancoleman/orderedmap"
)

// Stats counts the work a Context has done.
type Stats struct {
	Creates         int // features or members for which primitives were created
	FailedCreates   int // create attempts that returned false
	InPlaceUpdates  int
	Fallbacks       int // in-place updates that failed and were recreated
	Recreates       int // updates that required delete+create, e.g. for a kind change
	Deletes         int
	SegmentRewrites int
	Deferred        int
	Desyncs         int
	KindMismatches  int
}

func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("creates", s.Creates),
		slog.Int("failed_creates", s.FailedCreates),
		slog.Int("in_place_updates", s.InPlaceUpdates),
		slog.Int("fallbacks", s.Fallbacks),
		slog.Int("recreates", s.Recreates),
		slog.Int("deletes", s.Deletes),
		slog.Int("segment_rewrites", s.SegmentRewrites),
		slog.Int("deferred", s.Deferred),
		slog.Int("desyncs", s.Desyncs),
		slog.Int("kind_mismatches", s.KindMismatches),
	)
}

// Context synchronizes the features of one layer with primitives in a
// scene. All methods must be called from the thread that renders the
// scene.
type Context struct {
	lg         *log.Logger
	config     Config
	layer      *feature.Layer
	scene      renderer.Scene
	pools      [renderer.NumPoolKinds]*renderer.Collection
	registry   *Registry
	owned      map[renderer.Primitive]*Handle
	transforms *proj.Cache
	icons      *lru.Cache[string, image.Image]

	converters        [feature.NumKinds]Converter
	dynamicConverters [feature.NumKinds]Converter

	// Features whose add or update arrived while inactive, keyed by ID in
	// arrival order.
	pending  *orderedmap.OrderedMap
	active   bool
	disposed bool
	stats    Stats
}

var _ feature.Listener = (*Context)(nil)

// NewContext creates a Context for the layer, adding its two primitive
// collections to the scene and subscribing to the layer's events.
// Coordinates are interpreted in the provider's active projection. The
// context starts active; call Sync to create primitives for features
// already in the layer. An invalid config is rejected with
// ErrInvalidConfig.
func NewContext(layer *feature.Layer, scene renderer.Scene, provider proj.Provider, config Config,
	lg *log.Logger) (*Context, error) {
	var e util.ErrorLogger
	config.Validate(&e)
	if e.HaveErrors() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, e.Err())
	}
	icons, err := lru.New[string, image.Image](config.IconCacheSize)
	if err != nil {
		return nil, fmt.Errorf("icon cache: %w", err)
	}

	c := &Context{
		lg:         lg.With(slog.String("layer", layer.Name)),
		config:     config,
		layer:      layer,
		scene:      scene,
		registry:   NewRegistry(),
		owned:      make(map[renderer.Primitive]*Handle),
		transforms: proj.NewCache(provider, proj.EPSG4326),
		icons:      icons,
		pending:    orderedmap.New(),
		active:     true,
	}
	c.converters, c.dynamicConverters = defaultConverters()
	for k := range renderer.NumPoolKinds {
		c.pools[k] = scene.AddCollection(k)
	}
	layer.AddListener(c)
	return c, nil
}

// SetConverter replaces the converter used for a geometry kind, either
// for static features or, if dynamic is set, for dynamic features.
func (c *Context) SetConverter(k feature.Kind, dynamic bool, cv Converter) {
	if dynamic {
		c.dynamicConverters[k] = cv
	} else {
		c.converters[k] = cv
	}
}

// dynamicPath reports whether a feature of the given kind takes the
// incremental path; kinds without a dynamic converter never do.
func (c *Context) dynamicPath(k feature.Kind, dynamic bool) bool {
	return dynamic && c.dynamicConverters[k] != nil
}

func (c *Context) converterFor(k feature.Kind, dynamic bool) Converter {
	if c.dynamicPath(k, dynamic) {
		return c.dynamicConverters[k]
	}
	return c.converters[k]
}

func (c *Context) Registry() *Registry { return c.registry }
func (c *Context) Stats() Stats        { return c.stats }
func (c *Context) Active() bool        { return c.active }

// Pool returns the collection of the given kind; it is nil after Dispose.
func (c *Context) Pool(k renderer.PoolKind) *renderer.Collection {
	return c.pools[k]
}

// HandleEvent applies a layer change notification.
func (c *Context) HandleEvent(e feature.Event) {
	c.lg.Debug("event", "event", e)
	switch e.Type {
	case feature.EventAdd:
		c.AddFeature(e.Feature)
	case feature.EventChange, feature.EventStyleChange:
		c.UpdateFeature(e.Feature)
	case feature.EventRemove:
		c.RemoveFeature(e.Feature)
	}
}

// Sync adds all of the layer's features.
func (c *Context) Sync() {
	for _, f := range c.layer.Features() {
		c.AddFeature(f)
	}
}

func request(f *feature.Feature) Request {
	s := f.Style()
	if s == nil {
		s = feature.DefaultStyle()
	}
	return Request{Key: Key{Feature: f.ID()}, Feature: f, Geometry: f.Geometry(), Style: s}
}

// deferred records f for processing when the context is next active,
// returning true if the caller should do nothing further.
func (c *Context) deferred(f *feature.Feature) bool {
	if c.disposed {
		return true
	}
	if !c.active {
		c.pending.Set(f.ID(), f)
		c.stats.Deferred++
		return true
	}
	return false
}

// AddFeature creates primitives for the feature. Any primitives it already
// has are replaced.
func (c *Context) AddFeature(f *feature.Feature) {
	if c.deferred(f) {
		return
	}
	if len(c.registry.ForFeature(f.ID())) > 0 {
		c.removeEntries(f)
	}
	c.create(request(f))
}

// create dispatches a request to the converter for its geometry's kind.
// Collections call back into it for each of their members.
func (c *Context) create(r Request) bool {
	if r.Geometry == nil {
		c.lg.Debugf("%s: no geometry", r.Key)
		return false
	}
	dynamic := r.Key.Index == 0 && r.Feature.Dynamic()
	if c.converterFor(r.Geometry.Kind(), dynamic).Create(c, r) {
		return true
	}
	c.lg.Debugf("%s: unable to create %s primitives", r.Key, r.Geometry.Kind())
	c.stats.FailedCreates++
	return false
}

// UpdateFeature brings the feature's primitives up to date, in place if
// possible and otherwise by deleting and recreating them.
func (c *Context) UpdateFeature(f *feature.Feature) {
	if c.deferred(f) {
		return
	}

	entries := c.registry.ForFeature(f.ID())
	if len(entries) == 0 {
		c.create(request(f))
		return
	}

	r := request(f)
	if r.Geometry == nil {
		c.removeEntries(f)
		return
	}
	dynamic := c.dynamicPath(r.Geometry.Kind(), f.Dynamic())
	cv := c.converterFor(r.Geometry.Kind(), dynamic)

	if r.Geometry.Kind() != feature.KindCollection {
		// A different kind or path requires new primitives; this is
		// never attempted in place.
		if e := entries[0]; len(entries) != 1 || e.Key != r.Key || e.Kind != r.Geometry.Kind() || e.Dynamic != dynamic {
			c.stats.Recreates++
			c.removeEntries(f)
			c.create(r)
			return
		}
	}

	if cv.Update(c, r, cv.Retrieve(c, r)) {
		c.stats.InPlaceUpdates++
		return
	}

	c.lg.Debugf("%s: in-place update failed; recreating", r.Key)
	c.stats.Fallbacks++
	c.removeEntries(f)
	c.create(r)
}

// Refresh updates every feature in the layer, e.g. after the active
// projection has changed.
func (c *Context) Refresh() error {
	if c.disposed {
		return ErrDisposed
	}
	for _, f := range c.layer.Features() {
		c.UpdateFeature(f)
	}
	return nil
}

// RemoveFeature detaches all of the feature's primitives. Removing a
// feature that has none is a no-op.
func (c *Context) RemoveFeature(f *feature.Feature) {
	c.pending.Delete(f.ID())
	if c.disposed {
		return
	}
	c.removeEntries(f)
}

// removeEntries deletes the primitives of each of the feature's entries
// using the converter for the kind the entry was created with, then
// erases the entries.
func (c *Context) removeEntries(f *feature.Feature) {
	for _, e := range c.registry.ForFeature(f.ID()) {
		c.removeEntry(e, f)
	}
}

func (c *Context) removeEntry(e *Entry, f *feature.Feature) {
	r := Request{Key: e.Key, Feature: f}
	c.converterFor(e.Kind, e.Dynamic).Delete(c, r, []*Entry{e})
	// The converter should have detached everything, but make sure.
	c.detachAll(e)
	c.registry.Delete(e.Key)
	c.stats.Deletes++
}

// SetActive pauses or resumes the context. While paused, additions and
// updates are queued and removals are applied immediately; resuming
// processes the queue in arrival order.
func (c *Context) SetActive(active bool) {
	if c.disposed || c.active == active {
		return
	}
	c.active = active
	if !active {
		return
	}

	for _, id := range slices.Clone(c.pending.Keys()) {
		v, _ := c.pending.Get(id)
		c.pending.Delete(id)
		c.UpdateFeature(v.(*feature.Feature))
	}
}

// Pending returns the IDs of features waiting for the context to become
// active.
func (c *Context) Pending() []string {
	return slices.Clone(c.pending.Keys())
}

// Tick runs the per-frame updates of dynamic primitives in key order.
func (c *Context) Tick(now time.Time) {
	if !c.active || c.disposed {
		return
	}
	for _, k := range c.registry.Keys() {
		if e := c.registry.Get(k); e != nil && e.ticker != nil {
			e.ticker.Tick(c, e, now)
		}
	}
}

// Dispose detaches every primitive, removes the context's collections
// from the scene and stops listening to the layer. Calling it again has
// no effect.
func (c *Context) Dispose() {
	if c.disposed {
		return
	}
	for _, k := range c.registry.Keys() {
		c.removeEntry(c.registry.Get(k), c.layer.Feature(k.Feature))
	}
	c.registry.Clear()
	for k, p := range c.pools {
		c.scene.RemoveCollection(p)
		c.pools[k] = nil
	}
	c.pending = orderedmap.New()
	c.layer.RemoveListener(c)
	c.disposed = true
	c.lg.Info("disposed", "stats", c.stats)
}

///////////////////////////////////////////////////////////////////////////
// Pool access. Everything that adds primitives to or removes them from the
// pools goes through the following methods.

func (c *Context) lookup(k Key) []*Entry {
	if e := c.registry.Get(k); e != nil {
		return []*Entry{e}
	}
	return nil
}

// register attaches the built primitives and records them in a new entry.
func (c *Context) register(k Key, kind feature.Kind, dynamic bool, b []built) *Entry {
	e := &Entry{Key: k, Kind: kind, Dynamic: dynamic}
	for _, bp := range b {
		c.attach(e, bp.pool, bp.prim)
	}
	c.registry.Set(e)
	c.stats.Creates++
	return e
}

func (c *Context) attach(e *Entry, pool renderer.PoolKind, p renderer.Primitive) {
	h := &Handle{prim: p, pool: pool}
	if c.pools[pool].Add(p) {
		h.attached = true
		c.owned[p] = h
	} else {
		c.lg.Warn("primitive already attached", "tag", p.Header().Tag, "pool", pool)
	}
	e.Handles = append(e.Handles, h)
}

func (c *Context) detach(h *Handle) {
	if !h.attached {
		return
	}
	if !c.pools[h.pool].Remove(h.prim) {
		// A previous partial failure; the primitive is gone either way.
		c.lg.Warn("primitive missing from pool; treating as removed", "tag", h.prim.Header().Tag,
			"pool", h.pool)
		c.stats.Desyncs++
	}
	delete(c.owned, h.prim)
	h.attached = false
}

func (c *Context) detachAll(e *Entry) {
	for _, h := range e.Handles {
		c.detach(h)
	}
}

// replace copies the contents of the built primitives into the entry's
// existing primitives, preserving their identity. It returns false
// without changing anything if the primitives do not correspond one to
// one by type and pool.
func (c *Context) replace(e *Entry, b []built) bool {
	if len(b) != len(e.Handles) {
		return false
	}
	for i, h := range e.Handles {
		if h.pool != b[i].pool || !sameType(h.prim, b[i].prim) {
			return false
		}
	}
	for i, h := range e.Handles {
		copyPrimitive(h.prim, b[i].prim)
	}
	return true
}

func sameType(a, b renderer.Primitive) bool {
	switch a.(type) {
	case *renderer.Billboard:
		_, ok := b.(*renderer.Billboard)
		return ok
	case *renderer.Polyline:
		_, ok := b.(*renderer.Polyline)
		return ok
	case *renderer.Mesh:
		_, ok := b.(*renderer.Mesh)
		return ok
	}
	return false
}

// copyPrimitive overwrites dst with src, keeping dst's header and
// recording the rewrite.
func copyPrimitive(dst, src renderer.Primitive) {
	hdr := *dst.Header()
	switch d := dst.(type) {
	case *renderer.Billboard:
		*d = *src.(*renderer.Billboard)
	case *renderer.Polyline:
		*d = *src.(*renderer.Polyline)
	case *renderer.Mesh:
		*d = *src.(*renderer.Mesh)
	}
	hdr.Tag = src.Header().Tag
	*dst.Header() = hdr
	dst.Header().Touch()
}

// CheckConsistency verifies that every registry entry's primitives are
// attached to exactly one of the context's pools and that every attached
// primitive belongs to an entry.
func (c *Context) CheckConsistency() error {
	if c.disposed {
		if c.registry.Len() > 0 {
			return fmt.Errorf("%d entries after dispose: %w", c.registry.Len(), ErrInconsistent)
		}
		return nil
	}

	var errs []error
	seen := make(map[renderer.Primitive]Key)
	for _, k := range c.registry.Keys() {
		e := c.registry.Get(k)
		if len(e.Handles) == 0 {
			errs = append(errs, fmt.Errorf("%s: entry without primitives: %w", k, ErrInconsistent))
		}
		for _, h := range e.Handles {
			tag := h.prim.Header().Tag
			if !h.attached {
				errs = append(errs, fmt.Errorf("%s: %s: detached primitive in registry: %w", k, tag, ErrInconsistent))
			}
			n := 0
			for pk, p := range c.pools {
				if p.Contains(h.prim) {
					n++
					if renderer.PoolKind(pk) != h.pool {
						errs = append(errs, fmt.Errorf("%s: %s: in %s pool, expected %s: %w", k, tag,
							renderer.PoolKind(pk), h.pool, ErrInconsistent))
					}
				}
			}
			if n != 1 {
				errs = append(errs, fmt.Errorf("%s: %s: attached to %d pools: %w", k, tag, n, ErrInconsistent))
			}
			if other, ok := seen[h.prim]; ok {
				errs = append(errs, fmt.Errorf("%s: %s: also referenced by %s: %w", k, tag, other, ErrInconsistent))
			}
			seen[h.prim] = k
		}
	}

	for _, p := range c.pools {
		for _, prim := range p.Primitives() {
			if _, ok := seen[prim]; !ok {
				errs = append(errs, fmt.Errorf("%s: orphaned primitive in %s pool: %w", prim.Header().Tag,
					p.Kind, ErrInconsistent))
			}
		}
	}
	if len(c.owned) != len(seen) {
		errs = append(errs, fmt.Errorf("%d owned primitives, %d registered: %w", len(c.owned), len(seen),
			ErrInconsistent))
	}

	return errors.Join(errs...)
}
