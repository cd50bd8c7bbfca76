// pkg/scene/collection.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scene

import (
	"github.com/geoscope/geoscope/pkg/feature"
)

// collectionConverter has no primitives of its own. Each member geometry
// is dispatched with its own key, numbered depth first as feature.Walk
// does, so that members of nested collections are registered
// individually.
type collectionConverter struct{}

// subtreeSize returns the number of keys used by g and its members.
func subtreeSize(g feature.Geometry) int {
	n := 0
	feature.Walk(g, func(int, feature.Geometry) { n++ })
	return n
}

// members returns the requests for the collection's direct members.
func members(r Request, g feature.Collection) []Request {
	rs := make([]Request, 0, len(g))
	idx := r.Key.Index + 1
	for _, m := range g {
		rs = append(rs, Request{
			Key:      Key{Feature: r.Key.Feature, Index: idx},
			Feature:  r.Feature,
			Geometry: m,
			Style:    r.Style,
		})
		idx += subtreeSize(m)
	}
	return rs
}

// Create creates each member independently; one member failing does not
// prevent the others from being created. It reports whether any member
// was.
func (collectionConverter) Create(c *Context, r Request) bool {
	g, ok := r.Geometry.(feature.Collection)
	if !ok {
		c.kindMismatch(feature.KindCollection, r)
		return false
	}
	created := false
	for _, m := range members(r, g) {
		if c.create(m) {
			created = true
		}
	}
	return created
}

// Retrieve returns the entries of all of the collection's members.
func (collectionConverter) Retrieve(c *Context, r Request) []*Entry {
	last := r.Key.Index + subtreeSize(r.Geometry) - 1
	var e []*Entry
	for _, m := range c.registry.ForFeature(r.Key.Feature) {
		if m.Key.Index > r.Key.Index && m.Key.Index <= last {
			e = append(e, m)
		}
	}
	return e
}

// Update always fails: members may differ in kind from one revision to
// the next, so collections are rebuilt.
func (collectionConverter) Update(c *Context, r Request, existing []*Entry) bool {
	return false
}

// Delete hands each member entry to the converter that created it.
func (collectionConverter) Delete(c *Context, r Request, existing []*Entry) bool {
	deleted := false
	for _, e := range existing {
		m := Request{Key: e.Key, Feature: r.Feature}
		if c.converterFor(e.Kind, e.Dynamic).Delete(c, m, []*Entry{e}) {
			deleted = true
		}
	}
	return deleted
}
