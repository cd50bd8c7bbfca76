// pkg/scene/registry.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scene

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/geoscope/geoscope/pkg/feature"
)

// Key identifies the primitives drawn for one geometry of a feature.
// Index 0 is the feature's geometry; members of a geometry collection are
// numbered from 1 in depth-first order.
type Key struct {
	Feature string
	Index   int
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.Feature, k.Index)
}

func (k Key) Compare(o Key) int {
	return cmp.Or(cmp.Compare(k.Feature, o.Feature), cmp.Compare(k.Index, o.Index))
}

// Entry records the primitives currently representing one geometry.
type Entry struct {
	Key     Key
	Kind    feature.Kind
	Dynamic bool
	Handles []*Handle

	// Set for entries whose primitives are updated every frame.
	source *feature.Feature
	ticker Ticker
	segs   *segments
}

// Registry maps keys to entries. It is a plain data structure; Context
// maintains the correspondence between entries and attached primitives.
type Registry struct {
	entries   map[Key]*Entry
	byFeature map[string]map[int]*Entry
}

func NewRegistry() *Registry {
	return &Registry{
		entries:   make(map[Key]*Entry),
		byFeature: make(map[string]map[int]*Entry),
	}
}

func (r *Registry) Get(k Key) *Entry {
	return r.entries[k]
}

func (r *Registry) Set(e *Entry) {
	r.entries[e.Key] = e
	m, ok := r.byFeature[e.Key.Feature]
	if !ok {
		m = make(map[int]*Entry)
		r.byFeature[e.Key.Feature] = m
	}
	m[e.Key.Index] = e
}

func (r *Registry) Delete(k Key) {
	delete(r.entries, k)
	if m, ok := r.byFeature[k.Feature]; ok {
		delete(m, k.Index)
		if len(m) == 0 {
			delete(r.byFeature, k.Feature)
		}
	}
}

// ForFeature returns the feature's entries ordered by index.
func (r *Registry) ForFeature(id string) []*Entry {
	m := r.byFeature[id]
	if len(m) == 0 {
		return nil
	}
	idx := slices.Sorted(maps.Keys(m))
	e := make([]*Entry, len(idx))
	for i, ix := range idx {
		e[i] = m[ix]
	}
	return e
}

func (r *Registry) Len() int {
	return len(r.entries)
}

// Keys returns all keys in sorted order.
func (r *Registry) Keys() []Key {
	return slices.SortedFunc(maps.Keys(r.entries), Key.Compare)
}

func (r *Registry) Clear() {
	clear(r.entries)
	clear(r.byFeature)
}
