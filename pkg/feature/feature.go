// pkg/feature/feature.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package feature models the geographic features a map layer holds and
// the change notifications it emits as they are edited.
package feature

// Feature is a geographic entity with an identity, a geometry, a style
// and a bag of properties. Features are owned by at most one Layer, which
// is notified of changes made through the setters.
type Feature struct {
	id         string
	geometry   Geometry
	style      *Style
	properties map[string]any
	dynamic    bool
	revision   int
	layer      *Layer
}

func New(id string, g Geometry, s *Style) *Feature {
	return &Feature{id: id, geometry: g, style: s, properties: make(map[string]any)}
}

func (f *Feature) ID() string         { return f.id }
func (f *Feature) Geometry() Geometry { return f.geometry }
func (f *Feature) Style() *Style      { return f.style }
func (f *Feature) Layer() *Layer      { return f.layer }

// Dynamic reports whether the geometry is being edited in place, as
// opposed to being replaced wholesale.
func (f *Feature) Dynamic() bool {
	if _, ok := f.geometry.(BearingLine); ok {
		return true
	}
	return f.dynamic
}

// Revision is incremented each time the feature changes.
func (f *Feature) Revision() int { return f.revision }

// SetGeometry replaces the feature's geometry and clears its dynamic
// flag.
func (f *Feature) SetGeometry(g Geometry) {
	f.geometry = g
	f.dynamic = false
	f.changed(EventChange)
}

// MutateGeometry calls fn to edit the current geometry in place and marks
// the feature dynamic so that listeners may apply an incremental update.
// fn may also return a replacement of the same kind for value geometries
// such as BearingLine; a nil return keeps the current geometry.
func (f *Feature) MutateGeometry(fn func(Geometry) Geometry) {
	if g := fn(f.geometry); g != nil {
		f.geometry = g
	}
	f.dynamic = true
	f.changed(EventChange)
}

func (f *Feature) SetStyle(s *Style) {
	f.style = s
	f.changed(EventStyleChange)
}

func (f *Feature) Property(key string) (any, bool) {
	v, ok := f.properties[key]
	return v, ok
}

func (f *Feature) SetProperty(key string, v any) {
	f.properties[key] = v
	f.changed(EventChange)
}

func (f *Feature) changed(t EventType) {
	f.revision++
	if f.layer != nil {
		f.layer.notify(Event{Type: t, Feature: f})
	}
}
