// pkg/feature/layer.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package feature

import (
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"slices"
)

type EventType int

const (
	EventAdd EventType = iota
	EventChange
	EventStyleChange
	EventRemove
)

func (t EventType) String() string {
	return [...]string{"add", "change", "style-change", "remove"}[t]
}

// Event is delivered to layer listeners, synchronously and in the order
// the changes were made.
type Event struct {
	Type    EventType
	Feature *Feature
}

func (e Event) LogValue() slog.Value {
	return slog.GroupValue(slog.String("type", e.Type.String()), slog.String("feature", e.Feature.ID()))
}

type Listener interface {
	HandleEvent(Event)
}

// Layer is an ordered set of features with unique IDs.
type Layer struct {
	Name      string
	features  []*Feature
	byID      map[string]*Feature
	listeners []Listener
}

func NewLayer(name string) *Layer {
	return &Layer{Name: name, byID: make(map[string]*Feature)}
}

func (l *Layer) Add(f *Feature) error {
	if f.layer != nil {
		return fmt.Errorf("%s: %w", f.id, ErrFeatureInLayer)
	}
	if _, ok := l.byID[f.id]; ok {
		return fmt.Errorf("%s: %w", f.id, ErrDuplicateFeature)
	}
	l.insert(f)
	return nil
}

// insert appends f, which must not belong to a layer and whose ID must
// not already be in l.
func (l *Layer) insert(f *Feature) {
	f.layer = l
	l.features = append(l.features, f)
	l.byID[f.id] = f
	l.notify(Event{Type: EventAdd, Feature: f})
}

// Remove removes the feature with the given ID, returning false if there
// is no such feature.
func (l *Layer) Remove(id string) bool {
	f, ok := l.byID[id]
	if !ok {
		return false
	}

	l.features = slices.DeleteFunc(l.features, func(g *Feature) bool { return g == f })
	delete(l.byID, id)
	l.notify(Event{Type: EventRemove, Feature: f})
	f.layer = nil
	return true
}

// Clear removes all features, in order.
func (l *Layer) Clear() {
	for len(l.features) > 0 {
		l.Remove(l.features[0].id)
	}
}

// Merge brings l into agreement with src, e.g. after the layer's file has
// been reloaded. Features in both keep their identity in l and are only
// sent the changes that differ, so listeners see updates rather than a
// removal followed by an addition. src is not modified.
func (l *Layer) Merge(src *Layer) {
	for _, f := range l.Features() {
		if _, ok := src.byID[f.id]; !ok {
			l.Remove(f.id)
		}
	}

	for _, sf := range src.features {
		f, ok := l.byID[sf.id]
		if !ok {
			f = New(sf.id, Clone(sf.geometry), sf.style)
			maps.Copy(f.properties, sf.properties)
			l.insert(f)
			continue
		}

		f.properties = maps.Clone(sf.properties)
		if !reflect.DeepEqual(f.geometry, sf.geometry) {
			f.SetGeometry(Clone(sf.geometry))
		}
		if !reflect.DeepEqual(f.style, sf.style) {
			f.SetStyle(sf.style)
		}
	}
}

func (l *Layer) Feature(id string) *Feature {
	return l.byID[id]
}

// Features returns the layer's features in insertion order.
func (l *Layer) Features() []*Feature {
	return slices.Clone(l.features)
}

func (l *Layer) Len() int {
	return len(l.features)
}

func (l *Layer) AddListener(li Listener) {
	l.listeners = append(l.listeners, li)
}

func (l *Layer) RemoveListener(li Listener) {
	l.listeners = slices.DeleteFunc(l.listeners, func(x Listener) bool { return x == li })
}

func (l *Layer) notify(e Event) {
	for _, li := range l.listeners {
		li.HandleEvent(e)
	}
}
