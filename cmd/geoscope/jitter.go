// cmd/geoscope/jitter.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"github.com/geoscope/geoscope/pkg/feature"
	"github.com/geoscope/geoscope/pkg/rand"
)

// metersPerDegree is the approximate length of a degree of latitude.
const metersPerDegree = 111320

// Jitter simulates live track updates: each step moves one randomly
// chosen vertex of every line feature by up to Amount in each axis.
type Jitter struct {
	Amount float64 // in the layers' coordinate units
	r      *rand.Rand
}

// NewJitter returns a Jitter moving vertices by up to meters, which is
// converted to degrees when the layers are in geographic coordinates.
func NewJitter(meters float64, geographic bool, seed uint64) *Jitter {
	if geographic {
		meters /= metersPerDegree
	}
	return &Jitter{Amount: meters, r: rand.New(seed)}
}

// Step moves a vertex of each line feature in the layers. Features are
// visited in a random order so that listeners don't always see the same
// feature change first.
func (j *Jitter) Step(layers []*feature.Layer) {
	for _, l := range layers {
		for _, f := range rand.Permute(l.Features(), j.r.Uint32()) {
			switch f.Geometry().(type) {
			case feature.LineString, feature.MultiLineString:
				f.MutateGeometry(func(g feature.Geometry) feature.Geometry {
					j.move(g)
					return nil
				})
			}
		}
	}
}

func (j *Jitter) move(g feature.Geometry) {
	var flat []float64
	var stride int
	switch g := g.(type) {
	case feature.LineString:
		flat, stride = g.FlatCoords(), g.Stride()
	case feature.MultiLineString:
		flat, stride = g.FlatCoords(), g.Stride()
	}
	if stride < 2 || len(flat) < stride {
		return
	}
	i := j.r.Intn(len(flat)/stride) * stride
	flat[i] += j.r.Uniform(-j.Amount, j.Amount)
	flat[i+1] += j.r.Uniform(-j.Amount, j.Amount)
}
