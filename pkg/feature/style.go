// pkg/feature/style.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package feature

import (
	"image"

	"github.com/geoscope/geoscope/pkg/renderer"
)

// Style describes how a feature is drawn. Styles are treated as immutable
// once assigned to a feature; to change one, assign a new Style.
type Style struct {
	Fill   *Fill
	Stroke *Stroke
	Image  *Icon
	Text   *Text
	// Extrude, if positive, raises polygons into prisms of this height in
	// meters.
	Extrude float64
	// ClampToGround drapes the feature on the surface, ignoring altitudes.
	ClampToGround bool
}

type Fill struct {
	Color renderer.RGBA
}

type Stroke struct {
	Color renderer.RGBA
	Width float32
	// Dash gives alternating on/off lengths in pixels; empty is solid.
	Dash []float32
}

// Icon describes the image drawn for a point. It is resolved from Image if
// set, and otherwise by decoding Data. Src identifies the icon for
// caching.
type Icon struct {
	Src   string
	Data  []byte
	Image image.Image
	Scale float32
	Color renderer.RGBA
}

type Text struct {
	Label string
	Color renderer.RGBA
	Scale float32
}

// DefaultStyle returns the style used for features loaded without one.
func DefaultStyle() *Style {
	return &Style{
		Fill:   &Fill{Color: renderer.RGBA{R: 0.33, G: 0.55, B: 0.85, A: 0.4}},
		Stroke: &Stroke{Color: renderer.RGBA{R: 0.33, G: 0.55, B: 0.85, A: 1}, Width: 2},
	}
}
