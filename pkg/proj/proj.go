// pkg/proj/proj.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package proj provides the map projections features may be expressed in
// and the transforms that take their coordinates to geographic
// longitude-latitude, which is what the globe renderer consumes.
package proj

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Code identifies a projection, e.g. "EPSG:3857".
type Code string

const (
	EPSG4326 Code = "EPSG:4326" // geographic longitude/latitude; native to the renderer
	EPSG3857 Code = "EPSG:3857" // spherical (web) mercator
)

// Projection describes how to take coordinates in a projection to WGS84
// longitude-latitude and back. Both functions are nil for geographic
// projections.
type Projection struct {
	Code      Code
	ToWGS84   orb.Projection
	FromWGS84 orb.Projection
}

func (p *Projection) Geographic() bool {
	return p.ToWGS84 == nil
}

var projections = map[Code]*Projection{
	EPSG4326: {Code: EPSG4326},
	EPSG3857: {
		Code:      EPSG3857,
		ToWGS84:   project.Mercator.ToWGS84,
		FromWGS84: project.WGS84.ToMercator,
	},
}

var aliases = map[Code]Code{
	"CRS:84":                        EPSG4326,
	"urn:ogc:def:crs:EPSG::4326":    EPSG4326,
	"urn:ogc:def:crs:OGC:1.3:CRS84": EPSG4326,
	"EPSG:900913":                   EPSG3857,
	"EPSG:102100":                   EPSG3857,
	"EPSG:102113":                   EPSG3857,
	"urn:ogc:def:crs:EPSG::3857":    EPSG3857,
	"http://www.opengis.net/gml/srs/epsg.xml#3857": EPSG3857,
}

// Normalize maps alias codes to their canonical code. Unknown codes are
// returned unchanged.
func Normalize(c Code) Code {
	if a, ok := aliases[c]; ok {
		return a
	}
	return c
}

// Lookup returns the Projection for the given code or alias.
func Lookup(c Code) (*Projection, error) {
	if p, ok := projections[Normalize(c)]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%s: %w", c, ErrUnknownProjection)
}

// Equivalent reports whether two codes name the same projection.
func Equivalent(a, b Code) bool {
	return Normalize(a) == Normalize(b)
}
