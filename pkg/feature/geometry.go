// pkg/feature/geometry.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package feature

import (
	"fmt"
	"slices"
	"time"

	"github.com/twpayne/go-geom"
)

// Kind identifies the type of a Geometry.
type Kind int

const (
	KindPoint Kind = iota
	KindLineString
	KindPolygon
	KindMultiPoint
	KindMultiLineString
	KindMultiPolygon
	KindCollection
	KindEllipse
	KindBearingLine
	NumKinds
)

func (k Kind) String() string {
	if k < 0 || k >= NumKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return [...]string{"Point", "LineString", "Polygon", "MultiPoint", "MultiLineString",
		"MultiPolygon", "GeometryCollection", "Ellipse", "BearingLine"}[k]
}

// Geometry is implemented only by the types in this package: Point,
// LineString, Polygon, MultiPoint, MultiLineString, MultiPolygon,
// Collection, Ellipse, and BearingLine.
type Geometry interface {
	Kind() Kind
	isGeometry()
}

// Vertex geometries wrap the corresponding go-geom types, which store
// coordinates in a single flat array with per-ring end offsets.
type (
	Point           struct{ *geom.Point }
	LineString      struct{ *geom.LineString }
	Polygon         struct{ *geom.Polygon }
	MultiPoint      struct{ *geom.MultiPoint }
	MultiLineString struct{ *geom.MultiLineString }
	MultiPolygon    struct{ *geom.MultiPolygon }
)

// Collection is a heterogeneous list of geometries.
type Collection []Geometry

// Ellipse is an analytic shape centered at Center with the given
// semi-axes in meters. Rotation gives the direction of the major axis in
// degrees clockwise from north. A positive Height makes it an ellipsoid
// with that vertical semi-axis.
type Ellipse struct {
	Center               geom.Coord
	SemiMajor, SemiMinor float64
	Rotation             float64
	Height               float64
}

// BearingLine is a line of the given Range (meters) from Origin along
// Bearing (degrees true). The bearing sweeps at Rate degrees per second
// starting at Epoch.
type BearingLine struct {
	Origin  geom.Coord
	Bearing float64
	Range   float64
	Rate    float64
	Epoch   time.Time
}

// BearingAt returns the line's bearing at time t.
func (b BearingLine) BearingAt(t time.Time) float64 {
	if b.Rate == 0 || b.Epoch.IsZero() {
		return b.Bearing
	}
	return b.Bearing + b.Rate*t.Sub(b.Epoch).Seconds()
}

func (Point) Kind() Kind           { return KindPoint }
func (LineString) Kind() Kind      { return KindLineString }
func (Polygon) Kind() Kind         { return KindPolygon }
func (MultiPoint) Kind() Kind      { return KindMultiPoint }
func (MultiLineString) Kind() Kind { return KindMultiLineString }
func (MultiPolygon) Kind() Kind    { return KindMultiPolygon }
func (Collection) Kind() Kind      { return KindCollection }
func (Ellipse) Kind() Kind         { return KindEllipse }
func (BearingLine) Kind() Kind     { return KindBearingLine }

func (Point) isGeometry()           {}
func (LineString) isGeometry()      {}
func (Polygon) isGeometry()         {}
func (MultiPoint) isGeometry()      {}
func (MultiLineString) isGeometry() {}
func (MultiPolygon) isGeometry()    {}
func (Collection) isGeometry()      {}
func (Ellipse) isGeometry()         {}
func (BearingLine) isGeometry()     {}

func layoutFor(stride int) geom.Layout {
	if stride >= 3 {
		return geom.XYZ
	}
	return geom.XY
}

// NewPoint returns a Point at the given coordinate; two ordinates give an
// XY point and three an XYZ point.
func NewPoint(c ...float64) Point {
	return Point{geom.NewPointFlat(layoutFor(len(c)), slices.Clone(c))}
}

func NewLineString(layout geom.Layout, flat ...float64) LineString {
	return LineString{geom.NewLineStringFlat(layout, flat)}
}

func NewPolygon(layout geom.Layout, flat []float64, ends []int) Polygon {
	return Polygon{geom.NewPolygonFlat(layout, flat, ends)}
}

func NewMultiPoint(layout geom.Layout, flat ...float64) MultiPoint {
	return MultiPoint{geom.NewMultiPointFlat(layout, flat)}
}

func NewMultiLineString(layout geom.Layout, flat []float64, ends []int) MultiLineString {
	return MultiLineString{geom.NewMultiLineStringFlat(layout, flat, ends)}
}

func NewMultiPolygon(layout geom.Layout, flat []float64, endss [][]int) MultiPolygon {
	return MultiPolygon{geom.NewMultiPolygonFlat(layout, flat, endss)}
}

// FromGeom converts a go-geom geometry to a Geometry.
func FromGeom(g geom.T) (Geometry, error) {
	switch g := g.(type) {
	case *geom.Point:
		return Point{g}, nil
	case *geom.LineString:
		return LineString{g}, nil
	case *geom.Polygon:
		return Polygon{g}, nil
	case *geom.MultiPoint:
		return MultiPoint{g}, nil
	case *geom.MultiLineString:
		return MultiLineString{g}, nil
	case *geom.MultiPolygon:
		return MultiPolygon{g}, nil
	case *geom.GeometryCollection:
		var c Collection
		for _, m := range g.Geoms() {
			mg, err := FromGeom(m)
			if err != nil {
				return nil, err
			}
			c = append(c, mg)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%T: %w", g, ErrUnsupportedGeometry)
	}
}

// Clone returns a deep copy of g.
func Clone(g Geometry) Geometry {
	switch g := g.(type) {
	case Point:
		return Point{g.Point.Clone()}
	case LineString:
		return LineString{g.LineString.Clone()}
	case Polygon:
		return Polygon{g.Polygon.Clone()}
	case MultiPoint:
		return MultiPoint{g.MultiPoint.Clone()}
	case MultiLineString:
		return MultiLineString{g.MultiLineString.Clone()}
	case MultiPolygon:
		return MultiPolygon{g.MultiPolygon.Clone()}
	case Collection:
		c := make(Collection, len(g))
		for i, m := range g {
			c[i] = Clone(m)
		}
		return c
	case Ellipse:
		g.Center = slices.Clone(g.Center)
		return g
	case BearingLine:
		g.Origin = slices.Clone(g.Origin)
		return g
	case nil:
		return nil
	default:
		panic(fmt.Sprintf("%T: unhandled geometry", g))
	}
}

// Walk calls fn for g and, depth first, for each member of any
// collections it contains. The index passed to fn is zero for g and
// increments for each member visited.
func Walk(g Geometry, fn func(index int, g Geometry)) {
	idx := 0
	var walk func(Geometry)
	walk = func(g Geometry) {
		fn(idx, g)
		idx++
		if c, ok := g.(Collection); ok {
			for _, m := range c {
				walk(m)
			}
		}
	}
	walk(g)
}
