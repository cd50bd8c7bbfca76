// pkg/math/ellipse.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl64"
)

// EllipseRing returns nsegs points of an ellipse in a local east-north
// plane, in metres. semiMajor lies along the given rotation (degrees
// clockwise from north). The ring is open; the first point is not
// repeated at the end.
func EllipseRing(semiMajor, semiMinor, rotation float64, nsegs int) [][2]float64 {
	rot := Radians(rotation)
	// Unit vectors along the major and minor axes.
	major := [2]float64{gomath.Sin(rot), gomath.Cos(rot)}
	minor := [2]float64{major[1], -major[0]}

	pts := make([][2]float64, nsegs)
	for i, c := range CirclePoints(nsegs) {
		// c[1] is cos(t) and c[0] is sin(t).
		a, b := semiMajor*c[1], semiMinor*c[0]
		pts[i] = [2]float64{a*major[0] + b*minor[0], a*major[1] + b*minor[1]}
	}
	return pts
}

// LocalToCartesian maps a point given in metres in the east-north-up
// frame at (lon, lat, alt) to earth-centered coordinates.
func LocalToCartesian(lon, lat, alt float64, p mgl64.Vec3) mgl64.Vec3 {
	east, north, up := ENUFrame(lon, lat)
	o := Cartesian(lon, lat, alt)
	return o.Add(east.Mul(p[0])).Add(north.Mul(p[1])).Add(up.Mul(p[2]))
}

// Ellipsoid tessellates an ellipsoid with the given horizontal semi-axes,
// vertical semi-axis height, and rotation into a latitude-longitude grid
// in the local east-north-up frame. It returns the vertex positions and
// triangle indices.
func Ellipsoid(semiMajor, semiMinor, height, rotation float64, nslices, nstacks int) ([]mgl64.Vec3, []int32) {
	ring := EllipseRing(1, 1, 0, nslices)
	rot := Radians(rotation)
	major := mgl64.Vec3{gomath.Sin(rot), gomath.Cos(rot), 0}
	minor := mgl64.Vec3{major[1], -major[0], 0}

	var pts []mgl64.Vec3
	for s := 0; s <= nstacks; s++ {
		phi := gomath.Pi * (float64(s)/float64(nstacks) - 0.5)
		r, z := gomath.Cos(phi), gomath.Sin(phi)
		for _, c := range ring {
			p := major.Mul(semiMajor * r * c[1]).Add(minor.Mul(semiMinor * r * c[0]))
			p[2] = height * z
			pts = append(pts, p)
		}
	}

	var indices []int32
	for s := 0; s < nstacks; s++ {
		for i := 0; i < nslices; i++ {
			i0 := int32(s*nslices + i)
			i1 := int32(s*nslices + (i+1)%nslices)
			i2, i3 := i0+int32(nslices), i1+int32(nslices)
			indices = append(indices, i0, i1, i3, i0, i3, i2)
		}
	}
	return pts, indices
}
