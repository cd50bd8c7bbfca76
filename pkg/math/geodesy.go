// pkg/math/geodesy.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl64"
)

// WGS84 ellipsoid parameters.
const (
	EarthSemiMajorAxis = 6378137.0 // metres
	EarthFlattening    = 1 / 298.257223563
	EarthMeanRadius    = 6371000.0 // metres

	earthE2 = EarthFlattening * (2 - EarthFlattening)
)

// Cartesian converts geodetic longitude and latitude (degrees) and height
// above the ellipsoid (metres) to earth-centered, earth-fixed coordinates.
func Cartesian(lon, lat, alt float64) mgl64.Vec3 {
	lambda, phi := Radians(lon), Radians(lat)
	sinPhi, cosPhi := gomath.Sin(phi), gomath.Cos(phi)
	n := EarthSemiMajorAxis / gomath.Sqrt(1-earthE2*sinPhi*sinPhi)

	return mgl64.Vec3{
		(n + alt) * cosPhi * gomath.Cos(lambda),
		(n + alt) * cosPhi * gomath.Sin(lambda),
		(n*(1-earthE2) + alt) * sinPhi,
	}
}

// Geodetic is the inverse of Cartesian; it returns longitude, latitude
// (degrees) and height (metres). A few fixed-point iterations are plenty
// for the precision of float32 vertex buffers.
func Geodetic(p mgl64.Vec3) (lon, lat, alt float64) {
	x, y, z := p[0], p[1], p[2]
	r := gomath.Hypot(x, y)
	lon = Degrees(gomath.Atan2(y, x))

	phi := gomath.Atan2(z, r*(1-earthE2))
	for range 5 {
		sinPhi := gomath.Sin(phi)
		n := EarthSemiMajorAxis / gomath.Sqrt(1-earthE2*sinPhi*sinPhi)
		alt = r/gomath.Cos(phi) - n
		phi = gomath.Atan2(z, r*(1-earthE2*n/(n+alt)))
	}
	return lon, Degrees(phi), alt
}

// ENUFrame returns the unit east, north, and up vectors of the local
// tangent frame at the given longitude and latitude.
func ENUFrame(lon, lat float64) (east, north, up mgl64.Vec3) {
	lambda, phi := Radians(lon), Radians(lat)
	sl, cl := gomath.Sin(lambda), gomath.Cos(lambda)
	sp, cp := gomath.Sin(phi), gomath.Cos(phi)

	east = mgl64.Vec3{-sl, cl, 0}
	north = mgl64.Vec3{-sp * cl, -sp * sl, cp}
	up = mgl64.Vec3{cp * cl, cp * sl, sp}
	return
}

// Destination returns the point reached by travelling dist metres from
// (lon, lat) along the great circle with initial bearing hdg (degrees
// clockwise from true north).
func Destination(lon, lat, hdg, dist float64) (float64, float64) {
	// https://www.movable-type.co.uk/scripts/latlong.html
	delta := dist / EarthMeanRadius
	theta := Radians(hdg)
	phi1, lambda1 := Radians(lat), Radians(lon)

	sinPhi2 := gomath.Sin(phi1)*gomath.Cos(delta) + gomath.Cos(phi1)*gomath.Sin(delta)*gomath.Cos(theta)
	phi2 := gomath.Asin(Clamp(sinPhi2, -1, 1))
	y := gomath.Sin(theta) * gomath.Sin(delta) * gomath.Cos(phi1)
	x := gomath.Cos(delta) - gomath.Sin(phi1)*sinPhi2
	lambda2 := lambda1 + gomath.Atan2(y, x)

	lon2 := gomath.Mod(Degrees(lambda2)+540, 360) - 180
	return lon2, Degrees(phi2)
}

// Distance returns the great circle distance in metres between two
// longitude-latitude points.
func Distance(lon1, lat1, lon2, lat2 float64) float64 {
	phi1, phi2 := Radians(lat1), Radians(lat2)
	dphi, dlambda := phi2-phi1, Radians(lon2-lon1)

	a := Sqr(gomath.Sin(dphi/2)) + gomath.Cos(phi1)*gomath.Cos(phi2)*Sqr(gomath.Sin(dlambda/2))
	c := 2 * gomath.Atan2(gomath.Sqrt(a), gomath.Sqrt(1-a))
	return EarthMeanRadius * c
}
