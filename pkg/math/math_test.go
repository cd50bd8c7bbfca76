// pkg/math/math_test.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
	"testing"
)

func TestNormalizeHeading(t *testing.T) {
	for _, tc := range [][2]float64{{0, 0}, {360, 0}, {-90, 270}, {725, 5}, {359.5, 359.5}} {
		if h := NormalizeHeading(tc[0]); h != tc[1] {
			t.Errorf("NormalizeHeading(%f) = %f, expected %f", tc[0], h, tc[1])
		}
	}
}

func TestCartesianRoundTrip(t *testing.T) {
	for _, p := range [][3]float64{
		{0, 0, 0},
		{-73.771385, 40.6328888, 0},
		{151.2, -33.9, 1200},
		{12.5, 89.0, 35000},
	} {
		c := Cartesian(p[0], p[1], p[2])
		lon, lat, alt := Geodetic(c)
		if Abs(lon-p[0]) > 1e-7 || Abs(lat-p[1]) > 1e-7 || Abs(alt-p[2]) > 1e-3 {
			t.Errorf("%v: round trip gave (%f, %f, %f)", p, lon, lat, alt)
		}
	}

	// The equator at the prime meridian is one semi-major axis along +x.
	c := Cartesian(0, 0, 0)
	if Abs(c[0]-EarthSemiMajorAxis) > 1e-6 || Abs(c[1]) > 1e-6 || Abs(c[2]) > 1e-6 {
		t.Errorf("unexpected ECEF for (0,0): %v", c)
	}
}

func TestDestination(t *testing.T) {
	// Due north by one degree of arc.
	dist := Radians(1) * EarthMeanRadius
	lon, lat := Destination(10, 20, 0, dist)
	if Abs(lon-10) > 1e-9 || Abs(lat-21) > 1e-9 {
		t.Errorf("due north: got (%f, %f)", lon, lat)
	}

	// Destination then Distance should agree.
	lon, lat = Destination(-75.27, 39.86, 123, 50000)
	if d := Distance(-75.27, 39.86, lon, lat); Abs(d-50000) > 0.01 {
		t.Errorf("distance %f, expected 50000", d)
	}
}

func TestEllipseRing(t *testing.T) {
	pts := EllipseRing(200, 100, 90, 4)
	// With a rotation of 90 degrees the major axis points east.
	expected := [][2]float64{{200, 0}, {0, -100}, {-200, 0}, {0, 100}}
	for i := range pts {
		for d := range 2 {
			if Abs(pts[i][d]-expected[i][d]) > 1e-9 {
				t.Errorf("point %d: got %v, expected %v", i, pts[i], expected[i])
			}
		}
	}
}

func TestEllipsoid(t *testing.T) {
	pts, idx := Ellipsoid(300, 200, 100, 0, 8, 4)
	if len(pts) != 8*5 {
		t.Errorf("got %d vertices, expected 40", len(pts))
	}
	if len(idx) != 8*4*6 {
		t.Errorf("got %d indices, expected %d", len(idx), 8*4*6)
	}
	for _, i := range idx {
		if int(i) >= len(pts) {
			t.Fatalf("index %d out of range", i)
		}
	}
	// Poles are at +/- height.
	if Abs(pts[0][2]+100) > 1e-9 || Abs(pts[len(pts)-1][2]-100) > 1e-9 {
		t.Errorf("unexpected pole heights %f, %f", pts[0][2], pts[len(pts)-1][2])
	}
	for _, p := range pts {
		// With no rotation the major axis points north.
		v := Sqr(p[0]/200) + Sqr(p[1]/300) + Sqr(p[2]/100)
		if gomath.Abs(v-1) > 1e-9 {
			t.Errorf("%v is not on the ellipsoid", p)
		}
	}
}
