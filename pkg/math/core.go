// pkg/math/core.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"

	"golang.org/x/exp/constraints"
)

// Degrees converts an angle expressed in radians to degrees
func Degrees(r float64) float64 {
	return r * 180 / gomath.Pi
}

// Radians converts an angle expressed in degrees to radians
func Radians(d float64) float64 {
	return d / 180 * gomath.Pi
}

func Abs[V constraints.Integer | constraints.Float](x V) V {
	if x < 0 {
		return -x
	}
	return x
}

func Sqr[V constraints.Integer | constraints.Float](v V) V { return v * v }

func Clamp[T constraints.Ordered](x T, low T, high T) T {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}

// NormalizeHeading reduces h to [0,360).
func NormalizeHeading(h float64) float64 {
	h = gomath.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// CirclePoints returns the vertices for a unit circle at the origin with
// the given number of segments, starting at (0,1) and proceeding
// clockwise (i.e., in compass order).
func CirclePoints(nsegs int) [][2]float64 {
	pts := make([][2]float64, nsegs)
	for d := range nsegs {
		angle := Radians(float64(d) / float64(nsegs) * 360)
		pts[d] = [2]float64{gomath.Sin(angle), gomath.Cos(angle)}
	}
	return pts
}
