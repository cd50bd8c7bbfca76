// pkg/scene/config.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scene

import (
	"github.com/geoscope/geoscope/pkg/util"
)

// Config holds the tunable parameters of a Context.
type Config struct {
	// EllipseSegments is the number of vertices around ellipses and the
	// number of slices of ellipsoids.
	EllipseSegments int `json:"ellipse_segments"`
	// EllipsoidStacks is the number of latitudinal bands of ellipsoids.
	EllipsoidStacks int `json:"ellipsoid_stacks"`
	// BearingSegments is the number of segments bearing lines are split
	// into.
	BearingSegments int `json:"bearing_segments"`
	// MoveEpsilon is the distance in meters a dynamic segment's endpoint
	// must move before the segment is rewritten. With the default of zero
	// any change rewrites it.
	MoveEpsilon float64 `json:"move_epsilon"`
	// IconCacheSize bounds the number of decoded icon images kept.
	IconCacheSize int `json:"icon_cache_size"`
}

func DefaultConfig() Config {
	return Config{
		EllipseSegments: 64,
		EllipsoidStacks: 16,
		BearingSegments: 8,
		IconCacheSize:   256,
	}
}

// Validate reports problems with the configuration to e.
func (c Config) Validate(e *util.ErrorLogger) {
	check := func(name string, v, min int) {
		if v < min {
			e.ErrorString("%s: must be at least %d, got %d", name, min, v)
		}
	}
	check("ellipse_segments", c.EllipseSegments, 3)
	check("ellipsoid_stacks", c.EllipsoidStacks, 2)
	check("bearing_segments", c.BearingSegments, 1)
	check("icon_cache_size", c.IconCacheSize, 1)
	if c.MoveEpsilon < 0 {
		e.ErrorString("move_epsilon: must be non-negative, got %g", c.MoveEpsilon)
	}
}
