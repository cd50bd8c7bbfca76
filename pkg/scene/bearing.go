// pkg/scene/bearing.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scene

import (
	"time"

	"github.com/geoscope/geoscope/pkg/feature"
	"github.com/geoscope/geoscope/pkg/math"
)

// bearingEdges splits the bearing line as of now into the configured
// number of segments along the great circle from its origin.
func (c *Context) bearingEdges(r Request, g feature.BearingLine, now time.Time) ([][2]lla, bool) {
	if g.Range <= 0 {
		return nil, false
	}
	origin, ok := c.coord(r, g.Origin)
	if !ok {
		return nil, false
	}

	n := max(c.config.BearingSegments, 1)
	hdg := math.NormalizeHeading(g.BearingAt(now))
	pts := make([]lla, n+1)
	pts[0] = origin
	for i := 1; i <= n; i++ {
		lon, lat := math.Destination(origin[0], origin[1], hdg, g.Range*float64(i)/float64(n))
		pts[i] = lla{lon, lat, origin[2]}
	}

	e := make([][2]lla, n)
	for i := range e {
		e[i] = [2]lla{pts[i], pts[i+1]}
	}
	return e, true
}
