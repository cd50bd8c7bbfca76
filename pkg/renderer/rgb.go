// pkg/renderer/rgb.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/geoscope/geoscope/pkg/math"
)

///////////////////////////////////////////////////////////////////////////
// RGB

type RGB struct {
	R, G, B float32
}

type RGBA struct {
	R, G, B, A float32
}

func (r RGB) Equals(other RGB) bool {
	return r.R == other.R && r.G == other.G && r.B == other.B
}

// WithAlpha returns the RGBA color for r with the given opacity.
func (r RGB) WithAlpha(a float32) RGBA {
	return RGBA{R: r.R, G: r.G, B: r.B, A: math.Clamp(a, 0, 1)}
}

func (c RGBA) RGB() RGB {
	return RGB{R: c.R, G: c.G, B: c.B}
}

func (c RGBA) Opaque() bool {
	return c.A >= 1
}

// RGBFromHex converts a packed integer color value to an RGB where the low
// 8 bits give blue, the next 8 give green, and then the next 8 give red.
func RGBFromHex(c int) RGB {
	r, g, b := (c>>16)&255, (c>>8)&255, c&255
	return RGB{R: float32(r) / 255, G: float32(g) / 255, B: float32(b) / 255}
}

// ParseRGB parses CSS-style hex colors: "#rgb" or "#rrggbb", with the
// leading '#' optional.
func ParseRGB(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("%q: %w", s, ErrInvalidColor)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%q: %w", s, ErrInvalidColor)
	}
	return RGBFromHex(int(v)), nil
}
