// pkg/proj/transform.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package proj

import (
	"github.com/paulmach/orb"
)

// Transformer converts coordinates from one projection to another. The
// underlying orb projections only deal with two dimensions, so Apply and
// ApplyFlat carry any further ordinates (altitude, measure) across
// unchanged.
type Transformer struct {
	Source, Target Code
	fn             orb.Projection // nil for identity
}

// NewTransformer returns a Transformer from src to dst.
func NewTransformer(src, dst Code) (*Transformer, error) {
	ps, err := Lookup(src)
	if err != nil {
		return nil, err
	}
	pd, err := Lookup(dst)
	if err != nil {
		return nil, err
	}

	t := &Transformer{Source: ps.Code, Target: pd.Code}
	switch {
	case ps.Code == pd.Code:
		// identity
	case ps.Geographic():
		t.fn = pd.FromWGS84
	case pd.Geographic():
		t.fn = ps.ToWGS84
	default:
		to, from := ps.ToWGS84, pd.FromWGS84
		t.fn = func(p orb.Point) orb.Point { return from(to(p)) }
	}
	return t, nil
}

func (t *Transformer) Identity() bool {
	return t.fn == nil
}

// Apply transforms a single coordinate, returning a newly allocated
// coordinate of the same dimension.
func (t *Transformer) Apply(c []float64) []float64 {
	out := make([]float64, len(c))
	copy(out, c)
	if t.fn != nil && len(c) >= 2 {
		p := t.fn(orb.Point{c[0], c[1]})
		out[0], out[1] = p[0], p[1]
	}
	return out
}

// ApplyFlat transforms a flat coordinate array with the given stride and
// returns the result in a newly allocated array.
func (t *Transformer) ApplyFlat(flat []float64, stride int) ([]float64, error) {
	if stride < 2 {
		return nil, ErrInvalidStride
	}
	out := make([]float64, len(flat))
	copy(out, flat)
	if t.fn == nil {
		return out, nil
	}
	for i := 0; i+1 < len(out); i += stride {
		p := t.fn(orb.Point{out[i], out[i+1]})
		out[i], out[i+1] = p[0], p[1]
	}
	return out, nil
}
