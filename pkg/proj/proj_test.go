// pkg/proj/proj_test.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package proj

import (
	"errors"
	"math"
	"testing"
)

func TestLookup(t *testing.T) {
	for _, c := range []Code{"EPSG:4326", "CRS:84", "EPSG:3857", "EPSG:900913"} {
		if _, err := Lookup(c); err != nil {
			t.Errorf("%s: unexpected error %v", c, err)
		}
	}
	if _, err := Lookup("EPSG:27700"); !errors.Is(err, ErrUnknownProjection) {
		t.Errorf("expected ErrUnknownProjection, got %v", err)
	}
	if !Equivalent("EPSG:900913", EPSG3857) {
		t.Errorf("EPSG:900913 should be equivalent to EPSG:3857")
	}
	if Equivalent(EPSG4326, EPSG3857) {
		t.Errorf("EPSG:4326 should not be equivalent to EPSG:3857")
	}
}

func TestTransformerPreservesExtraOrdinates(t *testing.T) {
	tr, err := NewTransformer(EPSG3857, EPSG4326)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Identity() {
		t.Fatalf("mercator to geographic should not be identity")
	}

	in := []float64{0, 0, 1234.5, 7}
	out := tr.Apply(in)
	if len(out) != 4 {
		t.Fatalf("expected 4 ordinates, got %d", len(out))
	}
	if math.Abs(out[0]) > 1e-9 || math.Abs(out[1]) > 1e-9 {
		t.Errorf("origin mapped to %v", out[:2])
	}
	if out[2] != 1234.5 || out[3] != 7 {
		t.Errorf("extra ordinates changed: %v", out[2:])
	}
	if &in[0] == &out[0] {
		t.Errorf("Apply should not alias its input")
	}
}

func TestTransformerRoundTrip(t *testing.T) {
	fwd, _ := NewTransformer(EPSG4326, EPSG3857)
	inv, _ := NewTransformer(EPSG3857, EPSG4326)

	flat := []float64{-122.4, 37.8, 10, 2.35, 48.85, 20}
	m, err := fwd.ApplyFlat(flat, 3)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(m[0]) < 1e6 {
		t.Errorf("expected mercator meters, got %v", m[0])
	}
	g, _ := inv.ApplyFlat(m, 3)
	for i := range flat {
		if math.Abs(g[i]-flat[i]) > 1e-6 {
			t.Errorf("ordinate %d: got %f expected %f", i, g[i], flat[i])
		}
	}

	if _, err := fwd.ApplyFlat(flat, 1); !errors.Is(err, ErrInvalidStride) {
		t.Errorf("expected ErrInvalidStride, got %v", err)
	}
}

func TestCache(t *testing.T) {
	p := NewStaticProvider(EPSG4326)
	c := NewCache(p, EPSG4326)
	if c.State() != CacheUnset {
		t.Errorf("expected unset, got %s", c.State())
	}

	t0, err := c.Get()
	if err != nil {
		t.Fatal(err)
	}
	if c.State() != CacheIdentity {
		t.Errorf("expected identity, got %s", c.State())
	}
	if t1, _ := c.Get(); t1 != t0 {
		t.Errorf("expected memoized transformer")
	}

	p.Set("EPSG:900913")
	t2, err := c.Get()
	if err != nil {
		t.Fatal(err)
	}
	if t2 == t0 || c.State() != CacheMapped {
		t.Errorf("expected new mapped transformer after projection change")
	}
	if c.Invalidations() != 1 {
		t.Errorf("expected 1 invalidation, got %d", c.Invalidations())
	}

	// An alias of the same projection does not invalidate.
	p.Set(EPSG3857)
	if t3, _ := c.Get(); t3 != t2 {
		t.Errorf("alias change should keep the cached transformer")
	}

	p.Set("EPSG:27700")
	if _, err := c.Get(); !errors.Is(err, ErrUnknownProjection) {
		t.Errorf("expected ErrUnknownProjection, got %v", err)
	}
	if c.State() != CacheUnset {
		t.Errorf("expected unset after failure, got %s", c.State())
	}
	if c.Invalidations() != 2 {
		t.Errorf("expected 2 invalidations, got %d", c.Invalidations())
	}

	// Retrying the unknown projection is not a change; leaving it is.
	c.Get()
	if c.Invalidations() != 2 {
		t.Errorf("retry counted as an invalidation: %d", c.Invalidations())
	}
	p.Set(EPSG4326)
	if _, err := c.Get(); err != nil {
		t.Fatal(err)
	}
	if c.Invalidations() != 3 {
		t.Errorf("expected 3 invalidations after leaving the unknown projection, got %d", c.Invalidations())
	}

	// Reset discards the transformer without counting as a change.
	c.Reset()
	if _, err := c.Get(); err != nil || c.State() != CacheIdentity || c.Invalidations() != 3 {
		t.Errorf("unexpected state after reset: %v %s %d", err, c.State(), c.Invalidations())
	}
}
