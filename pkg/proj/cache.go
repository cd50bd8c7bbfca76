// pkg/proj/cache.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package proj

// Provider reports the projection the map view is currently using.
type Provider interface {
	ActiveProjection() Code
}

// StaticProvider is a Provider whose projection is changed explicitly.
type StaticProvider struct {
	code Code
}

func NewStaticProvider(c Code) *StaticProvider {
	return &StaticProvider{code: c}
}

func (s *StaticProvider) ActiveProjection() Code { return s.code }
func (s *StaticProvider) Set(c Code)             { s.code = c }

type CacheState int

const (
	CacheUnset CacheState = iota
	CacheIdentity
	CacheMapped
)

func (s CacheState) String() string {
	return [...]string{"unset", "identity", "mapped"}[s]
}

// Cache memoizes the Transformer from the provider's active projection
// to a fixed target projection. Get returns the same *Transformer until
// the active projection changes.
type Cache struct {
	provider      Provider
	target        Code
	source        Code
	t             *Transformer
	last          Code // projection requested by the most recent Get
	invalidations int
}

func NewCache(p Provider, target Code) *Cache {
	return &Cache{provider: p, target: target}
}

func (c *Cache) Get() (*Transformer, error) {
	src := Normalize(c.provider.ActiveProjection())
	if c.t != nil && src == c.source {
		return c.t, nil
	}

	if c.last != "" && src != c.last {
		c.invalidations++
	}
	c.last = src
	c.t, c.source = nil, ""

	t, err := NewTransformer(src, c.target)
	if err != nil {
		return nil, err
	}
	c.t, c.source = t, src
	return t, nil
}

func (c *Cache) State() CacheState {
	switch {
	case c.t == nil:
		return CacheUnset
	case c.t.Identity():
		return CacheIdentity
	default:
		return CacheMapped
	}
}

// Invalidations returns the number of times Get found that the active
// projection had changed since the previous Get, whether or not that
// call produced a Transformer. Reset does not count.
func (c *Cache) Invalidations() int {
	return c.invalidations
}

// Reset discards the cached Transformer.
func (c *Cache) Reset() {
	c.t, c.source = nil, ""
}
