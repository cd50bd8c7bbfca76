// pkg/renderer/collection.go
// Copyright(c) 2024-2025 geoscope contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

// Collection is a set of primitives drawn together. A primitive may be in
// at most one collection at a time.
type Collection struct {
	Kind  PoolKind
	prims []Primitive
	index map[Primitive]int
}

func newCollection(kind PoolKind) *Collection {
	return &Collection{Kind: kind, index: make(map[Primitive]int)}
}

// Add adds p to the collection, returning false if it was already present.
func (c *Collection) Add(p Primitive) bool {
	if _, ok := c.index[p]; ok {
		return false
	}
	c.index[p] = len(c.prims)
	c.prims = append(c.prims, p)
	return true
}

// Remove removes p from the collection. It returns false if p was not in
// the collection.
func (c *Collection) Remove(p Primitive) bool {
	i, ok := c.index[p]
	if !ok {
		return false
	}
	last := len(c.prims) - 1
	if i != last {
		c.prims[i] = c.prims[last]
		c.index[c.prims[i]] = i
	}
	c.prims[last] = nil
	c.prims = c.prims[:last]
	delete(c.index, p)
	return true
}

func (c *Collection) Contains(p Primitive) bool {
	_, ok := c.index[p]
	return ok
}

func (c *Collection) Len() int {
	return len(c.prims)
}

// Primitives returns a copy of the collection's primitives.
func (c *Collection) Primitives() []Primitive {
	return append([]Primitive(nil), c.prims...)
}

// RemoveAll empties the collection.
func (c *Collection) RemoveAll() {
	clear(c.prims)
	c.prims = c.prims[:0]
	clear(c.index)
}

// GenerateCommands encodes all of the collection's primitives into cb.
func (c *Collection) GenerateCommands(cb *CommandBuffer, g *Globe) {
	for _, p := range c.prims {
		p.generateCommands(cb, g)
	}
}
