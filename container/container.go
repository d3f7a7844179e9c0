// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package container implements the Galaxy Container (§4.2): a growable,
// stable-index sequence of galaxy pointers. A forest keeps two
// containers, "previous" (read-only, last snapshot's surviving
// galaxies) and "this" (appended to as the Forest Driver drains each
// evolved FOF buffer at the current snapshot), grounded on the teacher's append-only vertex
// frontier (dag/ frontier tracking) generalized from DAG vertices to
// galaxy slots.
package container

import "github.com/galforge/sage/galaxy"

// Container is an append-only, index-stable sequence of galaxies. Once
// assigned, a galaxy's index within its container never changes for the
// container's lifetime; Remove tombstones rather than compacts, so that
// code elsewhere can hold a bare index across a mutation.
type Container struct {
	galaxies []*galaxy.Galaxy
	removed  []bool
}

// New returns an empty Container with capacity preallocated for n
// galaxies (the tree reader's per-snapshot galaxy count estimate, §5).
func New(capacity int) *Container {
	return &Container{
		galaxies: make([]*galaxy.Galaxy, 0, capacity),
		removed:  make([]bool, 0, capacity),
	}
}

// Append adds g to the end of the container and returns its new,
// permanently stable index.
func (c *Container) Append(g *galaxy.Galaxy) int {
	idx := len(c.galaxies)
	c.galaxies = append(c.galaxies, g)
	c.removed = append(c.removed, false)
	return idx
}

// Get returns the galaxy at idx, or nil if it has been removed.
func (c *Container) Get(idx int) *galaxy.Galaxy {
	if c.removed[idx] {
		return nil
	}
	return c.galaxies[idx]
}

// Remove tombstones the galaxy at idx without shifting any other index.
// Used when a galaxy is folded into another by the merger queue and must
// no longer be independently evolved or emitted.
func (c *Container) Remove(idx int) {
	c.removed[idx] = true
}

// Len returns the total number of slots ever appended, including
// tombstoned ones.
func (c *Container) Len() int {
	return len(c.galaxies)
}

// Live calls fn for every non-removed galaxy, in index order.
func (c *Container) Live(fn func(idx int, g *galaxy.Galaxy)) {
	for i, g := range c.galaxies {
		if !c.removed[i] {
			fn(i, g)
		}
	}
}

// LiveCount returns the number of non-removed galaxies.
func (c *Container) LiveCount() int {
	n := 0
	for _, removed := range c.removed {
		if !removed {
			n++
		}
	}
	return n
}

// IsRemoved reports whether the galaxy at idx has been tombstoned.
func (c *Container) IsRemoved(idx int) bool {
	return c.removed[idx]
}
