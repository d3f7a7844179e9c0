// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package property

import (
	"fmt"
	"sync"

	"github.com/galforge/sage/sageerr"
)

// descriptor is the immutable metadata recorded for a registered property.
type descriptor struct {
	name   string
	kind   Kind
	arity  Arity
	offset int
	width  int
	def    interface{} // nil means the zero value of kind
}

// Registry is the name -> slot-layout map shared by every galaxy's Bag in
// a run. It is built once during module initialization (§4.3, before any
// Bag is allocated) and is read-only for the remainder of the run, so the
// RWMutex is write-locked only at registration time and afterwards only
// read-locked briefly when Allocate builds a new Bag, mirroring the teacher's read-mostly group
// registries (acceptor_group.go).
type Registry struct {
	mu     sync.RWMutex
	byName map[string]ID
	descs  []descriptor
	steps  int
	width  int
	sealed bool
}

// NewRegistry creates a Registry. steps is the configured sub-step count
// (Simulation.StepsPerSnapshot, §6), used to resolve StepsArity slots.
func NewRegistry(steps int) *Registry {
	return &Registry{
		byName: make(map[string]ID),
		steps:  steps,
	}
}

// Register declares a property, with every slot it occupies initialised to
// def once a Bag is allocated (§4.1 "register_property(name, kind, arity,
// default)"); def must be nil (the zero value of kind) or a Go value of
// kind's own type (float64, int32, int64, bool). Calling Register twice
// for the same name with the same kind, arity and default returns the
// existing ID idempotently; calling it twice with a conflicting kind,
// arity or default returns ErrPropertyConflict (§7). Register must not be
// called after the registry has been sealed by a Bag allocation.
func (r *Registry) Register(name string, kind Kind, arity Arity, def interface{}) (ID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	width := int(arity)
	if arity == StepsArity {
		width = r.steps
	}
	if width <= 0 {
		return 0, fmt.Errorf("%w: %s: non-positive arity", sageerr.ErrPropertyConflict, name)
	}
	if err := checkDefaultKind(name, kind, def); err != nil {
		return 0, err
	}

	if id, ok := r.byName[name]; ok {
		d := r.descs[id]
		if d.kind != kind || d.width != width || d.def != def {
			return 0, fmt.Errorf("%w: %s: registered as %s[%d] default %v, requested %s[%d] default %v",
				sageerr.ErrPropertyConflict, name, d.kind, d.width, d.def, kind, width, def)
		}
		return id, nil
	}

	id := ID(len(r.descs))
	r.descs = append(r.descs, descriptor{
		name:   name,
		kind:   kind,
		arity:  arity,
		offset: r.width,
		width:  width,
		def:    def,
	})
	r.byName[name] = id
	r.width += width
	return id, nil
}

// checkDefaultKind reports ErrPropertyConflict if def is non-nil and not a
// Go value of kind's own scalar type.
func checkDefaultKind(name string, kind Kind, def interface{}) error {
	if def == nil {
		return nil
	}
	ok := false
	switch kind {
	case Float64:
		_, ok = def.(float64)
	case Int32:
		_, ok = def.(int32)
	case Int64:
		_, ok = def.(int64)
	case Bool:
		_, ok = def.(bool)
	}
	if !ok {
		return fmt.Errorf("%w: %s: default %v is not a %s", sageerr.ErrPropertyConflict, name, def, kind)
	}
	return nil
}

// Lookup resolves a previously registered name to its ID.
func (r *Registry) Lookup(name string) (ID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	return id, ok
}

// MustLookup panics if name was never registered; reserved for standard
// properties the core itself registers during construction.
func (r *Registry) MustLookup(name string) ID {
	id, ok := r.Lookup(name)
	if !ok {
		panic("property: unregistered standard property " + name)
	}
	return id
}

// Width returns the id-th property's slot width (1 for a scalar).
func (r *Registry) Width(id ID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.descs[id].width
}

// Kind returns the id-th property's scalar kind.
func (r *Registry) Kind(id ID) Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.descs[id].kind
}

// Name returns the id-th property's registered name.
func (r *Registry) Name(id ID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.descs[id].name
}

// Count returns the number of distinct registered properties.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.descs)
}

// layout returns a snapshot of the descriptor table; used by Bag.Allocate
// to size its backing arrays without holding the registry lock while it
// touches per-galaxy memory.
func (r *Registry) layout() ([]descriptor, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.sealed = true
	out := make([]descriptor, len(r.descs))
	copy(out, r.descs)
	return out, r.width
}

// IndexInRange reports whether idx is a valid slot offset within the
// property's arity, returning ErrPropertyIndexOutOfRange (§7) otherwise.
func (r *Registry) IndexInRange(id ID, idx int) error {
	r.mu.RLock()
	d := r.descs[id]
	r.mu.RUnlock()
	if idx < 0 || idx >= d.width {
		return fmt.Errorf("%w: property %s index %d (width %d)", sageerr.ErrPropertyIndexOutOfRange, d.name, idx, d.width)
	}
	return nil
}
