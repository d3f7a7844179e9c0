// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package property implements the Property System (§4.1): a name-indexed
// registry of typed, fixed-arity slots plus the per-galaxy Bag that stores
// their values. It is the mechanism by which a physics module attaches new
// per-galaxy fields to the engine without the core knowing about them ahead
// of time, grounded on the teacher's registry-with-RWMutex convention
// (acceptor_group.go) generalized from handler values to typed storage
// slots.
package property

// Kind is the scalar type backing a registered property.
type Kind int

const (
	Float64 Kind = iota
	Int32
	Int64
	Bool
)

func (k Kind) String() string {
	switch k {
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// Arity is the number of scalar slots a single property occupies in a Bag.
// Arity 1 is a plain scalar; StepsArity matches the per-sub-step history
// arrays described in §3 (e.g. star formation rate per sub-step).
type Arity int

// StepsArity is resolved against the configured sub-step count at
// Registry construction time (NewRegistry), so module authors can write
// property.StepsArity without knowing the run's STEPS value.
const StepsArity Arity = -1

// ID is a dense, stable index assigned at registration time. IDs are valid
// only against the Registry that produced them.
type ID int
