// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package galaxy

import "github.com/galforge/sage/property"

// Galaxy is the per-galaxy record the engine evolves. Fields the core
// itself reads for control flow (classification, tree/container links,
// the baryonic reservoirs every Non-goal-excluded module still shares)
// are typed Go struct fields for speed and compile-time safety; fields a
// physics module introduces are held in Props, the property Bag, so that
// adding a module never changes this struct (§4.1, §4.2 "two-layer
// model").
type Galaxy struct {
	// Identity, stable for the galaxy's lifetime within its forest.
	GalaxyNr int64

	// Classification and placement, reassigned every snapshot by the
	// FOF Assembler (§4.7). Merged is tracked independently of Type:
	// an assembly-time orphan that is immediately lost (its subhalo's
	// galaxy folded away rather than persisted, §4.7 step 1c) carries
	// Type == Orphan and Merged == true simultaneously, while a galaxy
	// actively resolved by the merger queue transitions Type to Merged
	// directly. Both combinations are filtered at output (§3 I6).
	Type        Type
	Merged      bool
	HaloIndex   int32 // current host halo's tree-local index (for an orphan, the halo it was placed in), -1 until first placed
	Snapshot    int32
	MergeTarget int64 // GalaxyNr of merge destination, valid once Merged

	// FOFCentral is the FOF-group central galaxy's index (§9 "CentralGal
	// semantics"): a FOF-buffer index while the Evolution Loop is
	// sub-stepping this galaxy, rewritten by the Forest Driver to an
	// index into the this-snapshot Container once the buffer is drained
	// into it, just before output staging.
	FOFCentral int32

	// Mvir/Rvir mirror the host halo's virial mass/radius at the time
	// this galaxy's geometry was last updated (main-branch inheritance,
	// §4.7 step 1c); zero for orphans, which carry no halo mass.
	Mvir float64
	Rvir float64

	// Baryonic reservoirs (§3), the fields every stock physics module
	// reads or writes regardless of which modules are loaded.
	HotGas         Reservoir
	ColdGas        Reservoir
	StellarDisk    Reservoir
	StellarBulge   Reservoir
	Ejected        Reservoir
	IntraCluster   Reservoir
	BlackHoleMass  float64

	// Dynamical bookkeeping used by merger timescale estimates.
	Pos          [3]float64
	Vel          [3]float64
	Vmax         float64
	MergeTime    float64 // cosmic time remaining until this satellite merges

	// Props holds every module-registered extension field.
	Props *property.Bag
}

// New constructs a galaxy freshly seeded at the root of a tree, with an
// allocated property Bag holding every property's declared default.
func New(nr int64, reg *property.Registry) *Galaxy {
	return &Galaxy{
		GalaxyNr:   nr,
		HaloIndex:  -1,
		FOFCentral: -1,
		Props:      property.Allocate(reg),
	}
}

// Clone returns a deep copy, including an independent property Bag. Used
// by the FOF Assembler to copy a previous-snapshot galaxy into the
// current FOF buffer without mutating the previous container.
func (g *Galaxy) Clone() *Galaxy {
	out := *g
	out.Props = g.Props.Clone()
	return &out
}

// IsTombstone reports whether g should be filtered from output (§3 I6):
// either actively merged away, or assembled as an immediately-lost orphan.
func (g *Galaxy) IsTombstone() bool {
	return g.Type == Merged || g.Merged
}

// TotalStellarMass returns the sum of disk and bulge stellar reservoirs,
// the quantity most output filters and merger-ratio calculations key on.
func (g *Galaxy) TotalStellarMass() float64 {
	return g.StellarDisk.Mass + g.StellarBulge.Mass
}

// TotalBaryonicMass returns every reservoir summed, used by the FOF
// Assembler to elect a FOF group's central.
func (g *Galaxy) TotalBaryonicMass() float64 {
	return g.HotGas.Mass + g.ColdGas.Mass + g.StellarDisk.Mass +
		g.StellarBulge.Mass + g.Ejected.Mass + g.IntraCluster.Mass + g.BlackHoleMass
}

// Validate checks every reservoir invariant (§3 I4, I5) and returns the
// first violation found.
func (g *Galaxy) Validate() error {
	for _, rv := range []struct {
		name string
		r    Reservoir
	}{
		{"hot gas", g.HotGas},
		{"cold gas", g.ColdGas},
		{"stellar disk", g.StellarDisk},
		{"stellar bulge", g.StellarBulge},
		{"ejected", g.Ejected},
		{"intracluster", g.IntraCluster},
	} {
		if err := rv.r.Validate(rv.name); err != nil {
			return err
		}
	}
	if g.BlackHoleMass < 0 {
		return errNegativeBlackHole(g.GalaxyNr, g.BlackHoleMass)
	}
	return nil
}

// Clamp forces every reservoir and BlackHoleMass back within I4/I5,
// the Evolution Loop's "clamp and warn" InvariantViolation mode (§7).
func (g *Galaxy) Clamp() {
	g.HotGas = g.HotGas.Clamp()
	g.ColdGas = g.ColdGas.Clamp()
	g.StellarDisk = g.StellarDisk.Clamp()
	g.StellarBulge = g.StellarBulge.Clamp()
	g.Ejected = g.Ejected.Clamp()
	g.IntraCluster = g.IntraCluster.Clamp()
	if g.BlackHoleMass < 0 {
		g.BlackHoleMass = 0
	}
}
