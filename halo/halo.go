// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package halo holds the immutable, tree-reader-supplied dark-matter halo
// record (§3) and the per-forest Array that indexes it by tree-local id,
// grounded on the teacher's read-only vertex record (block.go) generalized
// from a DAG vertex to a tree node with progenitor/descendant/FOF links.
package halo

// Halo is one dark-matter (sub)halo at one snapshot, as supplied by the
// out-of-scope tree reader (§5). Every field is read-only for the
// lifetime of a forest pass; the engine never mutates tree topology.
type Halo struct {
	// Identity.
	Index      int32 // position within the owning forest's Array
	Snapshot   int32
	IsSubhalo  bool

	// Tree links, -1 when absent. FirstProgenitor/NextProgenitor form a
	// singly linked list of every halo at an earlier snapshot that
	// merges into this one; Descendant points forward to the halo this
	// one merges into, usually one snapshot later and further across a
	// gap.
	Descendant      int32
	FirstProgenitor int32
	NextProgenitor  int32

	// FOF-group links, -1 when absent. FOFCentral identifies the most
	// massive subhalo of the group this halo belongs to at this
	// snapshot; a central halo is its own FOFCentral.
	FOFCentral int32
	NextInFOF  int32

	// Physical properties.
	Mvir     float64 // virial mass, 1e10 Msun/h
	Rvir     float64 // virial radius, Mpc/h
	Vvir     float64 // virial velocity, km/s
	Vmax     float64
	Spin     [3]float64
	Pos      [3]float64
	Vel      [3]float64
	Len      int32 // bound particle count

	MostBoundID int64
}

// IsCentral reports whether h is the central (most massive) subhalo of
// its own FOF group.
func (h *Halo) IsCentral(selfIndex int32) bool {
	return h.FOFCentral == selfIndex
}

// HasProgenitor reports whether h has at least one halo merging into it
// from the previous populated snapshot.
func (h *Halo) HasProgenitor() bool {
	return h.FirstProgenitor >= 0
}

// Array is every halo of one forest, indexed by the tree-local id the
// tree reader assigned it. Index i's Halo.Index always equals i; this
// invariant is checked once at construction (NewArray) rather than on
// every traversal step.
type Array struct {
	halos []Halo
}

// NewArray builds an Array from tree-reader-supplied records, verifying
// that each entry's self-reported Index matches its position.
func NewArray(halos []Halo) (*Array, error) {
	for i := range halos {
		if halos[i].Index != int32(i) {
			return nil, errIndexMismatch(i, halos[i].Index)
		}
	}
	return &Array{halos: halos}, nil
}

// Len returns the number of halos in the forest.
func (a *Array) Len() int {
	return len(a.halos)
}

// Get returns a pointer to the halo at tree-local index idx.
func (a *Array) Get(idx int32) *Halo {
	return &a.halos[idx]
}

// All returns every halo, in tree-reader order. Callers must not mutate
// tree topology fields through the returned slice.
func (a *Array) All() []Halo {
	return a.halos
}
