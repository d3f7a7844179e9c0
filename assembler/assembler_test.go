// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assembler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galforge/sage/container"
	"github.com/galforge/sage/galaxy"
	"github.com/galforge/sage/halo"
	"github.com/galforge/sage/metrics"
	"github.com/galforge/sage/property"
	"github.com/galforge/sage/set"
)

func newTestAssembler(t *testing.T, halos []halo.Halo) (*Assembler, *int64) {
	t.Helper()
	arr, err := halo.NewArray(halos)
	require.NoError(t, err)
	reg := property.NewRegistry(1)
	counter := new(int64)
	m := metrics.NewForest(nil)
	return New(arr, reg, counter, m, nil), counter
}

func emptyInput(root int32) Input {
	return Input{
		Root:      root,
		Prev:      container.New(0),
		Hosts:     HostIndex{},
		Processed: nil,
	}
}

// S1: one FOF, one halo, no progenitors.
func TestAssembleS1PrimordialCentral(t *testing.T) {
	halos := []halo.Halo{
		{Index: 0, Snapshot: 5, Descendant: -1, FirstProgenitor: -1, NextProgenitor: -1, FOFCentral: 0, NextInFOF: -1, Mvir: 1500},
	}
	a, _ := newTestAssembler(t, halos)

	res, err := a.Assemble(emptyInput(0))
	require.NoError(t, err)
	require.Equal(t, 1, res.Buffer.LiveCount())

	g := res.Buffer.Get(res.CentralIdx)
	require.Equal(t, galaxy.Central, g.Type)
	require.Equal(t, int64(0), g.GalaxyNr)
	require.Zero(t, g.TotalBaryonicMass())
	require.Equal(t, int32(res.CentralIdx), g.FOFCentral)
}

// S2: simple inheritance from a single progenitor.
func TestAssembleS2SimpleInheritance(t *testing.T) {
	halos := []halo.Halo{
		{Index: 0, Snapshot: 5, Descendant: -1, FirstProgenitor: 1, NextProgenitor: -1, FOFCentral: 0, NextInFOF: -1, Mvir: 2000},
		{Index: 1, Snapshot: 4, Descendant: 0, FirstProgenitor: -1, NextProgenitor: -1, FOFCentral: 1, NextInFOF: -1, Mvir: 1900},
	}
	a, counter := newTestAssembler(t, halos)
	*counter = 1

	prev := container.New(1)
	prevGal := galaxy.New(0, property.NewRegistry(1))
	prevGal.Type = galaxy.Central
	prevGal.HaloIndex = 1
	prevGal.StellarDisk.Mass = 2e10
	prevIdx := prev.Append(prevGal)

	in := Input{
		Root:      0,
		Prev:      prev,
		Hosts:     HostIndex{1: {prevIdx}},
		Processed: make(set.Set[int], prev.Len()),
	}

	res, err := a.Assemble(in)
	require.NoError(t, err)
	require.Equal(t, 1, res.Buffer.LiveCount())

	g := res.Buffer.Get(res.CentralIdx)
	require.Equal(t, galaxy.Central, g.Type)
	require.InDelta(t, 2e10, g.TotalStellarMass(), 1e-6)
	require.Equal(t, float64(2000), g.Mvir)
	require.True(t, in.Processed.Contains(prevIdx))
}

// S3: satellite via infall — two halos in one FOF, each with its own
// progenitor central.
func TestAssembleS3SatelliteViaInfall(t *testing.T) {
	halos := []halo.Halo{
		{Index: 0, Snapshot: 10, Descendant: -1, FirstProgenitor: 2, NextProgenitor: -1, FOFCentral: 0, NextInFOF: 1, Mvir: 2000},
		{Index: 1, Snapshot: 10, Descendant: -1, FirstProgenitor: 3, NextProgenitor: -1, FOFCentral: 0, NextInFOF: -1, Mvir: 500},
		{Index: 2, Snapshot: 9, Descendant: 0, FirstProgenitor: -1, NextProgenitor: -1, FOFCentral: 2, NextInFOF: -1, Mvir: 1900},
		{Index: 3, Snapshot: 9, Descendant: 1, FirstProgenitor: -1, NextProgenitor: -1, FOFCentral: 3, NextInFOF: -1, Mvir: 480},
	}
	a, counter := newTestAssembler(t, halos)
	*counter = 2

	prev := container.New(2)
	reg := property.NewRegistry(1)
	g2 := galaxy.New(0, reg)
	g2.Type = galaxy.Central
	g2.HaloIndex = 2
	idx2 := prev.Append(g2)

	g3 := galaxy.New(1, reg)
	g3.Type = galaxy.Central
	g3.HaloIndex = 3
	idx3 := prev.Append(g3)

	in := Input{
		Root:      0,
		Prev:      prev,
		Hosts:     HostIndex{2: {idx2}, 3: {idx3}},
		Processed: make(set.Set[int], prev.Len()),
	}

	res, err := a.Assemble(in)
	require.NoError(t, err)
	require.Equal(t, 2, res.Buffer.LiveCount())

	var central, satellite *galaxy.Galaxy
	res.Buffer.Live(func(i int, g *galaxy.Galaxy) {
		switch g.HaloIndex {
		case 0:
			central = g
		case 1:
			satellite = g
		}
	})
	require.NotNil(t, central)
	require.NotNil(t, satellite)
	require.Equal(t, galaxy.Central, central.Type)
	require.Equal(t, galaxy.Satellite, satellite.Type)
	require.Equal(t, int32(res.CentralIdx), satellite.FOFCentral)
}

// S4: orphan from a disrupted subhalo — two progenitors from the same
// previous FOF group merge into one halo; the non-first-occupied one's
// galaxy becomes a lossy orphan regardless of its previous type.
func TestAssembleS4OrphanFromDisruptedSubhalo(t *testing.T) {
	halos := []halo.Halo{
		{Index: 0, Snapshot: 10, Descendant: -1, FirstProgenitor: 1, NextProgenitor: -1, FOFCentral: 0, NextInFOF: -1, Mvir: 2000},
		{Index: 1, Snapshot: 9, Descendant: 0, FirstProgenitor: -1, NextProgenitor: 2, FOFCentral: 1, NextInFOF: -1, Mvir: 2000, Len: 200},
		{Index: 2, Snapshot: 9, Descendant: 0, FirstProgenitor: -1, NextProgenitor: -1, FOFCentral: 1, NextInFOF: -1, Mvir: 500, Len: 50},
	}
	a, counter := newTestAssembler(t, halos)
	*counter = 2

	prev := container.New(2)
	reg := property.NewRegistry(1)
	gBig := galaxy.New(0, reg)
	gBig.Type = galaxy.Central
	gBig.HaloIndex = 1
	idxBig := prev.Append(gBig)

	gSmall := galaxy.New(1, reg)
	gSmall.Type = galaxy.Central
	gSmall.HaloIndex = 2
	idxSmall := prev.Append(gSmall)

	in := Input{
		Root:      0,
		Prev:      prev,
		Hosts:     HostIndex{1: {idxBig}, 2: {idxSmall}},
		Processed: make(set.Set[int], prev.Len()),
	}

	res, err := a.Assemble(in)
	require.NoError(t, err)
	require.Equal(t, 2, res.Buffer.LiveCount())

	var typeZero, orphan *galaxy.Galaxy
	res.Buffer.Live(func(i int, g *galaxy.Galaxy) {
		switch g.Type {
		case galaxy.Central:
			typeZero = g
		case galaxy.Orphan:
			orphan = g
		}
	})
	require.NotNil(t, typeZero)
	require.NotNil(t, orphan)
	require.Zero(t, orphan.Mvir)
	require.True(t, orphan.Merged)
	require.True(t, orphan.IsTombstone())
}

// Edge case from §4.7's multi-progenitor merger note: when the
// non-first-occupied progenitor belonged to a genuinely different
// previous FOF group, its former central persists as a real orphan
// instead of being marked lost.
func TestAssembleExceptedCentralPersistsAsOrphan(t *testing.T) {
	halos := []halo.Halo{
		{Index: 0, Snapshot: 10, Descendant: -1, FirstProgenitor: 1, NextProgenitor: -1, FOFCentral: 0, NextInFOF: -1, Mvir: 2000},
		{Index: 1, Snapshot: 9, Descendant: 0, FirstProgenitor: -1, NextProgenitor: 2, FOFCentral: 1, NextInFOF: -1, Mvir: 2000, Len: 200},
		{Index: 2, Snapshot: 9, Descendant: 0, FirstProgenitor: -1, NextProgenitor: -1, FOFCentral: 2, NextInFOF: -1, Mvir: 500, Len: 50},
	}
	a, counter := newTestAssembler(t, halos)
	*counter = 2

	prev := container.New(2)
	reg := property.NewRegistry(1)
	gBig := galaxy.New(0, reg)
	gBig.Type = galaxy.Central
	gBig.HaloIndex = 1
	idxBig := prev.Append(gBig)

	gSmall := galaxy.New(1, reg)
	gSmall.Type = galaxy.Central
	gSmall.HaloIndex = 2
	idxSmall := prev.Append(gSmall)

	in := Input{
		Root:      0,
		Prev:      prev,
		Hosts:     HostIndex{1: {idxBig}, 2: {idxSmall}},
		Processed: make(set.Set[int], prev.Len()),
	}

	res, err := a.Assemble(in)
	require.NoError(t, err)

	var orphan *galaxy.Galaxy
	res.Buffer.Live(func(i int, g *galaxy.Galaxy) {
		if g.Type == galaxy.Orphan {
			orphan = g
		}
	})
	require.NotNil(t, orphan)
	require.False(t, orphan.Merged)
	require.False(t, orphan.IsTombstone())
}

// P1: exactly one type-0 galaxy per FOF group after assembly.
func TestAssembleP1TypeUniqueness(t *testing.T) {
	halos := []halo.Halo{
		{Index: 0, Snapshot: 10, Descendant: -1, FirstProgenitor: -1, NextProgenitor: -1, FOFCentral: 0, NextInFOF: 1, Mvir: 2000},
		{Index: 1, Snapshot: 10, Descendant: -1, FirstProgenitor: -1, NextProgenitor: -1, FOFCentral: 0, NextInFOF: -1, Mvir: 500},
	}
	a, _ := newTestAssembler(t, halos)

	res, err := a.Assemble(emptyInput(0))
	require.NoError(t, err)

	centrals := 0
	res.Buffer.Live(func(i int, g *galaxy.Galaxy) {
		if g.Type == galaxy.Central {
			centrals++
		}
	})
	require.Equal(t, 1, centrals)
}

// P2: every galaxy's FOFCentral resolves, within the buffer, to a type-0
// galaxy.
func TestAssembleP2CentralReferenceConsistency(t *testing.T) {
	halos := []halo.Halo{
		{Index: 0, Snapshot: 10, Descendant: -1, FirstProgenitor: -1, NextProgenitor: -1, FOFCentral: 0, NextInFOF: 1, Mvir: 2000},
		{Index: 1, Snapshot: 10, Descendant: -1, FirstProgenitor: -1, NextProgenitor: -1, FOFCentral: 0, NextInFOF: -1, Mvir: 500},
	}
	a, _ := newTestAssembler(t, halos)

	res, err := a.Assemble(emptyInput(0))
	require.NoError(t, err)

	res.Buffer.Live(func(i int, g *galaxy.Galaxy) {
		central := res.Buffer.Get(int(g.FOFCentral))
		require.NotNil(t, central)
		require.Equal(t, galaxy.Central, central.Type)
	})
}

func TestBuildHostIndexGroupsByHaloIndex(t *testing.T) {
	reg := property.NewRegistry(1)
	c := container.New(0)
	g1 := galaxy.New(0, reg)
	g1.HaloIndex = 7
	c.Append(g1)
	g2 := galaxy.New(1, reg)
	g2.HaloIndex = 7
	c.Append(g2)
	g3 := galaxy.New(2, reg)
	g3.HaloIndex = 9
	c.Append(g3)

	idx := BuildHostIndex(c)
	require.Len(t, idx[7], 2)
	require.Len(t, idx[9], 1)
}
