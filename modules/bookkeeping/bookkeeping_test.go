// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bookkeeping

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galforge/sage/container"
	"github.com/galforge/sage/galaxy"
	"github.com/galforge/sage/mergequeue"
	"github.com/galforge/sage/module"
	"github.com/galforge/sage/property"
)

func newPair(t *testing.T) (*container.Container, int, int) {
	t.Helper()
	reg := property.NewRegistry(1)
	buf := container.New(2)
	central := galaxy.New(0, reg)
	central.ColdGas = galaxy.Reservoir{Mass: 10, Metals: 1}
	centralIdx := buf.Append(central)

	sat := galaxy.New(1, reg)
	sat.HotGas = galaxy.Reservoir{Mass: 4, Metals: 0.5}
	sat.ColdGas = galaxy.Reservoir{Mass: 3, Metals: 0.2}
	sat.BlackHoleMass = 1.5
	satIdx := buf.Append(sat)
	return buf, centralIdx, satIdx
}

// Merge must be mass-conserving: every satellite reservoir moves to the
// central, none is dropped, and the satellite is left tombstoned (§3 I6).
func TestMergeTransfersEveryReservoir(t *testing.T) {
	buf, centralIdx, satIdx := newPair(t)

	ev := mergequeue.Event{Satellite: satIdx, Central: centralIdx}
	err := Merge(context.Background(), buf, ev)
	require.NoError(t, err)

	central := buf.Get(centralIdx)
	require.Equal(t, 13.0, central.ColdGas.Mass)
	require.Equal(t, 1.2, central.ColdGas.Metals)
	require.Equal(t, 4.0, central.HotGas.Mass)
	require.Equal(t, 1.5, central.BlackHoleMass)

	sat := buf.Get(satIdx)
	require.True(t, sat.IsTombstone())
	require.Equal(t, galaxy.Merged, sat.Type)
	require.Equal(t, central.GalaxyNr, sat.MergeTarget)
	require.Zero(t, sat.ColdGas.Mass)
	require.Zero(t, sat.HotGas.Mass)
	require.Zero(t, sat.BlackHoleMass)
}

// Merging an already-tombstoned satellite a second time must be a no-op,
// since more than one queued event in a sub-step can name the same
// satellite, and the drain loop hands each of them to the handler.
func TestMergeIsNoOpOnceTombstoned(t *testing.T) {
	buf, centralIdx, satIdx := newPair(t)
	ev := mergequeue.Event{Satellite: satIdx, Central: centralIdx}
	require.NoError(t, Merge(context.Background(), buf, ev))

	centralMassAfterFirst := buf.Get(centralIdx).ColdGas.Mass
	require.NoError(t, Merge(context.Background(), buf, ev))
	require.Equal(t, centralMassAfterFirst, buf.Get(centralIdx).ColdGas.Mass)
}

// Disrupt counts the merger clock down by the sub-step Dt and clamps at
// zero rather than going negative.
func TestDisruptCountsDownMergeTime(t *testing.T) {
	reg := property.NewRegistry(1)
	buf := container.New(1)
	sat := galaxy.New(0, reg)
	sat.MergeTime = 1.5
	idx := buf.Append(sat)

	ev := mergequeue.Event{Satellite: idx, Dt: 1}
	require.NoError(t, Disrupt(context.Background(), buf, ev))
	require.Equal(t, 0.5, buf.Get(idx).MergeTime)

	ev.Dt = 2
	require.NoError(t, Disrupt(context.Background(), buf, ev))
	require.Zero(t, buf.Get(idx).MergeTime)
}

// Both handlers must satisfy module.MergeHandler so they can be wired as
// the run's default merger/disruption handlers without an adapter.
func TestHandlersSatisfyMergeHandlerType(t *testing.T) {
	var _ module.MergeHandler = Merge
	var _ module.MergeHandler = Disrupt
}
