// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package property

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galforge/sage/sageerr"
)

func TestRegisterIdempotent(t *testing.T) {
	reg := NewRegistry(4)
	id1, err := reg.Register("StellarMass", Float64, 1, nil)
	require.NoError(t, err)
	id2, err := reg.Register("StellarMass", Float64, 1, nil)
	require.NoError(t, err)
	require.Equal(t, id1, id2)
}

func TestRegisterConflict(t *testing.T) {
	reg := NewRegistry(4)
	_, err := reg.Register("StellarMass", Float64, 1, nil)
	require.NoError(t, err)
	_, err = reg.Register("StellarMass", Int32, 1, nil)
	require.ErrorIs(t, err, sageerr.ErrPropertyConflict)
}

// Re-registering the same name with a different declared default is as
// much a conflict as a different kind or arity would be (§4.1).
func TestRegisterConflictOnDefault(t *testing.T) {
	reg := NewRegistry(4)
	_, err := reg.Register("CoolingEfficiency", Float64, 1, 1.0)
	require.NoError(t, err)
	_, err = reg.Register("CoolingEfficiency", Float64, 1, 0.5)
	require.ErrorIs(t, err, sageerr.ErrPropertyConflict)
}

// A default whose Go type does not match the declared Kind is rejected
// rather than silently stored and misread later.
func TestRegisterRejectsMismatchedDefaultType(t *testing.T) {
	reg := NewRegistry(4)
	_, err := reg.Register("CoolingEfficiency", Float64, 1, int32(1))
	require.ErrorIs(t, err, sageerr.ErrPropertyConflict)
}

func TestStepsArityResolvesToConfiguredSteps(t *testing.T) {
	reg := NewRegistry(7)
	id, err := reg.Register("SfrHistory", Float64, StepsArity, nil)
	require.NoError(t, err)
	require.Equal(t, 7, reg.Width(id))
}

// Every slot of a newly allocated Bag must carry the property's declared
// default (§4.1 "all values initialised to their declared defaults"), for
// both a scalar and a multi-slot StepsArity property.
func TestBagAllocateAppliesDeclaredDefaults(t *testing.T) {
	reg := NewRegistry(3)
	eff, err := reg.Register("CoolingEfficiency", Float64, 1, 0.75)
	require.NoError(t, err)
	hist, err := reg.Register("EfficiencyHistory", Float64, StepsArity, 0.75)
	require.NoError(t, err)
	flag, err := reg.Register("Active", Bool, 1, true)
	require.NoError(t, err)
	plain, err := reg.Register("StellarMass", Float64, 1, nil)
	require.NoError(t, err)

	bag := Allocate(reg)
	require.Equal(t, 0.75, bag.Float64(eff))
	for i := 0; i < 3; i++ {
		require.Equal(t, 0.75, bag.Float64At(hist, i))
	}
	require.True(t, bag.Bool(flag))
	require.Zero(t, bag.Float64(plain))
}

func TestBagRoundTrip(t *testing.T) {
	reg := NewRegistry(3)
	mass, err := reg.Register("StellarMass", Float64, 1, nil)
	require.NoError(t, err)
	sfr, err := reg.Register("SfrHistory", Float64, StepsArity, nil)
	require.NoError(t, err)
	typ, err := reg.Register("Type", Int32, 1, nil)
	require.NoError(t, err)

	bag := Allocate(reg)
	bag.SetFloat64(mass, 1.5)
	bag.SetInt32(typ, 2)
	for i := 0; i < 3; i++ {
		bag.SetFloat64At(sfr, i, float64(i))
	}

	require.Equal(t, 1.5, bag.Float64(mass))
	require.Equal(t, int32(2), bag.Int32(typ))
	for i := 0; i < 3; i++ {
		require.Equal(t, float64(i), bag.Float64At(sfr, i))
	}
}

func TestBagCloneIsIndependent(t *testing.T) {
	reg := NewRegistry(1)
	mass, _ := reg.Register("StellarMass", Float64, 1, nil)
	bag := Allocate(reg)
	bag.SetFloat64(mass, 1.0)

	clone := bag.Clone()
	clone.SetFloat64(mass, 2.0)

	require.Equal(t, 1.0, bag.Float64(mass))
	require.Equal(t, 2.0, clone.Float64(mass))
}

func TestIndexOutOfRange(t *testing.T) {
	reg := NewRegistry(4)
	id, _ := reg.Register("SfrHistory", Float64, StepsArity, nil)
	require.Error(t, reg.IndexInRange(id, 10))
	require.ErrorIs(t, reg.IndexInRange(id, 10), sageerr.ErrPropertyIndexOutOfRange)
	require.NoError(t, reg.IndexInRange(id, 0))
}
