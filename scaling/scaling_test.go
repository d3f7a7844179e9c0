// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scaling

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galforge/sage/config"
)

func flatCosmology() config.Cosmology {
	return config.Cosmology{
		Omega:           0.25,
		OmegaLambda:     0.75,
		Hubble:          0.73,
		HubbleConstant0: 73,
		GravConstant:    43007.1,
	}
}

// At z=0 a flat cosmology's E(z) term is exactly 1, so H(0) must equal
// H0 regardless of Omega/OmegaLambda's split.
func TestHubbleParameterAtZeroRedshiftIsH0(t *testing.T) {
	cos := flatCosmology()
	require.InDelta(t, cos.HubbleConstant0, HubbleParameter(0, cos), 1e-9)
}

// H(z) must increase monotonically with redshift in a matter+Lambda
// cosmology, since the matter term grows as (1+z)^3.
func TestHubbleParameterIncreasesWithRedshift(t *testing.T) {
	cos := flatCosmology()
	h0 := HubbleParameter(0, cos)
	h1 := HubbleParameter(1, cos)
	h2 := HubbleParameter(2, cos)
	require.Greater(t, h1, h0)
	require.Greater(t, h2, h1)
}

// A negative curvature/expansion term must never produce a NaN from
// Sqrt of a negative number; it is clamped at zero instead.
func TestHubbleParameterClampsNegativeExpansionTerm(t *testing.T) {
	cos := config.Cosmology{Omega: 0, OmegaLambda: 2, Hubble: 0.73, HubbleConstant0: 73}
	got := HubbleParameter(5, cos)
	require.False(t, math.IsNaN(got))
	require.Zero(t, got)
}

// VirialRadius and VirialVelocity must invert the spherical-overdensity
// definition they are built from: reconstructing Mvir from the derived
// Rvir and the same critical density must recover the original mass.
func TestVirialRadiusRoundTripsThroughDefinition(t *testing.T) {
	cos := flatCosmology()
	const mvir = 100.0
	const z = 0.5

	rvir := VirialRadius(mvir, z, cos)
	require.Greater(t, rvir, 0.0)

	hz := HubbleParameter(z, cos)
	rhoCrit := CriticalDensity(hz, cos.GravConstant)
	reconstructed := virialOverdensity * rhoCrit * (4.0 / 3.0) * math.Pi * rvir * rvir * rvir
	require.InDelta(t, mvir, reconstructed, mvir*1e-9)

	vvir := VirialVelocity(mvir, rvir, cos)
	require.InDelta(t, math.Sqrt(cos.GravConstant*mvir/rvir), vvir, 1e-9)
}

// A halo with no virial mass (an orphan) derives a zero radius and
// velocity rather than a spurious positive one.
func TestVirialQuantitiesAreZeroForMasslessHalo(t *testing.T) {
	cos := flatCosmology()
	require.Zero(t, VirialRadius(0, 0, cos))
	require.Zero(t, VirialVelocity(0, 10, cos))
	require.Zero(t, VirialVelocity(10, 0, cos))
}

// Unit conversion must round-trip: converting to CGS and back recovers
// the original code-unit value for every one of the four quantities.
func TestUnitConversionRoundTrips(t *testing.T) {
	u := config.Units{LengthCM: 3.08568e24, MassG: 1.989e43, VelocityCM: 1e5}
	u.TimeS = u.LengthCM / u.VelocityCM

	require.InDelta(t, 7.0, FromCGSLength(ToCGSLength(7, u), u), 1e-9)
	require.InDelta(t, 7.0, FromCGSMass(ToCGSMass(7, u), u), 1e-9)
	require.InDelta(t, 7.0, FromCGSVelocity(ToCGSVelocity(7, u), u), 1e-9)
	require.InDelta(t, 7.0, FromCGSTime(ToCGSTime(7, u), u), 1e-9)
}
