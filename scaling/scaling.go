// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scaling implements the Scaling & Helpers component (§4.11): a
// small set of pure functions deriving redshift-dependent physics
// quantities (the Hubble parameter, virial radius and velocity) from a
// halo's virial mass and the run's configured cosmology, plus unit
// conversion between the engine's internal code units and CGS,
// grounded on the teacher's small-pure-function conversion style
// (version/version.go) and the flat helper grouping of utils/utils.go.
package scaling

import (
	"math"

	"github.com/galforge/sage/config"
)

// HubbleParameter returns H(z) in the same unit system as
// cos.HubbleConstant0 (km/s/Mpc for the Builder's default cosmology),
// using the standard flat/open/closed FRW expansion rate. A cosmology
// not forced flat by the caller (Omega + OmegaLambda != 1) is handled
// via the implicit curvature term rather than assumed away.
func HubbleParameter(z float64, cos config.Cosmology) float64 {
	omegaK := 1 - cos.Omega - cos.OmegaLambda
	zp1 := 1 + z
	e2 := cos.Omega*zp1*zp1*zp1 + omegaK*zp1*zp1 + cos.OmegaLambda
	if e2 < 0 {
		e2 = 0
	}
	return cos.HubbleConstant0 * math.Sqrt(e2)
}

// CriticalDensity returns the critical density rho_crit(z) = 3*H(z)^2 /
// (8*pi*G), in whatever mass/length^3 unit system G is expressed in.
func CriticalDensity(hz float64, gravConstant float64) float64 {
	return 3 * hz * hz / (8 * math.Pi * gravConstant)
}

// virialOverdensity is the mean-density contrast, relative to the
// critical density, a halo is conventionally defined by (the standard
// "Delta_c = 200" spherical-overdensity convention).
const virialOverdensity = 200.0

// VirialRadius derives Rvir from Mvir and the critical density at z,
// inverting Mvir = (4/3)*pi*Rvir^3*Delta_c*rho_crit(z). Returns 0 for a
// non-positive mass (an orphan with no halo).
func VirialRadius(mvir, z float64, cos config.Cosmology) float64 {
	if mvir <= 0 {
		return 0
	}
	hz := HubbleParameter(z, cos)
	rhoCrit := CriticalDensity(hz, cos.GravConstant)
	if rhoCrit <= 0 {
		return 0
	}
	volume := mvir / (virialOverdensity * rhoCrit)
	return math.Cbrt(3 * volume / (4 * math.Pi))
}

// VirialVelocity derives Vvir from the circular velocity at Rvir,
// Vvir = sqrt(G*Mvir/Rvir). Returns 0 if either input is non-positive.
func VirialVelocity(mvir, rvir float64, cos config.Cosmology) float64 {
	if mvir <= 0 || rvir <= 0 {
		return 0
	}
	return math.Sqrt(cos.GravConstant * mvir / rvir)
}

// ToCGSLength converts a length in internal code units to centimeters.
func ToCGSLength(v float64, u config.Units) float64 { return v * u.LengthCM }

// ToCGSMass converts a mass in internal code units to grams.
func ToCGSMass(v float64, u config.Units) float64 { return v * u.MassG }

// ToCGSVelocity converts a velocity in internal code units to cm/s.
func ToCGSVelocity(v float64, u config.Units) float64 { return v * u.VelocityCM }

// ToCGSTime converts a time in internal code units to seconds.
func ToCGSTime(v float64, u config.Units) float64 { return v * u.TimeS }

// FromCGSLength is the inverse of ToCGSLength.
func FromCGSLength(cm float64, u config.Units) float64 { return cm / u.LengthCM }

// FromCGSMass is the inverse of ToCGSMass.
func FromCGSMass(g float64, u config.Units) float64 { return g / u.MassG }

// FromCGSVelocity is the inverse of ToCGSVelocity.
func FromCGSVelocity(cmPerS float64, u config.Units) float64 { return cmPerS / u.VelocityCM }

// FromCGSTime is the inverse of ToCGSTime.
func FromCGSTime(s float64, u config.Units) float64 { return s / u.TimeS }
