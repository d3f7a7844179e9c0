// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package galaxy

import (
	"fmt"

	"github.com/galforge/sage/sageerr"
)

// Reservoir is a mass/metal-mass pair, the unit every baryonic component
// (hot gas, cold gas, stellar disk, stellar bulge, intracluster, ejecta)
// is tracked in (§3); black hole mass is a plain float64 with no metals.
type Reservoir struct {
	Mass   float64
	Metals float64
}

// Validate enforces the two reservoir invariants checked after every
// sub-step (§3 I4, I5): non-negative mass, and metal mass never exceeding
// total mass.
func (r Reservoir) Validate(name string) error {
	if r.Mass < 0 {
		return fmt.Errorf("%w: %s mass %g < 0", sageerr.ErrInvariantViolation, name, r.Mass)
	}
	if r.Metals < 0 {
		return fmt.Errorf("%w: %s metals %g < 0", sageerr.ErrInvariantViolation, name, r.Metals)
	}
	if r.Metals > r.Mass {
		return fmt.Errorf("%w: %s metals %g exceed mass %g", sageerr.ErrInvariantViolation, name, r.Metals, r.Mass)
	}
	return nil
}

// Clamp forces r back within the I4/I5 invariants: negative mass or
// metals floored at zero, metals in excess of mass capped to mass. Used
// by the Evolution Loop's "clamp and warn" InvariantViolation mode
// (§7), never by the fatal default path.
func (r Reservoir) Clamp() Reservoir {
	out := r
	if out.Mass < 0 {
		out.Mass = 0
	}
	if out.Metals < 0 {
		out.Metals = 0
	}
	if out.Metals > out.Mass {
		out.Metals = out.Mass
	}
	return out
}

// Add returns the component-wise sum of two reservoirs, used when
// transferring mass between components or merging galaxies.
func (r Reservoir) Add(o Reservoir) Reservoir {
	return Reservoir{Mass: r.Mass + o.Mass, Metals: r.Metals + o.Metals}
}

// Sub returns the component-wise difference, clamped at zero to absorb
// floating-point overshoot rather than let a transfer step drive a
// reservoir slightly negative.
func (r Reservoir) Sub(o Reservoir) Reservoir {
	out := Reservoir{Mass: r.Mass - o.Mass, Metals: r.Metals - o.Metals}
	if out.Mass < 0 {
		out.Mass = 0
	}
	if out.Metals < 0 {
		out.Metals = 0
	}
	return out
}

// Metallicity returns Metals/Mass, or 0 for an empty reservoir.
func (r Reservoir) Metallicity() float64 {
	if r.Mass <= 0 {
		return 0
	}
	return r.Metals / r.Mass
}
