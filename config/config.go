// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config implements the configuration boundary (§6): the
// parameter bundle grouped into cosmology, units, simulation, I/O, and
// runtime, plus the name-routing options that wire the pipeline's
// merger/disruption handlers, grounded on the teacher's Config/Builder/
// Validator trio (config/config.go, config/builder.go, config/validator.go).
package config

// Cosmology holds the background cosmology and gravitational constants
// every Scaling & Helpers computation (redshift-dependent Vvir/Rvir,
// Hubble parameter at z) is driven by.
type Cosmology struct {
	Omega           float64 // matter density parameter, Ω
	OmegaLambda     float64 // dark energy density parameter, ΩΛ
	Hubble          float64 // little h, H0 = 100*h km/s/Mpc
	ParticleMass    float64 // dark matter particle mass, 1e10 Msun/h
	BaryonFraction  float64 // cosmic baryon fraction, Ωb/Ω
	GravConstant    float64 // G, in the configured unit system
	HubbleConstant0 float64 // H0 in the configured unit system (derived from Hubble by Builder.WithCosmology)
}

// Units holds the CGS conversion factors the engine's internal code units
// are expressed against (§6 "units (length/mass/velocity/time in CGS)").
type Units struct {
	LengthCM   float64 // UnitLength_in_cm
	MassG      float64 // UnitMass_in_g
	VelocityCM float64 // UnitVelocity_in_cm_per_s
	TimeS      float64 // derived: LengthCM / VelocityCM
}

// Simulation holds the forest-independent run shape: how many snapshots
// exist, which ones are staged to the writer, the per-snapshot age table,
// and the Evolution Loop's sub-step count.
type Simulation struct {
	MaxSnapshot      int32
	OutputSnapshots  []int32
	AgeTable         []float64 // cosmic time at each snapshot, len >= MaxSnapshot+1
	StepsPerSnapshot int       // STEPS constant (§4.8)
}

// IO names the external tree-reader and writer formats the run was
// invoked with; the engine itself never branches on these, it only
// threads them through to whichever out-of-scope reader/writer the
// caller constructs (§6).
type IO struct {
	TreeType     string
	OutputFormat string
}

// Runtime holds the module-discovery and name-routing options (§6
// "Recognised options controlling physics pipeline wiring").
type Runtime struct {
	ModuleDir                   string
	EnableModuleDiscovery       bool
	MergerHandlerModuleName     string
	MergerHandlerFunctionName   string
	DisruptionHandlerModuleName string
	DisruptionHandlerFunctionName string
	QueueCapacity               int

	// ClampInvariantViolations selects the §7 InvariantViolation
	// handling mode: false (default) is fatal on any I4/I5 violation
	// after a sub-step; true clamps the offending reservoir back into
	// range and logs a warning instead, for legacy compatibility.
	ClampInvariantViolations bool
}

// Config is the full parameter bundle (§6). It is immutable once returned
// by Builder.Build; every field is read-only for the remainder of the run.
type Config struct {
	Cosmology  Cosmology
	Units      Units
	Simulation Simulation
	IO         IO
	Runtime    Runtime
}
