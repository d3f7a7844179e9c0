// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import "fmt"

// Builder provides a fluent interface for constructing a run Config,
// grounded on the teacher's err-short-circuiting Builder (config/builder.go):
// every With* method is a no-op once a prior one has set an error, so a
// call chain can be written without an error check after every step and
// Build reports whichever validation failed first.
type Builder struct {
	cfg *Config
	err error
}

// NewBuilder returns a Builder seeded with the conservative defaults of a
// Millennium-like cosmology (Omega 0.25, OmegaLambda 0.75, h 0.73), CGS
// units matching Gadget's standard choice, and ten sub-steps per snapshot.
func NewBuilder() *Builder {
	return &Builder{
		cfg: &Config{
			Cosmology: Cosmology{
				Omega:           0.25,
				OmegaLambda:     0.75,
				Hubble:          0.73,
				BaryonFraction:  0.17,
				GravConstant:    43007.1, // (km/s)^2 Mpc / (1e10 Msun/h), Gadget code units
				HubbleConstant0: 0.73 * 100,
			},
			Units: Units{
				LengthCM:   3.08568e24, // 1 Mpc/h
				MassG:      1.989e43,   // 1e10 Msun/h
				VelocityCM: 1e5,        // 1 km/s
				TimeS:      3.08568e24 / 1e5,
			},
			Simulation: Simulation{
				StepsPerSnapshot: 10,
			},
			Runtime: Runtime{
				QueueCapacity: 64,
			},
		},
	}
}

// WithCosmology sets the background cosmology. Omega and OmegaLambda need
// not sum to 1 (an open or curved cosmology is not itself an engine
// concern), but both must be non-negative and Hubble must be positive.
func (b *Builder) WithCosmology(c Cosmology) *Builder {
	if b.err != nil {
		return b
	}
	if c.Omega < 0 || c.OmegaLambda < 0 {
		b.err = fmt.Errorf("%w: cosmology density parameters must be non-negative", errInvalid)
		return b
	}
	if c.Hubble <= 0 {
		b.err = fmt.Errorf("%w: cosmology Hubble parameter h must be positive", errInvalid)
		return b
	}
	if c.ParticleMass < 0 {
		b.err = fmt.Errorf("%w: cosmology particle mass must be non-negative", errInvalid)
		return b
	}
	if c.BaryonFraction < 0 || c.BaryonFraction > 1 {
		b.err = fmt.Errorf("%w: cosmology baryon fraction must be in [0,1]", errInvalid)
		return b
	}
	c.HubbleConstant0 = c.Hubble * 100
	b.cfg.Cosmology = c
	return b
}

// WithUnits sets the CGS conversion factors and derives TimeS from them.
func (b *Builder) WithUnits(u Units) *Builder {
	if b.err != nil {
		return b
	}
	if u.LengthCM <= 0 || u.MassG <= 0 || u.VelocityCM <= 0 {
		b.err = fmt.Errorf("%w: unit conversion factors must be positive", errInvalid)
		return b
	}
	u.TimeS = u.LengthCM / u.VelocityCM
	b.cfg.Units = u
	return b
}

// WithSimulation sets the snapshot shape and sub-step count. AgeTable must
// cover every snapshot from 0 through MaxSnapshot inclusive.
func (b *Builder) WithSimulation(maxSnapshot int32, ageTable []float64, stepsPerSnapshot int) *Builder {
	if b.err != nil {
		return b
	}
	if maxSnapshot < 0 {
		b.err = fmt.Errorf("%w: max snapshot must be non-negative", errInvalid)
		return b
	}
	if len(ageTable) < int(maxSnapshot)+1 {
		b.err = fmt.Errorf("%w: age table has %d entries, need at least %d", errInvalid, len(ageTable), maxSnapshot+1)
		return b
	}
	if stepsPerSnapshot < 1 {
		b.err = fmt.Errorf("%w: steps per snapshot must be >= 1", errInvalid)
		return b
	}
	b.cfg.Simulation.MaxSnapshot = maxSnapshot
	b.cfg.Simulation.AgeTable = append([]float64(nil), ageTable...)
	b.cfg.Simulation.StepsPerSnapshot = stepsPerSnapshot
	return b
}

// WithOutputSnapshots records which snapshots the Forest Driver should
// stage to the writer.
func (b *Builder) WithOutputSnapshots(snapshots []int32) *Builder {
	if b.err != nil {
		return b
	}
	for _, s := range snapshots {
		if s < 0 || s > b.cfg.Simulation.MaxSnapshot {
			b.err = fmt.Errorf("%w: output snapshot %d outside [0,%d]", errInvalid, s, b.cfg.Simulation.MaxSnapshot)
			return b
		}
	}
	b.cfg.Simulation.OutputSnapshots = append([]int32(nil), snapshots...)
	return b
}

// WithIO sets the tree-reader and writer format names.
func (b *Builder) WithIO(treeType, outputFormat string) *Builder {
	if b.err != nil {
		return b
	}
	if treeType == "" || outputFormat == "" {
		b.err = fmt.Errorf("%w: tree type and output format must be non-empty", errInvalid)
		return b
	}
	b.cfg.IO = IO{TreeType: treeType, OutputFormat: outputFormat}
	return b
}

// WithModuleDiscovery configures static-vs-discovered module loading (§6
// "EnableModuleDiscovery").
func (b *Builder) WithModuleDiscovery(dir string, enable bool) *Builder {
	if b.err != nil {
		return b
	}
	if enable && dir == "" {
		b.err = fmt.Errorf("%w: module discovery enabled with an empty module directory", errInvalid)
		return b
	}
	b.cfg.Runtime.ModuleDir = dir
	b.cfg.Runtime.EnableModuleDiscovery = enable
	return b
}

// WithMergerHandler names the module.function the Evolution Loop resolves
// once at startup via module.Registry.LookupMergeHandler for genuine
// mergers (§9 Design Notes).
func (b *Builder) WithMergerHandler(moduleName, funcName string) *Builder {
	if b.err != nil {
		return b
	}
	if moduleName == "" || funcName == "" {
		b.err = fmt.Errorf("%w: merger handler module and function names must be non-empty", errInvalid)
		return b
	}
	b.cfg.Runtime.MergerHandlerModuleName = moduleName
	b.cfg.Runtime.MergerHandlerFunctionName = funcName
	return b
}

// WithDisruptionHandler names the module.function resolved for merger
// events whose RemainingMergerTime has not yet elapsed (§9).
func (b *Builder) WithDisruptionHandler(moduleName, funcName string) *Builder {
	if b.err != nil {
		return b
	}
	if moduleName == "" || funcName == "" {
		b.err = fmt.Errorf("%w: disruption handler module and function names must be non-empty", errInvalid)
		return b
	}
	b.cfg.Runtime.DisruptionHandlerModuleName = moduleName
	b.cfg.Runtime.DisruptionHandlerFunctionName = funcName
	return b
}

// WithQueueCapacity sets the merger queue's fixed capacity (§4.5); 0 means
// unbounded.
func (b *Builder) WithQueueCapacity(capacity int) *Builder {
	if b.err != nil {
		return b
	}
	if capacity < 0 {
		b.err = fmt.Errorf("%w: merger queue capacity must be >= 0", errInvalid)
		return b
	}
	b.cfg.Runtime.QueueCapacity = capacity
	return b
}

// WithClampInvariantViolations selects the §7 InvariantViolation handling
// mode: clamp enables "clamp and warn" instead of the fatal default.
func (b *Builder) WithClampInvariantViolations(clamp bool) *Builder {
	if b.err != nil {
		return b
	}
	b.cfg.Runtime.ClampInvariantViolations = clamp
	return b
}

// Build runs final cross-field validation and returns the completed
// Config, or the first error recorded by any With* call.
func (b *Builder) Build() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}
	v := NewValidator()
	if err := v.Validate(b.cfg); err != nil {
		return nil, err
	}
	out := *b.cfg
	return &out, nil
}
