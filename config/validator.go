// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"

	"github.com/galforge/sage/sageerr"
)

var errInvalid = sageerr.ErrInvalidConfig

// Validator runs cross-field checks a single With* call cannot make on
// its own, because they depend on two or more groups together (e.g. the
// age table's length against the simulation's MaxSnapshot, or the
// handler names every run must configure), grounded on the teacher's two-phase Builder/Validator
// split (config/validator.go).
type Validator struct{}

// NewValidator returns a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks cfg as a whole, after every Builder.With* call has run.
func (v *Validator) Validate(cfg *Config) error {
	if cfg.Simulation.StepsPerSnapshot < 1 {
		return fmt.Errorf("%w: simulation steps per snapshot must be >= 1", errInvalid)
	}
	if len(cfg.Simulation.AgeTable) < int(cfg.Simulation.MaxSnapshot)+1 {
		return fmt.Errorf("%w: age table shorter than max snapshot + 1", errInvalid)
	}
	for i := 1; i < len(cfg.Simulation.AgeTable); i++ {
		if cfg.Simulation.AgeTable[i] < cfg.Simulation.AgeTable[i-1] {
			return fmt.Errorf("%w: age table is not non-decreasing at snapshot %d", errInvalid, i)
		}
	}
	if cfg.Runtime.MergerHandlerModuleName == "" {
		return fmt.Errorf("%w: no merger handler module configured", errInvalid)
	}
	if cfg.Runtime.DisruptionHandlerModuleName == "" {
		return fmt.Errorf("%w: no disruption handler module configured", errInvalid)
	}
	if cfg.Runtime.EnableModuleDiscovery && cfg.Runtime.ModuleDir == "" {
		return fmt.Errorf("%w: module discovery enabled without a module directory", errInvalid)
	}
	return nil
}
