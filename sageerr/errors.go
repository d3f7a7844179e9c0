// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sageerr declares the engine's closed set of error kinds (§7) and
// the structured diagnostic that accompanies a fatal one, grounded on the
// teacher's sentinel-error convention (errors_test.go's ErrTimeout,
// ErrNoQuorum, ...).
package sageerr

import (
	"errors"
	"fmt"
)

// Fatal-for-the-current-forest errors.
var (
	ErrAllocationFailure = errors.New("allocation failure")
	ErrTreeCycle         = errors.New("cycle detected in progenitor/descendant links")
	ErrTreeCorruption    = errors.New("structurally invalid tree input")
	ErrAssemblyFailure   = errors.New("FOF assembly invariant violated")
	ErrInvariantViolation = errors.New("reservoir invariant violated after sub-step")
	ErrQueueFull          = errors.New("merger queue full")
)

// Configuration errors, fatal at startup.
var (
	ErrModuleNotFound         = errors.New("module not found")
	ErrModuleFunctionNotFound = errors.New("module function not found")
	ErrAlreadyInitialized     = errors.New("module already initialized")
	ErrNoModulesDiscovered    = errors.New("module discovery enabled but no manifests found")
	ErrInvalidConfig          = errors.New("invalid configuration")
)

// Programmer errors, fatal immediately.
var (
	ErrPropertyConflict        = errors.New("property registered twice with conflicting kind or arity")
	ErrPropertyIndexOutOfRange = errors.New("property index out of arity range")
)

// ModuleInvocationFailure wraps a module-specific non-zero error code
// returned by Module Registry Invoke (§4.3). It is never fatal by itself;
// the core logs it and, by default, continues to the next pipeline step.
type ModuleInvocationFailure struct {
	Module   string
	Function string
	Code     int
	Err      error
}

func (e *ModuleInvocationFailure) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "module invocation failed"
}

func (e *ModuleInvocationFailure) Unwrap() error {
	return e.Err
}

// Diagnostic is a structured context for a fatal error out of a forest
// pass: forest id, snapshot, FOF root, and galaxy index where applicable
// (§7 "forest id, snapshot, FOF root, galaxy index"). The engine does not
// attach one to its errors; the Forest Driver wraps a fatal error with
// fmt.Errorf text naming the FOF root and snapshot instead.
type Diagnostic struct {
	ForestID   int64
	FileNr     int64
	Snapshot   int32
	FOFRoot    int32
	GalaxyIdx  int
	HaveGalaxy bool
}

// WithGalaxy returns a copy of d with GalaxyIdx set.
func (d Diagnostic) WithGalaxy(idx int) Diagnostic {
	d.GalaxyIdx = idx
	d.HaveGalaxy = true
	return d
}

func (d Diagnostic) String() string {
	if d.HaveGalaxy {
		return fmt.Sprintf("forest=%d file=%d snapshot=%d fofRoot=%d galaxy=%d", d.ForestID, d.FileNr, d.Snapshot, d.FOFRoot, d.GalaxyIdx)
	}
	return fmt.Sprintf("forest=%d file=%d snapshot=%d fofRoot=%d", d.ForestID, d.FileNr, d.Snapshot, d.FOFRoot)
}
