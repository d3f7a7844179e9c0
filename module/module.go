// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package module implements the Module Registry (§4.3): the mechanism by
// which pluggable baryonic physics modules register named functions that
// the Pipeline invokes by name at each phase, grounded directly on the
// teacher's RWMutex-guarded handler-group registry with copy-before-unlock
// dispatch (acceptor_group.go), generalized from consensus-decision
// acceptors to physics-step invocables.
package module

import (
	"context"
	"fmt"
	"sync"

	"github.com/galforge/sage/container"
	"github.com/galforge/sage/galaxy"
	"github.com/galforge/sage/mergequeue"
	"github.com/galforge/sage/property"
	"github.com/galforge/sage/sageerr"
	"github.com/galforge/sage/utils/wrappers"
)

// Context is the Pipeline Context (§4.4, §5 "Shared-resource policy")
// passed to every Step: the galaxy currently being visited (the FOF
// central during HALO/POST/FINAL, which operate on the FOF group rather
// than one galaxy), the FOF buffer every step may read, and the merger queue a
// GALAXY-phase step may push events onto. Modules must not retain a
// Context or its Galaxy past the call that received it: container
// growth can relocate galaxies between phases.
type Context struct {
	Galaxy       *galaxy.Galaxy
	FOFBuffer    *container.Container
	CentralIndex int
	Queue        *mergequeue.Queue
	Time         float64
	Dt           float64
	HaloNr       int32
	Step         int
}

// Step is a single named, invocable unit of physics a module contributes
// to a pipeline phase (§4.4).
type Step func(ctx context.Context, pc *Context) error

// Module is the interface a baryonic physics module implements. Init is
// called exactly once, before any galaxy exists, so it is the place to
// register properties (§4.1) and read module-specific configuration.
// Cleanup is called exactly once at the end of a run, and is guaranteed
// to run for every successfully initialized module even if another
// module's Cleanup fails.
type Module interface {
	Name() string
	Init(reg *property.Registry) error
	Cleanup() error
}

type entry struct {
	mod           Module
	steps         map[string]Step
	mergeHandlers map[string]MergeHandler
	initalized    bool
}

// Registry holds every discovered module and the named steps they expose.
// Registration happens once at startup (single goroutine); Invoke runs in
// the per-galaxy hot loop and only ever takes the read lock, copying the
// looked-up Step out before releasing it so a concurrent Register (which
// this engine's startup sequencing never actually overlaps with Invoke,
// but the lock discipline costs nothing and matches the teacher's
// defensive convention) can't race a call in flight.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*entry
	order   []string
}

// NewRegistry returns an empty module Registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]*entry)}
}

// Register adds a module. Registering the same name twice returns
// ErrAlreadyInitialized (§7).
func (r *Registry) Register(m Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := m.Name()
	if _, ok := r.modules[name]; ok {
		return fmt.Errorf("%w: module %s", sageerr.ErrAlreadyInitialized, name)
	}
	r.modules[name] = &entry{mod: m, steps: make(map[string]Step)}
	r.order = append(r.order, name)
	return nil
}

// InitAll calls Init on every registered module, in registration order,
// against the shared property registry. If zero modules were registered
// and discovery was required, callers should check ErrNoModulesDiscovered
// themselves (§7); InitAll only reports per-module Init failures.
func (r *Registry) InitAll(reg *property.Registry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range r.order {
		e := r.modules[name]
		if err := e.mod.Init(reg); err != nil {
			return fmt.Errorf("module %s: init: %w", name, err)
		}
		e.initalized = true
	}
	return nil
}

// RegisterFunction attaches a named Step to an already-registered module.
// A module typically calls this from within its own Init.
func (r *Registry) RegisterFunction(moduleName, funcName string, step Step) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.modules[moduleName]
	if !ok {
		return fmt.Errorf("%w: %s", sageerr.ErrModuleNotFound, moduleName)
	}
	e.steps[funcName] = step
	return nil
}

// Invoke looks up moduleName.funcName and calls it with pc. A not-found
// name is a startup-time configuration mistake and returns
// ErrModuleNotFound / ErrModuleFunctionNotFound (§7); the error the Step
// itself returns is wrapped in ModuleInvocationFailure so the Pipeline
// can tell a physics failure (recoverable, logged and skipped by default)
// from a wiring mistake (fatal).
func (r *Registry) Invoke(ctx context.Context, moduleName, funcName string, pc *Context) error {
	r.mu.RLock()
	e, ok := r.modules[moduleName]
	if !ok {
		r.mu.RUnlock()
		return fmt.Errorf("%w: %s", sageerr.ErrModuleNotFound, moduleName)
	}
	step, ok := e.steps[funcName]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s.%s", sageerr.ErrModuleFunctionNotFound, moduleName, funcName)
	}

	if err := step(ctx, pc); err != nil {
		return &sageerr.ModuleInvocationFailure{Module: moduleName, Function: funcName, Err: err}
	}
	return nil
}

// CleanupAll calls Cleanup on every initialized module regardless of
// whether an earlier one fails, collecting every error into one
// (wrappers.Errs), grounded on the teacher's acceptor_group shutdown
// sweep.
func (r *Registry) CleanupAll() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs wrappers.Errs
	for _, name := range r.order {
		e := r.modules[name]
		if !e.initalized {
			continue
		}
		errs.Add(e.mod.Cleanup())
	}
	return errs.Err()
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
