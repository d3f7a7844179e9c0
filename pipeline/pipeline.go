// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pipeline implements the four evolution phases (§4.4): HALO
// (once per FOF group at the start of every sub-step), GALAXY (once per
// live galaxy in every sub-step), POST (once per FOF group at the end of
// every sub-step, before the merger queue is drained), and FINAL (once
// per FOF group after the last sub-step). The per-FOF phases receive the
// FOF central as their Context's Galaxy. Each phase runs an ordered list of module steps,
// grounded on the teacher's ordered-stage driver (nebula.go's Step()
// loop) generalized from a single consensus round to four named phases.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/galforge/sage/log"
	"github.com/galforge/sage/module"
	"github.com/galforge/sage/sageerr"
)

// Phase names the four points in a snapshot's evolution where modules
// run.
type Phase int

const (
	Halo Phase = iota
	GalaxyPhase
	Post
	Final
)

func (p Phase) String() string {
	switch p {
	case Halo:
		return "halo"
	case GalaxyPhase:
		return "galaxy"
	case Post:
		return "post"
	case Final:
		return "final"
	default:
		return "unknown"
	}
}

// step is one ordered entry in a phase's step list.
type step struct {
	module        string
	function      string
	faultTolerant bool
}

// Pipeline is the ordered, per-phase list of module steps the Evolution
// Loop (§4.8) drives every sub-step. It is built once at startup from
// configuration (§6) and is read-only thereafter.
type Pipeline struct {
	phases   map[Phase][]step
	registry *module.Registry
	log      log.Logger
}

// New builds an empty Pipeline bound to the given module Registry.
func New(reg *module.Registry, logger log.Logger) *Pipeline {
	if logger == nil {
		logger = log.NewNoOp()
	}
	return &Pipeline{
		phases:   make(map[Phase][]step),
		registry: reg,
		log:      logger,
	}
}

// AddStep appends a module.function call to the named phase. faultTolerant
// controls what happens when the step returns a ModuleInvocationFailure:
// a fault-tolerant step is logged and skipped, letting the phase continue
// to its next step; a fail-fast step aborts the whole phase and is
// returned to the caller, matching §4.4's distinction between physics
// that can be approximated away for one galaxy and physics the rest of
// the phase depends on.
func (p *Pipeline) AddStep(phase Phase, moduleName, funcName string, faultTolerant bool) {
	p.phases[phase] = append(p.phases[phase], step{module: moduleName, function: funcName, faultTolerant: faultTolerant})
}

// Run executes every step registered for phase, in registration order,
// against pc. It returns the first fail-fast error encountered; a
// fault-tolerant step's error is logged and does not stop the phase.
func (p *Pipeline) Run(ctx context.Context, phase Phase, pc *module.Context) error {
	for _, s := range p.phases[phase] {
		err := p.registry.Invoke(ctx, s.module, s.function, pc)
		if err == nil {
			continue
		}

		var invokeErr *sageerr.ModuleInvocationFailure
		isModuleFailure := errors.As(err, &invokeErr)

		fields := []log.Field{
			log.String("phase", phase.String()),
			log.String("module", s.module),
			log.String("function", s.function),
			log.Err(err),
		}
		if pc.Galaxy != nil {
			fields = append(fields, log.Int64("galaxy", pc.Galaxy.GalaxyNr))
		}

		if s.faultTolerant && isModuleFailure {
			p.log.Warn("module step failed, continuing", fields...)
			continue
		}
		return fmt.Errorf("phase %s: %s.%s: %w", phase, s.module, s.function, err)
	}
	return nil
}

// StepCount returns the number of steps registered for phase, used by
// tests and diagnostics.
func (p *Pipeline) StepCount(phase Phase) int {
	return len(p.phases[phase])
}
