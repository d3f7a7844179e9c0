// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package evolution implements the Evolution Loop (§4.8): it sub-steps
// one FOF group's transient buffer, dispatching Pipeline phases in
// HALO → GALAXY → POST → FINAL order and draining the merger queue once
// per sub-step, grounded on the teacher's stateful driver loop
// (nebula.go's Step()) generalized from one consensus round to one
// cosmic sub-step.
package evolution

import (
	"context"
	"fmt"

	"github.com/galforge/sage/container"
	"github.com/galforge/sage/galaxy"
	"github.com/galforge/sage/halo"
	"github.com/galforge/sage/log"
	"github.com/galforge/sage/mergequeue"
	"github.com/galforge/sage/metrics"
	"github.com/galforge/sage/module"
	"github.com/galforge/sage/pipeline"
)

// Loop drives one FOF group's sub-stepped evolution. It is stateless
// across FOF groups: Run is called once per (FOF buffer, snapshot pair)
// and reads everything it needs from its arguments.
type Loop struct {
	pipeline         *pipeline.Pipeline
	ages             *halo.AgeTable
	stepsPerSnapshot int
	queueCapacity    int
	mergeHandler     module.MergeHandler
	disruptHandler   module.MergeHandler
	log              log.Logger
	metrics          *metrics.Forest
	clampInvariants  bool
}

// New builds a Loop. mergeHandler/disruptHandler are resolved once, at
// startup, via module.Registry.LookupMergeHandler — never re-resolved
// per event (§9 Design Notes). clampInvariants selects the §7
// InvariantViolation handling mode: false is fatal on any I4/I5
// violation found after a sub-step, true clamps the offending
// reservoir and logs a warning instead.
func New(p *pipeline.Pipeline, ages *halo.AgeTable, stepsPerSnapshot, queueCapacity int, mergeHandler, disruptHandler module.MergeHandler, logger log.Logger, m *metrics.Forest, clampInvariants bool) *Loop {
	if logger == nil {
		logger = log.NewNoOp()
	}
	return &Loop{
		pipeline:         p,
		ages:             ages,
		stepsPerSnapshot: stepsPerSnapshot,
		queueCapacity:    queueCapacity,
		mergeHandler:     mergeHandler,
		disruptHandler:   disruptHandler,
		log:              logger,
		metrics:          m,
		clampInvariants:  clampInvariants,
	}
}

// Run sub-steps buf from fromSnapshot to toSnapshot, dispatching phases
// in order and draining the merger queue after POST at every sub-step.
// On any fail-fast error the FOF's remaining phases are abandoned and
// the error is returned; the caller (Forest Driver) discards buf and
// moves to the next FOF group, per §4.8's failure semantics.
func (l *Loop) Run(ctx context.Context, buf *container.Container, centralIdx int, fromSnapshot, toSnapshot int32, haloNr int32) error {
	dt := l.ages.SubStepSize(fromSnapshot, toSnapshot, l.stepsPerSnapshot)
	skipped := int(toSnapshot - fromSnapshot)
	if skipped < 1 {
		skipped = 1
	}
	totalSteps := l.stepsPerSnapshot * skipped
	t := l.ages.Age[fromSnapshot]

	queue := mergequeue.New(l.queueCapacity)

	for s := 0; s < totalSteps; s++ {
		groupCtx := &module.Context{
			FOFBuffer:    buf,
			CentralIndex: centralIdx,
			Queue:        queue,
			Time:         t,
			Dt:           dt,
			HaloNr:       haloNr,
			Step:         s,
		}

		central := buf.Get(centralIdx)
		if central == nil {
			return fmt.Errorf("evolution: central index %d removed mid-evolution", centralIdx)
		}
		groupCtx.Galaxy = central
		if err := l.pipeline.Run(ctx, pipeline.Halo, groupCtx); err != nil {
			return err
		}

		if err := l.runGalaxyPhase(ctx, buf, queue, t, dt, haloNr, s); err != nil {
			return err
		}

		groupCtx.Galaxy = buf.Get(centralIdx)
		if err := l.pipeline.Run(ctx, pipeline.Post, groupCtx); err != nil {
			return err
		}
		l.drainQueue(ctx, buf, queue)

		if err := l.checkInvariants(buf); err != nil {
			return err
		}

		t += dt
	}

	central := buf.Get(centralIdx)
	if central == nil {
		return fmt.Errorf("evolution: central index %d removed before FINAL", centralIdx)
	}
	return l.pipeline.Run(ctx, pipeline.Final, &module.Context{
		Galaxy:       central,
		FOFBuffer:    buf,
		CentralIndex: centralIdx,
		Time:         t,
		Dt:           dt,
		HaloNr:       haloNr,
	})
}

// runGalaxyPhase runs the GALAXY phase for every non-tombstone galaxy in
// buffer-index order (§4.8 step 2, §8 P9: a tombstone is never visible
// to a GALAXY step; it only becomes visible once POST has run). A step
// may mutate g's reservoirs directly and may push merger events onto
// queue through its Context.
func (l *Loop) runGalaxyPhase(ctx context.Context, buf *container.Container, queue *mergequeue.Queue, t, dt float64, haloNr int32, step int) error {
	var phaseErr error
	buf.Live(func(i int, g *galaxy.Galaxy) {
		if phaseErr != nil || g.IsTombstone() {
			return
		}
		pc := &module.Context{
			Galaxy:    g,
			FOFBuffer: buf,
			Queue:     queue,
			Time:      t,
			Dt:        dt,
			HaloNr:    haloNr,
			Step:      step,
		}
		if err := l.pipeline.Run(ctx, pipeline.GalaxyPhase, pc); err != nil {
			phaseErr = err
		}
	})
	return phaseErr
}

// checkInvariants validates I4/I5 on every non-tombstone galaxy in buf
// after a sub-step (§7 "InvariantViolation"). A tombstone is excluded
// for the same reason runGalaxyPhase excludes it: it is no longer a
// live reservoir the physics pipeline is expected to keep in range.
// With clampInvariants false (the default) the first violation found
// aborts the FOF, wrapping sageerr.ErrInvariantViolation; with it true,
// the offending galaxy is clamped back into range and a warning logged,
// and the sub-step continues.
func (l *Loop) checkInvariants(buf *container.Container) error {
	var violation error
	buf.Live(func(i int, g *galaxy.Galaxy) {
		if violation != nil || g.IsTombstone() {
			return
		}
		if err := g.Validate(); err != nil {
			if !l.clampInvariants {
				violation = err
				return
			}
			l.log.Warn("reservoir invariant violated after sub-step, clamping", log.Int64("galaxy", g.GalaxyNr), log.Err(err))
			if l.metrics != nil {
				l.metrics.InvariantViolations.Inc()
			}
			g.Clamp()
		}
	})
	return violation
}

// drainQueue implements the POST-phase merger drainer (§4.8 step 3): it
// consumes every event in FIFO insertion order, dispatching to the
// merger handler when RemainingMergerTime <= 0 and to the disruption
// handler otherwise, skipping any event whose indices fall outside the
// FOF buffer with a warning rather than failing the sub-step.
func (l *Loop) drainQueue(ctx context.Context, buf *container.Container, queue *mergequeue.Queue) {
	events := queue.Drain()
	for _, ev := range events {
		if ev.Satellite < 0 || ev.Satellite >= buf.Len() || ev.Central < 0 || ev.Central >= buf.Len() {
			l.log.Warn("merger event index out of FOF buffer bounds, skipping",
				log.Int("satellite", ev.Satellite), log.Int("central", ev.Central))
			continue
		}

		var handler module.MergeHandler
		if ev.RemainingMergerTime <= 0 {
			handler = l.mergeHandler
		} else {
			handler = l.disruptHandler
		}
		if handler == nil {
			continue
		}
		if err := handler(ctx, buf, ev); err != nil {
			l.log.Warn("merger handler failed", log.Err(err))
			if l.metrics != nil {
				l.metrics.ModuleInvokeFails.Inc()
			}
		}
	}
}
