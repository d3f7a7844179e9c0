// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package forest implements the Forest Driver (§4.10): it orchestrates
// the Tree Walker, FOF Assembler, Evolution Loop, and Output Staging for
// one whole forest, owning the two Galaxy Containers and swapping them
// between snapshots, grounded on the teacher's top-level round driver
// (engine.go's per-round orchestration of acceptors, frontier, and
// finalization) generalized from one consensus round to one forest pass
// over many snapshots.
package forest

import (
	"context"
	"fmt"

	"github.com/galforge/sage/assembler"
	"github.com/galforge/sage/container"
	"github.com/galforge/sage/evolution"
	"github.com/galforge/sage/galaxy"
	"github.com/galforge/sage/halo"
	"github.com/galforge/sage/log"
	"github.com/galforge/sage/metrics"
	"github.com/galforge/sage/module"
	"github.com/galforge/sage/output"
	"github.com/galforge/sage/pipeline"
	"github.com/galforge/sage/property"
	"github.com/galforge/sage/set"
	"github.com/galforge/sage/walker"
)

// Params configures a Driver. It is built once per run and reused across
// every forest the run processes; Run resets the per-forest state (galaxy
// counter, containers) on every call.
type Params struct {
	PropertyReg      *property.Registry
	Pipeline         *pipeline.Pipeline
	Ages             *halo.AgeTable
	StepsPerSnapshot int
	QueueCapacity    int
	MergeHandler     module.MergeHandler
	DisruptHandler   module.MergeHandler
	Writer           output.Writer
	MulFactors       output.MulFactors
	OutputSnapshots  map[int32]bool
	Metrics          *metrics.Forest
	Logger           log.Logger
	// ClampInvariantViolations selects the §7 InvariantViolation
	// handling mode for the Evolution Loop: false (default) is fatal on
	// any I4/I5 violation found after a sub-step; true clamps the
	// offending reservoir and logs a warning instead.
	ClampInvariantViolations bool
}

// Driver orchestrates one forest pass (§4.10): Tree Walker (6) calling
// FOF Assembler (7) for each unprocessed FOF group in snapshot order,
// handing the resulting buffer to the Evolution Loop (8), draining the
// evolved buffer into the "this snapshot" Container, and invoking Output
// Staging (9) at every requested output snapshot.
type Driver struct {
	reg         *property.Registry
	loop        *evolution.Loop
	writer      output.Writer
	mul         output.MulFactors
	outputSnaps map[int32]bool
	metrics     *metrics.Forest
	log         log.Logger
}

// New builds a Driver bound to the given forest-independent configuration.
func New(p Params) *Driver {
	logger := p.Logger
	if logger == nil {
		logger = log.NewNoOp()
	}
	m := p.Metrics
	if m == nil {
		m = metrics.NewForest(nil)
	}
	loop := evolution.New(p.Pipeline, p.Ages, p.StepsPerSnapshot, p.QueueCapacity, p.MergeHandler, p.DisruptHandler, logger, m, p.ClampInvariantViolations)
	return &Driver{
		reg:         p.PropertyReg,
		loop:        loop,
		writer:      p.Writer,
		mul:         p.MulFactors,
		outputSnaps: p.OutputSnapshots,
		metrics:     m,
		log:         logger,
	}
}

// Run processes one forest end to end (§4.10, §5 ordering guarantees):
// snapshots strictly ascending, FOF groups within a snapshot in
// first-encountered-root order, sub-steps ascending within a FOF group.
// On any fatal error the forest aborts; the "previous snapshot" container
// at the time of the error was never mutated mid-snapshot, so snapshots
// already fully assembled and staged are unaffected (§5 cancellation
// policy).
func (d *Driver) Run(ctx context.Context, halos *halo.Array, fileNr, forestNr uint64) error {
	counter := new(int64)
	asm := assembler.New(halos, d.reg, counter, d.metrics, d.log)
	w := walker.New(halos)

	prevContainer := container.New(0)
	prevProcessed := set.Set[int]{}
	hosts := assembler.HostIndex{}
	thisContainer := container.New(8)

	var curSnapshot, prevSnapshot int32
	haveSnapshot := false

	finalize := func() error {
		d.reportDisruptionLoss(prevContainer, prevProcessed)
		if d.outputSnaps[curSnapshot] {
			if err := output.Stage(thisContainer, curSnapshot, fileNr, forestNr, d.mul, d.writer); err != nil {
				return fmt.Errorf("output staging at snapshot %d: %w", curSnapshot, err)
			}
		}
		return nil
	}

	err := w.Walk(func(snap, root int32) error {
		if !haveSnapshot {
			prevSnapshot = snap
			curSnapshot = snap
			haveSnapshot = true
		} else if snap != curSnapshot {
			if err := finalize(); err != nil {
				return err
			}
			prevContainer = thisContainer
			prevSnapshot = curSnapshot
			prevProcessed = make(set.Set[int], prevContainer.Len())
			hosts = assembler.BuildHostIndex(prevContainer)
			thisContainer = container.New(prevContainer.Len())
			curSnapshot = snap
		}

		res, err := asm.Assemble(assembler.Input{
			Root:      root,
			Prev:      prevContainer,
			Hosts:     hosts,
			Processed: prevProcessed,
		})
		if err != nil {
			return fmt.Errorf("assembling FOF root %d at snapshot %d: %w", root, snap, err)
		}

		if err := d.loop.Run(ctx, res.Buffer, res.CentralIdx, prevSnapshot, curSnapshot, root); err != nil {
			return fmt.Errorf("evolving FOF root %d at snapshot %d: %w", root, snap, err)
		}

		d.drainInto(thisContainer, res)
		return nil
	})
	if err != nil {
		if d.metrics != nil {
			d.metrics.FailedForests.Inc()
		}
		return err
	}

	if haveSnapshot {
		if err := finalize(); err != nil {
			if d.metrics != nil {
				d.metrics.FailedForests.Inc()
			}
			return err
		}
	}

	for _, gap := range w.Gaps {
		d.metrics.ObserveGap(int(gap.Snapshots))
	}
	return nil
}

// drainInto appends every galaxy assembled into res.Buffer onto dst (the
// "this snapshot" Container) and rewrites each one's FOFCentral from the
// FOF-buffer index the Assembler and Evolution Loop used into dst's own
// index space (§9 "CentralGal semantics"), matching what Output Staging
// expects to find once the forest pass reaches an output snapshot.
func (d *Driver) drainInto(dst *container.Container, res assembler.Result) {
	mapped := make([]int, res.Buffer.Len())
	res.Buffer.Live(func(i int, g *galaxy.Galaxy) {
		mapped[i] = dst.Append(g)
	})
	newCentral := int32(mapped[res.CentralIdx])
	res.Buffer.Live(func(i int, g *galaxy.Galaxy) {
		g.FOFCentral = newCentral
	})
}

// reportDisruptionLoss implements the acknowledged "complete FOF
// disruption" limitation (§4.7 edge cases, §9 Open Questions): any galaxy
// still unprocessed after every FOF group of its snapshot has been
// assembled belonged to a group with no descendant anywhere in the
// forest. It is not rescued; it is counted and logged rather than
// silently dropped.
func (d *Driver) reportDisruptionLoss(c *container.Container, processed set.Set[int]) {
	c.Live(func(i int, g *galaxy.Galaxy) {
		if processed.Contains(i) {
			return
		}
		if d.metrics != nil {
			d.metrics.FOFDisruptionLoss.Inc()
		}
		d.log.Warn("galaxy lost to complete FOF disruption", log.Int64("galaxy", g.GalaxyNr), log.Int32("haloIndex", g.HaloIndex))
	})
}
