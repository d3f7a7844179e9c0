// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/galforge/sage/config"
	"github.com/galforge/sage/forest"
	"github.com/galforge/sage/halo"
	"github.com/galforge/sage/internal/treeio"
	sagelog "github.com/galforge/sage/log"
	"github.com/galforge/sage/metrics"
	"github.com/galforge/sage/modules/bookkeeping"
	"github.com/galforge/sage/module"
	"github.com/galforge/sage/output"
	"github.com/galforge/sage/pipeline"
	"github.com/galforge/sage/property"
	"github.com/galforge/sage/scaling"
	"github.com/galforge/sage/utils"
)

// treeFile is the on-disk JSON shape run expects: a reference tree reader
// format (§6), not a production one — the tree reader itself is an
// out-of-scope external collaborator, this is only enough to exercise the
// wiring below end to end.
type treeFile struct {
	AgeTable []float64        `json:"ageTable"`
	Forests  []treeio.Forest  `json:"forests"`
}

func runCmd() *cobra.Command {
	var (
		treePath     string
		outPath      string
		stepsPerSnap int
		queueCap     int
		outputSnaps  []int32
		failFast     bool
		clampInvariants bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the engine over a forest file and stage output records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(treePath, outPath, stepsPerSnap, queueCap, outputSnaps, failFast, clampInvariants)
		},
	}

	cmd.Flags().StringVar(&treePath, "trees", "", "path to a JSON tree file (required)")
	cmd.Flags().StringVar(&outPath, "out", "-", "output path, or - for stdout")
	cmd.Flags().IntVar(&stepsPerSnap, "steps-per-snapshot", 10, "sub-steps per snapshot gap")
	cmd.Flags().IntVar(&queueCap, "queue-capacity", 64, "merger queue capacity per FOF group")
	cmd.Flags().Int32SliceVar(&outputSnaps, "output-snapshot", nil, "snapshot to stage output for (repeatable)")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "stop at the first forest that aborts instead of continuing to the next one")
	cmd.Flags().BoolVar(&clampInvariants, "clamp-invariant-violations", false, "clamp reservoirs and warn on an I4/I5 violation instead of aborting the forest (legacy compatibility)")
	cmd.MarkFlagRequired("trees")

	return cmd
}

func run(treePath, outPath string, stepsPerSnap, queueCap int, outputSnaps []int32, failFast, clampInvariants bool) error {
	raw, err := os.ReadFile(treePath)
	if err != nil {
		return fmt.Errorf("reading tree file: %w", err)
	}
	var tf treeFile
	if err := json.Unmarshal(raw, &tf); err != nil {
		return fmt.Errorf("parsing tree file: %w", err)
	}

	maxSnapshot := int32(len(tf.AgeTable) - 1)
	outSnapSet := make(map[int32]bool, len(outputSnaps))
	for _, s := range outputSnaps {
		outSnapSet[s] = true
	}
	if len(outSnapSet) == 0 {
		outSnapSet[maxSnapshot] = true
	}

	cfg, err := config.NewBuilder().
		WithSimulation(maxSnapshot, tf.AgeTable, stepsPerSnap).
		WithOutputSnapshots(outputSnaps).
		WithIO("json", "line").
		WithModuleDiscovery("", false).
		WithQueueCapacity(queueCap).
		WithMergerHandler(bookkeeping.Name, bookkeeping.MergeFunc).
		WithDisruptionHandler(bookkeeping.Name, bookkeeping.DisruptFunc).
		WithClampInvariantViolations(clampInvariants).
		Build()
	if err != nil {
		return fmt.Errorf("building configuration: %w", err)
	}

	logger := sagelog.New("sage")

	// H0 and the code-unit-to-CGS time conversion are logged once up
	// front so a run's cosmology/unit configuration is visible without
	// re-deriving it by hand from the tree file (§4.11).
	h0 := scaling.HubbleParameter(0, cfg.Cosmology)
	oneGyrInCodeUnits := scaling.FromCGSTime(3.15576e16, cfg.Units)
	logger.Info("cosmology configured",
		sagelog.String("H0", fmt.Sprintf("%.3f km/s/Mpc", h0)),
		sagelog.String("oneGyr", fmt.Sprintf("%.6f code units", oneGyrInCodeUnits)),
	)

	moduleReg := module.NewRegistry()
	if err := moduleReg.Register(bookkeeping.New()); err != nil {
		return fmt.Errorf("registering bookkeeping module: %w", err)
	}
	propReg := property.NewRegistry(cfg.Simulation.StepsPerSnapshot)
	if err := moduleReg.InitAll(propReg); err != nil {
		return fmt.Errorf("initializing modules: %w", err)
	}
	if err := bookkeeping.Register(moduleReg); err != nil {
		return fmt.Errorf("registering merge handlers: %w", err)
	}
	defer func() {
		if err := moduleReg.CleanupAll(); err != nil {
			logger.Warn("module cleanup reported errors", sagelog.Err(err))
		}
	}()

	mergeHandler, err := moduleReg.LookupMergeHandler(cfg.Runtime.MergerHandlerModuleName, cfg.Runtime.MergerHandlerFunctionName)
	if err != nil {
		return fmt.Errorf("resolving merger handler: %w", err)
	}
	disruptHandler, err := moduleReg.LookupMergeHandler(cfg.Runtime.DisruptionHandlerModuleName, cfg.Runtime.DisruptionHandlerFunctionName)
	if err != nil {
		return fmt.Errorf("resolving disruption handler: %w", err)
	}

	pl := pipeline.New(moduleReg, logger)
	ages := halo.NewAgeTable(cfg.Simulation.AgeTable)
	m := metrics.NewForest(nil)

	var out *os.File
	if outPath == "-" {
		out = os.Stdout
	} else {
		out, err = os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer out.Close()
	}
	writer := treeio.NewLineWriter(out)

	driver := forest.New(forest.Params{
		PropertyReg:      propReg,
		Pipeline:         pl,
		Ages:             ages,
		StepsPerSnapshot: cfg.Simulation.StepsPerSnapshot,
		QueueCapacity:    cfg.Runtime.QueueCapacity,
		MergeHandler:     mergeHandler,
		DisruptHandler:   disruptHandler,
		Writer:           writer,
		MulFactors:       output.MulFactors{FileNr: 1_000_000_000, ForestNr: 1_000_000},
		OutputSnapshots:  outSnapSet,
		Metrics:          m,
		Logger:           logger,
		ClampInvariantViolations: cfg.Runtime.ClampInvariantViolations,
	})

	// aborted and stop are shared via utils' atomics rather than plain
	// fields so the run-wide tallies stay correct if this loop is ever
	// handed out to concurrent forest workers by an out-of-scope
	// distribution layer (§5) instead of run sequentially as it is here.
	aborted := utils.NewAtomicInt(0)
	stop := utils.NewAtomicBool(false)

	for _, f := range tf.Forests {
		if stop.Get() {
			logger.Warn("run stopped early: fail-fast after aborted forest", sagelog.Int64("remainingForest", f.ForestIndex))
			break
		}

		arr, err := halo.NewArray(f.Halos)
		if err != nil {
			logger.Warn("forest skipped: invalid halo array", sagelog.Err(err), sagelog.Int64("forest", f.ForestIndex))
			continue
		}
		if err := driver.Run(context.Background(), arr, uint64(f.FileIndex), uint64(f.ForestIndex)); err != nil {
			logger.Warn("forest aborted", sagelog.Err(err), sagelog.Int64("forest", f.ForestIndex))
			aborted.Inc()
			if failFast {
				stop.Set(true)
			}
		}
	}

	if n := aborted.Get(); n > 0 {
		logger.Warn("run finished with aborted forests", sagelog.Int64("count", n))
	}
	return nil
}
