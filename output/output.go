// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package output implements Output Staging (§4.9): filtering tombstoned
// galaxies out of the "this snapshot" container and computing the
// globally unique GalaxyIndex before handing each surviving galaxy to
// the writer, grounded on the teacher's overflow-checked id-composition
// helpers (utils/math) generalized from a consensus choice id to an
// output galaxy index.
package output

import (
	"github.com/galforge/sage/container"
	"github.com/galforge/sage/galaxy"
	safemath "github.com/galforge/sage/utils/math"
)

// MulFactors are the configured multipliers that fold (file, forest,
// galaxy) into one GalaxyIndex (§4.9, §6).
type MulFactors struct {
	FileNr   uint64
	ForestNr uint64
}

// Record is a filtered, indexed galaxy ready for the writer.
type Record struct {
	Galaxy             *galaxy.Galaxy
	GalaxyIndex        uint64
	CentralGalaxyIndex uint64
}

// Writer is the out-of-scope record sink (§6); the engine only owns
// staging, not serialization or the on-disk format.
type Writer interface {
	Write(snapshot int32, rec Record) error
}

// Stage filters c's live galaxies for one output snapshot and writes
// every surviving one through w. fileNr/forestNr identify the owning
// forest for GalaxyIndex composition. By the time Stage sees c, the
// Forest Driver has already rewritten every galaxy's FOFCentral from a
// FOF-buffer index to a this-snapshot-container index (§9 Open
// Questions, "CentralGal semantics"), so it can be used directly as a
// Container index here.
func Stage(c *container.Container, snapshot int32, fileNr, forestNr uint64, mul MulFactors, w Writer) error {
	var stageErr error
	c.Live(func(idx int, g *galaxy.Galaxy) {
		if stageErr != nil {
			return
		}
		if g.IsTombstone() {
			return
		}

		gi, err := galaxyIndex(fileNr, forestNr, uint64(g.GalaxyNr), mul)
		if err != nil {
			stageErr = err
			return
		}

		central := c.Get(int(g.FOFCentral))
		var centralNr uint64
		if central != nil {
			centralNr = uint64(central.GalaxyNr)
		}
		ci, err := galaxyIndex(fileNr, forestNr, centralNr, mul)
		if err != nil {
			stageErr = err
			return
		}

		stageErr = w.Write(snapshot, Record{Galaxy: g, GalaxyIndex: gi, CentralGalaxyIndex: ci})
	})
	return stageErr
}

func galaxyIndex(fileNr, forestNr, galaxyNr uint64, mul MulFactors) (uint64, error) {
	a, err := safemath.Mul64(fileNr, mul.FileNr)
	if err != nil {
		return 0, err
	}
	b, err := safemath.Mul64(forestNr, mul.ForestNr)
	if err != nil {
		return 0, err
	}
	sum, err := safemath.Add64(a, b)
	if err != nil {
		return 0, err
	}
	return safemath.Add64(sum, galaxyNr)
}
