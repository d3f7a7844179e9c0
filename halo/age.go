// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package halo

// AgeTable converts snapshot numbers to cosmic time and back, and
// exposes the sub-step size for each snapshot gap (§4.8's Δt
// convention). It is built once from the run's per-snapshot cosmic ages and shared
// read-only across every forest.
type AgeTable struct {
	// Age is cosmic time at each snapshot, in the configured time unit
	// (§6 Units), ascending with snapshot number.
	Age []float64
}

// NewAgeTable builds an AgeTable from a list of per-snapshot cosmic ages.
func NewAgeTable(ages []float64) *AgeTable {
	out := make([]float64, len(ages))
	copy(out, ages)
	return &AgeTable{Age: out}
}

// SnapshotSpan returns the cosmic time elapsed between snapshot "from"
// and snapshot "to". A gapped tree (descendant several snapshots ahead of
// its last progenitor) spans more than one entry; callers sub-divide this
// span by the configured number of sub-steps per snapshot gap times the
// number of snapshots skipped.
func (t *AgeTable) SnapshotSpan(from, to int32) float64 {
	return t.Age[to] - t.Age[from]
}

// SubStepSize returns the Δt convention used by the Evolution Loop
// (§4.8): the total cosmic time between two populated snapshots divided
// evenly across all sub-steps, where steps is stepsPerSnapshot times the
// number of snapshots actually skipped (≥1, >1 only across a gap).
func (t *AgeTable) SubStepSize(from, to int32, stepsPerSnapshot int) float64 {
	skipped := int(to - from)
	if skipped < 1 {
		skipped = 1
	}
	totalSteps := stepsPerSnapshot * skipped
	if totalSteps <= 0 {
		return 0
	}
	return t.SnapshotSpan(from, to) / float64(totalSteps)
}
