// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Forest holds the diagnostic counters the Forest Driver (§4.10) maintains
// across a forest pass: orphans created, progenitor gaps spanned, the
// largest gap seen, forests that aborted fatally, and merger queue
// overflows. One Forest is shared by every forest processed in a run so
// the counters accumulate run-wide, matching how a batch engine reports
// totals at the end of a pass.
type Forest struct {
	OrphansCreated    Counter
	OrphansRescued    Counter
	FOFDisruptionLoss Counter
	GapsSpanned       Counter
	MaxGapSnapshots   Gauge
	FailedForests     Counter
	QueueOverflows    Counter
	ModuleInvokeFails Counter
	InvariantViolations Counter
}

// NewForest registers the forest diagnostics under reg. reg may be nil for
// an in-process-only (e.g. unit test) run.
func NewForest(reg prometheus.Registerer) *Forest {
	r := NewRegistry(reg)
	return &Forest{
		OrphansCreated:    r.NewCounter("sage_orphans_created_total", "orphan galaxies created during FOF assembly"),
		OrphansRescued:    r.NewCounter("sage_orphans_rescued_total", "galaxies recovered by the orphan rescue pass"),
		FOFDisruptionLoss: r.NewCounter("sage_fof_disruption_loss_total", "galaxies lost to complete FOF disruption"),
		GapsSpanned:       r.NewCounter("sage_progenitor_gaps_total", "progenitor links spanning more than one snapshot"),
		MaxGapSnapshots:   r.NewGauge("sage_max_progenitor_gap_snapshots", "largest progenitor gap seen, in snapshots"),
		FailedForests:     r.NewCounter("sage_failed_forests_total", "forests aborted by a fatal error"),
		QueueOverflows:    r.NewCounter("sage_merger_queue_overflows_total", "merger queue QueueFull events"),
		ModuleInvokeFails: r.NewCounter("sage_module_invocation_failures_total", "non-fatal module invocation failures"),
		InvariantViolations: r.NewCounter("sage_invariant_violations_total", "reservoir I4/I5 violations clamped after a sub-step"),
	}
}

// ObserveGap records a progenitor gap of the given length in snapshots.
func (f *Forest) ObserveGap(snapshots int) {
	if snapshots <= 0 {
		return
	}
	f.GapsSpanned.Inc()
	if float64(snapshots) > f.MaxGapSnapshots.Read() {
		f.MaxGapSnapshots.Set(float64(snapshots))
	}
}
