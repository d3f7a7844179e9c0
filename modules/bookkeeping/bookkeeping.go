// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bookkeeping is the engine's built-in default physics module: it
// performs no astrophysics, only the mass-conserving satellite-into-
// central transfer and merger-clock countdown every run needs regardless
// of which richer modules are layered on top, grounded on the teacher's
// minimal always-registered module convention (cf. protocol/nebula's
// built-in default handlers wired ahead of any pluggable extension).
package bookkeeping

import (
	"context"
	"fmt"

	"github.com/galforge/sage/container"
	"github.com/galforge/sage/galaxy"
	"github.com/galforge/sage/mergequeue"
	"github.com/galforge/sage/module"
	"github.com/galforge/sage/property"
)

// Name is the module name configuration routes merger/disruption handler
// lookups to by default (§6 MergerHandlerModuleName).
const Name = "bookkeeping"

// MergeFunc and DisruptFunc are the function names bookkeeping registers
// its two MergeHandlers under.
const (
	MergeFunc   = "Merge"
	DisruptFunc = "Disrupt"
)

// Module implements module.Module. It registers no properties: every
// field it touches already lives on galaxy.Galaxy.
type Module struct{}

// New returns a bookkeeping Module.
func New() *Module { return &Module{} }

func (m *Module) Name() string { return Name }

func (m *Module) Init(reg *property.Registry) error { return nil }

func (m *Module) Cleanup() error { return nil }

// Register attaches bookkeeping's merger and disruption handlers to reg.
// reg must already have Module registered via reg.Register(New()).
func Register(reg *module.Registry) error {
	if err := reg.RegisterMergeHandler(Name, MergeFunc, Merge); err != nil {
		return fmt.Errorf("bookkeeping: %w", err)
	}
	if err := reg.RegisterMergeHandler(Name, DisruptFunc, Disrupt); err != nil {
		return fmt.Errorf("bookkeeping: %w", err)
	}
	return nil
}

// Merge folds ev.Satellite's baryonic reservoirs into ev.Central's and
// tombstones the satellite (§4.5, §3 I6). It is mass-conserving by
// construction: every reservoir is moved, none is dropped.
func Merge(ctx context.Context, buf *container.Container, ev mergequeue.Event) error {
	sat := buf.Get(ev.Satellite)
	central := buf.Get(ev.Central)
	if sat == nil || central == nil {
		return nil
	}
	if sat.IsTombstone() {
		return nil
	}

	central.HotGas = central.HotGas.Add(sat.HotGas)
	central.ColdGas = central.ColdGas.Add(sat.ColdGas)
	central.StellarDisk = central.StellarDisk.Add(sat.StellarDisk)
	central.StellarBulge = central.StellarBulge.Add(sat.StellarBulge)
	central.Ejected = central.Ejected.Add(sat.Ejected)
	central.IntraCluster = central.IntraCluster.Add(sat.IntraCluster)
	central.BlackHoleMass += sat.BlackHoleMass

	sat.HotGas, sat.ColdGas, sat.StellarDisk = galaxy.Reservoir{}, galaxy.Reservoir{}, galaxy.Reservoir{}
	sat.StellarBulge, sat.Ejected, sat.IntraCluster = galaxy.Reservoir{}, galaxy.Reservoir{}, galaxy.Reservoir{}
	sat.BlackHoleMass = 0
	sat.Type = galaxy.Merged
	sat.Merged = true
	sat.MergeTarget = central.GalaxyNr
	return nil
}

// Disrupt counts down ev.Satellite's merger clock by one sub-step rather
// than merging it immediately; once MergeTime reaches zero a later
// GALAXY-phase step is expected to push a new Event with
// RemainingMergerTime <= 0 to trigger the actual merge.
func Disrupt(ctx context.Context, buf *container.Container, ev mergequeue.Event) error {
	sat := buf.Get(ev.Satellite)
	if sat == nil || sat.IsTombstone() {
		return nil
	}
	sat.MergeTime -= ev.Dt
	if sat.MergeTime < 0 {
		sat.MergeTime = 0
	}
	return nil
}
