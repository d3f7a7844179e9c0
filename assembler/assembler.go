// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package assembler implements the FOF Assembler (§4.7): it builds the
// transient per-FOF galaxy buffer at the current snapshot from galaxies
// that existed at the previous one, applying the first-occupied-
// progenitor rule, electing the FOF central, and rescuing orphans whose
// immediate host halo disappeared but whose FOF group survived,
// grounded on the teacher's vertex-acceptance algorithm (acceptor.go)
// generalized from "accept the preferred chain, reject the rest" to
// "inherit the first-occupied progenitor's galaxies, orphan the rest".
package assembler

import (
	"fmt"
	"sort"

	"github.com/galforge/sage/container"
	"github.com/galforge/sage/galaxy"
	"github.com/galforge/sage/halo"
	"github.com/galforge/sage/log"
	"github.com/galforge/sage/metrics"
	"github.com/galforge/sage/property"
	"github.com/galforge/sage/sageerr"
	"github.com/galforge/sage/set"
)

// HostIndex maps a halo's tree-local index to the indices, within a
// Galaxy Container, of every galaxy currently hosted there. The Forest
// Driver rebuilds it once per snapshot from the previous container
// (§4.10) and shares it across every FOF group's Assemble call.
type HostIndex map[int32][]int

// BuildHostIndex groups every live galaxy in c by its current HaloIndex.
func BuildHostIndex(c *container.Container) HostIndex {
	idx := make(HostIndex)
	c.Live(func(i int, g *galaxy.Galaxy) {
		idx[g.HaloIndex] = append(idx[g.HaloIndex], i)
	})
	return idx
}

// Assembler builds one FOF group's transient galaxy buffer.
type Assembler struct {
	halos    *halo.Array
	reg      *property.Registry
	counter  *int64
	metrics  *metrics.Forest
	log      log.Logger
}

// New returns an Assembler. counter is the forest-local monotonic galaxy
// number source (§3 "identity"), shared and advanced across the whole
// forest pass.
func New(halos *halo.Array, reg *property.Registry, counter *int64, m *metrics.Forest, logger log.Logger) *Assembler {
	if logger == nil {
		logger = log.NewNoOp()
	}
	return &Assembler{halos: halos, reg: reg, counter: counter, metrics: m, log: logger}
}

func (a *Assembler) nextGalaxyNr() int64 {
	nr := *a.counter
	*a.counter++
	return nr
}

// Input bundles one FOF group's assembly inputs.
type Input struct {
	Root      int32
	Prev      *container.Container
	Hosts     HostIndex
	Processed set.Set[int] // shared and mutated across the whole snapshot
}

// Result is the outcome of assembling one FOF group.
type Result struct {
	Buffer    *container.Container
	CentralIdx int
}

// Assemble runs the algorithm of §4.7 for the FOF group rooted at
// in.Root and returns the transient buffer plus the elected central's
// index within it.
func (a *Assembler) Assemble(in Input) (Result, error) {
	fofHalos, err := a.collectFOF(in.Root)
	if err != nil {
		return Result{}, err
	}

	buf := container.New(4)

	for _, hIdx := range fofHalos {
		if err := a.assembleHalo(hIdx, in, buf); err != nil {
			return Result{}, err
		}
	}

	centralIdx, err := a.electCentral(buf, in.Root)
	if err != nil {
		return Result{}, err
	}

	if err := a.rescueOrphans(in, buf, fofHalos, centralIdx); err != nil {
		return Result{}, err
	}

	// Every galaxy in this buffer belongs to the same FOF group, so its
	// FOFCentral is the elected central's buffer index (§9 "CentralGal
	// semantics"); the Forest Driver rewrites this to a container index
	// once the buffer is drained into the this-snapshot Container.
	buf.Live(func(i int, g *galaxy.Galaxy) {
		g.FOFCentral = int32(centralIdx)
	})

	return Result{Buffer: buf, CentralIdx: centralIdx}, nil
}

func (a *Assembler) collectFOF(root int32) ([]int32, error) {
	var out []int32
	cur := root
	for i := 0; ; i++ {
		if i > a.halos.Len()+1 {
			return nil, fmt.Errorf("%w: FOF ring at root %d exceeds forest size", sageerr.ErrTreeCycle, root)
		}
		out = append(out, cur)
		next := a.halos.Get(cur).NextInFOF
		if next < 0 {
			return out, nil
		}
		cur = next
	}
}

type progenitor struct {
	index int32
	len   int32
}

func (a *Assembler) collectProgenitors(h *halo.Halo) []progenitor {
	var out []progenitor
	if !h.HasProgenitor() {
		return out
	}
	cur := h.FirstProgenitor
	for i := 0; cur >= 0; i++ {
		p := a.halos.Get(cur)
		out = append(out, progenitor{index: cur, len: p.Len})
		cur = p.NextProgenitor
		if i > a.halos.Len()+1 {
			break
		}
	}
	return out
}

// firstOccupied selects the first-occupied progenitor (§4.7 step 1b):
// the progenitor with at least one galaxy and the largest particle
// count, ties broken by lowest index.
func firstOccupied(progs []progenitor, hosts HostIndex) (progenitor, bool) {
	var best progenitor
	found := false
	for _, p := range progs {
		if len(hosts[p.index]) == 0 {
			continue
		}
		if !found || p.len > best.len || (p.len == best.len && p.index < best.index) {
			best = p
			found = true
		}
	}
	return best, found
}

func (a *Assembler) assembleHalo(hIdx int32, in Input, buf *container.Container) error {
	h := a.halos.Get(hIdx)
	progs := a.collectProgenitors(h)

	if len(progs) == 0 {
		if hIdx == in.Root {
			g := galaxy.New(a.nextGalaxyNr(), a.reg)
			g.Type = galaxy.Central
			g.HaloIndex = hIdx
			g.Snapshot = h.Snapshot
			g.Pos, g.Vel, g.Vmax, g.Mvir, g.Rvir = h.Pos, h.Vel, h.Vmax, h.Mvir, h.Rvir
			buf.Append(g)
		}
		return nil
	}

	best, ok := firstOccupied(progs, in.Hosts)
	if !ok {
		// Progenitors exist but none carried a galaxy; nothing to inherit.
		return nil
	}

	for _, prevIdx := range in.Hosts[best.index] {
		src := in.Prev.Get(prevIdx)
		if src == nil || in.Processed.Contains(prevIdx) {
			continue
		}
		clone := src.Clone()
		clone.HaloIndex = hIdx
		clone.Snapshot = h.Snapshot
		if src.Type == galaxy.Central {
			clone.Pos, clone.Vel, clone.Vmax, clone.Mvir, clone.Rvir = h.Pos, h.Vel, h.Vmax, h.Mvir, h.Rvir
		}
		buf.Append(clone)
		in.Processed.Add(prevIdx)
	}

	bestHalo := a.halos.Get(best.index)
	for _, p := range progs {
		if p.index == best.index {
			continue
		}
		// A progenitor that belonged to the same previous FOF group as
		// the first-occupied one is a subhalo swallowed within that
		// group: every galaxy it carried is lost bookkeeping here,
		// central or not (§4.7 step 1c). A progenitor from a genuinely
		// different previous FOF group is itself disappearing as a
		// whole group; a galaxy that was central there keeps persisting
		// as an orphan instead of being marked lost, rather than being
		// deferred to a second pass, since it is already being visited
		// here (§4.7 multi-progenitor merger edge case, "except" clause).
		pHalo := a.halos.Get(p.index)
		exceptedCentral := pHalo.FOFCentral != bestHalo.FOFCentral

		for _, prevIdx := range in.Hosts[p.index] {
			src := in.Prev.Get(prevIdx)
			if src == nil || in.Processed.Contains(prevIdx) {
				continue
			}
			clone := src.Clone()
			clone.HaloIndex = hIdx
			clone.Snapshot = h.Snapshot
			clone.Mvir, clone.Rvir = 0, 0
			clone.Type = galaxy.Orphan
			clone.Merged = !(exceptedCentral && src.Type == galaxy.Central)
			buf.Append(clone)
			in.Processed.Add(prevIdx)
			a.metrics.OrphansCreated.Inc()
		}
	}
	return nil
}

// electCentral implements §4.7 step 2: find or promote the FOF's unique
// type-0 galaxy among every buffer galaxy hosted at root, then classify
// every other galaxy satellite/orphan accordingly.
func (a *Assembler) electCentral(buf *container.Container, root int32) (int, error) {
	candidates := make([]int, 0, 2)
	buf.Live(func(i int, g *galaxy.Galaxy) {
		if g.HaloIndex == root {
			candidates = append(candidates, i)
		}
	})

	centralIdx := -1
	for _, i := range candidates {
		if buf.Get(i).Type == galaxy.Central {
			centralIdx = i
			break
		}
	}
	if centralIdx < 0 {
		if len(candidates) == 0 {
			return 0, fmt.Errorf("%w: FOF root %d has no candidate galaxy to elect as central", sageerr.ErrAssemblyFailure, root)
		}
		sort.Slice(candidates, func(i, j int) bool {
			return buf.Get(candidates[i]).TotalBaryonicMass() > buf.Get(candidates[j]).TotalBaryonicMass()
		})
		centralIdx = candidates[0]
	}
	buf.Get(centralIdx).Type = galaxy.Central

	seenCentral := false
	buf.Live(func(i int, g *galaxy.Galaxy) {
		if i == centralIdx {
			seenCentral = true
			return
		}
		if g.Merged || g.Type == galaxy.Orphan {
			return
		}
		g.Type = galaxy.Satellite
	})
	if !seenCentral {
		return 0, fmt.Errorf("%w: elected central not present in buffer", sageerr.ErrAssemblyFailure)
	}
	return centralIdx, nil
}

// rescueOrphans implements §4.7 step 4: galaxies whose immediate host
// halo has no descendant, but whose FOF-central's host halo's
// descendant lands in the current FOF group, are recovered here rather
// than lost.
func (a *Assembler) rescueOrphans(in Input, buf *container.Container, fofHalos []int32, centralIdx int) error {
	inFOF := make(set.Set[int32], len(fofHalos))
	for _, h := range fofHalos {
		inFOF.Add(h)
	}

	in.Prev.Live(func(prevIdx int, g *galaxy.Galaxy) {
		if in.Processed.Contains(prevIdx) {
			return
		}
		hostHalo := a.halos.Get(g.HaloIndex)
		if hostHalo.Descendant >= 0 {
			return
		}
		// g.FOFCentral was rewritten to a this-(now previous-)snapshot
		// container index when the previous pass drained its buffer, so
		// it resolves directly against in.Prev.
		prevCentral := in.Prev.Get(int(g.FOFCentral))
		if prevCentral == nil {
			return
		}
		fofHost := a.halos.Get(prevCentral.HaloIndex)
		if fofHost.Descendant < 0 {
			return
		}
		descRoot := a.halos.Get(fofHost.Descendant).FOFCentral
		if descRoot < 0 {
			descRoot = fofHost.Descendant
		}
		if !inFOF.Contains(descRoot) {
			return
		}

		clone := g.Clone()
		clone.Type = galaxy.Orphan
		clone.Merged = false
		clone.Mvir, clone.Rvir = 0, 0
		clone.HaloIndex = fofHost.Descendant
		clone.Snapshot = a.halos.Get(fofHost.Descendant).Snapshot
		buf.Append(clone)
		in.Processed.Add(prevIdx)
		a.metrics.OrphansRescued.Inc()
	})
	return nil
}
