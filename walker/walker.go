// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package walker implements the Tree Walker (§4.6): it produces, for one
// forest, the sequence of (snapshot, FOF-root) pairs in a valid
// processing order and hands each one to a visitor (the FOF Assembler),
// grounded on the teacher's depth-first frontier traversal (dag/
// topological walk) generalized from DAG-vertex visitation order to
// snapshot-ascending FOF dispatch.
package walker

import (
	"fmt"
	"sort"

	"github.com/galforge/sage/halo"
	"github.com/galforge/sage/sageerr"
	"github.com/galforge/sage/set"
)

// Visitor is called once per FOF group, in the order the walker
// discovers it. root is the tree-local index of the FOF's root halo at
// this snapshot.
type Visitor func(snapshot int32, root int32) error

// Walker drives traversal over one forest's halo Array.
type Walker struct {
	halos     *halo.Array
	processed set.Set[int32]
	// Gaps records, for every halo whose first progenitor lived more
	// than one snapshot earlier, the snapshot distance to that progenitor —
	// diagnostics consumed by the Forest Driver (§4.10).
	Gaps []GapRecord
}

// GapRecord is one occurrence of a multi-snapshot progenitor gap.
type GapRecord struct {
	HaloIndex int32
	Snapshots int32
}

// New returns a Walker over halos, with every halo initially unprocessed.
func New(halos *halo.Array) *Walker {
	return &Walker{
		halos:     halos,
		processed: make(set.Set[int32], halos.Len()),
	}
}

// maxTraversalDepth bounds progenitor-chain and FOF-ring traversal so a
// corrupt cyclic input aborts with TreeCycle instead of looping forever.
func (w *Walker) maxTraversalDepth() int {
	return w.halos.Len() + 1
}

// Walk visits every FOF group exactly once, in ascending snapshot order,
// calling visit(snapshot, root) for each. Within a snapshot, FOF groups
// are visited in order of the lowest-indexed unprocessed halo that
// belongs to them, matching §5's "first-encountered FOF-root index"
// ordering guarantee.
func (w *Walker) Walk(visit Visitor) error {
	bySnapshot := w.groupBySnapshot()

	snapshots := make([]int32, 0, len(bySnapshot))
	for s := range bySnapshot {
		snapshots = append(snapshots, s)
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i] < snapshots[j] })

	for _, snap := range snapshots {
		for _, idx := range bySnapshot[snap] {
			if w.processed.Contains(idx) {
				continue
			}
			root, err := w.firstInFOF(idx)
			if err != nil {
				return err
			}
			if err := w.recordGap(idx); err != nil {
				return err
			}
			if err := visit(snap, root); err != nil {
				return err
			}
			if err := w.markFOFProcessed(root); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Walker) groupBySnapshot() map[int32][]int32 {
	out := make(map[int32][]int32)
	for _, h := range w.halos.All() {
		out[h.Snapshot] = append(out[h.Snapshot], h.Index)
	}
	return out
}

// firstInFOF returns idx's FOF root, validating the self-reference
// invariant first_in_fof(first_in_fof(h)) == first_in_fof(h) (§3).
func (w *Walker) firstInFOF(idx int32) (int32, error) {
	h := w.halos.Get(idx)
	root := h.FOFCentral
	if root < 0 {
		root = idx
	}
	rootHalo := w.halos.Get(root)
	if rootHalo.FOFCentral >= 0 && rootHalo.FOFCentral != root {
		return 0, fmt.Errorf("%w: halo %d FOF root %d is not self-referential", sageerr.ErrTreeCorruption, idx, root)
	}
	return root, nil
}

// markFOFProcessed marks every halo in the FOF group rooted at root,
// following NextInFOF, bounding the walk to detect a cyclic ring.
func (w *Walker) markFOFProcessed(root int32) error {
	cur := root
	for i := 0; ; i++ {
		if i > w.maxTraversalDepth() {
			return fmt.Errorf("%w: FOF ring at root %d exceeds forest size", sageerr.ErrTreeCycle, root)
		}
		w.processed.Add(cur)
		next := w.halos.Get(cur).NextInFOF
		if next < 0 {
			return nil
		}
		cur = next
	}
}

// recordGap walks idx's first-progenitor chain one level to detect and
// record a multi-snapshot gap, bounding the walk against cycles.
func (w *Walker) recordGap(idx int32) error {
	h := w.halos.Get(idx)
	if !h.HasProgenitor() {
		return nil
	}
	depth := 0
	cur := h.FirstProgenitor
	for {
		depth++
		if depth > w.maxTraversalDepth() {
			return fmt.Errorf("%w: progenitor chain from halo %d exceeds forest size", sageerr.ErrTreeCycle, idx)
		}
		prog := w.halos.Get(cur)
		if prog.Descendant == idx {
			break
		}
		if prog.Descendant < 0 {
			return fmt.Errorf("%w: halo %d has no path back to descendant %d", sageerr.ErrTreeCorruption, cur, idx)
		}
		cur = prog.Descendant
	}
	gap := h.Snapshot - w.halos.Get(h.FirstProgenitor).Snapshot
	if gap > 1 {
		w.Gaps = append(w.Gaps, GapRecord{HaloIndex: idx, Snapshots: gap})
	}
	return nil
}

// Processed reports whether idx has been visited.
func (w *Walker) Processed(idx int32) bool {
	return w.processed.Contains(idx)
}

// MarkProcessed marks idx processed directly; used by the orphan-rescue
// pass (§4.7 step 4), which consumes previous-snapshot halos outside the
// normal FOF-group traversal.
func (w *Walker) MarkProcessed(idx int32) {
	w.processed.Add(idx)
}
