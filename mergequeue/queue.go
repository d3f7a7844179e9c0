// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mergequeue implements the Merger Queue (§4.5): a fixed-capacity
// FIFO of deferred merger events, drained once per sub-step by the
// Evolution Loop so that a satellite merging into its central happens at
// a deterministic point rather than mid-physics-step, grounded on the
// teacher's doubly linked FIFO backing (utils/linked.List) generalized
// from a "pending decisions" queue to a "pending mergers" queue, and on
// the closed QueueFull sentinel error (§7).
package mergequeue

import (
	"fmt"

	"github.com/galforge/sage/sageerr"
	"github.com/galforge/sage/utils/linked"
)

// MergerType distinguishes the physical flavor of a queued event; the
// merger-handler and disruption-handler functions read it to pick the
// right treatment (§4.5).
type MergerType int

const (
	Major MergerType = iota
	Minor
	DiskInstability
	ICSDisruption
)

// Event records one satellite's queued merger or disruption, raised
// during the GALAXY phase and resolved during POST so every galaxy saw
// the same pre-merger state during the phase that raised it (§4.5).
type Event struct {
	Satellite           int // FOF-buffer index of the merging/disrupting satellite
	Central             int // FOF-buffer index of the merge destination
	RemainingMergerTime float64 // <= 0 dispatches to the merger handler, > 0 to the disruption handler
	Time                float64
	Dt                  float64
	HaloNr              int32
	Step                int
	MergerType           MergerType
}

// Queue is a fixed-capacity FIFO of Event. Capacity is set from
// configuration (§6 Runtime) as a safety bound: a well-formed tree never
// queues more mergers than there are galaxies in the forest, but a
// corrupt one could, and QueueFull must surface as a diagnosable error
// rather than unbounded memory growth.
type Queue struct {
	list     *linked.List[Event]
	capacity int
}

// New returns an empty Queue bounded to capacity entries; a capacity of 0
// leaves it unbounded.
func New(capacity int) *Queue {
	return &Queue{list: linked.NewList[Event](), capacity: capacity}
}

// Push enqueues ev. It returns ErrQueueFull (§7) once the queue holds
// capacity entries, never silently dropping or overwriting one.
func (q *Queue) Push(ev Event) error {
	if q.capacity > 0 && q.list.Len() >= q.capacity {
		return fmt.Errorf("%w: capacity %d", sageerr.ErrQueueFull, q.capacity)
	}
	q.list.PushBack(ev)
	return nil
}

// Drain removes and returns every queued event, in FIFO order, emptying
// the queue. Called once per sub-step by the Evolution Loop.
func (q *Queue) Drain() []Event {
	if q.list.Len() == 0 {
		return nil
	}
	out := make([]Event, 0, q.list.Len())
	for n := q.list.Front(); n != nil; n = n.Next {
		out = append(out, n.Value)
	}
	q.list.Clear()
	return out
}

// Len returns the number of currently queued events.
func (q *Queue) Len() int {
	return q.list.Len()
}
