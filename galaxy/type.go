// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package galaxy holds the per-galaxy record evolved by the engine (§3):
// the core fields every operation reads directly plus the extension Bag
// modules attach fields to, grounded on the teacher's status enum and
// block record (choices/status.go, block.go) generalized from consensus
// acceptance state to galaxy classification.
package galaxy

// Type classifies a galaxy's relationship to its FOF group, assigned by
// the FOF Assembler (§4.7) and read by every downstream physics module.
type Type int32

const (
	// Central is the one galaxy per FOF group hosted by the group's
	// central subhalo.
	Central Type = iota
	// Satellite is a galaxy hosted by a surviving (non-central) subhalo
	// of the group.
	Satellite
	// Orphan is a galaxy whose host subhalo was disrupted; it is still
	// evolved and can still merge, tracked positionally rather than by
	// a live subhalo.
	Orphan
	// Merged marks a galaxy that has been folded into another via the
	// merger queue and is no longer independently evolved or emitted.
	Merged
)

func (t Type) String() string {
	switch t {
	case Central:
		return "central"
	case Satellite:
		return "satellite"
	case Orphan:
		return "orphan"
	case Merged:
		return "merged"
	default:
		return "unknown"
	}
}
