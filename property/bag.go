// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package property

// Bag is the per-galaxy storage backing every property registered against
// a Registry: the module-attached extension fields, while core fields
// (position, mass reservoirs, classification) stay typed fields of
// galaxy.Galaxy. Each kind's slots are packed into their own array, so a
// new module's field costs one Register call and one Bag slot, never a
// change to the galaxy's memory layout.
type Bag struct {
	reg      *Registry
	f64      []float64
	i32      []int32
	i64      []int64
	b        []bool
	descs    []descriptor
}

// Allocate builds a Bag sized to every property registered in reg so far,
// with every slot initialised to its declared default (§4.1
// "all values initialised to their declared defaults"); a property
// registered with a nil default gets the zero value of its kind. Call it
// once per galaxy (and once more per forward time-step if the registry
// grows mid-run from lazily discovered modules, which it should not).
func Allocate(reg *Registry) *Bag {
	descs, _ := reg.layout()
	bag := &Bag{reg: reg, descs: descs}
	for _, d := range descs {
		switch d.kind {
		case Float64:
			def, _ := d.def.(float64)
			bag.f64 = append(bag.f64, fillDefault(d.width, def)...)
		case Int32:
			def, _ := d.def.(int32)
			bag.i32 = append(bag.i32, fillDefault(d.width, def)...)
		case Int64:
			def, _ := d.def.(int64)
			bag.i64 = append(bag.i64, fillDefault(d.width, def)...)
		case Bool:
			def, _ := d.def.(bool)
			bag.b = append(bag.b, fillDefault(d.width, def)...)
		}
	}
	return bag
}

// fillDefault returns a slice of n slots, each set to def.
func fillDefault[T any](n int, def T) []T {
	out := make([]T, n)
	for i := range out {
		out[i] = def
	}
	return out
}

// slot returns id's descriptor. kindBase, below, returns the position of
// id's first slot within its kind-specific array: each kind is packed
// into its own contiguous array in registration order, so it sums the
// widths of the earlier properties of the same kind, walking the
// descriptor table on every call.
func (b *Bag) slot(id ID) descriptor {
	return b.descs[id]
}

func (b *Bag) kindBase(id ID) int {
	d := b.descs[id]
	base := 0
	for i := 0; i < int(id); i++ {
		if b.descs[i].kind == d.kind {
			base += b.descs[i].width
		}
	}
	return base
}

// Float64 returns the scalar value of a Float64 property.
func (b *Bag) Float64(id ID) float64 {
	return b.f64[b.kindBase(id)]
}

// SetFloat64 sets the scalar value of a Float64 property.
func (b *Bag) SetFloat64(id ID, v float64) {
	b.f64[b.kindBase(id)] = v
}

// Float64At returns slot idx of a multi-slot Float64 property (e.g. a
// per-sub-step history array).
func (b *Bag) Float64At(id ID, idx int) float64 {
	return b.f64[b.kindBase(id)+idx]
}

// SetFloat64At sets slot idx of a multi-slot Float64 property.
func (b *Bag) SetFloat64At(id ID, idx int, v float64) {
	b.f64[b.kindBase(id)+idx] = v
}

// Int32 returns the scalar value of an Int32 property.
func (b *Bag) Int32(id ID) int32 {
	return b.i32[b.kindBase(id)]
}

// SetInt32 sets the scalar value of an Int32 property.
func (b *Bag) SetInt32(id ID, v int32) {
	b.i32[b.kindBase(id)] = v
}

// Int64 returns the scalar value of an Int64 property.
func (b *Bag) Int64(id ID) int64 {
	return b.i64[b.kindBase(id)]
}

// SetInt64 sets the scalar value of an Int64 property.
func (b *Bag) SetInt64(id ID, v int64) {
	b.i64[b.kindBase(id)] = v
}

// Bool returns the scalar value of a Bool property.
func (b *Bag) Bool(id ID) bool {
	return b.b[b.kindBase(id)]
}

// SetBool sets the scalar value of a Bool property.
func (b *Bag) SetBool(id ID, v bool) {
	b.b[b.kindBase(id)] = v
}

// Clone returns a deep copy, used by galaxy.Galaxy.Clone when the FOF
// Assembler copies a galaxy into a FOF buffer.
func (b *Bag) Clone() *Bag {
	out := &Bag{reg: b.reg, descs: b.descs}
	out.f64 = append(out.f64, b.f64...)
	out.i32 = append(out.i32, b.i32...)
	out.i64 = append(out.i64, b.i64...)
	out.b = append(out.b, b.b...)
	return out
}

// Registry returns the Bag's backing Registry.
func (b *Bag) Registry() *Registry {
	return b.reg
}
