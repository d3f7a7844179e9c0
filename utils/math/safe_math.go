// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package math provides overflow-checked arithmetic and small comparison
// helpers. Output index computation (§4.9, where an unchecked multiply
// could silently fold two forests' GalaxyIndex ranges together) uses the
// overflow-checked Mul64 and Add64.
package math

import (
	"errors"
	"math"
)

var (
	ErrOverflow  = errors.New("overflow")
	ErrUnderflow = errors.New("underflow")
)

// Add64 returns a + b with overflow detection.
func Add64(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// Sub64 returns a - b with underflow detection.
func Sub64(a, b uint64) (uint64, error) {
	if a < b {
		return 0, ErrUnderflow
	}
	return a - b, nil
}

// Mul64 returns a * b with overflow detection.
func Mul64(a, b uint64) (uint64, error) {
	if b != 0 && a > math.MaxUint64/b {
		return 0, ErrOverflow
	}
	return a * b, nil
}

// Min returns the minimum of two values.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two values.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Min64 returns the minimum of two uint64 values.
func Min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// Max64 returns the maximum of two uint64 values.
func Max64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

// AbsDiff returns |a - b|.
func AbsDiff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}
