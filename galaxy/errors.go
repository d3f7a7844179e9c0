// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package galaxy

import (
	"fmt"

	"github.com/galforge/sage/sageerr"
)

func errNegativeBlackHole(nr int64, mass float64) error {
	return fmt.Errorf("%w: galaxy %d black hole mass %g < 0", sageerr.ErrInvariantViolation, nr, mass)
}
