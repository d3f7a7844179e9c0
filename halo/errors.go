// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package halo

import (
	"fmt"

	"github.com/galforge/sage/sageerr"
)

func errIndexMismatch(position int, reportedIndex int32) error {
	return fmt.Errorf("%w: halo at position %d reports index %d", sageerr.ErrTreeCorruption, position, reportedIndex)
}
