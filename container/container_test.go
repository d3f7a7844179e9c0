// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package container

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galforge/sage/galaxy"
	"github.com/galforge/sage/property"
)

func TestAppendIndicesAreStableAcrossRemove(t *testing.T) {
	reg := property.NewRegistry(1)
	c := New(0)

	i0 := c.Append(galaxy.New(0, reg))
	i1 := c.Append(galaxy.New(1, reg))
	i2 := c.Append(galaxy.New(2, reg))

	c.Remove(i1)

	require.NotNil(t, c.Get(i0))
	require.Nil(t, c.Get(i1))
	require.NotNil(t, c.Get(i2))
	require.Equal(t, 3, c.Len())
	require.Equal(t, 2, c.LiveCount())
}

func TestLiveSkipsRemoved(t *testing.T) {
	reg := property.NewRegistry(1)
	c := New(0)
	c.Append(galaxy.New(0, reg))
	idx := c.Append(galaxy.New(1, reg))
	c.Remove(idx)

	seen := 0
	c.Live(func(i int, g *galaxy.Galaxy) { seen++ })
	require.Equal(t, 1, seen)
}
