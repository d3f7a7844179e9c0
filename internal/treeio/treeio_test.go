// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package treeio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galforge/sage/galaxy"
	"github.com/galforge/sage/output"
	"github.com/galforge/sage/property"
)

func TestMemoryReaderReturnsWhatItWasGivenBack(t *testing.T) {
	forests := []Forest{
		{ForestIndex: 1, FileIndex: 0, Halos: nil},
		{ForestIndex: 2, FileIndex: 0, Halos: nil},
	}
	ages := []float64{0, 1, 2}

	r := NewMemoryReader(forests, ages)
	got, err := r.Forests()
	require.NoError(t, err)
	require.Equal(t, forests, got)
	require.Equal(t, ages, r.AgeTable())
}

func TestLineWriterFormatsOneTabSeparatedLineEach(t *testing.T) {
	reg := property.NewRegistry(1)
	g := galaxy.New(7, reg)
	g.Type = galaxy.Satellite
	g.StellarDisk = galaxy.Reservoir{Mass: 2}
	g.StellarBulge = galaxy.Reservoir{Mass: 1}
	g.Mvir = 42

	var buf bytes.Buffer
	w := NewLineWriter(&buf)
	require.NoError(t, w.Write(5, output.Record{Galaxy: g, GalaxyIndex: 70, CentralGalaxyIndex: 0}))

	require.Equal(t, "5\t70\t0\t1\t3\t42\n", buf.String())
}

func TestMemoryWriterCollectsRecordsWithSnapshot(t *testing.T) {
	reg := property.NewRegistry(1)
	g1 := galaxy.New(1, reg)
	g2 := galaxy.New(2, reg)

	w := NewMemoryWriter()
	require.NoError(t, w.Write(3, output.Record{Galaxy: g1, GalaxyIndex: 1}))
	require.NoError(t, w.Write(4, output.Record{Galaxy: g2, GalaxyIndex: 2}))

	require.Len(t, w.Records, 2)
	require.Equal(t, int32(3), w.Records[0].Snapshot)
	require.Equal(t, int64(1), w.Records[0].Record.Galaxy.GalaxyNr)
	require.Equal(t, int32(4), w.Records[1].Snapshot)
	require.Equal(t, int64(2), w.Records[1].Record.Galaxy.GalaxyNr)
}
