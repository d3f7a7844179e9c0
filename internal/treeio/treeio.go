// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package treeio provides reference stand-ins for the tree reader and
// writer (§6 "Deliberately OUT of scope ... treated as external
// collaborators, only their interfaces to the core are specified"). Sage
// itself never reads a tree file format or writes a galaxy catalog
// format; cmd/sage wires whichever concrete Reader/Writer a deployment
// needs against these interfaces. The in-memory implementations here
// exist to exercise that wiring end to end without depending on any
// particular on-disk tree format.
package treeio

import (
	"fmt"
	"io"

	"github.com/galforge/sage/halo"
	"github.com/galforge/sage/output"
)

// Forest bundles one forest's halo array with its descriptor (§6 "a
// forest descriptor carrying {forest index, file index, halo count}").
type Forest struct {
	ForestIndex int64
	FileIndex   int64
	Halos       []halo.Halo
}

// Reader is the tree-reader interface boundary (§6): a halo array with
// stable addresses for the duration of one forest pass, plus the
// snapshot age table shared across every forest in a file.
type Reader interface {
	// Forests returns every forest this reader holds, in the order the
	// Forest Driver should process them.
	Forests() ([]Forest, error)
	// AgeTable returns the snapshot age table (§6), at least
	// maxSnapshot+1 entries long.
	AgeTable() []float64
}

// MemoryReader is a Reader backed by forests and an age table already
// materialized in memory, e.g. by a test or by a format-specific adapter
// that has already parsed its file into halo.Halo slices.
type MemoryReader struct {
	forests []Forest
	ages    []float64
}

// NewMemoryReader returns a Reader over the given forests and age table.
func NewMemoryReader(forests []Forest, ageTable []float64) *MemoryReader {
	return &MemoryReader{forests: forests, ages: ageTable}
}

func (m *MemoryReader) Forests() ([]Forest, error) { return m.forests, nil }
func (m *MemoryReader) AgeTable() []float64        { return m.ages }

// LineWriter implements output.Writer by formatting each staged record as
// one tab-separated line, the minimal concrete writer a deployment needs
// before swapping in a real catalog format.
type LineWriter struct {
	w io.Writer
}

// NewLineWriter returns a LineWriter over w.
func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{w: w}
}

// Write implements output.Writer.
func (l *LineWriter) Write(snapshot int32, rec output.Record) error {
	g := rec.Galaxy
	_, err := fmt.Fprintf(l.w, "%d\t%d\t%d\t%d\t%g\t%g\n",
		snapshot, rec.GalaxyIndex, rec.CentralGalaxyIndex, g.Type, g.TotalStellarMass(), g.Mvir)
	return err
}

// MemoryWriter implements output.Writer by collecting every staged
// record in memory, for tests that want to assert on the exact records
// produced by a run.
type MemoryWriter struct {
	Records []TimestampedRecord
}

// TimestampedRecord pairs a staged Record with the snapshot it was staged
// at.
type TimestampedRecord struct {
	Snapshot int32
	Record   output.Record
}

// NewMemoryWriter returns an empty MemoryWriter.
func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{}
}

// Write implements output.Writer.
func (m *MemoryWriter) Write(snapshot int32, rec output.Record) error {
	m.Records = append(m.Records, TimestampedRecord{Snapshot: snapshot, Record: rec})
	return nil
}
