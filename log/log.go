// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package log adapts github.com/luxfi/log's Logger to the sage engine so
// every component accepts the same structured logger instead of reaching
// for a global or fmt.Println.
package log

import (
	"github.com/luxfi/log"
)

// Logger is the structured logger every sage component depends on.
type Logger = log.Logger

// Field is one structured key/value attached to a log line.
type Field = log.Field

// New returns a named logger, e.g. New("forest"), New("assembler").
func New(name string) Logger {
	return log.NewLogger(name)
}

// NewNoOp returns a logger that discards everything, for tests and for
// callers that did not configure logging.
func NewNoOp() Logger {
	return log.NewNoOpLogger()
}

// Field constructors re-exported for convenience, so callers write
// sagelog.Err(err) instead of importing github.com/luxfi/log directly
// alongside this package.
var (
	Err     = log.Err
	String  = log.String
	Int     = log.Int
	Int32   = log.Int32
	Int64   = log.Int64
	Float64 = log.Float64
	Bool    = log.Bool
)
