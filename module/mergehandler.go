// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package module

import (
	"context"
	"fmt"

	"github.com/galforge/sage/container"
	"github.com/galforge/sage/mergequeue"
	"github.com/galforge/sage/sageerr"
)

// MergeHandler resolves one queued merger or disruption event (§4.5)
// against the FOF buffer. Unlike Step, it does not operate on a single
// galaxy: a merger mutates both the satellite and its target.
type MergeHandler func(ctx context.Context, buf *container.Container, ev mergequeue.Event) error

// RegisterMergeHandler attaches a named MergeHandler to an
// already-registered module, the same way RegisterFunction attaches a
// Step. Configuration names the (module, function) pair once (§6
// MergerHandlerModuleName/FunctionName); the Evolution Loop resolves it
// once at startup via LookupMergeHandler rather than performing a string
// lookup per event (§9 Design Notes).
func (r *Registry) RegisterMergeHandler(moduleName, funcName string, h MergeHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.modules[moduleName]
	if !ok {
		return fmt.Errorf("%w: %s", sageerr.ErrModuleNotFound, moduleName)
	}
	if e.mergeHandlers == nil {
		e.mergeHandlers = make(map[string]MergeHandler)
	}
	e.mergeHandlers[funcName] = h
	return nil
}

// LookupMergeHandler resolves a configured (module, function) pair to
// its typed MergeHandler, once, at startup.
func (r *Registry) LookupMergeHandler(moduleName, funcName string) (MergeHandler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.modules[moduleName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", sageerr.ErrModuleNotFound, moduleName)
	}
	h, ok := e.mergeHandlers[funcName]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", sageerr.ErrModuleFunctionNotFound, moduleName, funcName)
	}
	return h, nil
}
