// Copyright (c) 2026 The Sage Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics provides the small counter/gauge/averager primitives the
// Forest Driver uses to surface run diagnostics (orphans created, gaps
// spanned, failed forests, queue overflows) without forcing every caller
// to depend on prometheus directly.
package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/galforge/sage/utils/wrappers"
)

// Averager tracks a running average, e.g. mean progenitor gap length.
type Averager interface {
	Observe(value float64)
	Read() float64
}

// averager implements Averager.
type averager struct {
	mu    sync.RWMutex
	sum   float64
	count float64

	promCount prometheus.Counter
	promSum   prometheus.Gauge
}

// NewAverager returns a new Averager backed by two prometheus collectors.
func NewAverager(name, help string, reg prometheus.Registerer) (Averager, error) {
	count := prometheus.NewCounter(prometheus.CounterOpts{
		Name: name + "_count",
		Help: "Total # of observations of " + help,
	})
	sum := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name + "_sum",
		Help: "Sum of " + help,
	})

	if err := reg.Register(count); err != nil {
		return nil, err
	}
	if err := reg.Register(sum); err != nil {
		return nil, err
	}

	return &averager{promCount: count, promSum: sum}, nil
}

// NewAveragerWithErrs returns a new Averager, collecting any registration
// error into errs instead of failing the caller, and falling back to an
// in-process-only averager.
func NewAveragerWithErrs(name, help string, reg prometheus.Registerer, errs *wrappers.Errs) Averager {
	a, err := NewAverager(name, help, reg)
	if err != nil {
		if errs != nil {
			errs.Add(err)
		}
		return &averager{}
	}
	return a
}

// Observe adds a value to the average.
func (a *averager) Observe(value float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.sum += value
	a.count++

	if a.promCount != nil {
		a.promCount.Inc()
	}
	if a.promSum != nil {
		a.promSum.Add(value)
	}
}

// Read returns the current average.
func (a *averager) Read() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.count == 0 {
		return 0
	}
	return a.sum / a.count
}

// Counter is a monotonically increasing diagnostic count.
type Counter interface {
	Inc()
	Add(delta int64)
	Read() int64
}

type counter struct {
	mu    sync.RWMutex
	value int64
	prom  prometheus.Counter
}

// NewCounter returns a new Counter, optionally backed by a prometheus
// collector (prom may be nil for an in-process-only counter).
func NewCounter(prom prometheus.Counter) Counter {
	return &counter{prom: prom}
}

func (c *counter) Inc() { c.Add(1) }

func (c *counter) Add(delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value += delta
	if c.prom != nil && delta > 0 {
		c.prom.Add(float64(delta))
	}
}

func (c *counter) Read() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Gauge is a diagnostic value that can move in either direction, e.g. the
// largest progenitor gap seen so far.
type Gauge interface {
	Set(value float64)
	Add(delta float64)
	Read() float64
}

type gauge struct {
	mu    sync.RWMutex
	value float64
	prom  prometheus.Gauge
}

// NewGauge returns a new Gauge, optionally backed by a prometheus collector.
func NewGauge(prom prometheus.Gauge) Gauge {
	return &gauge{prom: prom}
}

func (g *gauge) Set(value float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.value = value
	if g.prom != nil {
		g.prom.Set(value)
	}
}

func (g *gauge) Add(delta float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.value += delta
	if g.prom != nil {
		g.prom.Add(delta)
	}
}

func (g *gauge) Read() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.value
}

// Registry is a name-keyed collection of metrics, used when a caller wants
// to look a metric back up by name rather than holding onto the handle
// returned at registration time.
type Registry interface {
	NewCounter(name, help string) Counter
	NewGauge(name, help string) Gauge
	NewAverager(name, help string) Averager
	GetCounter(name string) (Counter, error)
	GetGauge(name string) (Gauge, error)
	GetAverager(name string) (Averager, error)
}

type registry struct {
	reg prometheus.Registerer

	mu        sync.RWMutex
	counters  map[string]Counter
	gauges    map[string]Gauge
	averagers map[string]Averager
}

// NewRegistry returns a new Registry. reg may be nil, in which case metrics
// are tracked in-process only and never exported to prometheus; this is the
// configuration used by tests and by the CLI run, which always passes nil.
func NewRegistry(reg prometheus.Registerer) Registry {
	return &registry{
		reg:       reg,
		counters:  make(map[string]Counter),
		gauges:    make(map[string]Gauge),
		averagers: make(map[string]Averager),
	}
}

func (r *registry) NewCounter(name, help string) Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	var prom prometheus.Counter
	if r.reg != nil {
		prom = prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
		_ = r.reg.Register(prom)
	}
	c := NewCounter(prom)
	r.counters[name] = c
	return c
}

func (r *registry) NewGauge(name, help string) Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()

	var prom prometheus.Gauge
	if r.reg != nil {
		prom = prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
		_ = r.reg.Register(prom)
	}
	g := NewGauge(prom)
	r.gauges[name] = g
	return g
}

func (r *registry) NewAverager(name, help string) Averager {
	r.mu.Lock()
	defer r.mu.Unlock()

	var a Averager
	if r.reg != nil {
		if created, err := NewAverager(name, help, r.reg); err == nil {
			a = created
		}
	}
	if a == nil {
		a = &averager{}
	}
	r.averagers[name] = a
	return a
}

func (r *registry) GetCounter(name string) (Counter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.counters[name]
	if !ok {
		return nil, fmt.Errorf("counter %q not found", name)
	}
	return c, nil
}

func (r *registry) GetGauge(name string) (Gauge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.gauges[name]
	if !ok {
		return nil, fmt.Errorf("gauge %q not found", name)
	}
	return g, nil
}

func (r *registry) GetAverager(name string) (Averager, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.averagers[name]
	if !ok {
		return nil, fmt.Errorf("averager %q not found", name)
	}
	return a, nil
}
