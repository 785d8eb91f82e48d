// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package stats accumulates per-block and cumulative crawl counters
// and emits periodic snapshots to a diagnostic sink.
//
// The aggregator is observational only: it never influences crawl
// control flow. It keeps two parallel counter maps: a rolling block
// that resets after every snapshot, and a cumulative map that never
// resets for the lifetime of one run. A snapshot is emitted whenever
// the pivot event's block count reaches the block size (default 100
// observations of EventNodeObserved). Every observation is also
// mirrored into a prometheus counter (see metrics.go).
package stats

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// EventNodeObserved is the pivot event: one count per node the crawl
// looked at, seed or neighbor.
const EventNodeObserved = "node_observed"

// DefaultBlockSize is the pivot-count threshold for block snapshots.
const DefaultBlockSize = 100

// Aggregator accumulates counters. Safe for concurrent use, though
// the crawl itself is single-threaded.
type Aggregator struct {
	mu         sync.Mutex
	sink       io.Writer
	pivot      string
	blockSize  int
	block      map[string]int
	cumulative map[string]int
	snapshots  int
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithBlockSize overrides the snapshot threshold. Values below 1 are
// ignored.
func WithBlockSize(n int) Option {
	return func(a *Aggregator) {
		if n >= 1 {
			a.blockSize = n
		}
	}
}

// WithPivotEvent overrides which event drives snapshot emission.
func WithPivotEvent(event string) Option {
	return func(a *Aggregator) {
		if event != "" {
			a.pivot = event
		}
	}
}

// NewAggregator creates an Aggregator writing snapshots to sink. The
// sink is append-only and never read back; io.Discard is a valid
// choice when no diagnostics are wanted.
func NewAggregator(sink io.Writer, opts ...Option) *Aggregator {
	a := &Aggregator{
		sink:       sink,
		pivot:      EventNodeObserved,
		blockSize:  DefaultBlockSize,
		block:      make(map[string]int),
		cumulative: make(map[string]int),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Record increments both the block and cumulative counters for the
// event. When the pivot event's block count reaches the block size, a
// snapshot of both maps is written to the sink and only the block
// counters reset.
func (a *Aggregator) Record(event string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.block[event]++
	a.cumulative[event]++
	crawlEvents.WithLabelValues(event).Inc()

	if event == a.pivot && a.block[a.pivot] >= a.blockSize {
		a.emitLocked("block")
		a.block = make(map[string]int)
	}
}

// FlushFinal emits whatever block counts remain. A no-op when the
// block is empty. Call once at run end.
func (a *Aggregator) FlushFinal() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.block) == 0 {
		return
	}
	a.emitLocked("final")
	a.block = make(map[string]int)
}

// Cumulative returns the lifetime count for an event.
func (a *Aggregator) Cumulative(event string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cumulative[event]
}

// Block returns the current (unflushed) block count for an event.
func (a *Aggregator) Block(event string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.block[event]
}

// Snapshots returns how many snapshots have been emitted, final flush
// included.
func (a *Aggregator) Snapshots() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshots
}

// CumulativeAll returns a copy of the cumulative counters, for the
// end-of-run summary.
func (a *Aggregator) CumulativeAll() map[string]int {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]int, len(a.cumulative))
	for k, v := range a.cumulative {
		out[k] = v
	}
	return out
}

// emitLocked writes one snapshot. Caller holds the lock.
func (a *Aggregator) emitLocked(kind string) {
	a.snapshots++
	snapshotFlushes.WithLabelValues(kind).Inc()

	fmt.Fprintf(a.sink, "--- stats snapshot #%d (%s) ---\n", a.snapshots, kind)
	for _, name := range sortedKeys(a.cumulative) {
		fmt.Fprintf(a.sink, "%-24s block=%-6d total=%d\n", name, a.block[name], a.cumulative[name])
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
