// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Prometheus Metrics for Crawl Observability
// =============================================================================

var (
	// crawlEvents mirrors every aggregator observation, so a long run
	// can be watched live via the optional --metrics-addr listener.
	// Labels: event (aggregator event name)
	crawlEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skygraph",
		Subsystem: "crawl",
		Name:      "events_total",
		Help:      "Total crawl events by name",
	}, []string{"event"})

	// snapshotFlushes counts emitted stat snapshots.
	// Labels: kind (block, final)
	snapshotFlushes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skygraph",
		Subsystem: "crawl",
		Name:      "snapshot_flushes_total",
		Help:      "Total stats snapshots emitted",
	}, []string{"kind"})
)
