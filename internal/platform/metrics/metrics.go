// Copyright (c) 2026 Noveris. All rights reserved.

/*
Package metrics provides Prometheus instrumentation for the view-counting
subsystem.

The counters answer the operational questions that matter for counter
integrity: how many views were actually counted, how many were suppressed by
the dedup window, and how often the dedup store failed (each failure is an
under-counted view by design, since the pipeline fails closed).
*/
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector gathers counters for the chapter view pipeline.
type Collector struct {
	viewsCounted    prometheus.Counter
	viewsDeduped    prometheus.Counter
	viewErrors      prometheus.Counter
	recomputeErrors prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics on the registry.
func NewCollector(registry prometheus.Registerer) *Collector {
	collector := &Collector{
		viewsCounted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "noveris_views_counted_total",
			Help: "Chapter views that incremented a view counter.",
		}),
		viewsDeduped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "noveris_views_deduplicated_total",
			Help: "Chapter views suppressed by the dedup window.",
		}),
		viewErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "noveris_view_errors_total",
			Help: "Failures in the view pipeline (dedup store or counter write).",
		}),
		recomputeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "noveris_aggregate_recompute_errors_total",
			Help: "Failed novel aggregate recomputations (repaired by reconciliation).",
		}),
	}

	registry.MustRegister(
		collector.viewsCounted,
		collector.viewsDeduped,
		collector.viewErrors,
		collector.recomputeErrors,
	)

	return collector
}

// ViewCounted records a successfully counted chapter view.
func (c *Collector) ViewCounted() { c.viewsCounted.Inc() }

// ViewDeduped records a view suppressed by the dedup window.
func (c *Collector) ViewDeduped() { c.viewsDeduped.Inc() }

// ViewError records a failure anywhere in the view pipeline.
func (c *Collector) ViewError() { c.viewErrors.Inc() }

// RecomputeError records a failed aggregate recomputation.
func (c *Collector) RecomputeError() { c.recomputeErrors.Inc() }

// Handler returns the HTTP handler for Prometheus scrapes (GET /metrics).
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
