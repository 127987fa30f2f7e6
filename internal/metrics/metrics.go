// Package metrics exposes Prometheus counters and histograms for the recipe
// core.
//
// A Collector owns its registry. Nothing is registered globally, so several
// collectors (one per test, say) can coexist.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/mise/internal/model"
	"github.com/roach88/mise/internal/reconcile"
)

// Namespace prefixes every metric name.
const Namespace = "mise"

// Collector holds all Prometheus metrics for the recipe core.
type Collector struct {
	registry *prometheus.Registry

	// Listing metrics
	PagesServed *prometheus.CounterVec

	// Update metrics
	RecipeUpdates       *prometheus.CounterVec
	ReconcileOperations *prometheus.CounterVec

	// Latency per service operation
	OperationDuration *prometheus.HistogramVec
}

// NewCollector creates a collector with a fresh registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	pagesServed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "pages_served_total",
			Help:      "Total number of recipe listing pages served",
		},
		[]string{"sort_field"},
	)

	recipeUpdates := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "recipe_updates_total",
			Help:      "Total number of recipe updates by outcome",
		},
		[]string{"status"},
	)

	reconcileOperations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "reconcile_operations_total",
			Help:      "Total number of child item writes emitted by reconciliation",
		},
		[]string{"kind", "op"},
	)

	operationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Recipe service operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	registry.MustRegister(
		pagesServed,
		recipeUpdates,
		reconcileOperations,
		operationDuration,
	)

	return &Collector{
		registry:            registry,
		PagesServed:         pagesServed,
		RecipeUpdates:       recipeUpdates,
		ReconcileOperations: reconcileOperations,
		OperationDuration:   operationDuration,
	}
}

// Registry returns the Prometheus registry for this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// PageServed counts one listing page.
func (c *Collector) PageServed(field model.SortField) {
	if c == nil {
		return
	}
	c.PagesServed.WithLabelValues(string(field)).Inc()
}

// UpdateFinished counts one recipe update, labeled by the error code of err
// ("ok" on success).
func (c *Collector) UpdateFinished(err error) {
	if c == nil {
		return
	}
	c.RecipeUpdates.WithLabelValues(status(err)).Inc()
}

// PlanApplied counts the operations of a reconciliation plan.
func (c *Collector) PlanApplied(plan reconcile.Plan) {
	if c == nil {
		return
	}
	kind := string(plan.Kind)
	c.ReconcileOperations.WithLabelValues(kind, "insert").Add(float64(len(plan.Inserts)))
	c.ReconcileOperations.WithLabelValues(kind, "update").Add(float64(len(plan.Updates)))
	c.ReconcileOperations.WithLabelValues(kind, "delete").Add(float64(len(plan.Deletes)))
}

// ObserveDuration records how long an operation took since start.
func (c *Collector) ObserveDuration(operation string, start time.Time) {
	if c == nil {
		return
	}
	c.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func status(err error) string {
	if err == nil {
		return "ok"
	}
	if code := model.CodeOf(err); code != "" {
		return string(code)
	}
	return "error"
}
