package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the engine's Prometheus collectors.
type Metrics struct {
	Registry *prometheus.Registry

	StockMovements    *prometheus.CounterVec
	TasksCreated      *prometheus.CounterVec
	TasksCompleted    *prometheus.CounterVec
	SalesRecorded     prometheus.Counter
	SalesAmount       prometheus.Counter
	ReconcileDuration prometheus.Histogram
	LowStockProducts  prometheus.Gauge
}

// New creates the collectors and registers them on a dedicated registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		StockMovements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_stock_movements_total",
				Help: "Total number of units moved by ledger operation",
			},
			[]string{"operation"},
		),
		TasksCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todo_tasks_created_total",
				Help: "Total number of to-do tasks created",
			},
			[]string{"type"},
		),
		TasksCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todo_tasks_completed_total",
				Help: "Total number of to-do tasks completed",
			},
			[]string{"type"},
		),
		SalesRecorded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sales_recorded_total",
				Help: "Total number of recorded sales",
			},
		),
		SalesAmount: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sales_amount_total",
				Help: "Sum of recorded sale totals including tax",
			},
		),
		ReconcileDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "todo_reconcile_duration_seconds",
				Help:    "Duration of task reconciliation passes in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		LowStockProducts: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "inventory_low_stock_products",
				Help: "Number of products at or below their reorder threshold in store",
			},
		),
	}

	m.Registry.MustRegister(
		m.StockMovements,
		m.TasksCreated,
		m.TasksCompleted,
		m.SalesRecorded,
		m.SalesAmount,
		m.ReconcileDuration,
		m.LowStockProducts,
	)
	return m
}
