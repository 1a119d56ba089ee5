package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SyncRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supplier_sync_runs_total",
			Help: "Supplier feed sync runs by terminal status",
		},
		[]string{"status"},
	)

	SyncDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "supplier_sync_duration_seconds",
			Help:    "Wall time of one supplier feed sync",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"status"},
	)

	RecordsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supplier_inventory_records_total",
			Help: "Inventory records written by supplier syncs, by operation",
		},
		[]string{"op"},
	)

	RowWarnings = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "supplier_feed_row_warnings_total",
			Help: "Feed rows skipped because they failed validation",
		},
	)

	SyncProgress = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "supplier_sync_progress_ratio",
			Help: "Upsert progress of the running sync per source (0..1)",
		},
		[]string{"source"},
	)
)

var initOnce sync.Once

// Init registers metrics with Prometheus
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(SyncRuns)
		prometheus.MustRegister(SyncDuration)
		prometheus.MustRegister(RecordsWritten)
		prometheus.MustRegister(RowWarnings)
		prometheus.MustRegister(SyncProgress)
	})
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
