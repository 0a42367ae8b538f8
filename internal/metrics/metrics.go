package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tourdash_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "route", "status"})

	RenderPassesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tourdash_render_passes_total",
		Help: "Dashboard recomputation passes by view",
	}, []string{"view"})

	SnapshotRefreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tourdash_snapshot_refresh_duration_seconds",
		Help:    "Time spent reloading all logical tables",
		Buckets: prometheus.DefBuckets,
	})

	TableLoadFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tourdash_table_load_failures_total",
		Help: "Per-table load failures during snapshot refresh",
	}, []string{"table"})

	ExportRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tourdash_export_runs_total",
		Help: "Workbook exports produced",
	})
)
