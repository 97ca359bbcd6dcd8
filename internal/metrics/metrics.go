package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Technical metrics
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	ResponseTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_response_time_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 15},
	}, []string{"method", "route"})

	StoreQueryTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "report_store_query_seconds",
		Help:    "Duration of report store queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	// Business metrics
	ReportsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reports_generated_total",
		Help: "Total number of reports generated, by kind",
	}, []string{"kind"})

	WorkbookExports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workbook_exports_total",
		Help: "Total number of merchant workbooks exported, by format",
	}, []string{"format"})

	ExportJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workbook_archive_jobs_total",
		Help: "Workbook archive jobs processed, by result",
	}, []string{"result"})
)
