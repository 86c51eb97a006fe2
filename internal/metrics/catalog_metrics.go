package metrics

import "github.com/prometheus/client_golang/prometheus"

// Catalog counter vectors
var (
	CatalogFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_fetches_total",
		Help:      "Total number of catalog fetches by source and outcome",
	}, []string{"source", "outcome"})

	CatalogRefreshesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_refreshes_total",
		Help:      "Total number of scheduled catalog cache refreshes by status",
	}, []string{"status"})

	DataQualityIssues = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalog_data_quality_issues",
		Help:      "Data quality issues found in the last catalog validation by kind",
	}, []string{"kind"})
)

// Catalog histograms and gauges
var (
	CatalogFetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "catalog_fetch_duration_seconds",
		Help:      "Latency of catalog fetches in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source"})

	CatalogCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalog_cache_hit_ratio",
		Help:      "Hit ratio of the catalog cache",
	})

	CatalogSize = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalog_size",
		Help:      "Number of races returned by the last unfiltered catalog fetch",
	}, []string{"source"})
)

// RecordCatalogFetch records a catalog fetch.
// outcome should be one of: "success", "error", "not_found"
func RecordCatalogFetch(source, outcome string, durationSeconds float64) {
	CatalogFetchesTotal.WithLabelValues(source, outcome).Inc()
	CatalogFetchDuration.WithLabelValues(source).Observe(durationSeconds)
}

// UpdateCatalogCacheHitRatio updates the cache hit ratio gauge.
func UpdateCatalogCacheHitRatio(ratio float64) {
	CatalogCacheHitRatio.Set(ratio)
}

// UpdateCatalogSize updates the catalog size gauge for a source.
func UpdateCatalogSize(source string, count int) {
	CatalogSize.WithLabelValues(source).Set(float64(count))
}

// RecordCatalogRefresh records a scheduled refresh.
// status should be one of: "success", "failure"
func RecordCatalogRefresh(status string) {
	CatalogRefreshesTotal.WithLabelValues(status).Inc()
}

// UpdateDataQualityIssues sets the issue count for one kind of data problem.
func UpdateDataQualityIssues(kind string, count int) {
	DataQualityIssues.WithLabelValues(kind).Set(float64(count))
}
