package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search counters
var (
	SearchEvaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_evaluations_total",
		Help:      "Total number of search evaluations by sort order and whether filters were active",
	}, []string{"sort", "filtered"})

	MalformedRecordsSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "malformed_records_skipped_total",
		Help:      "Total number of catalog records skipped for missing required fields",
	})

	SupersededQueriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "superseded_queries_total",
		Help:      "Total number of session queries discarded because a newer query arrived",
	})
)

// Search histograms
var (
	SearchEvaluationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_evaluation_duration_seconds",
		Help:      "Duration of in-memory search evaluation in seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})

	SearchResultsReturned = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_results_total_count",
		Help:      "Number of races matching a search before pagination",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	})
)

// RecordSearchEvaluation records one engine evaluation.
func RecordSearchEvaluation(sort string, filtered bool, durationSeconds float64, totalCount, skipped int) {
	f := "false"
	if filtered {
		f = "true"
	}
	SearchEvaluationsTotal.WithLabelValues(sort, f).Inc()
	SearchEvaluationDuration.Observe(durationSeconds)
	SearchResultsReturned.Observe(float64(totalCount))
	if skipped > 0 {
		MalformedRecordsSkipped.Add(float64(skipped))
	}
}

// RecordSupersededQuery records a query result dropped by last-write-wins.
func RecordSupersededQuery() {
	SupersededQueriesTotal.Inc()
}
