package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	FilesLoaded   *prometheus.CounterVec
	ParseFailures prometheus.Counter
	MergeRuns     prometheus.Counter
	MergedRows    prometheus.Counter
	MatchedRows   prometheus.Counter
	MergeDuration prometheus.Histogram
	FetchErrors   *prometheus.CounterVec
	ErrorsCount   *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics registered on reg.
// A nil reg registers on the default registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		FilesLoaded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_loaded_total",
			Help:      "The total number of tabular files loaded",
		}, []string{"format"}),
		ParseFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "timestamp_parse_failures_total",
			Help:      "The total number of timestamp cells that could not be parsed",
		}),
		MergeRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merge_runs_total",
			Help:      "The total number of noise/arrival merges",
		}),
		MergedRows: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merged_rows_total",
			Help:      "The total number of rows produced by merges",
		}),
		MatchedRows: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matched_rows_total",
			Help:      "The total number of noise rows paired with an arrival",
		}),
		MergeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "merge_duration_seconds",
			Help:      "Time taken to merge noise and arrival tables",
			Buckets:   prometheus.DefBuckets,
		}),
		FetchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_fetch_errors_total",
			Help:      "The total number of failed provider requests",
		}, []string{"provider"}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
