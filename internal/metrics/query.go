package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	queryParseErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "query_parse_errors_total",
			Help:      "Filter and sort expressions rejected by the parser",
		},
		[]string{"dialect"},
	)

	queryFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "query_fallbacks_total",
			Help:      "Predicates compiled to always-false because the operator was not recognized",
		},
	)

	jobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "job_runs_total",
			Help:      "Scheduled query runs",
		},
		[]string{"job", "status"},
	)

	jobLastMatches = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "job_last_matches",
			Help:      "Records matched by the last successful run of a scheduled query",
		},
		[]string{"job"},
	)
)

func init() {
	prometheus.MustRegister(queryParseErrorsTotal, queryFallbacksTotal, jobRunsTotal, jobLastMatches)
}

// Recorder forwards query engine and scheduler events to the collectors
// above. The zero value is ready to use.
type Recorder struct{}

// ParseFailed counts a rejected expression of the given dialect.
func (Recorder) ParseFailed(dialect string) {
	queryParseErrorsTotal.WithLabelValues(dialect).Inc()
}

// Fallbacks counts predicates that degraded to always-false.
func (Recorder) Fallbacks(n int) {
	queryFallbacksTotal.Add(float64(n))
}

// JobSucceeded records a run and its match count.
func (Recorder) JobSucceeded(job string, matches int64) {
	jobRunsTotal.WithLabelValues(job, "ok").Inc()
	jobLastMatches.WithLabelValues(job).Set(float64(matches))
}

// JobFailed records a failed run.
func (Recorder) JobFailed(job string) {
	jobRunsTotal.WithLabelValues(job, "error").Inc()
}
