// Package metrics provides Prometheus instrumentation for the match engine:
// counters for scored and failed candidates, a histogram for ranking
// duration, and a gauge for the candidate pool size.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CandidatesScored counts candidates that produced a component score set.
	CandidatesScored = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "friendzone_candidates_scored_total",
		Help: "Total number of candidates scored",
	})

	// CandidatesFailed counts candidates excluded from ranking, labeled by
	// reason: "validation", "computation", or "fetch".
	CandidatesFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "friendzone_candidates_failed_total",
		Help: "Total number of candidates excluded from ranking",
	}, []string{"reason"})

	// RankingDuration records end-to-end match ranking latency in seconds.
	RankingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "friendzone_ranking_duration_seconds",
		Help:    "End-to-end match ranking latency in seconds",
		Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
	})

	// PoolSize tracks the candidate pool size of the most recent match run.
	PoolSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "friendzone_candidate_pool_size",
		Help: "Candidate pool size of the most recent match run",
	})
)

func init() {
	prometheus.MustRegister(
		CandidatesScored,
		CandidatesFailed,
		RankingDuration,
		PoolSize,
	)
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
