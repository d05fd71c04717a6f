package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	AttemptsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_attempts_started_total",
			Help: "Attempts created",
		},
	)

	AttemptsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_attempts_submitted_total",
			Help: "Attempts completed, by pass/fail outcome",
		},
		[]string{"passed"},
	)

	AttemptsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_attempts_expired_total",
			Help: "Attempts moved to expired by the sweeper or at submission",
		},
	)

	ScoreDistribution = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quiz_attempt_percentage_score",
			Help:    "Percentage score of completed attempts",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		},
	)

	StatsUpdateFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_stats_update_failures_total",
			Help: "Aggregate statistics updates that failed after a successful submission",
		},
		[]string{"target"},
	)

	QuizCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_cache_lookups_total",
			Help: "Quiz read-through cache lookups by result",
		},
		[]string{"result"},
	)
)

var initOnce sync.Once

// Init registers every collector with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			AttemptsStarted,
			AttemptsSubmitted,
			AttemptsExpired,
			ScoreDistribution,
			StatsUpdateFailures,
			QuizCacheLookups,
		)
	})
}
