package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "buddyup_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "buddyup_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// CandidateSearchLatency records full discovery latency (pool load,
	// filter, rank) per request.
	CandidateSearchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "buddyup_candidate_search_latency_seconds",
		Help:    "Candidate discovery latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// CandidateSearchResults records how many candidates the filter kept.
	CandidateSearchResults = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "buddyup_candidate_search_results",
		Help:    "Number of eligible candidates per discovery call",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
	})

	// MatchRequestTransitions counts request lifecycle outcomes.
	MatchRequestTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "buddyup_match_request_transitions_total",
		Help: "Total match request lifecycle transitions by outcome",
	}, []string{"outcome"})

	// MatchEventsPublished counts domain events delivered to the event bus.
	MatchEventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "buddyup_match_events_published_total",
		Help: "Total match domain events published by type",
	}, []string{"event_type"})
)

// ObserveSearch records one discovery call.
func ObserveSearch(start time.Time, resultCount int) {
	CandidateSearchLatency.Observe(time.Since(start).Seconds())
	CandidateSearchResults.Observe(float64(resultCount))
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
