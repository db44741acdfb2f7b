// internal/matching/metrics.go

package matching

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	swipesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_swipes_total",
			Help: "Total number of swipes recorded",
		},
		[]string{"decision"},
	)

	rewindsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_rewinds_total",
			Help: "Total number of swipe rewinds",
		},
	)

	matchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_matches_total",
			Help: "Total number of match lifecycle events",
		},
		[]string{"event"},
	)

	compatibilityScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_compatibility_scores",
			Help:    "Distribution of compatibility scores",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	candidatesReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_candidates_returned",
			Help:    "Number of candidates returned per feed request",
			Buckets: prometheus.LinearBuckets(0, 5, 11),
		},
	)
)

func RecordSwipe(decision Decision) {
	swipesTotal.WithLabelValues(string(decision)).Inc()
}

func RecordRewind() {
	rewindsTotal.Inc()
}

// RecordMatchEvent tracks lifecycle transitions: created, reactivated,
// deactivated, expired.
func RecordMatchEvent(event string) {
	matchesTotal.WithLabelValues(event).Inc()
}

func RecordCompatibilityScore(score float64) {
	compatibilityScores.Observe(score)
}

func RecordCandidatesReturned(n int) {
	candidatesReturned.Observe(float64(n))
}
