package analytics

import "github.com/prometheus/client_golang/prometheus"

var (
	visitsRecorded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vamgard_visits_recorded_total",
		Help: "Page visits persisted by the visit recorder.",
	})

	// visitsSkipped is labelled by the filter rule that rejected the request.
	visitsSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vamgard_visits_skipped_total",
		Help: "Completed requests not recorded as page visits.",
	}, []string{"reason"})

	visitsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vamgard_visits_dropped_total",
		Help: "Page visits lost to persistence errors or panics.",
	})

	viewIncrements = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vamgard_view_count_increments_total",
		Help: "Content view counter increments by content kind.",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(visitsRecorded, visitsSkipped, visitsDropped, viewIncrements)
}

// CountViewIncrement records that the view counter of a content kind
// ("loan", "post") was bumped.
func CountViewIncrement(kind string) {
	viewIncrements.WithLabelValues(kind).Inc()
}
