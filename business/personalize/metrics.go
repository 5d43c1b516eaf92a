package personalize

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	InteractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "personalize_interactions_total",
			Help: "Interaction events applied to affinity profiles, by kind.",
		},
		[]string{"kind"},
	)

	PersistFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "personalize_persist_failures_total",
			Help: "Failed profile writes, by persist mode.",
		},
		[]string{"mode"},
	)

	RerankCandidates = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "personalize_rerank_candidates",
		Help:    "Number of candidates per re-rank call.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	ExplorationItemsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "personalize_exploration_items_total",
		Help: "Tail items spliced into re-ranked lists.",
	})

	ColdStartTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "personalize_cold_start_total",
			Help: "Cold-start orderings served, by whether the category filter was used.",
		},
		[]string{"filter"},
	)
)

func init() {
	prometheus.MustRegister(
		InteractionsTotal,
		PersistFailuresTotal,
		RerankCandidates,
		ExplorationItemsTotal,
		ColdStartTotal,
	)
}
