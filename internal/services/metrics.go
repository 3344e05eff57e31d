package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gift_engine_stage_duration_seconds",
			Help:    "Duration of each gift engine pipeline stage",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 45},
		},
		[]string{"stage"},
	)

	dispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gift_engine_requests_total",
			Help: "Gift engine dispatches by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	enrichmentFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gift_engine_enrichment_failures_total",
			Help: "Idea enrichment searches that failed and were replaced with empty links",
		},
	)

	itemsReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gift_engine_items_returned",
			Help:    "Number of ideas or shops returned per request",
			Buckets: []float64{0, 1, 2, 3, 5, 10},
		},
		[]string{"mode"},
	)

	searchCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gift_engine_search_cache_total",
			Help: "Search mode cache lookups by result",
		},
		[]string{"result"},
	)
)

const (
	stageGenerate = "generate"
	stageEnrich   = "enrich"
	stageDiscover = "discover"
	stageDispatch = "dispatch"
)

func observeStage(stage string, start time.Time) {
	stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
