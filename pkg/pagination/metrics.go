package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FanoutDropped counts detail fetches that failed and were dropped
	FanoutDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_fanout_dropped_total",
		Help: "Total number of fan-out items dropped because their detail fetch failed",
	})

	// FanoutDuration tracks how long a whole fan-out takes
	FanoutDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_fanout_duration_seconds",
		Help:    "Duration of detail fan-out batches in seconds",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	})
)
