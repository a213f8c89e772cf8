package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	snapshotsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cardb",
		Name:      "snapshots_total",
		Help:      "Number of record snapshots processed by the browser.",
	})

	snapshotRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "cardb",
		Name:      "snapshot_records",
		Help:      "Number of records in the latest snapshot.",
	})

	visibleRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "cardb",
		Name:      "visible_records",
		Help:      "Number of records passing the active filters.",
	})

	filterPassDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cardb",
		Name:      "filter_pass_duration_seconds",
		Help:      "Time spent filtering and sorting a snapshot.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
	})
)
