package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	QueueMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sweepq_queue_mutations_total",
		Help: "Total number of queue store mutations by operation.",
	}, []string{"op"})

	QueueLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sweepq_queue_length",
		Help: "Current number of entries in the sweep queue.",
	})

	ExportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sweepq_exports_total",
		Help: "Total number of rendered scripts by kind (queue or single).",
	}, []string{"kind"})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sweepq_scan_seconds",
		Help:    "Time spent scanning a notebook cell for sweeps.",
		Buckets: prometheus.DefBuckets,
	})

	ScanCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sweepq_scan_cache_hits_total",
		Help: "Total number of cell scans answered from the cache.",
	})

	ParserInitFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sweepq_parser_init_failures_total",
		Help: "Total number of failed scanner grammar initialisations.",
	})

	NotebookInsertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sweepq_notebook_inserts_total",
		Help: "Total number of notebook cell insertions by result.",
	}, []string{"result"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sweepq_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
