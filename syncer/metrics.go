package syncer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// lastSyncTimestamp is a Gauge that captures the timestamp of the last
	// successful sync of a path
	lastSyncTimestamp *prometheus.GaugeVec
	// syncCount is a Counter vector of executed jobs
	syncCount *prometheus.CounterVec
	// syncLatency is a Histogram vector that keeps track of git command durations
	syncLatency *prometheus.HistogramVec
)

// EnableMetrics will enable metrics collection for executed jobs.
// Available metrics are...
//   - ghopac_last_sync_timestamp - (tags: path)
//     A Gauge that captures the Timestamp of the last successful sync per path.
//   - ghopac_sync_count - (tags: operation,outcome)
//     A Counter for each job, tagged with the planned operation and the outcome.
//   - ghopac_sync_latency_seconds - (tags: operation)
//     A Histogram that keeps track of the git command latency per operation.
func EnableMetrics(metricsNamespace string, registerer prometheus.Registerer) {
	lastSyncTimestamp = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "last_sync_timestamp",
		Help:      "Timestamp of the last successful sync of the path",
	},
		[]string{
			// local path of the repository
			"path",
		},
	)

	syncCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "sync_count",
		Help:      "Count of sync jobs",
	},
		[]string{
			// update, clone, skip-collision or skip-missing-source
			"operation",
			// synced, skipped, command_failed or execution_error
			"outcome",
		},
	)

	syncLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "sync_latency_seconds",
		Help:      "Latency of git commands run for sync jobs",
		Buckets:   []float64{0.5, 1, 5, 10, 20, 30, 60, 90, 120, 150, 300},
	},
		[]string{
			"operation",
		},
	)

	registerer.MustRegister(
		lastSyncTimestamp,
		syncCount,
		syncLatency,
	)
}

// recordSync records a job outcome by updating all the relevant metrics
func recordSync(path string, o Outcome) {
	// if metrics not enabled return
	if lastSyncTimestamp == nil || syncCount == nil || syncLatency == nil {
		return
	}
	if !o.Failed() {
		lastSyncTimestamp.With(prometheus.Labels{
			"path": path,
		}).Set(float64(time.Now().Unix()))
	}
	syncCount.With(prometheus.Labels{
		"operation": o.Operation.String(),
		"outcome":   o.Kind.String(),
	}).Inc()

	if !o.Operation.Skipped() {
		syncLatency.WithLabelValues(o.Operation.String()).Observe(o.Duration.Seconds())
	}
}
