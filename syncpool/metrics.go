package syncpool

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	runJobs          prometheus.Gauge
	runFailedJobs    prometheus.Gauge
	runDuration      prometheus.Gauge
	lastRunTimestamp prometheus.Gauge
)

// EnableMetrics will enable metrics collection for pool runs.
// Available metrics are...
//   - ghopac_run_jobs - number of jobs processed by the last run
//   - ghopac_run_failed_jobs - number of failed jobs of the last run
//   - ghopac_run_duration_seconds - duration of the last run
//   - ghopac_last_run_timestamp - timestamp of the end of the last run
func EnableMetrics(metricsNamespace string, registerer prometheus.Registerer) {
	runJobs = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "run_jobs",
		Help:      "Number of jobs processed by the last run",
	})
	runFailedJobs = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "run_failed_jobs",
		Help:      "Number of failed jobs of the last run",
	})
	runDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of the last run",
	})
	lastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "last_run_timestamp",
		Help:      "Timestamp of the end of the last run",
	})

	registerer.MustRegister(
		runJobs,
		runFailedJobs,
		runDuration,
		lastRunTimestamp,
	)
}

func recordRun(res Result) {
	// if metrics not enabled return
	if runJobs == nil {
		return
	}
	runJobs.Set(float64(res.Processed))
	runFailedJobs.Set(float64(res.Failed))
	runDuration.Set(res.Duration.Seconds())
	lastRunTimestamp.Set(float64(time.Now().Unix()))
}
