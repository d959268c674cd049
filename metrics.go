package ssrwatch

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// MetricsJob is the Pushgateway job name.
const MetricsJob = "ssrwatch"

// Metrics holds the gauges describing the last run. A batch job has no
// scrape endpoint, so they are pushed to a Pushgateway once the run ends.
type Metrics struct {
	registry    *prometheus.Registry
	matches     prometheus.Gauge
	lastRun     prometheus.Gauge
	lastSuccess prometheus.Gauge
	failed      *prometheus.GaugeVec
}

// NewMetrics registers the run gauges in a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		matches: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ssrwatch_matches",
			Help: "Number of SSR list lines matching a position in the last run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ssrwatch_last_run_timestamp_seconds",
			Help: "Unix time of the last run.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ssrwatch_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run.",
		}),
		failed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ssrwatch_run_failed",
			Help: "1 if the last run failed, by failure reason.",
		}, []string{"reason"}),
	}
	m.registry.MustRegister(m.lastRun, m.failed)
	return m
}

// Observe records the outcome of a run that ended at now.
func (m *Metrics) Observe(res Result, err error, now time.Time) {
	m.lastRun.Set(float64(now.Unix()))
	m.failed.Reset()
	if err != nil {
		m.failed.WithLabelValues(Reason(err)).Set(1)
		return
	}
	// Only successful runs export these two.
	m.registry.Unregister(m.matches)
	m.registry.Unregister(m.lastSuccess)
	m.registry.MustRegister(m.matches, m.lastSuccess)
	m.matches.Set(float64(res.Matches.Len()))
	m.lastSuccess.Set(float64(now.Unix()))
	m.failed.WithLabelValues(Reason(nil)).Set(0)
}

// Gatherer exposes the registry.
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.registry }

// Push sends the gauges to the Pushgateway at url, replacing only the
// metrics present in this push.
func (m *Metrics) Push(ctx context.Context, url string) error {
	err := push.New(url, MetricsJob).Gatherer(m.registry).AddContext(ctx)
	if err != nil {
		return fmt.Errorf("cannot push metrics to %s: %w", url, err)
	}
	return nil
}
