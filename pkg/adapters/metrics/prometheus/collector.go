package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements MetricsCollector using Prometheus
type Collector struct {
	executionsStarted  prometheus.Counter
	executionsFinished *prometheus.CounterVec
	startFailures      prometheus.Counter
	executionDuration  *prometheus.HistogramVec
	executionActive    prometheus.Gauge

	tabOutcomes      *prometheus.CounterVec
	tabFetchDuration *prometheus.HistogramVec

	actionsSubmitted *prometheus.CounterVec
}

// NewCollector creates a new Prometheus metrics collector
func NewCollector() *Collector {
	return &Collector{
		executionsStarted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "deskd_executions_started_total",
				Help: "Total number of Load All executions started",
			},
		),
		executionsFinished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskd_executions_finished_total",
				Help: "Total number of Load All executions finished",
			},
			[]string{"status"},
		),
		startFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "deskd_execution_start_failures_total",
				Help: "Total number of executions the backend refused to start",
			},
		),
		executionDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "deskd_execution_duration_seconds",
				Help:    "Load All execution duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"status"},
		),
		executionActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "deskd_execution_active",
				Help: "Whether a Load All execution is currently running",
			},
		),
		tabOutcomes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskd_tab_outcomes_total",
				Help: "Total terminal tab outcomes by tab and outcome",
			},
			[]string{"tab", "outcome"},
		),
		tabFetchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "deskd_tab_fetch_duration_seconds",
				Help:    "Tab fetch duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"tab"},
		),
		actionsSubmitted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskd_actions_submitted_total",
				Help: "Total action submissions by action and result",
			},
			[]string{"action", "result"},
		),
	}
}

// RecordExecutionStarted increments the count of started executions
func (c *Collector) RecordExecutionStarted() {
	c.executionsStarted.Inc()
}

// RecordStartFailure increments the count of refused execution starts
func (c *Collector) RecordStartFailure() {
	c.startFailures.Inc()
}

// RecordExecutionFinished records a finished execution and its duration
func (c *Collector) RecordExecutionFinished(status string, duration time.Duration) {
	c.executionsFinished.WithLabelValues(status).Inc()
	c.executionDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordTabOutcome increments the terminal outcome counter for a tab
func (c *Collector) RecordTabOutcome(tab, outcome string) {
	c.tabOutcomes.WithLabelValues(tab, outcome).Inc()
}

// ObserveTabFetch records the duration of a tab fetch
func (c *Collector) ObserveTabFetch(tab string, duration time.Duration) {
	c.tabFetchDuration.WithLabelValues(tab).Observe(duration.Seconds())
}

// SetExecutionActive sets the active execution gauge
func (c *Collector) SetExecutionActive(active bool) {
	if active {
		c.executionActive.Set(1)
		return
	}
	c.executionActive.Set(0)
}

// RecordActionSubmitted increments the action submission counter
func (c *Collector) RecordActionSubmitted(action, result string) {
	c.actionsSubmitted.WithLabelValues(action, result).Inc()
}
