package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"bqdigital/housekeeper/pkg/config"
)

// Collector owns every housekeeper metric.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	recordsDestroyed *prometheus.CounterVec
	taskRuns         *prometheus.CounterVec
	taskDuration     *prometheus.HistogramVec
	lastSuccess      *prometheus.GaugeVec
	tasksSkipped     *prometheus.CounterVec
}

// NewCollector creates a collector registering its metrics with registry.
// A nil registry gets a fresh one with the Go and process collectors.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if cfg == nil {
		cfg = &config.MetricsConfig{}
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = config.DefaultMetricsNamespace
	}
	buckets := cfg.DurationBuckets
	if len(buckets) == 0 {
		buckets = config.DefaultDurationBuckets
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		recordsDestroyed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_destroyed_total",
				Help:      "Total number of recycle-bin history records destroyed",
			},
			[]string{"kind"},
		),

		taskRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "task_runs_total",
				Help:      "Total number of task runs by outcome",
			},
			[]string{"task", "status"},
		),

		taskDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "task_duration_seconds",
				Help:      "Duration of task runs in seconds",
				Buckets:   buckets,
			},
			[]string{"task"},
		),

		lastSuccess: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "task_last_success_timestamp_seconds",
				Help:      "Unix time of the last successful run of a task",
			},
			[]string{"task"},
		),

		tasksSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_skipped_total",
				Help:      "Total number of task runs skipped because a previous run was still in progress",
			},
			[]string{"task"},
		),
	}

	registry.MustRegister(
		c.recordsDestroyed,
		c.taskRuns,
		c.taskDuration,
		c.lastSuccess,
		c.tasksSkipped,
	)

	return c
}

// RecordDestroyed counts one destroyed record of kind ("object" or "page").
func (c *Collector) RecordDestroyed(kind string) {
	c.recordsDestroyed.WithLabelValues(kind).Inc()
}

// RecordTaskRun records the outcome and duration of one task run.
func (c *Collector) RecordTaskRun(task, status string, duration time.Duration) {
	c.taskRuns.WithLabelValues(task, status).Inc()
	c.taskDuration.WithLabelValues(task).Observe(duration.Seconds())
	if status == "success" {
		c.lastSuccess.WithLabelValues(task).SetToCurrentTime()
	}
}

// RecordTaskSkipped counts a run that did not start because the task was busy.
func (c *Collector) RecordTaskSkipped(task string) {
	c.tasksSkipped.WithLabelValues(task).Inc()
}

// Registry returns the registry the collector's metrics live in.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
