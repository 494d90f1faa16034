// Package metrics provides Prometheus metrics for housekeeper.
//
// # Metrics
//
//   - housekeeper_records_destroyed_total{kind}: recycle-bin records destroyed
//   - housekeeper_task_runs_total{task, status}: task runs by outcome
//   - housekeeper_task_duration_seconds{task}: task run duration
//   - housekeeper_task_last_success_timestamp_seconds{task}: last successful run
//   - housekeeper_tasks_skipped_total{task}: runs skipped because the task was busy
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// The collector uses its own registry, so tests can create as many
// collectors as they need.
package metrics
