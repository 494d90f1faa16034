package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bqdigital/housekeeper/pkg/cms"
	"bqdigital/housekeeper/pkg/tasks"
	"bqdigital/housekeeper/pkg/telemetry/logging"
	"bqdigital/housekeeper/pkg/telemetry/tracing"
)

// Run triggers.
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
	TriggerHTTP     = "http"
)

// Metrics receives task run measurements.
type Metrics interface {
	RecordTaskRun(task, status string, duration time.Duration)
	RecordTaskSkipped(task string)
}

// Runner executes registry tasks with run bookkeeping.
type Runner struct {
	registry *tasks.Registry
	runs     cms.TaskRunRecorder
	metrics  Metrics
	tracer   *tracing.Tracer
	logger   *slog.Logger
	now      func() time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunRecorder persists every finished run.
func WithRunRecorder(runs cms.TaskRunRecorder) RunnerOption {
	return func(r *Runner) { r.runs = runs }
}

// WithMetrics records run counts and durations.
func WithMetrics(m Metrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// WithTracer wraps every run in a span.
func WithTracer(t *tracing.Tracer) RunnerOption {
	return func(r *Runner) { r.tracer = t }
}

// WithLogger sets the runner's logger.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// NewRunner creates a runner over registry.
func NewRunner(registry *tasks.Registry, opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: registry,
		tracer:   tracing.Noop(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "scheduler")
	return r
}

// Registry returns the registry the runner executes from.
func (r *Runner) Registry() *tasks.Registry {
	return r.registry
}

// Run executes the named task once. data, when non-nil, replaces the
// task's configured data for this run. It returns tasks.ErrTaskNotFound
// for unknown names and tasks.ErrTaskRunning when the task is busy.
func (r *Runner) Run(ctx context.Context, name string, data *string, trigger string) (tasks.Result, error) {
	entry, ok := r.registry.Get(name)
	if !ok {
		return tasks.Result{}, fmt.Errorf("%w: %s", tasks.ErrTaskNotFound, name)
	}

	// A started run always completes and is recorded.
	ctx = context.WithoutCancel(ctx)

	runID := uuid.NewString()
	ctx = logging.WithRunID(logging.WithTask(ctx, name), runID)
	ctx, span := r.tracer.Start(ctx, "task.run", tracing.TaskAttributes(name, entry.Type, runID, trigger))
	defer span.End()

	started := r.now()
	result, err := r.registry.Run(ctx, name, data)
	finished := r.now()

	if err != nil {
		if errors.Is(err, tasks.ErrTaskRunning) {
			if r.metrics != nil {
				r.metrics.RecordTaskSkipped(name)
			}
			tracing.SetRunResult(span, string(tasks.StatusSkipped), "")
			r.logger.InfoContext(ctx, "task run skipped, previous run still in progress",
				append(logging.Attrs(ctx), "trigger", trigger)...)
		}
		return result, err
	}

	duration := finished.Sub(started)
	if r.metrics != nil {
		r.metrics.RecordTaskRun(name, string(result.Status), duration)
	}
	tracing.SetRunResult(span, string(result.Status), result.Message)
	tracing.SetStatus(span, result.Err)

	if r.runs != nil {
		run := cms.TaskRun{
			ID:         runID,
			TaskName:   name,
			StartedAt:  started,
			FinishedAt: finished,
			Status:     string(result.Status),
			Result:     result.Message,
		}
		if err := r.runs.RecordTaskRun(ctx, run); err != nil {
			r.logger.WarnContext(ctx, "failed to record task run", append(logging.Attrs(ctx), "error", err)...)
		}
	}

	attrs := append(logging.Attrs(ctx),
		"trigger", trigger,
		"status", string(result.Status),
		"duration_ms", duration.Milliseconds(),
		"result", result.Message,
	)
	if result.Status == tasks.StatusSuccess {
		r.logger.InfoContext(ctx, "task run completed", attrs...)
	} else {
		r.logger.WarnContext(ctx, "task run failed", append(attrs, "error", result.Err)...)
	}

	return result, nil
}
