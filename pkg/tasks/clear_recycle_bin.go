package tasks

import (
	"context"
	"log/slog"

	"bqdigital/housekeeper/pkg/cms"
	"bqdigital/housekeeper/pkg/sweep"
)

// ClearRecycleBinTask purges recycle-bin history older than the number of
// days given in the task data. Pages are swept before objects.
type ClearRecycleBinTask struct {
	locator  *sweep.Locator
	executor *sweep.Executor
	events   cms.EventLog
	source   string
}

var _ Task = (*ClearRecycleBinTask)(nil)

// NewClearRecycleBinTask creates the recycle-bin task.
func NewClearRecycleBinTask(deps Deps) *ClearRecycleBinTask {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts := []sweep.ExecutorOption{sweep.WithExecutorLogger(logger)}
	if deps.Recorder != nil {
		opts = append(opts, sweep.WithRecorder(deps.Recorder))
	}
	return &ClearRecycleBinTask{
		locator:  sweep.NewLocator(deps.Store, logger),
		executor: sweep.NewExecutor(deps.Store, deps.Events, opts...),
		events:   deps.Events,
		source:   TypeClearRecycleBin + "Task",
	}
}

// Execute implements Task.
func (t *ClearRecycleBinTask) Execute(ctx context.Context, info TaskInfo) string {
	return t.Run(ctx, info).Message
}

// Run implements Task.
func (t *ClearRecycleBinTask) Run(ctx context.Context, info TaskInfo) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = failure(ctx, t.events, t.source, recovered(r))
		}
	}()

	opts, err := sweep.ParseOptions(info.Data)
	if err != nil {
		return failure(ctx, t.events, t.source, err)
	}

	reporter := sweep.NewReporter(t.events, t.source)
	job := sweep.NewJob(t.locator, t.executor, reporter)

	report, err := job.Run(ctx, opts)
	if err != nil {
		return failure(ctx, t.events, t.source, err)
	}

	return Result{
		Message: reporter.Report(ctx, report),
		Status:  StatusSuccess,
	}
}
