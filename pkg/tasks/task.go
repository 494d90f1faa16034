package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bqdigital/housekeeper/pkg/cms"
	"bqdigital/housekeeper/pkg/sweep"
)

// Task types accepted in configuration.
const (
	TypeClearRecycleBin    = "ClearOldDataFromRecycleBin"
	TypeTrimVersionHistory = "TrimObjectAndPageVersionHistory"
)

// Event log codes.
const (
	CodeConfig  = "CONFIG"
	CodeExecute = sweep.ExecuteCode
)

// ExecuteFailedMessage is returned in place of the detail of any failure
// that happens after the options were accepted.
const ExecuteFailedMessage = "Error while executing task. Please review event log."

// Status classifies a task result.
type Status string

const (
	StatusSuccess     Status = "success"
	StatusConfigError Status = "config_error"
	StatusFailed      Status = "failed"
	StatusSkipped     Status = "skipped"
)

// TaskInfo is what the scheduler hands to a task.
type TaskInfo struct {
	Name string
	Data string
}

// Result is the outcome of one task run.
type Result struct {
	Message string
	Status  Status
	Err     error // full failure detail, never shown to operators
}

// Task is a scheduled maintenance task.
type Task interface {
	// Execute runs the task and returns a human-readable status.
	Execute(ctx context.Context, info TaskInfo) string

	// Run runs the task and returns its classified result.
	Run(ctx context.Context, info TaskInfo) Result
}

// Deps are the platform services tasks are built from.
type Deps struct {
	Store    cms.HistoryStore
	Sites    cms.SiteDirectory
	Events   cms.EventLog
	Recorder sweep.Recorder
	Logger   *slog.Logger
}

// New creates a task of the given type.
func New(taskType string, deps Deps) (Task, error) {
	switch taskType {
	case TypeClearRecycleBin:
		return NewClearRecycleBinTask(deps), nil
	case TypeTrimVersionHistory:
		return NewTrimVersionHistoryTask(deps), nil
	default:
		return nil, fmt.Errorf("unknown task type %q", taskType)
	}
}

// Types lists the task types New accepts.
func Types() []string {
	return []string{TypeClearRecycleBin, TypeTrimVersionHistory}
}

// failure reports err to the event log and maps it to a result. Config
// errors keep their message; anything else gets ExecuteFailedMessage.
func failure(ctx context.Context, events cms.EventLog, source string, err error) Result {
	var cfgErr *sweep.ConfigError
	if errors.As(err, &cfgErr) {
		if cfgErr.Cause != nil {
			events.LogException(ctx, source, CodeConfig, cfgErr.Cause, cfgErr.Message)
		} else {
			events.LogError(ctx, source, CodeConfig, cfgErr.Message)
		}
		return Result{Message: cfgErr.Message, Status: StatusConfigError, Err: err}
	}

	events.LogException(ctx, source, CodeExecute, err, ExecuteFailedMessage)
	return Result{Message: ExecuteFailedMessage, Status: StatusFailed, Err: err}
}

// recovered converts a panic value into an error.
func recovered(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("task panicked: %w", err)
	}
	return fmt.Errorf("task panicked: %v", r)
}
