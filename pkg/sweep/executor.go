package sweep

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"bqdigital/housekeeper/pkg/cms"
)

// Audit event sources and codes written for each destroyed record.
const (
	ObjectEventSource = "Objects"
	ObjectEventCode   = "DESTROYOBJECT"
	PageEventSource   = "Content"
	PageEventCode     = "DESTROYDOC"
)

// Recorder receives a notification for every destroyed record.
type Recorder interface {
	RecordDestroyed(kind string)
}

// Executor permanently destroys located records.
type Executor struct {
	store    cms.HistoryStore
	events   cms.EventLog
	recorder Recorder
	logger   *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithRecorder reports destroyed records to r.
func WithRecorder(r Recorder) ExecutorOption {
	return func(e *Executor) {
		e.recorder = r
	}
}

// WithExecutorLogger sets the executor's logger.
func WithExecutorLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger.With("component", "sweep.executor")
	}
}

// NewExecutor creates an Executor destroying records in store and writing
// one audit event per record to events.
func NewExecutor(store cms.HistoryStore, events cms.EventLog, opts ...ExecutorOption) *Executor {
	e := &Executor{
		store:  store,
		events: events,
		logger: slog.Default().With("component", "sweep.executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sweep destroys refs in order and returns how many were destroyed. The
// first failure stops the sweep and is returned as an *ExecutionError.
func (e *Executor) Sweep(ctx context.Context, kind Kind, refs []RecordRef) (int, error) {
	processed := 0
	for _, ref := range refs {
		if err := e.destroy(ctx, kind, ref); err != nil {
			e.logger.Error("destroy failed",
				"kind", kind,
				"record_id", ref.ID,
				"processed", processed,
				"error", err,
			)
			return processed, NewExecutionError(kind, processed, err)
		}

		e.events.LogAuditEvent(ctx, auditEvent(kind, ref))
		if e.recorder != nil {
			e.recorder.RecordDestroyed(string(kind))
		}
		processed++
	}
	return processed, nil
}

func (e *Executor) destroy(ctx context.Context, kind Kind, ref RecordRef) error {
	switch kind {
	case KindObject:
		return e.store.DestroyObjectHistory(ctx, ref.ObjectType, ref.ID)
	case KindPage:
		return e.store.DestroyPageHistory(ctx, ref.ID)
	default:
		return fmt.Errorf("unknown record kind %q", kind)
	}
}

func auditEvent(kind Kind, ref RecordRef) cms.AuditEvent {
	if kind == KindPage {
		name := fmt.Sprintf("%s (%s)", ref.DisplayName, ref.AliasPath)
		return cms.AuditEvent{
			EventType:   cms.EventInformation,
			Source:      PageEventSource,
			Code:        PageEventCode,
			Description: fmt.Sprintf("Document '%s' has been destroyed.", html.EscapeString(name)),
			Context:     cms.RequestContext{SiteID: ref.SiteID},
		}
	}
	return cms.AuditEvent{
		EventType:   cms.EventInformation,
		Source:      ObjectEventSource,
		Code:        ObjectEventCode,
		Description: fmt.Sprintf("Object '%s' has been destroyed.", html.EscapeString(ref.DisplayName)),
	}
}
