package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used on housekeeper spans.
const (
	AttrTaskName   = attribute.Key("housekeeper.task.name")
	AttrTaskType   = attribute.Key("housekeeper.task.type")
	AttrRunID      = attribute.Key("housekeeper.run.id")
	AttrRunStatus  = attribute.Key("housekeeper.run.status")
	AttrTrigger    = attribute.Key("housekeeper.run.trigger")
	AttrRunMessage = attribute.Key("housekeeper.run.message")
)

// TaskAttributes returns the start options for a task run span.
func TaskAttributes(name, taskType, runID, trigger string) trace.SpanStartOption {
	return trace.WithAttributes(
		AttrTaskName.String(name),
		AttrTaskType.String(taskType),
		AttrRunID.String(runID),
		AttrTrigger.String(trigger),
	)
}

// SetRunResult records the outcome of a task run on span.
func SetRunResult(span trace.Span, status, message string) {
	span.SetAttributes(
		AttrRunStatus.String(status),
		AttrRunMessage.String(message),
	)
}
