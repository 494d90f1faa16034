// Package tracing provides OpenTelemetry tracing for task runs and admin
// requests.
//
// When tracing is disabled, New returns a tracer backed by a noop provider
// so callers never need to check whether tracing is on:
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "task.run")
//	defer span.End()
//
// Spans are exported over OTLP gRPC. Incoming W3C trace context on admin
// requests is honoured by HTTPMiddleware.
package tracing
