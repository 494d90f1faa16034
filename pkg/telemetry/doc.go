// Package telemetry groups the observability packages used by housekeeper.
//
// # Components
//
//   - logging: structured slog output and request/run context helpers
//   - metrics: Prometheus collectors for task runs and destroyed records
//   - tracing: OpenTelemetry spans for task runs and admin requests
//   - health: liveness and readiness probes
//
// Each component is configured from the telemetry section of the
// housekeeper configuration file and constructed explicitly by the
// command that needs it. None of them keep process-wide state beyond
// what the underlying libraries require.
package telemetry
