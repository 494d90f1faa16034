// Package server provides the housekeeper admin HTTP server.
//
// The server exposes health probes, build information, Prometheus metrics
// and manual task triggers:
//
//	GET  /health               liveness
//	GET  /ready                readiness (503 until every check passes)
//	GET  /version              build information
//	GET  /metrics              Prometheus metrics, when enabled
//	GET  /tasks                configured tasks
//	POST /tasks/{name}/run     run a task now
//
// A run request may carry a body, which replaces the task's configured
// data for that run only. Requests from crawlers are refused, and a task
// that is already running answers 409 Conflict instead of starting twice.
//
// Probe and metrics paths come from configuration; the paths above are
// the defaults.
package server
