// Package tasks provides the scheduled maintenance tasks and the registry
// the scheduler and the admin server run them through.
//
// A task never returns an error or panics to its caller: every outcome is
// reduced to a short status message, with the full detail written to the
// event log.
package tasks
