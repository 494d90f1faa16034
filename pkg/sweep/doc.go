// Package sweep implements the recycle-bin retention sweep: parsing the
// task options, locating expired historical records, destroying them one
// by one with an audit event each, and reporting the outcome.
//
// A sweep is synchronous and sequential. The first failed destroy call
// stops the sweep for that record kind; records destroyed before the
// failure stay destroyed.
package sweep
