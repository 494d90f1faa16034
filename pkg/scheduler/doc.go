// Package scheduler runs configured maintenance tasks on their cron
// schedules and on demand.
//
// Every run, scheduled or manual, goes through Runner, which assigns a run
// ID, opens a span, records metrics and persists the outcome. The task
// registry makes sure a task never overlaps with itself; a trigger that
// arrives while the task is running is skipped and counted.
//
// Schedules use the standard five-field cron syntax plus the descriptors
// robfig/cron accepts:
//
//	"0 3 * * *"     daily at 03:00
//	"*/30 * * * *"  every 30 minutes
//	"@every 6h"     every six hours
package scheduler
