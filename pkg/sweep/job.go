package sweep

import (
	"context"
	"time"
)

// Job runs a complete recycle-bin sweep: pages first, then objects.
type Job struct {
	locator  *Locator
	executor *Executor
	reporter *Reporter
	now      func() time.Time
}

// NewJob assembles a Job from its parts.
func NewJob(locator *Locator, executor *Executor, reporter *Reporter) *Job {
	return &Job{
		locator:  locator,
		executor: executor,
		reporter: reporter,
		now:      time.Now,
	}
}

// Run sweeps the record kinds enabled in opts. On error the returned report
// still holds the counts destroyed before the failure.
func (j *Job) Run(ctx context.Context, opts Options) (Report, error) {
	var report Report
	now := j.now()

	if opts.ClearPages {
		refs, err := j.locator.ExpiredPages(ctx, Cutoff(now, opts.ClearPagesOlderThanDays))
		if err != nil {
			return report, NewExecutionError(KindPage, 0, err)
		}
		j.reporter.Identified(ctx, KindPage, len(refs))

		n, err := j.executor.Sweep(ctx, KindPage, refs)
		report.RemovedPages = n
		if err != nil {
			return report, err
		}
	}

	if opts.ClearObjects {
		refs, err := j.locator.ExpiredObjects(ctx, Cutoff(now, opts.ClearObjectsOlderThanDays))
		if err != nil {
			return report, NewExecutionError(KindObject, 0, err)
		}
		j.reporter.Identified(ctx, KindObject, len(refs))

		n, err := j.executor.Sweep(ctx, KindObject, refs)
		report.RemovedObjects = n
		if err != nil {
			return report, err
		}
	}

	return report, nil
}
