package sweep

import (
	"context"
	"fmt"

	"bqdigital/housekeeper/pkg/cms"
)

// ExecuteCode tags task progress and outcome log entries.
const ExecuteCode = "EXECUTE"

// Report is the outcome of one recycle-bin sweep.
type Report struct {
	RemovedObjects int
	RemovedPages   int
}

// Summary renders the report for the scheduler.
func (r Report) Summary() string {
	return Summary(r.RemovedObjects, r.RemovedPages)
}

// Summary renders removal counts as the task's status string.
func Summary(objects, pages int) string {
	return fmt.Sprintf("Cleared %d objects and %d pages from the recycle bin.", objects, pages)
}

// Reporter writes progress and summary entries to the event log under the
// owning task's name.
type Reporter struct {
	events cms.EventLog
	source string
}

// NewReporter creates a Reporter logging as source.
func NewReporter(events cms.EventLog, source string) *Reporter {
	return &Reporter{events: events, source: source}
}

// Identified logs how many records of kind are about to be destroyed.
func (r *Reporter) Identified(ctx context.Context, kind Kind, n int) {
	r.events.LogInformation(ctx, r.source, ExecuteCode, fmt.Sprintf("Identified %d %ss to delete", n, kind))
}

// Report logs the summary of report and returns it.
func (r *Reporter) Report(ctx context.Context, report Report) string {
	summary := report.Summary()
	r.events.LogInformation(ctx, r.source, ExecuteCode, summary)
	return summary
}
