package tasks

import (
	"context"
	"fmt"

	"bqdigital/housekeeper/pkg/cms"
)

// TrimVersionHistoryTask trims the history of every page and every live
// object down to the history length configured for its site. It takes no
// task data.
type TrimVersionHistoryTask struct {
	store  cms.HistoryStore
	sites  cms.SiteDirectory
	events cms.EventLog
	source string
}

var _ Task = (*TrimVersionHistoryTask)(nil)

// NewTrimVersionHistoryTask creates the version-history trim task.
func NewTrimVersionHistoryTask(deps Deps) *TrimVersionHistoryTask {
	return &TrimVersionHistoryTask{
		store:  deps.Store,
		sites:  deps.Sites,
		events: deps.Events,
		source: TypeTrimVersionHistory + "Task",
	}
}

// Execute implements Task.
func (t *TrimVersionHistoryTask) Execute(ctx context.Context, info TaskInfo) string {
	return t.Run(ctx, info).Message
}

// Run implements Task.
func (t *TrimVersionHistoryTask) Run(ctx context.Context, info TaskInfo) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = failure(ctx, t.events, t.source, recovered(r))
		}
	}()

	sites, err := t.sites.Sites(ctx)
	if err != nil {
		return failure(ctx, t.events, t.source, fmt.Errorf("failed to list sites: %w", err))
	}

	pages, err := t.trimPages(ctx, sites)
	if err != nil {
		return failure(ctx, t.events, t.source, err)
	}

	objects, err := t.trimObjects(ctx, sites)
	if err != nil {
		return failure(ctx, t.events, t.source, err)
	}

	msg := fmt.Sprintf("Processed %d pages and %d objects", pages, objects)
	t.events.LogInformation(ctx, t.source, CodeExecute, msg)
	return Result{Message: msg, Status: StatusSuccess}
}

func (t *TrimVersionHistoryTask) trimPages(ctx context.Context, sites []cms.Site) (int, error) {
	processed := 0
	for _, site := range sites {
		docs, err := t.store.Documents(ctx, site.ID)
		if err != nil {
			return processed, fmt.Errorf("failed to list documents of site %q: %w", site.Name, err)
		}
		for _, doc := range docs {
			if err := t.store.DeleteOlderPageVersions(ctx, doc.DocumentID, site.Name); err != nil {
				return processed, fmt.Errorf("failed to trim document %d: %w", doc.DocumentID, err)
			}
			processed++
		}
	}
	return processed, nil
}

func (t *TrimVersionHistoryTask) trimObjects(ctx context.Context, sites []cms.Site) (int, error) {
	names := make(map[int]string, len(sites))
	for _, site := range sites {
		names[site.ID] = site.Name
	}

	keys, err := t.store.LiveObjects(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list live objects: %w", err)
	}

	processed := 0
	for _, key := range keys {
		// Global objects and unknown sites resolve to "".
		if err := t.store.DeleteOlderObjectVersions(ctx, key.ObjectType, key.ObjectID, names[key.SiteID]); err != nil {
			return processed, fmt.Errorf("failed to trim %s %d: %w", key.ObjectType, key.ObjectID, err)
		}
		processed++
	}
	return processed, nil
}
