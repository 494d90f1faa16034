package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"bqdigital/housekeeper/pkg/cms"
)

// Locator finds expired recycle-bin records. It never mutates the store.
type Locator struct {
	store  cms.HistoryStore
	logger *slog.Logger
}

// NewLocator creates a Locator reading from store.
func NewLocator(store cms.HistoryStore, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{
		store:  store,
		logger: logger.With("component", "sweep.locator"),
	}
}

// ExpiredObjects returns one ref per distinct object deleted before cutoff,
// most recently deleted first.
func (l *Locator) ExpiredObjects(ctx context.Context, cutoff time.Time) ([]RecordRef, error) {
	versions, err := l.store.ExpiredObjectVersions(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired objects: %w", err)
	}

	// Newest deletion first, whatever order the backend used for ties.
	rows := make([]cms.ObjectVersion, 0, len(versions))
	for _, v := range versions {
		if v.DeletedWhen != nil && v.DeletedWhen.Before(cutoff) {
			rows = append(rows, v)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].DeletedWhen.After(*rows[j].DeletedWhen)
	})

	seen := make(map[objectDedupKey]struct{}, len(rows))
	refs := make([]RecordRef, 0, len(rows))
	for _, v := range rows {
		key := objectDedupKey{v.ObjectType, v.ObjectID, v.DisplayName, v.SiteID}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		refs = append(refs, objectRef(v))
	}

	l.logger.Debug("located expired objects",
		"cutoff", cutoff,
		"rows", len(versions),
		"targets", len(refs),
	)
	return refs, nil
}

// ExpiredPages returns one ref per recycle-bin page record modified before
// cutoff, in ascending alias path order.
func (l *Locator) ExpiredPages(ctx context.Context, cutoff time.Time) ([]RecordRef, error) {
	versions, err := l.store.RecycleBinPageVersions(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired pages: %w", err)
	}

	rows := make([]cms.PageVersion, len(versions))
	copy(rows, versions)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].AliasPath < rows[j].AliasPath
	})

	refs := make([]RecordRef, 0, len(rows))
	for _, v := range rows {
		refs = append(refs, pageRef(v))
	}

	l.logger.Debug("located expired pages",
		"cutoff", cutoff,
		"targets", len(refs),
	)
	return refs, nil
}
