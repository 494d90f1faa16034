package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"bqdigital/housekeeper/pkg/cms"
)

// MemoryStorage implements the history store, site directory and event
// persistence in memory. It is intended for tests and dry runs.
type MemoryStorage struct {
	mu sync.RWMutex

	sites     []cms.Site
	documents []cms.Document
	objects   []cms.ObjectVersion
	pages     []cms.PageVersion
	events    []cms.AuditEvent
	runs      []cms.TaskRun
	history   HistoryPolicy

	nextID int
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage(history HistoryPolicy) *MemoryStorage {
	return &MemoryStorage{history: history, nextID: 1}
}

func (s *MemoryStorage) id() int {
	id := s.nextID
	s.nextID++
	return id
}

// CreateSite adds a site.
func (s *MemoryStorage) CreateSite(ctx context.Context, name string) (cms.Site, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	site := cms.Site{ID: s.id(), Name: name}
	s.sites = append(s.sites, site)
	return site, nil
}

// CreateDocument adds a document.
func (s *MemoryStorage) CreateDocument(ctx context.Context, doc cms.Document) (cms.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc.DocumentID = s.id()
	s.documents = append(s.documents, doc)
	return doc, nil
}

// AddObjectVersion adds an object history record.
func (s *MemoryStorage) AddObjectVersion(ctx context.Context, v cms.ObjectVersion) (cms.ObjectVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v.VersionID = s.id()
	s.objects = append(s.objects, v)
	return v, nil
}

// AddPageVersion adds a page history record.
func (s *MemoryStorage) AddPageVersion(ctx context.Context, v cms.PageVersion) (cms.PageVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v.VersionHistoryID = s.id()
	s.pages = append(s.pages, v)
	return v, nil
}

// Sites implements cms.SiteDirectory.
func (s *MemoryStorage) Sites(ctx context.Context) ([]cms.Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sites := make([]cms.Site, len(s.sites))
	copy(sites, s.sites)
	return sites, nil
}

// ExpiredObjectVersions implements cms.HistoryStore.
func (s *MemoryStorage) ExpiredObjectVersions(ctx context.Context, cutoff time.Time) ([]cms.ObjectVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []cms.ObjectVersion{}
	for _, v := range s.objects {
		if v.DeletedWhen != nil && v.DeletedWhen.Before(cutoff) {
			results = append(results, v)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		if !results[i].DeletedWhen.Equal(*results[j].DeletedWhen) {
			return results[i].DeletedWhen.After(*results[j].DeletedWhen)
		}
		return results[i].VersionID > results[j].VersionID
	})
	return results, nil
}

// RecycleBinPageVersions implements cms.HistoryStore.
func (s *MemoryStorage) RecycleBinPageVersions(ctx context.Context, cutoff time.Time) ([]cms.PageVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []cms.PageVersion{}
	for _, v := range s.pages {
		if v.DeletedWhen != nil && v.ModifiedWhen.Before(cutoff) {
			results = append(results, v)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].AliasPath != results[j].AliasPath {
			return results[i].AliasPath < results[j].AliasPath
		}
		return results[i].VersionHistoryID < results[j].VersionHistoryID
	})
	return results, nil
}

// DestroyObjectHistory implements cms.HistoryStore.
func (s *MemoryStorage) DestroyObjectHistory(ctx context.Context, objectType string, objectID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.objects[:0]
	for _, v := range s.objects {
		if v.ObjectType == objectType && v.ObjectID == objectID {
			continue
		}
		kept = append(kept, v)
	}
	s.objects = kept
	return nil
}

// DestroyPageHistory implements cms.HistoryStore.
func (s *MemoryStorage) DestroyPageHistory(ctx context.Context, documentID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.pages[:0]
	for _, v := range s.pages {
		if v.DocumentID == documentID {
			continue
		}
		kept = append(kept, v)
	}
	s.pages = kept
	return nil
}

// LiveObjects implements cms.HistoryStore.
func (s *MemoryStorage) LiveObjects(ctx context.Context) ([]cms.ObjectKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[cms.ObjectKey]bool)
	keys := []cms.ObjectKey{}
	for _, v := range s.objects {
		if v.DeletedWhen != nil {
			continue
		}
		k := cms.ObjectKey{ObjectType: v.ObjectType, ObjectID: v.ObjectID, SiteID: v.SiteID}
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ObjectType != keys[j].ObjectType {
			return keys[i].ObjectType < keys[j].ObjectType
		}
		if keys[i].ObjectID != keys[j].ObjectID {
			return keys[i].ObjectID < keys[j].ObjectID
		}
		return keys[i].SiteID < keys[j].SiteID
	})
	return keys, nil
}

// Documents implements cms.HistoryStore.
func (s *MemoryStorage) Documents(ctx context.Context, siteID int) ([]cms.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := []cms.Document{}
	for _, d := range s.documents {
		if d.SiteID == siteID {
			docs = append(docs, d)
		}
	}
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].AliasPath < docs[j].AliasPath })
	return docs, nil
}

// DeleteOlderObjectVersions implements cms.HistoryStore.
func (s *MemoryStorage) DeleteOlderObjectVersions(ctx context.Context, objectType string, objectID int, siteName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var live []cms.ObjectVersion
	for _, v := range s.objects {
		if v.ObjectType == objectType && v.ObjectID == objectID && v.DeletedWhen == nil {
			live = append(live, v)
		}
	}
	sort.Slice(live, func(i, j int) bool {
		if live[i].VersionNumber != live[j].VersionNumber {
			return live[i].VersionNumber > live[j].VersionNumber
		}
		return live[i].VersionID > live[j].VersionID
	})

	keep := s.history.KeepFor(siteName)
	if len(live) <= keep {
		return nil
	}
	drop := make(map[int]bool)
	for _, v := range live[keep:] {
		drop[v.VersionID] = true
	}

	kept := s.objects[:0]
	for _, v := range s.objects {
		if !drop[v.VersionID] {
			kept = append(kept, v)
		}
	}
	s.objects = kept
	return nil
}

// DeleteOlderPageVersions implements cms.HistoryStore.
func (s *MemoryStorage) DeleteOlderPageVersions(ctx context.Context, documentID int, siteName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var live []cms.PageVersion
	for _, v := range s.pages {
		if v.DocumentID == documentID && v.DeletedWhen == nil {
			live = append(live, v)
		}
	}
	sort.Slice(live, func(i, j int) bool {
		if !live[i].ModifiedWhen.Equal(live[j].ModifiedWhen) {
			return live[i].ModifiedWhen.After(live[j].ModifiedWhen)
		}
		return live[i].VersionHistoryID > live[j].VersionHistoryID
	})

	keep := s.history.KeepFor(siteName)
	if len(live) <= keep {
		return nil
	}
	drop := make(map[int]bool)
	for _, v := range live[keep:] {
		drop[v.VersionHistoryID] = true
	}

	kept := s.pages[:0]
	for _, v := range s.pages {
		if !drop[v.VersionHistoryID] {
			kept = append(kept, v)
		}
	}
	s.pages = kept
	return nil
}

// InsertEvent stores an event log entry.
func (s *MemoryStorage) InsertEvent(ctx context.Context, event cms.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	s.events = append(s.events, event)
	return nil
}

// RecentEvents returns up to limit events, newest first.
func (s *MemoryStorage) RecentEvents(ctx context.Context, limit int) ([]cms.AuditEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := []cms.AuditEvent{}
	for i := len(s.events) - 1; i >= 0; i-- {
		if limit > 0 && len(events) == limit {
			break
		}
		events = append(events, s.events[i])
	}
	return events, nil
}

// RecordTaskRun implements cms.TaskRunRecorder.
func (s *MemoryStorage) RecordTaskRun(ctx context.Context, run cms.TaskRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	s.runs = append(s.runs, run)
	return nil
}

// LastTaskRun returns the most recent run of a task, or cms.ErrNotFound.
func (s *MemoryStorage) LastTaskRun(ctx context.Context, taskName string) (*cms.TaskRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.runs) - 1; i >= 0; i-- {
		if s.runs[i].TaskName == taskName {
			run := s.runs[i]
			return &run, nil
		}
	}
	return nil, cms.ErrNotFound
}

// ObjectVersions returns a copy of all object history records.
func (s *MemoryStorage) ObjectVersions() []cms.ObjectVersion {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]cms.ObjectVersion, len(s.objects))
	copy(out, s.objects)
	return out
}

// PageVersions returns a copy of all page history records.
func (s *MemoryStorage) PageVersions() []cms.PageVersion {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]cms.PageVersion, len(s.pages))
	copy(out, s.pages)
	return out
}

// Ping always succeeds.
func (s *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (s *MemoryStorage) Close() error {
	return nil
}
