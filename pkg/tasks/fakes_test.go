package tasks

import (
	"context"
	"errors"
	"sync"
	"time"

	"bqdigital/housekeeper/pkg/cms"
)

type logEntry struct {
	level   string
	source  string
	code    string
	message string
	err     error
}

type fakeEvents struct {
	mu      sync.Mutex
	entries []logEntry
	audit   []cms.AuditEvent
}

func (e *fakeEvents) add(entry logEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.entries = append(e.entries, entry)
}

func (e *fakeEvents) LogError(ctx context.Context, source, code, message string) {
	e.add(logEntry{level: "error", source: source, code: code, message: message})
}

func (e *fakeEvents) LogException(ctx context.Context, source, code string, err error, message string) {
	e.add(logEntry{level: "exception", source: source, code: code, message: message, err: err})
}

func (e *fakeEvents) LogInformation(ctx context.Context, source, code, message string) {
	e.add(logEntry{level: "info", source: source, code: code, message: message})
}

func (e *fakeEvents) LogAuditEvent(ctx context.Context, event cms.AuditEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.audit = append(e.audit, event)
}

func (e *fakeEvents) last() logEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.entries) == 0 {
		return logEntry{}
	}
	return e.entries[len(e.entries)-1]
}

// failingStore wraps a store and fails selected calls.
type failingStore struct {
	cms.HistoryStore

	destroyFailOn int
	destroyCalls  int
	panicOnQuery  bool
	calls         int
}

var errStore = errors.New("sql: connection is already closed")

func (s *failingStore) ExpiredObjectVersions(ctx context.Context, cutoff time.Time) ([]cms.ObjectVersion, error) {
	s.calls++
	if s.panicOnQuery {
		panic("nil map access")
	}
	return s.HistoryStore.ExpiredObjectVersions(ctx, cutoff)
}

func (s *failingStore) RecycleBinPageVersions(ctx context.Context, cutoff time.Time) ([]cms.PageVersion, error) {
	s.calls++
	return s.HistoryStore.RecycleBinPageVersions(ctx, cutoff)
}

func (s *failingStore) DestroyObjectHistory(ctx context.Context, objectType string, objectID int) error {
	s.calls++
	s.destroyCalls++
	if s.destroyCalls == s.destroyFailOn {
		return errStore
	}
	return s.HistoryStore.DestroyObjectHistory(ctx, objectType, objectID)
}

func (s *failingStore) DestroyPageHistory(ctx context.Context, documentID int) error {
	s.calls++
	s.destroyCalls++
	if s.destroyCalls == s.destroyFailOn {
		return errStore
	}
	return s.HistoryStore.DestroyPageHistory(ctx, documentID)
}

type failingSites struct{}

func (failingSites) Sites(ctx context.Context) ([]cms.Site, error) { return nil, errStore }

func daysAgo(n int) *time.Time {
	t := time.Now().AddDate(0, 0, -n)
	return &t
}

// cancellingStore cancels the run context after the first destroy call,
// the way a disconnecting client or a shutdown signal would.
type cancellingStore struct {
	cms.HistoryStore

	cancel context.CancelFunc
	once   sync.Once
}

func (s *cancellingStore) DestroyObjectHistory(ctx context.Context, objectType string, objectID int) error {
	err := s.HistoryStore.DestroyObjectHistory(ctx, objectType, objectID)
	s.once.Do(s.cancel)
	return err
}
