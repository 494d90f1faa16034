package sweep

import (
	"context"
	"errors"
	"sync"
	"time"

	"bqdigital/housekeeper/pkg/cms"
)

type fakeStore struct {
	objects  []cms.ObjectVersion
	pages    []cms.PageVersion
	queryErr error

	// failOn makes the n-th destroy call (1-based) fail.
	failOn int

	destroyedObjects []string
	destroyedPages   []int
	calls            int
}

var errDestroy = errors.New("destroy failed: database is locked")

func (s *fakeStore) ExpiredObjectVersions(ctx context.Context, cutoff time.Time) ([]cms.ObjectVersion, error) {
	s.calls++
	return s.objects, s.queryErr
}

func (s *fakeStore) RecycleBinPageVersions(ctx context.Context, cutoff time.Time) ([]cms.PageVersion, error) {
	s.calls++
	return s.pages, s.queryErr
}

func (s *fakeStore) destroyCall() error {
	s.calls++
	if s.failOn > 0 && len(s.destroyedObjects)+len(s.destroyedPages)+1 == s.failOn {
		return errDestroy
	}
	return nil
}

func (s *fakeStore) DestroyObjectHistory(ctx context.Context, objectType string, objectID int) error {
	if err := s.destroyCall(); err != nil {
		return err
	}
	s.destroyedObjects = append(s.destroyedObjects, objectType)
	return nil
}

func (s *fakeStore) DestroyPageHistory(ctx context.Context, documentID int) error {
	if err := s.destroyCall(); err != nil {
		return err
	}
	s.destroyedPages = append(s.destroyedPages, documentID)
	return nil
}

func (s *fakeStore) LiveObjects(ctx context.Context) ([]cms.ObjectKey, error) { return nil, nil }

func (s *fakeStore) Documents(ctx context.Context, siteID int) ([]cms.Document, error) {
	return nil, nil
}

func (s *fakeStore) DeleteOlderObjectVersions(ctx context.Context, objectType string, objectID int, siteName string) error {
	return nil
}

func (s *fakeStore) DeleteOlderPageVersions(ctx context.Context, documentID int, siteName string) error {
	return nil
}

type fakeEvents struct {
	mu    sync.Mutex
	info  []string
	audit []cms.AuditEvent
}

func (e *fakeEvents) LogError(ctx context.Context, source, code, message string) {}

func (e *fakeEvents) LogException(ctx context.Context, source, code string, err error, message string) {
}

func (e *fakeEvents) LogInformation(ctx context.Context, source, code, message string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.info = append(e.info, message)
}

func (e *fakeEvents) LogAuditEvent(ctx context.Context, event cms.AuditEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.audit = append(e.audit, event)
}

type countingRecorder map[string]int

func (r countingRecorder) RecordDestroyed(kind string) { r[kind]++ }

func at(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 12, 0, 0, 0, time.Local)
	return &t
}
