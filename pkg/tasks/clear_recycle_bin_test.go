package tasks

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bqdigital/housekeeper/pkg/cms"
	"bqdigital/housekeeper/pkg/cms/storage"
	"bqdigital/housekeeper/pkg/sweep"
)

func seededStore(t *testing.T) *storage.MemoryStorage {
	t.Helper()
	ctx := context.Background()
	s := storage.NewMemoryStorage(storage.DefaultHistoryPolicy())

	objects := []cms.ObjectVersion{
		{ObjectType: "cms.form", ObjectID: 1, DisplayName: "Contact", DeletedWhen: daysAgo(40)},
		{ObjectType: "cms.form", ObjectID: 1, DisplayName: "Contact", DeletedWhen: daysAgo(35)},
		{ObjectType: "cms.form", ObjectID: 2, DisplayName: "Survey", DeletedWhen: daysAgo(31)},
		{ObjectType: "cms.form", ObjectID: 3, DisplayName: "Recent", DeletedWhen: daysAgo(1)},
	}
	for _, v := range objects {
		v.ModifiedWhen = *daysAgo(50)
		if _, err := s.AddObjectVersion(ctx, v); err != nil {
			t.Fatalf("AddObjectVersion() failed: %v", err)
		}
	}
	for i, path := range []string{"/b", "/a", "/c"} {
		_, err := s.AddPageVersion(ctx, cms.PageVersion{
			DocumentID:   10 + i,
			DocumentName: strings.ToUpper(path[1:]),
			AliasPath:    path,
			SiteID:       1,
			ModifiedWhen: *daysAgo(60),
			DeletedWhen:  daysAgo(45),
		})
		if err != nil {
			t.Fatalf("AddPageVersion() failed: %v", err)
		}
	}
	return s
}

func TestClearRecycleBinTask_Success(t *testing.T) {
	store := seededStore(t)
	events := &fakeEvents{}
	task := NewClearRecycleBinTask(Deps{Store: store, Events: events})

	data := `{"ClearObjects": true, "ClearObjectsOlderThanDays": 30, "ClearPages": true, "ClearPagesOlderThanDays": 30}`
	got := task.Execute(context.Background(), TaskInfo{Name: "clear", Data: data})

	want := "Cleared 2 objects and 3 pages from the recycle bin."
	if got != want {
		t.Fatalf("Execute() = %q, want %q", got, want)
	}
	if len(store.ObjectVersions()) != 1 {
		t.Errorf("expected only the recent object to survive, got %d records", len(store.ObjectVersions()))
	}
	if len(store.PageVersions()) != 0 {
		t.Errorf("expected all pages destroyed, got %d", len(store.PageVersions()))
	}

	// Pages are swept before objects, in alias path order.
	wantAudit := []string{
		"Document 'A (/a)' has been destroyed.",
		"Document 'B (/b)' has been destroyed.",
		"Document 'C (/c)' has been destroyed.",
		"Object 'Survey' has been destroyed.",
		"Object 'Contact' has been destroyed.",
	}
	if len(events.audit) != len(wantAudit) {
		t.Fatalf("expected %d audit events, got %d", len(wantAudit), len(events.audit))
	}
	for i, desc := range wantAudit {
		if events.audit[i].Description != desc {
			t.Errorf("audit %d: expected %q, got %q", i, desc, events.audit[i].Description)
		}
	}

	last := events.last()
	if last.level != "info" || last.code != "EXECUTE" || last.message != want {
		t.Errorf("expected summary info entry, got %+v", last)
	}
}

func TestClearRecycleBinTask_NothingEnabled(t *testing.T) {
	store := &failingStore{HistoryStore: seededStore(t)}
	task := NewClearRecycleBinTask(Deps{Store: store, Events: &fakeEvents{}})

	result := task.Run(context.Background(), TaskInfo{Data: `{"ClearObjects": false, "ClearPages": false}`})

	if result.Message != "Cleared 0 objects and 0 pages from the recycle bin." {
		t.Errorf("unexpected message %q", result.Message)
	}
	if result.Status != StatusSuccess {
		t.Errorf("expected success, got %s", result.Status)
	}
	if store.calls != 0 {
		t.Errorf("expected no store calls, got %d", store.calls)
	}
}

func TestClearRecycleBinTask_ConfigErrors(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		contains  string
		wantLevel string
	}{
		{
			name:      "negative object days",
			data:      `{"ClearObjects": true, "ClearObjectsOlderThanDays": -1}`,
			contains:  "ClearObjectsOlderThanDays",
			wantLevel: "error",
		},
		{
			name:      "empty payload",
			data:      "",
			contains:  `"ClearPagesOlderThanDays": 0`,
			wantLevel: "error",
		},
		{
			name:      "malformed payload",
			data:      "{not json",
			contains:  "Failed to parse task data",
			wantLevel: "exception",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &failingStore{HistoryStore: seededStore(t)}
			events := &fakeEvents{}
			task := NewClearRecycleBinTask(Deps{Store: store, Events: events})

			result := task.Run(context.Background(), TaskInfo{Data: tt.data})

			if result.Status != StatusConfigError {
				t.Errorf("expected config error status, got %s", result.Status)
			}
			if !strings.Contains(result.Message, tt.contains) {
				t.Errorf("expected message to contain %q, got %q", tt.contains, result.Message)
			}
			var cfgErr *sweep.ConfigError
			if !errors.As(result.Err, &cfgErr) {
				t.Errorf("expected *sweep.ConfigError, got %v", result.Err)
			}
			if store.calls != 0 {
				t.Errorf("expected zero store calls, got %d", store.calls)
			}

			last := events.last()
			if last.code != "CONFIG" || last.level != tt.wantLevel {
				t.Errorf("expected %s CONFIG entry, got %+v", tt.wantLevel, last)
			}
			if last.message != result.Message {
				t.Errorf("logged message differs from returned message")
			}
		})
	}
}

func TestClearRecycleBinTask_DestroyFailure(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStorage(storage.DefaultHistoryPolicy())
	for i := 1; i <= 3; i++ {
		_, _ = mem.AddObjectVersion(ctx, cms.ObjectVersion{
			ObjectType: "cms.form", ObjectID: i, DisplayName: "Form", DeletedWhen: daysAgo(10 + i),
		})
	}
	store := &failingStore{HistoryStore: mem, destroyFailOn: 2}
	events := &fakeEvents{}
	task := NewClearRecycleBinTask(Deps{Store: store, Events: events})

	result := task.Run(ctx, TaskInfo{Data: `{"ClearObjects": true, "ClearObjectsOlderThanDays": 1}`})

	if result.Message != ExecuteFailedMessage {
		t.Errorf("expected generic message, got %q", result.Message)
	}
	if result.Status != StatusFailed {
		t.Errorf("expected failed status, got %s", result.Status)
	}
	if len(events.audit) != 1 {
		t.Errorf("expected exactly 1 audit event, got %d", len(events.audit))
	}

	last := events.last()
	if last.level != "exception" || last.code != "EXECUTE" {
		t.Fatalf("expected EXECUTE exception entry, got %+v", last)
	}
	if !errors.Is(last.err, errStore) {
		t.Errorf("expected logged exception to carry the store error, got %v", last.err)
	}
	var execErr *sweep.ExecutionError
	if !errors.As(last.err, &execErr) || execErr.Processed != 1 {
		t.Errorf("expected ExecutionError with 1 processed, got %v", last.err)
	}
	if len(mem.ObjectVersions()) != 2 {
		t.Errorf("expected first deletion committed and the rest kept, got %d records", len(mem.ObjectVersions()))
	}
}

func TestClearRecycleBinTask_PanicIsContained(t *testing.T) {
	store := &failingStore{HistoryStore: seededStore(t), panicOnQuery: true}
	events := &fakeEvents{}
	task := NewClearRecycleBinTask(Deps{Store: store, Events: events})

	got := task.Execute(context.Background(), TaskInfo{Data: `{"ClearObjects": true}`})

	if got != ExecuteFailedMessage {
		t.Errorf("expected generic message, got %q", got)
	}
	if last := events.last(); last.code != "EXECUTE" || last.err == nil {
		t.Errorf("expected panic logged as EXECUTE exception, got %+v", last)
	}
}
