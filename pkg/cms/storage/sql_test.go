package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"bqdigital/housekeeper/pkg/cms"
)

func newTestSQLStorage(t *testing.T, keep int) *SQLStorage {
	t.Helper()

	config := DefaultSQLConfig()
	config.DSN = filepath.Join(t.TempDir(), "test.db")
	config.History = HistoryPolicy{KeepVersions: keep}

	s, err := NewSQLStorage(config)
	if err != nil {
		t.Fatalf("NewSQLStorage() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func daysAgo(n int) *time.Time {
	t := time.Now().AddDate(0, 0, -n).Truncate(time.Second)
	return &t
}

func TestSQLStorage_ExpiredObjectVersions(t *testing.T) {
	s := newTestSQLStorage(t, 10)
	ctx := context.Background()

	versions := []cms.ObjectVersion{
		{ObjectType: "cms.form", ObjectID: 1, DisplayName: "Contact", VersionNumber: 1, ModifiedWhen: *daysAgo(40), DeletedWhen: daysAgo(30)},
		{ObjectType: "cms.form", ObjectID: 2, DisplayName: "Survey", VersionNumber: 1, ModifiedWhen: *daysAgo(40), DeletedWhen: daysAgo(20)},
		{ObjectType: "cms.form", ObjectID: 3, DisplayName: "Recent", VersionNumber: 1, ModifiedWhen: *daysAgo(2), DeletedWhen: daysAgo(1)},
		{ObjectType: "cms.form", ObjectID: 4, DisplayName: "Live", VersionNumber: 1, ModifiedWhen: *daysAgo(90)},
	}
	for _, v := range versions {
		if _, err := s.AddObjectVersion(ctx, v); err != nil {
			t.Fatalf("AddObjectVersion() failed: %v", err)
		}
	}

	got, err := s.ExpiredObjectVersions(ctx, *daysAgo(7))
	if err != nil {
		t.Fatalf("ExpiredObjectVersions() failed: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 expired versions, got %d", len(got))
	}
	// Newest deletion first
	if got[0].ObjectID != 2 || got[1].ObjectID != 1 {
		t.Errorf("expected order [2 1], got [%d %d]", got[0].ObjectID, got[1].ObjectID)
	}
	if got[0].DeletedWhen == nil {
		t.Error("expected DeletedWhen to be set")
	}
}

func TestSQLStorage_RecycleBinPageVersions_OrderedByAliasPath(t *testing.T) {
	s := newTestSQLStorage(t, 10)
	ctx := context.Background()

	for i, path := range []string{"/b", "/a", "/c"} {
		_, err := s.AddPageVersion(ctx, cms.PageVersion{
			DocumentID:   i + 1,
			DocumentName: "Page " + path,
			AliasPath:    path,
			SiteID:       1,
			ModifiedWhen: *daysAgo(30),
			DeletedWhen:  daysAgo(30),
		})
		if err != nil {
			t.Fatalf("AddPageVersion() failed: %v", err)
		}
	}
	// Not in the recycle bin
	_, _ = s.AddPageVersion(ctx, cms.PageVersion{DocumentID: 9, AliasPath: "/0", SiteID: 1, ModifiedWhen: *daysAgo(30)})

	got, err := s.RecycleBinPageVersions(ctx, *daysAgo(7))
	if err != nil {
		t.Fatalf("RecycleBinPageVersions() failed: %v", err)
	}

	want := []string{"/a", "/b", "/c"}
	if len(got) != len(want) {
		t.Fatalf("expected %d pages, got %d", len(want), len(got))
	}
	for i, p := range want {
		if got[i].AliasPath != p {
			t.Errorf("position %d: expected %s, got %s", i, p, got[i].AliasPath)
		}
	}
}

func TestSQLStorage_NoMatches(t *testing.T) {
	s := newTestSQLStorage(t, 10)
	ctx := context.Background()

	objects, err := s.ExpiredObjectVersions(ctx, time.Now())
	if err != nil {
		t.Fatalf("ExpiredObjectVersions() failed: %v", err)
	}
	if objects == nil || len(objects) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", objects)
	}

	pages, err := s.RecycleBinPageVersions(ctx, time.Now())
	if err != nil {
		t.Fatalf("RecycleBinPageVersions() failed: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("expected no pages, got %d", len(pages))
	}
}

func TestSQLStorage_DestroyHistory(t *testing.T) {
	s := newTestSQLStorage(t, 10)
	ctx := context.Background()

	for n := 1; n <= 3; n++ {
		_, _ = s.AddObjectVersion(ctx, cms.ObjectVersion{ObjectType: "cms.form", ObjectID: 7, DisplayName: "F", VersionNumber: n, ModifiedWhen: *daysAgo(10)})
		_, _ = s.AddPageVersion(ctx, cms.PageVersion{DocumentID: 5, AliasPath: "/p", SiteID: 1, ModifiedWhen: *daysAgo(10 - n)})
	}

	if err := s.DestroyObjectHistory(ctx, "cms.form", 7); err != nil {
		t.Fatalf("DestroyObjectHistory() failed: %v", err)
	}
	if err := s.DestroyPageHistory(ctx, 5); err != nil {
		t.Fatalf("DestroyPageHistory() failed: %v", err)
	}

	if n, _ := s.CountObjectVersions(ctx, "cms.form", 7); n != 0 {
		t.Errorf("expected object history destroyed, %d records left", n)
	}
	if n, _ := s.CountPageVersions(ctx, 5); n != 0 {
		t.Errorf("expected page history destroyed, %d records left", n)
	}

	// Destroying again is not an error
	if err := s.DestroyObjectHistory(ctx, "cms.form", 7); err != nil {
		t.Errorf("second DestroyObjectHistory() failed: %v", err)
	}
}

func TestSQLStorage_DeleteOlderVersions(t *testing.T) {
	s := newTestSQLStorage(t, 2)
	ctx := context.Background()

	for n := 1; n <= 5; n++ {
		_, _ = s.AddObjectVersion(ctx, cms.ObjectVersion{ObjectType: "cms.form", ObjectID: 1, DisplayName: "F", VersionNumber: n, ModifiedWhen: *daysAgo(10 - n)})
		_, _ = s.AddPageVersion(ctx, cms.PageVersion{DocumentID: 3, AliasPath: "/home", SiteID: 1, ModifiedWhen: *daysAgo(10 - n)})
	}
	// A recycle-bin record of another object must survive
	_, _ = s.AddObjectVersion(ctx, cms.ObjectVersion{ObjectType: "cms.form", ObjectID: 2, DisplayName: "G", VersionNumber: 1, ModifiedWhen: *daysAgo(1), DeletedWhen: daysAgo(1)})

	if err := s.DeleteOlderObjectVersions(ctx, "cms.form", 1, "main"); err != nil {
		t.Fatalf("DeleteOlderObjectVersions() failed: %v", err)
	}
	if err := s.DeleteOlderPageVersions(ctx, 3, "main"); err != nil {
		t.Fatalf("DeleteOlderPageVersions() failed: %v", err)
	}

	if n, _ := s.CountObjectVersions(ctx, "cms.form", 1); n != 2 {
		t.Errorf("expected 2 object versions kept, got %d", n)
	}
	if n, _ := s.CountPageVersions(ctx, 3); n != 2 {
		t.Errorf("expected 2 page versions kept, got %d", n)
	}
	if n, _ := s.CountObjectVersions(ctx, "cms.form", 2); n != 1 {
		t.Errorf("expected recycle-bin record untouched, got %d", n)
	}
}

func TestSQLStorage_SitesDocumentsAndLiveObjects(t *testing.T) {
	s := newTestSQLStorage(t, 10)
	ctx := context.Background()

	main, err := s.CreateSite(ctx, "main")
	if err != nil {
		t.Fatalf("CreateSite() failed: %v", err)
	}
	other, _ := s.CreateSite(ctx, "other")

	_, _ = s.CreateDocument(ctx, cms.Document{SiteID: main.ID, Name: "Home", AliasPath: "/home"})
	_, _ = s.CreateDocument(ctx, cms.Document{SiteID: main.ID, Name: "About", AliasPath: "/about"})
	_, _ = s.CreateDocument(ctx, cms.Document{SiteID: other.ID, Name: "Home", AliasPath: "/home"})

	sites, err := s.Sites(ctx)
	if err != nil {
		t.Fatalf("Sites() failed: %v", err)
	}
	if len(sites) != 2 || sites[0].Name != "main" {
		t.Errorf("unexpected sites: %+v", sites)
	}

	docs, err := s.Documents(ctx, main.ID)
	if err != nil {
		t.Fatalf("Documents() failed: %v", err)
	}
	if len(docs) != 2 || docs[0].AliasPath != "/about" {
		t.Errorf("unexpected documents: %+v", docs)
	}

	for n := 1; n <= 3; n++ {
		_, _ = s.AddObjectVersion(ctx, cms.ObjectVersion{ObjectType: "cms.form", ObjectID: 1, DisplayName: "F", SiteID: main.ID, VersionNumber: n, ModifiedWhen: *daysAgo(n)})
	}
	_, _ = s.AddObjectVersion(ctx, cms.ObjectVersion{ObjectType: "cms.form", ObjectID: 2, DisplayName: "G", VersionNumber: 1, ModifiedWhen: *daysAgo(3), DeletedWhen: daysAgo(1)})

	keys, err := s.LiveObjects(ctx)
	if err != nil {
		t.Fatalf("LiveObjects() failed: %v", err)
	}
	if len(keys) != 1 || keys[0].ObjectID != 1 || keys[0].SiteID != main.ID {
		t.Errorf("unexpected live objects: %+v", keys)
	}
}

func TestSQLStorage_EventsAndTaskRuns(t *testing.T) {
	s := newTestSQLStorage(t, 10)
	ctx := context.Background()

	err := s.InsertEvent(ctx, cms.AuditEvent{
		EventType:   cms.EventInformation,
		Source:      "Objects",
		Code:        "DESTROYOBJECT",
		Description: "Object 'Contact' has been destroyed.",
		Context:     cms.RequestContext{MachineName: "web-1"},
	})
	if err != nil {
		t.Fatalf("InsertEvent() failed: %v", err)
	}

	events, err := s.RecentEvents(ctx, 10)
	if err != nil {
		t.Fatalf("RecentEvents() failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID == "" || events[0].Code != "DESTROYOBJECT" || events[0].Context.MachineName != "web-1" {
		t.Errorf("unexpected event: %+v", events[0])
	}

	if _, err := s.LastTaskRun(ctx, "clear-recycle-bin"); !errors.Is(err, cms.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	now := time.Now()
	run := cms.TaskRun{TaskName: "clear-recycle-bin", StartedAt: now, FinishedAt: now.Add(time.Second), Status: "success", Result: "ok"}
	if err := s.RecordTaskRun(ctx, run); err != nil {
		t.Fatalf("RecordTaskRun() failed: %v", err)
	}

	last, err := s.LastTaskRun(ctx, "clear-recycle-bin")
	if err != nil {
		t.Fatalf("LastTaskRun() failed: %v", err)
	}
	if last.Status != "success" || last.Result != "ok" || last.ID == "" {
		t.Errorf("unexpected task run: %+v", last)
	}
}

func TestOpen_UnsupportedBackend(t *testing.T) {
	if _, err := Open("oracle", nil); err == nil {
		t.Error("expected error for unsupported backend")
	}
}
