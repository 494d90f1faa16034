package storage

import (
	"context"
	"testing"

	"bqdigital/housekeeper/pkg/cms"
)

func TestMemoryStorage_ExpiredObjectVersions(t *testing.T) {
	s := NewMemoryStorage(DefaultHistoryPolicy())
	ctx := context.Background()

	_, _ = s.AddObjectVersion(ctx, cms.ObjectVersion{ObjectType: "cms.form", ObjectID: 1, DeletedWhen: daysAgo(30)})
	_, _ = s.AddObjectVersion(ctx, cms.ObjectVersion{ObjectType: "cms.form", ObjectID: 2, DeletedWhen: daysAgo(10)})
	_, _ = s.AddObjectVersion(ctx, cms.ObjectVersion{ObjectType: "cms.form", ObjectID: 3, DeletedWhen: daysAgo(1)})
	_, _ = s.AddObjectVersion(ctx, cms.ObjectVersion{ObjectType: "cms.form", ObjectID: 4})

	got, err := s.ExpiredObjectVersions(ctx, *daysAgo(5))
	if err != nil {
		t.Fatalf("ExpiredObjectVersions() failed: %v", err)
	}
	if len(got) != 2 || got[0].ObjectID != 2 || got[1].ObjectID != 1 {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestMemoryStorage_DeleteOlderObjectVersions(t *testing.T) {
	s := NewMemoryStorage(HistoryPolicy{KeepVersions: 5, SiteKeepVersions: map[string]int{"small": 1}})
	ctx := context.Background()

	for n := 1; n <= 4; n++ {
		_, _ = s.AddObjectVersion(ctx, cms.ObjectVersion{ObjectType: "cms.form", ObjectID: 1, VersionNumber: n})
	}

	if err := s.DeleteOlderObjectVersions(ctx, "cms.form", 1, "main"); err != nil {
		t.Fatalf("DeleteOlderObjectVersions() failed: %v", err)
	}
	if n := len(s.ObjectVersions()); n != 4 {
		t.Errorf("expected all 4 versions kept under the global limit, got %d", n)
	}

	if err := s.DeleteOlderObjectVersions(ctx, "cms.form", 1, "small"); err != nil {
		t.Fatalf("DeleteOlderObjectVersions() failed: %v", err)
	}
	left := s.ObjectVersions()
	if len(left) != 1 || left[0].VersionNumber != 4 {
		t.Errorf("expected only version 4 to remain, got %+v", left)
	}
}

func TestHistoryPolicy_KeepFor(t *testing.T) {
	tests := []struct {
		name   string
		policy HistoryPolicy
		site   string
		want   int
	}{
		{"global value", HistoryPolicy{KeepVersions: 20}, "main", 20},
		{"site override", HistoryPolicy{KeepVersions: 20, SiteKeepVersions: map[string]int{"main": 3}}, "main", 3},
		{"global object ignores overrides", HistoryPolicy{KeepVersions: 20, SiteKeepVersions: map[string]int{"": 3}}, "", 20},
		{"never below one", HistoryPolicy{KeepVersions: 0}, "main", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.KeepFor(tt.site); got != tt.want {
				t.Errorf("KeepFor(%q) = %d, want %d", tt.site, got, tt.want)
			}
		})
	}
}
