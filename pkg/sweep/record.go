package sweep

import (
	"time"

	"bqdigital/housekeeper/pkg/cms"
)

// Kind discriminates the two classes of historical records.
type Kind string

const (
	KindObject Kind = "object"
	KindPage   Kind = "page"
)

// RecordRef identifies one destroy target.
type RecordRef struct {
	Kind        Kind
	ObjectType  string // objects only
	ID          int    // object id or document id
	DisplayName string
	AliasPath   string // pages only
	SiteID      int
}

type objectDedupKey struct {
	objectType  string
	objectID    int
	displayName string
	siteID      int
}

func objectRef(v cms.ObjectVersion) RecordRef {
	return RecordRef{
		Kind:        KindObject,
		ObjectType:  v.ObjectType,
		ID:          v.ObjectID,
		DisplayName: v.DisplayName,
		SiteID:      v.SiteID,
	}
}

func pageRef(v cms.PageVersion) RecordRef {
	return RecordRef{
		Kind:        KindPage,
		ID:          v.DocumentID,
		DisplayName: v.DocumentName,
		AliasPath:   v.AliasPath,
		SiteID:      v.SiteID,
	}
}

// Cutoff returns local midnight of now's day minus days.
func Cutoff(now time.Time, days int) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -days)
}
