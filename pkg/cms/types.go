package cms

import (
	"context"
	"time"
)

// Site is a website hosted by the platform.
type Site struct {
	ID   int    `json:"site_id"`
	Name string `json:"site_name"`
}

// ObjectVersion is one historical record of a versioned object
// (a form, a media file, a custom table item and so on).
type ObjectVersion struct {
	VersionID     int    `json:"version_id"`
	ObjectType    string `json:"object_type"`
	ObjectID      int    `json:"object_id"`
	DisplayName   string `json:"display_name"`
	SiteID        int    `json:"site_id"` // 0 for global objects
	VersionNumber int    `json:"version_number"`

	ModifiedWhen time.Time `json:"modified_when"`

	// DeletedWhen is set on the record that represents the object in the
	// recycle bin. Nil for live objects.
	DeletedWhen *time.Time `json:"deleted_when,omitempty"`
}

// PageVersion is one historical record of a page (document).
type PageVersion struct {
	VersionHistoryID int       `json:"version_history_id"`
	DocumentID       int       `json:"document_id"`
	DocumentName     string    `json:"document_name"`
	AliasPath        string    `json:"alias_path"`
	SiteID           int       `json:"site_id"`
	ModifiedWhen     time.Time `json:"modified_when"`

	// DeletedWhen is set when the page sits in the recycle bin.
	DeletedWhen *time.Time `json:"deleted_when,omitempty"`
}

// Document is a live page in a site's content tree.
type Document struct {
	DocumentID int    `json:"document_id"`
	SiteID     int    `json:"site_id"`
	Name       string `json:"name"`
	AliasPath  string `json:"alias_path"`
	Published  bool   `json:"published"`
}

// ObjectKey identifies a versioned object regardless of how many
// historical records it has.
type ObjectKey struct {
	ObjectType string
	ObjectID   int
	SiteID     int
}

// Event types understood by the event log.
const (
	EventInformation = "INFORMATION"
	EventWarning     = "WARNING"
	EventError       = "ERROR"
)

// RequestContext carries the best-effort actor information attached to
// audit events. All fields are optional.
type RequestContext struct {
	URL         string
	IPAddress   string
	UserAgent   string
	Referrer    string
	SiteID      int
	MachineName string
}

// AuditEvent is a single event log entry.
type AuditEvent struct {
	ID          string
	EventType   string
	Source      string
	Code        string
	Description string
	Exception   string
	Context     RequestContext
	EventTime   time.Time
}

// TaskRun records the outcome of one scheduled task execution.
type TaskRun struct {
	ID         string
	TaskName   string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	Result     string
}

// HistoryStore is the platform's version-history store.
//
// Query methods never mutate state and return an empty slice, not an
// error, when nothing matches. Each destroy or delete call commits on its
// own; there is no transaction spanning several calls.
type HistoryStore interface {
	// ExpiredObjectVersions returns recycle-bin object records deleted
	// strictly before cutoff, newest deletion first.
	ExpiredObjectVersions(ctx context.Context, cutoff time.Time) ([]ObjectVersion, error)

	// RecycleBinPageVersions returns recycle-bin page records modified
	// strictly before cutoff, ordered by alias path.
	RecycleBinPageVersions(ctx context.Context, cutoff time.Time) ([]PageVersion, error)

	// DestroyObjectHistory permanently removes every historical record of
	// the given object.
	DestroyObjectHistory(ctx context.Context, objectType string, objectID int) error

	// DestroyPageHistory permanently removes every historical record of
	// the given document.
	DestroyPageHistory(ctx context.Context, documentID int) error

	// LiveObjects returns the distinct objects that have history and are
	// not in the recycle bin.
	LiveObjects(ctx context.Context) ([]ObjectKey, error)

	// Documents returns every document of a site.
	Documents(ctx context.Context, siteID int) ([]Document, error)

	// DeleteOlderObjectVersions trims an object's history to the history
	// length configured for siteName.
	DeleteOlderObjectVersions(ctx context.Context, objectType string, objectID int, siteName string) error

	// DeleteOlderPageVersions trims a document's history to the history
	// length configured for siteName.
	DeleteOlderPageVersions(ctx context.Context, documentID int, siteName string) error
}

// SiteDirectory lists the platform's sites.
type SiteDirectory interface {
	Sites(ctx context.Context) ([]Site, error)
}

// EventLog is the platform's event log service.
type EventLog interface {
	LogError(ctx context.Context, source, code, message string)
	LogException(ctx context.Context, source, code string, err error, message string)
	LogInformation(ctx context.Context, source, code, message string)
	LogAuditEvent(ctx context.Context, event AuditEvent)
}

// TaskRunRecorder persists task run outcomes.
type TaskRunRecorder interface {
	RecordTaskRun(ctx context.Context, run TaskRun) error
}
