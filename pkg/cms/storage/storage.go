package storage

import (
	"context"
	"fmt"

	"bqdigital/housekeeper/pkg/cms"
)

// Backend is everything a storage implementation provides: the host
// collaborators plus event and task-run persistence and seeding.
type Backend interface {
	cms.HistoryStore
	cms.SiteDirectory
	cms.TaskRunRecorder

	InsertEvent(ctx context.Context, event cms.AuditEvent) error
	RecentEvents(ctx context.Context, limit int) ([]cms.AuditEvent, error)
	LastTaskRun(ctx context.Context, taskName string) (*cms.TaskRun, error)

	CreateSite(ctx context.Context, name string) (cms.Site, error)
	CreateDocument(ctx context.Context, doc cms.Document) (cms.Document, error)
	AddObjectVersion(ctx context.Context, v cms.ObjectVersion) (cms.ObjectVersion, error)
	AddPageVersion(ctx context.Context, v cms.PageVersion) (cms.PageVersion, error)

	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Backend = (*SQLStorage)(nil)
	_ Backend = (*MemoryStorage)(nil)
)

// Open returns the backend named by backend: "memory" or one of the SQL
// driver names.
func Open(backend string, config *SQLConfig) (Backend, error) {
	switch backend {
	case "memory":
		history := DefaultHistoryPolicy()
		if config != nil {
			history = config.History
		}
		return NewMemoryStorage(history), nil
	case DriverSQLite, DriverSQLiteCGo, DriverPostgres:
		if config == nil {
			config = DefaultSQLConfig()
		}
		config.Driver = backend
		return NewSQLStorage(config)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", backend)
	}
}
