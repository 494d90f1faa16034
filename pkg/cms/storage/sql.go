package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver ("pgx")
	_ "github.com/mattn/go-sqlite3"    // CGo SQLite driver ("sqlite3")
	_ "modernc.org/sqlite"             // Pure Go SQLite driver ("sqlite")

	"bqdigital/housekeeper/pkg/cms"
)

// Supported database/sql driver names.
const (
	DriverSQLite    = "sqlite"
	DriverSQLiteCGo = "sqlite3"
	DriverPostgres  = "pgx"
)

// SQLConfig contains configuration for the SQL storage backend.
type SQLConfig struct {
	// Driver is the database/sql driver name: "sqlite", "sqlite3" or "pgx".
	// Default: "sqlite"
	Driver string

	// DSN is the data source name. For SQLite drivers this is the database
	// file path.
	DSN string

	// MaxOpenConns is the maximum number of open connections.
	// SQLite backends are always limited to a single connection.
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging on SQLite.
	WALMode bool

	// BusyTimeout is how long SQLite waits on a locked database.
	BusyTimeout time.Duration

	// History controls how many versions DeleteOlder* keeps.
	History HistoryPolicy
}

// DefaultSQLConfig returns the default SQL storage configuration.
func DefaultSQLConfig() *SQLConfig {
	return &SQLConfig{
		Driver:       DriverSQLite,
		DSN:          "data/housekeeper.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
		History:      DefaultHistoryPolicy(),
	}
}

// SQLStorage implements cms.HistoryStore, cms.SiteDirectory and the event
// and task-run persistence on top of database/sql.
type SQLStorage struct {
	db      *sql.DB
	config  *SQLConfig
	history HistoryPolicy
	logger  *slog.Logger
}

// NewSQLStorage opens the database, creates the schema and verifies its
// version.
func NewSQLStorage(config *SQLConfig) (*SQLStorage, error) {
	if config == nil {
		config = DefaultSQLConfig()
	}
	if config.Driver == "" {
		config.Driver = DriverSQLite
	}

	logger := slog.Default().With("component", "cms.storage."+config.Driver)

	db, err := sql.Open(config.Driver, config.DSN)
	if err != nil {
		return nil, cms.NewStorageError(config.Driver, "open", err)
	}

	if config.isSQLite() {
		// One connection keeps SQLite writes serialized.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(config.MaxOpenConns)
		db.SetMaxIdleConns(config.MaxIdleConns)
	}

	s := &SQLStorage{
		db:      db,
		config:  config,
		history: config.History,
		logger:  logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("history store initialized",
		"driver", config.Driver,
		"wal_mode", config.WALMode && config.isSQLite(),
		"keep_versions", config.History.KeepVersions,
	)

	return s, nil
}

func (c *SQLConfig) isSQLite() bool {
	return c.Driver == DriverSQLite || c.Driver == DriverSQLiteCGo
}

// initialize sets pragmas, creates the schema and checks its version.
func (s *SQLStorage) initialize() error {
	schema := postgresSchema
	if s.config.isSQLite() {
		schema = sqliteSchema

		if s.config.WALMode {
			if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
				return s.storageError("enable_wal", err)
			}
		}
		busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
			return s.storageError("set_busy_timeout", err)
		}
	}

	if _, err := s.db.Exec(schema); err != nil {
		return s.storageError("create_schema", err)
	}

	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion, time.Now().UTC()); err != nil {
		return s.storageError("insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(getSchemaVersion).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return s.storageError("get_schema_version", err)
	}
	if version != SchemaVersion {
		return s.storageError("schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)
	return nil
}

// Ping verifies the database connection is alive.
func (s *SQLStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return s.storageError("ping", err)
	}
	return nil
}

// Close releases the database connection.
func (s *SQLStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return s.storageError("close", err)
	}
	s.logger.Info("history store closed")
	return nil
}

// Sites implements cms.SiteDirectory.
func (s *SQLStorage) Sites(ctx context.Context) ([]cms.Site, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT site_id, site_name FROM sites ORDER BY site_id`)
	if err != nil {
		return nil, s.storageError("query_sites", err)
	}
	defer rows.Close()

	sites := []cms.Site{}
	for rows.Next() {
		var site cms.Site
		if err := rows.Scan(&site.ID, &site.Name); err != nil {
			return nil, s.storageError("scan_site", err)
		}
		sites = append(sites, site)
	}
	if err := rows.Err(); err != nil {
		return nil, s.storageError("query_sites", err)
	}
	return sites, nil
}

// ExpiredObjectVersions implements cms.HistoryStore.
func (s *SQLStorage) ExpiredObjectVersions(ctx context.Context, cutoff time.Time) ([]cms.ObjectVersion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT version_id, object_type, object_id, display_name, site_id, version_number, modified_when, deleted_when
		FROM object_version_history
		WHERE deleted_when IS NOT NULL AND deleted_when < $1
		ORDER BY deleted_when DESC, version_id DESC`,
		cutoff.UTC(),
	)
	if err != nil {
		return nil, s.storageError("query_expired_objects", err)
	}
	defer rows.Close()

	versions := []cms.ObjectVersion{}
	for rows.Next() {
		v, err := scanObjectVersion(rows)
		if err != nil {
			return nil, s.storageError("scan_object_version", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, s.storageError("query_expired_objects", err)
	}
	return versions, nil
}

// RecycleBinPageVersions implements cms.HistoryStore.
func (s *SQLStorage) RecycleBinPageVersions(ctx context.Context, cutoff time.Time) ([]cms.PageVersion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT version_history_id, document_id, document_name, alias_path, site_id, modified_when, deleted_when
		FROM page_version_history
		WHERE deleted_when IS NOT NULL AND modified_when < $1
		ORDER BY alias_path ASC, version_history_id ASC`,
		cutoff.UTC(),
	)
	if err != nil {
		return nil, s.storageError("query_recycle_bin_pages", err)
	}
	defer rows.Close()

	versions := []cms.PageVersion{}
	for rows.Next() {
		v, err := scanPageVersion(rows)
		if err != nil {
			return nil, s.storageError("scan_page_version", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, s.storageError("query_recycle_bin_pages", err)
	}
	return versions, nil
}

// DestroyObjectHistory implements cms.HistoryStore.
func (s *SQLStorage) DestroyObjectHistory(ctx context.Context, objectType string, objectID int) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM object_version_history WHERE object_type = $1 AND object_id = $2`,
		objectType, objectID,
	)
	if err != nil {
		return s.storageError("destroy_object_history", err)
	}
	return nil
}

// DestroyPageHistory implements cms.HistoryStore.
func (s *SQLStorage) DestroyPageHistory(ctx context.Context, documentID int) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM page_version_history WHERE document_id = $1`,
		documentID,
	)
	if err != nil {
		return s.storageError("destroy_page_history", err)
	}
	return nil
}

// LiveObjects implements cms.HistoryStore.
func (s *SQLStorage) LiveObjects(ctx context.Context) ([]cms.ObjectKey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT object_type, object_id, site_id
		FROM object_version_history
		WHERE deleted_when IS NULL
		ORDER BY object_type, object_id, site_id`)
	if err != nil {
		return nil, s.storageError("query_live_objects", err)
	}
	defer rows.Close()

	keys := []cms.ObjectKey{}
	for rows.Next() {
		var k cms.ObjectKey
		if err := rows.Scan(&k.ObjectType, &k.ObjectID, &k.SiteID); err != nil {
			return nil, s.storageError("scan_object_key", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, s.storageError("query_live_objects", err)
	}
	return keys, nil
}

// Documents implements cms.HistoryStore.
func (s *SQLStorage) Documents(ctx context.Context, siteID int) ([]cms.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT document_id, site_id, document_name, alias_path, published
		FROM documents
		WHERE site_id = $1
		ORDER BY alias_path, document_id`,
		siteID,
	)
	if err != nil {
		return nil, s.storageError("query_documents", err)
	}
	defer rows.Close()

	docs := []cms.Document{}
	for rows.Next() {
		var d cms.Document
		if err := rows.Scan(&d.DocumentID, &d.SiteID, &d.Name, &d.AliasPath, &d.Published); err != nil {
			return nil, s.storageError("scan_document", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, s.storageError("query_documents", err)
	}
	return docs, nil
}

// DeleteOlderObjectVersions implements cms.HistoryStore. The newest
// versions by version number are kept; recycle-bin records are untouched.
func (s *SQLStorage) DeleteOlderObjectVersions(ctx context.Context, objectType string, objectID int, siteName string) error {
	keep := s.history.KeepFor(siteName)
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM object_version_history
		WHERE object_type = $1 AND object_id = $2 AND deleted_when IS NULL
		AND version_id NOT IN (
			SELECT version_id FROM object_version_history
			WHERE object_type = $3 AND object_id = $4 AND deleted_when IS NULL
			ORDER BY version_number DESC, version_id DESC
			LIMIT $5
		)`,
		objectType, objectID, objectType, objectID, keep,
	)
	if err != nil {
		return s.storageError("delete_older_object_versions", err)
	}
	return nil
}

// DeleteOlderPageVersions implements cms.HistoryStore.
func (s *SQLStorage) DeleteOlderPageVersions(ctx context.Context, documentID int, siteName string) error {
	keep := s.history.KeepFor(siteName)
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM page_version_history
		WHERE document_id = $1 AND deleted_when IS NULL
		AND version_history_id NOT IN (
			SELECT version_history_id FROM page_version_history
			WHERE document_id = $2 AND deleted_when IS NULL
			ORDER BY modified_when DESC, version_history_id DESC
			LIMIT $3
		)`,
		documentID, documentID, keep,
	)
	if err != nil {
		return s.storageError("delete_older_page_versions", err)
	}
	return nil
}

func (s *SQLStorage) storageError(operation string, err error) *cms.StorageError {
	return cms.NewStorageError(s.config.Driver, operation, err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObjectVersion(row rowScanner) (cms.ObjectVersion, error) {
	var v cms.ObjectVersion
	var deleted sql.NullTime
	err := row.Scan(&v.VersionID, &v.ObjectType, &v.ObjectID, &v.DisplayName, &v.SiteID,
		&v.VersionNumber, &v.ModifiedWhen, &deleted)
	if err != nil {
		return v, err
	}
	if deleted.Valid {
		t := deleted.Time
		v.DeletedWhen = &t
	}
	return v, nil
}

func scanPageVersion(row rowScanner) (cms.PageVersion, error) {
	var v cms.PageVersion
	var deleted sql.NullTime
	err := row.Scan(&v.VersionHistoryID, &v.DocumentID, &v.DocumentName, &v.AliasPath, &v.SiteID,
		&v.ModifiedWhen, &deleted)
	if err != nil {
		return v, err
	}
	if deleted.Valid {
		t := deleted.Time
		v.DeletedWhen = &t
	}
	return v, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
