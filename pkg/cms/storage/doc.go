// Package storage provides history store backends for the maintenance
// tasks.
//
// # Backends
//
//   - SQLStorage: database/sql over SQLite (driver "sqlite", pure Go, or
//     "sqlite3", CGo) or PostgreSQL (driver "pgx").
//   - MemoryStorage: in-memory maps for tests and dry runs.
//
// Both implement cms.HistoryStore, cms.SiteDirectory and
// cms.TaskRunRecorder, and persist event log entries.
//
// # Basic Usage
//
//	store, err := storage.NewSQLStorage(&storage.SQLConfig{
//	    Driver:  storage.DriverSQLite,
//	    DSN:     "data/housekeeper.db",
//	    WALMode: true,
//	    History: storage.HistoryPolicy{KeepVersions: 20},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// # Timestamps
//
// All timestamps are written in UTC. SQLite stores them as text, so mixing
// time zones would break the range comparisons used by the recycle bin
// queries.
//
// # History length
//
// DeleteOlderObjectVersions and DeleteOlderPageVersions keep the newest
// HistoryPolicy.KeepFor(site) versions of an item and never touch
// recycle-bin records.
package storage
