package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// sqliteSchema creates the host tables on SQLite.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sites (
    site_id INTEGER PRIMARY KEY,
    site_name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS documents (
    document_id INTEGER PRIMARY KEY,
    site_id INTEGER NOT NULL,
    document_name TEXT NOT NULL,
    alias_path TEXT NOT NULL,
    published BOOLEAN NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS object_version_history (
    version_id INTEGER PRIMARY KEY,
    object_type TEXT NOT NULL,
    object_id INTEGER NOT NULL,
    display_name TEXT NOT NULL,
    site_id INTEGER NOT NULL DEFAULT 0,
    version_number INTEGER NOT NULL,
    modified_when DATETIME NOT NULL,
    deleted_when DATETIME
);

CREATE TABLE IF NOT EXISTS page_version_history (
    version_history_id INTEGER PRIMARY KEY,
    document_id INTEGER NOT NULL,
    document_name TEXT NOT NULL,
    alias_path TEXT NOT NULL,
    site_id INTEGER NOT NULL,
    modified_when DATETIME NOT NULL,
    deleted_when DATETIME
);

CREATE TABLE IF NOT EXISTS event_log (
    event_id TEXT PRIMARY KEY,
    event_type TEXT NOT NULL,
    source TEXT NOT NULL,
    event_code TEXT NOT NULL,
    description TEXT NOT NULL,
    exception TEXT,
    url TEXT,
    ip_address TEXT,
    user_agent TEXT,
    referrer TEXT,
    site_id INTEGER NOT NULL DEFAULT 0,
    machine_name TEXT,
    event_time DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS task_runs (
    run_id TEXT PRIMARY KEY,
    task_name TEXT NOT NULL,
    started_at DATETIME NOT NULL,
    finished_at DATETIME NOT NULL,
    status TEXT NOT NULL,
    result TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_object_history_deleted ON object_version_history(deleted_when);
CREATE INDEX IF NOT EXISTS idx_object_history_object ON object_version_history(object_type, object_id);
CREATE INDEX IF NOT EXISTS idx_page_history_deleted ON page_version_history(deleted_when);
CREATE INDEX IF NOT EXISTS idx_page_history_document ON page_version_history(document_id);
CREATE INDEX IF NOT EXISTS idx_documents_site ON documents(site_id);
CREATE INDEX IF NOT EXISTS idx_task_runs_name ON task_runs(task_name, started_at);
`

// postgresSchema creates the host tables on PostgreSQL.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS sites (
    site_id SERIAL PRIMARY KEY,
    site_name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS documents (
    document_id SERIAL PRIMARY KEY,
    site_id INTEGER NOT NULL,
    document_name TEXT NOT NULL,
    alias_path TEXT NOT NULL,
    published BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS object_version_history (
    version_id SERIAL PRIMARY KEY,
    object_type TEXT NOT NULL,
    object_id INTEGER NOT NULL,
    display_name TEXT NOT NULL,
    site_id INTEGER NOT NULL DEFAULT 0,
    version_number INTEGER NOT NULL,
    modified_when TIMESTAMPTZ NOT NULL,
    deleted_when TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS page_version_history (
    version_history_id SERIAL PRIMARY KEY,
    document_id INTEGER NOT NULL,
    document_name TEXT NOT NULL,
    alias_path TEXT NOT NULL,
    site_id INTEGER NOT NULL,
    modified_when TIMESTAMPTZ NOT NULL,
    deleted_when TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS event_log (
    event_id TEXT PRIMARY KEY,
    event_type TEXT NOT NULL,
    source TEXT NOT NULL,
    event_code TEXT NOT NULL,
    description TEXT NOT NULL,
    exception TEXT,
    url TEXT,
    ip_address TEXT,
    user_agent TEXT,
    referrer TEXT,
    site_id INTEGER NOT NULL DEFAULT 0,
    machine_name TEXT,
    event_time TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS task_runs (
    run_id TEXT PRIMARY KEY,
    task_name TEXT NOT NULL,
    started_at TIMESTAMPTZ NOT NULL,
    finished_at TIMESTAMPTZ NOT NULL,
    status TEXT NOT NULL,
    result TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_object_history_deleted ON object_version_history(deleted_when);
CREATE INDEX IF NOT EXISTS idx_object_history_object ON object_version_history(object_type, object_id);
CREATE INDEX IF NOT EXISTS idx_page_history_deleted ON page_version_history(deleted_when);
CREATE INDEX IF NOT EXISTS idx_page_history_document ON page_version_history(document_id);
CREATE INDEX IF NOT EXISTS idx_documents_site ON documents(site_id);
CREATE INDEX IF NOT EXISTS idx_task_runs_name ON task_runs(task_name, started_at);
`

// insertSchemaVersion records the schema version. Works on both dialects.
const insertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES ($1, $2)
ON CONFLICT (version) DO NOTHING;
`

// getSchemaVersion retrieves the current schema version.
const getSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
