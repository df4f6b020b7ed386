package db

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is the current structural version of the database, persisted
// in SQLite's user_version pragma. Bump it when adding version-gated tables.
const SchemaVersion = 2

// baseSchema holds the collection tables that have existed since version 1.
// Entity records are stored as JSON documents keyed by their string id, one
// table per collection. Creation is unconditional and idempotent.
const baseSchema = `
CREATE TABLE IF NOT EXISTS items (
    id   TEXT PRIMARY KEY,
    data TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS gallery (
    id   TEXT PRIMARY KEY,
    data TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS works (
    id   TEXT PRIMARY KEY,
    data TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS proxies (
    id   TEXT PRIMARY KEY,
    data TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS legacy_store (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// imagesSchema was introduced with schema version 2, when image payloads
// moved out of the entity documents into their own blob table.
const imagesSchema = `
CREATE TABLE IF NOT EXISTS images (
    id         TEXT PRIMARY KEY,
    data       BLOB NOT NULL,
    mime       TEXT NOT NULL DEFAULT 'image/png',
    created_at INTEGER NOT NULL
);
`

// EnsureSchema brings the database structure up to SchemaVersion. Collection
// tables are created unconditionally if missing; version-gated additions only
// run when the stored version is older than the version that introduced them.
// No data is ever deleted during an upgrade.
func EnsureSchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if version > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, SchemaVersion)
	}

	if _, err := db.Exec(baseSchema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	if version < 2 {
		if _, err := db.Exec(imagesSchema); err != nil {
			return fmt.Errorf("creating images table: %w", err)
		}
	}

	if version < SchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
			return fmt.Errorf("setting schema version: %w", err)
		}
	}

	return nil
}
