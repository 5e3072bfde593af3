package search

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// schemaVersion is stored in PRAGMA user_version. An index written with
// another version is dropped and recreated; there are no migrations.
const schemaVersion = 2

const dropSchema = `
DROP TRIGGER IF EXISTS records_ad;
DROP TRIGGER IF EXISTS records_ai;
DROP TABLE IF EXISTS records_fts;
DROP TABLE IF EXISTS records;
`

const schema = `
CREATE TABLE records (
	id INTEGER PRIMARY KEY,
	module TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT,
	location TEXT NOT NULL,
	search_keys TEXT NOT NULL
);

CREATE INDEX records_module ON records(module);

CREATE VIRTUAL TABLE records_fts USING fts5(
	name, search_keys,
	content='records',
	content_rowid='id'
);

CREATE TRIGGER records_ai AFTER INSERT ON records BEGIN
	INSERT INTO records_fts(rowid, name, search_keys)
	VALUES (new.id, new.name, new.search_keys);
END;

CREATE TRIGGER records_ad AFTER DELETE ON records BEGIN
	INSERT INTO records_fts(records_fts, rowid, name, search_keys)
	VALUES ('delete', old.id, old.name, old.search_keys);
END;
`

// ensureSchema creates the tables unless db already holds an index of the
// current schema version. Records of existing modules are kept.
func ensureSchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version == schemaVersion {
		return nil
	}
	stmts := dropSchema + schema + fmt.Sprintf("PRAGMA user_version = %d;", schemaVersion)
	if _, err := db.Exec(stmts); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func openDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open search db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	return db, nil
}
