// Package store persists a workspace snapshot — projects, their reference
// edges, files, and extracted type definitions — in SQLite, and exposes the
// snapshot back as the lattice workspace collaborators.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for the snapshot tables.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates all tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS projects (
  id              INTEGER PRIMARY KEY,
  name            TEXT NOT NULL UNIQUE,
  root            TEXT NOT NULL
);

-- Directed project references: a project can resolve types from the
-- projects it references, transitively.
CREATE TABLE IF NOT EXISTS project_refs (
  project_id      INTEGER NOT NULL REFERENCES projects(id),
  ref_project_id  INTEGER NOT NULL REFERENCES projects(id),
  UNIQUE(project_id, ref_project_id)
);

CREATE TABLE IF NOT EXISTS files (
  id              INTEGER PRIMARY KEY,
  project_id      INTEGER NOT NULL REFERENCES projects(id),
  path            TEXT NOT NULL UNIQUE,
  language        TEXT NOT NULL,
  hash            TEXT
);

CREATE TABLE IF NOT EXISTS type_defs (
  id              INTEGER PRIMARY KEY,
  project_id      INTEGER NOT NULL REFERENCES projects(id),
  file_id         INTEGER NOT NULL REFERENCES files(id),
  name            TEXT NOT NULL,
  qualified       TEXT NOT NULL,
  kind            TEXT NOT NULL,
  start_line      INTEGER,
  start_col       INTEGER,
  end_line        INTEGER,
  end_col         INTEGER
);

-- Declared base types, by name as written; resolution happens at load time.
CREATE TABLE IF NOT EXISTS base_types (
  id              INTEGER PRIMARY KEY,
  type_def_id     INTEGER NOT NULL REFERENCES type_defs(id),
  name            TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_files_project ON files(project_id);
CREATE INDEX IF NOT EXISTS idx_type_defs_project ON type_defs(project_id);
CREATE INDEX IF NOT EXISTS idx_type_defs_file ON type_defs(file_id);
CREATE INDEX IF NOT EXISTS idx_type_defs_qualified ON type_defs(qualified);
CREATE INDEX IF NOT EXISTS idx_base_types_def ON base_types(type_def_id);
CREATE INDEX IF NOT EXISTS idx_project_refs_project ON project_refs(project_id);
`

// DeleteProjectData transactionally removes a project and everything under
// it, in reverse-dependency order.
func (s *Store) DeleteProjectData(projectID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM base_types WHERE type_def_id IN
		   (SELECT id FROM type_defs WHERE project_id = ?)`, projectID); err != nil {
		return fmt.Errorf("delete base types: %w", err)
	}
	for _, q := range []string{
		"DELETE FROM type_defs WHERE project_id = ?",
		"DELETE FROM files WHERE project_id = ?",
		"DELETE FROM project_refs WHERE project_id = ? OR ref_project_id = ?",
		"DELETE FROM projects WHERE id = ?",
	} {
		args := []any{projectID}
		if q == "DELETE FROM project_refs WHERE project_id = ? OR ref_project_id = ?" {
			args = []any{projectID, projectID}
		}
		if _, err := tx.Exec(q, args...); err != nil {
			return fmt.Errorf("delete project data: %w", err)
		}
	}

	return tx.Commit()
}
