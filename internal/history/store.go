// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records collected papers and pipeline runs in a SQLite
// database so later runs can skip papers that were already reported.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Paper statuses.
const (
	StatusNew        = "new"
	StatusSummarized = "summarized"
)

// Store manages the history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path, creating its directory and
// schema when missing.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			title TEXT NOT NULL,
			url TEXT,
			abstract TEXT,
			pdf_url TEXT,
			html_url TEXT,
			submitted TEXT,
			summary TEXT,
			status TEXT NOT NULL DEFAULT 'new',
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS authors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			position INTEGER NOT NULL,
			paper_id TEXT NOT NULL REFERENCES papers(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_authors_paper_id ON authors(paper_id)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS paper_categories (
			paper_id TEXT NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
			category_id INTEGER NOT NULL REFERENCES categories(id),
			PRIMARY KEY (paper_id, category_id)
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			collected INTEGER NOT NULL,
			ranked INTEGER NOT NULL,
			analyzed INTEGER NOT NULL,
			report_path TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS run_papers (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			paper_id TEXT NOT NULL REFERENCES papers(id),
			rank INTEGER NOT NULL,
			score REAL NOT NULL,
			reported INTEGER NOT NULL,
			PRIMARY KEY (run_id, paper_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_papers_paper_id ON run_papers(paper_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}
