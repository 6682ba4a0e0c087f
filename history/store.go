package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store owns the history database lifecycle: it opens the SQLite file,
// runs migrations, and hands out a Repository for queries.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open creates the database file (and parent directories) if needed,
// applies pending migrations, and returns a ready Store.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("history: database path is required")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := newConnection(DefaultConnectionConfig(path))
	if err != nil {
		return nil, err
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

// DB exposes the underlying connection for repositories.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection. Safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
