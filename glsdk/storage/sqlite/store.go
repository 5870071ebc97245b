// Package sqlite provides a SQLite-backed local key-value storage, so the log display flag,
// the local telemetry blob and the device id survive restarts.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/glasslab/go-glsdk/glsdk/storage"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS glsdk_kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// Store persists local SDK state in SQLite.
type Store struct {
	sqlDB *sql.DB
	mutex sync.Mutex
}

// Open opens (creating if needed) a SQLite local store at path
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

func (s *Store) db() (*sql.DB, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.sqlDB == nil {
		return nil, storage.ErrStorageClosed
	}
	return s.sqlDB, nil
}

// Get returns the value stored under key
func (s *Store) Get(key string) (string, bool, error) {
	db, err := s.db()
	if err != nil {
		return "", false, err
	}
	var value string
	err = db.QueryRow(`SELECT value FROM glsdk_kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key
func (s *Store) Set(key string, value string) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	_, err = db.Exec(
		`INSERT INTO glsdk_kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Append concatenates value to the one stored under key
func (s *Store) Append(key string, value string) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	_, err = db.Exec(
		`INSERT INTO glsdk_kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = glsdk_kv.value || excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("append %s: %w", key, err)
	}
	return nil
}

// Delete removes key
func (s *Store) Delete(key string) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	if _, err := db.Exec(`DELETE FROM glsdk_kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.sqlDB == nil {
		return nil
	}
	err := s.sqlDB.Close()
	s.sqlDB = nil
	return err
}
