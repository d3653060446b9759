// Package storage provides SQLite persistence for wifiauth.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// DatabaseFile is the file name of the attempt log inside the data
// directory.
const DatabaseFile = "wifi_log.db"

// StorageError reports that the attempt store could not be read or written.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// DB wraps the SQLite database connection.
type DB struct {
	*sql.DB
	path string
	mu   sync.RWMutex
}

// Open opens the SQLite database at path, creating its directory when
// needed.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, &StorageError{Op: "open", Err: err}
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, &StorageError{Op: "open", Err: fmt.Errorf("failed to open database: %w", err)}
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StorageError{Op: "open", Err: fmt.Errorf("failed to open database %s: %w", path, err)}
	}

	return &DB{DB: db, path: path}, nil
}

// Initialize opens the attempt log in dataDir.
func Initialize(dataDir string) (*DB, error) {
	return Open(filepath.Join(dataDir, DatabaseFile))
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}

// WithLock executes a function with write lock.
func (db *DB) WithLock(fn func() error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return fn()
}

// WithRLock executes a function with read lock.
func (db *DB) WithRLock(fn func() error) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return fn()
}
