package storage

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/soundcheck/internal/shared"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is a [Store] persisted to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the SQLite database at path and applies pending migrations.
// The path can be ":memory:" for an in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases coherent across calls.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetItem returns the stored value for key. Read failures are reported as a missing key.
func (s *SQLiteStore) GetItem(key string) (string, bool) {
	var value string
	err := s.db.QueryRow("SELECT value FROM local_storage WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", false
	}
	return value, true
}

func (s *SQLiteStore) SetItem(key, value string) error {
	query := `
		INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := s.db.Exec(query, key, value); err != nil {
		return fmt.Errorf("%w: failed to set %s: %v", shared.ErrStorage, key, err)
	}
	return nil
}

func (s *SQLiteStore) RemoveItem(key string) error {
	if _, err := s.db.Exec("DELETE FROM local_storage WHERE key = ?", key); err != nil {
		return fmt.Errorf("%w: failed to remove %s: %v", shared.ErrStorage, key, err)
	}
	return nil
}

func (s *SQLiteStore) Keys() ([]string, error) {
	rows, err := s.db.Query("SELECT key FROM local_storage ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list keys: %v", shared.ErrStorage, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("%w: failed to scan key: %v", shared.ErrStorage, err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
