package catalog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Cache is the offline catalog snapshot: the last successfully fetched
// payload, stored verbatim in SQLite so a cold start without network still
// has universities to show.
type Cache struct {
	db   *sql.DB
	path string
}

// OpenCache opens (and if needed creates) the snapshot database.
func OpenCache(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog cache: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure cache: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure cache: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS catalog_snapshot (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		payload TEXT NOT NULL,
		fetched_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	return &Cache{db: db, path: path}, nil
}

// Close releases the database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Save replaces the snapshot with a fresh payload.
func (c *Cache) Save(payload []byte) error {
	_, err := c.db.Exec(
		`INSERT INTO catalog_snapshot (id, payload, fetched_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		string(payload), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save catalog snapshot: %w", err)
	}
	return nil
}

// Load returns the snapshot universities and when they were fetched.
// An empty cache returns (nil, zero time, nil).
func (c *Cache) Load() ([]University, time.Time, error) {
	var payload string
	var fetchedAt int64
	err := c.db.QueryRow(
		`SELECT payload, fetched_at FROM catalog_snapshot WHERE id = 1`).
		Scan(&payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to load catalog snapshot: %w", err)
	}

	var list []University
	if err := json.Unmarshal([]byte(payload), &list); err != nil {
		return nil, time.Time{}, fmt.Errorf("corrupt catalog snapshot: %w", err)
	}
	return list, time.Unix(fetchedAt, 0), nil
}
