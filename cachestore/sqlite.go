package cachestore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteBackend stores cache entries in a single SQLite database file
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens (or creates) the database at path and prepares
// the schema
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	b := &SQLiteBackend{db: db}
	if err := b.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return b, nil
}

func (b *SQLiteBackend) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cache_entries (
		key TEXT PRIMARY KEY,
		source_type TEXT NOT NULL,
		geo_key TEXT NOT NULL,
		data BLOB NOT NULL,
		size INTEGER NOT NULL,
		ttl_ms INTEGER NOT NULL,
		created_at_ms INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_cache_entries_created ON cache_entries(created_at_ms);
	CREATE INDEX IF NOT EXISTS idx_cache_entries_source_geo ON cache_entries(source_type, geo_key);
	CREATE TABLE IF NOT EXISTS cache_meta (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL
	);`

	_, err := b.db.Exec(schema)
	return err
}

// LoadAll returns every stored entry
func (b *SQLiteBackend) LoadAll() ([]*Entry, error) {
	rows, err := b.db.Query(`SELECT key, source_type, geo_key, data, size, ttl_ms, created_at_ms FROM cache_entries`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Get retrieves one entry by key
func (b *SQLiteBackend) Get(key string) (*Entry, bool, error) {
	row := b.db.QueryRow(
		`SELECT key, source_type, geo_key, data, size, ttl_ms, created_at_ms FROM cache_entries WHERE key = ?`, key)

	entry, err := scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}

	return entry, true, nil
}

// Put stores or replaces one entry
func (b *SQLiteBackend) Put(entry *Entry) error {
	query := `INSERT INTO cache_entries (key, source_type, geo_key, data, size, ttl_ms, created_at_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		source_type = excluded.source_type,
		geo_key = excluded.geo_key,
		data = excluded.data,
		size = excluded.size,
		ttl_ms = excluded.ttl_ms,
		created_at_ms = excluded.created_at_ms`

	_, err := b.db.Exec(query,
		entry.Key, entry.SourceType, entry.GeoKey, entry.Data,
		entry.Size, entry.TTL.Milliseconds(), entry.CreatedAt.UnixMilli())
	return err
}

// Delete removes one entry
func (b *SQLiteBackend) Delete(key string) error {
	_, err := b.db.Exec(`DELETE FROM cache_entries WHERE key = ?`, key)
	return err
}

// Clear removes all entries, keeping metadata
func (b *SQLiteBackend) Clear() error {
	_, err := b.db.Exec(`DELETE FROM cache_entries`)
	return err
}

// GetMeta retrieves a metadata value
func (b *SQLiteBackend) GetMeta(key string) ([]byte, bool, error) {
	var value []byte
	err := b.db.QueryRow(`SELECT value FROM cache_meta WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

// PutMeta stores a metadata value
func (b *SQLiteBackend) PutMeta(key string, value []byte) error {
	query := `INSERT INTO cache_meta (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value`

	_, err := b.db.Exec(query, key, value)
	return err
}

// Close closes the underlying database
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var entry Entry
	var ttlMs, createdAtMs int64

	if err := row.Scan(&entry.Key, &entry.SourceType, &entry.GeoKey,
		&entry.Data, &entry.Size, &ttlMs, &createdAtMs); err != nil {
		return nil, err
	}

	entry.TTL = time.Duration(ttlMs) * time.Millisecond
	entry.CreatedAt = time.UnixMilli(createdAtMs)

	return &entry, nil
}
