// Package cache persists the last successful fetch of each page under a
// fixed key so a page has data before any network call completes.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Keys used by the pages. Each page owns exactly one.
const (
	KeyPrices   = "prices.records"
	KeyWeather  = "weather.snapshot"
	KeyProducts = "market.products"
)

type Cache struct {
	path    string
	readDB  *sql.DB
	writeDB *sql.DB
}

// Entry describes one stored key.
type Entry struct {
	Key       string
	Size      int
	UpdatedAt time.Time
}

func Open(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	c := &Cache{path: dbPath, writeDB: writeDB}
	if err := c.init(); err != nil {
		c.Close()
		return nil, err
	}

	// The read handle is opened after the schema exists; mode=ro cannot create it.
	readDB, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}
	c.readDB = readDB
	return c, nil
}

func (c *Cache) init() error {
	_, err := c.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS entries (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	var errs []error
	if c.readDB != nil {
		errs = append(errs, c.readDB.Close())
	}
	if c.writeDB != nil {
		errs = append(errs, c.writeDB.Close())
	}
	return errors.Join(errs...)
}

// Get returns the raw value stored under key.
func (c *Cache) Get(key string) (string, bool) {
	var value string
	err := c.readDB.QueryRow("SELECT value FROM entries WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", false
	}
	return value, true
}

// Put overwrites key unconditionally.
func (c *Cache) Put(key, value string) error {
	_, err := c.writeDB.Exec(`
		INSERT INTO entries (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Delete(key string) error {
	_, err := c.writeDB.Exec("DELETE FROM entries WHERE key = ?", key)
	return err
}

// Entries lists stored keys with their sizes.
func (c *Cache) Entries() ([]Entry, error) {
	rows, err := c.readDB.Query("SELECT key, length(value), updated_at FROM entries ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Size, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Clear removes every entry and refresh marker.
func (c *Cache) Clear() (int64, error) {
	res, err := c.writeDB.Exec("DELETE FROM entries")
	if err != nil {
		return 0, fmt.Errorf("clearing entries: %w", err)
	}
	if _, err := c.writeDB.Exec("DELETE FROM meta"); err != nil {
		return 0, fmt.Errorf("clearing meta: %w", err)
	}
	if _, err := c.writeDB.Exec("VACUUM"); err != nil {
		return 0, fmt.Errorf("vacuum: %w", err)
	}
	return res.RowsAffected()
}

// Path is the database file backing the cache.
func (c *Cache) Path() string {
	return c.path
}

// Stats reports the number of entries and the database file size.
func (c *Cache) Stats() (int, int64, error) {
	var count int
	if err := c.readDB.QueryRow("SELECT COUNT(*) FROM entries").Scan(&count); err != nil {
		return 0, 0, fmt.Errorf("counting entries: %w", err)
	}
	info, err := os.Stat(c.path)
	if err != nil {
		return count, 0, fmt.Errorf("stat %s: %w", c.path, err)
	}
	return count, info.Size(), nil
}

// Load decodes the record set stored under key. A missing or corrupt entry
// yields nil, never an error.
func Load[T any](c *Cache, key string) []T {
	raw, ok := c.Get(key)
	if !ok {
		return nil
	}
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

// Save serializes records under key, replacing whatever was there.
func Save[T any](c *Cache, key string, records []T) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return c.Put(key, string(data))
}

// LoadValue is Load for a single struct.
func LoadValue[T any](c *Cache, key string) (T, bool) {
	var out T
	raw, ok := c.Get(key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		var zero T
		return zero, false
	}
	return out, true
}

// SaveValue is Save for a single struct.
func SaveValue[T any](c *Cache, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return c.Put(key, string(data))
}

func (c *Cache) NeedsRefresh(key string, interval time.Duration) bool {
	var value string
	err := c.readDB.QueryRow("SELECT value FROM meta WHERE key = ?", "last_refresh."+key).Scan(&value)
	if err != nil {
		return true
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return true
	}
	return time.Since(t) > interval
}

func (c *Cache) SetLastRefresh(key string) error {
	_, err := c.writeDB.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, "last_refresh."+key, time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording refresh of %s: %w", key, err)
	}
	return nil
}
