// Package sqlite provides a ResponseCache backed by an embedded SQLite
// database. The store is a single table keyed by request fingerprint;
// writes are insert-or-replace, and unreadable rows degrade to misses.
package sqlite

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	llmdispatch "github.com/weftlabs/weft-llm-go"
)

// Cache is a content-addressed response cache backed by SQLite.
type Cache struct {
	db         *sql.DB
	serializer *llmdispatch.Serializer
	log        zerolog.Logger
	hits       atomic.Int64
	misses     atomic.Int64
}

const createCacheTable = `
CREATE TABLE IF NOT EXISTS response_cache (
	fingerprint TEXT PRIMARY KEY,
	payload BLOB NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Open creates or opens a cache at the given database path. SQLite's
// own locking makes single-row reads and writes safe across concurrent
// goroutines without an external lock.
func Open(dbPath string, log zerolog.Logger) (*Cache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	if _, err := db.Exec(createCacheTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}

	return &Cache{
		db:         db,
		serializer: llmdispatch.NewSerializer(log),
		log:        log,
	}, nil
}

// Get retrieves a cached result by fingerprint. Any storage or decode
// failure is logged and reported as a miss; the cache degrades
// performance, never correctness.
func (c *Cache) Get(fingerprint string) (*llmdispatch.Result, bool) {
	var payload []byte
	err := c.db.QueryRow(
		`SELECT payload FROM response_cache WHERE fingerprint = ?`, fingerprint,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		c.misses.Add(1)
		return nil, false
	}
	if err != nil {
		c.log.Warn().Err(err).Msg("cache read failed, treating as miss")
		c.misses.Add(1)
		return nil, false
	}

	result, err := c.serializer.Decode(payload)
	if err != nil {
		c.log.Warn().Err(err).Msg("cached payload undecodable, treating as miss")
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return result, true
}

// Set stores a result under a fingerprint. Insert-or-replace: a repeat
// write for the same fingerprint wins wholesale. The row write is a
// single statement, so a result is either fully written or not at all.
func (c *Cache) Set(fingerprint string, result *llmdispatch.Result) error {
	payload, err := c.serializer.Encode(result)
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}

	_, err = c.db.Exec(
		`INSERT OR REPLACE INTO response_cache (fingerprint, payload, created_at) VALUES (?, ?, ?)`,
		fingerprint, payload, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Clear removes all cached responses.
func (c *Cache) Clear() error {
	if _, err := c.db.Exec(`DELETE FROM response_cache`); err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	return nil
}

// Stats reports entry count, entry age bounds, and in-process hit/miss
// counters. The scan is a full-table aggregate; no secondary indexes
// are kept for it.
func (c *Cache) Stats() (llmdispatch.CacheStats, error) {
	var count int64
	var oldest, newest sql.NullString
	err := c.db.QueryRow(
		`SELECT COUNT(*), MIN(created_at), MAX(created_at) FROM response_cache`,
	).Scan(&count, &oldest, &newest)
	if err != nil {
		return llmdispatch.CacheStats{}, fmt.Errorf("cache stats: %w", err)
	}

	stats := llmdispatch.CacheStats{
		Entries: count,
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
	// MIN/MAX strip the column's DATETIME decltype, so the driver hands
	// back the stored text instead of a time.Time; parse it ourselves.
	if oldest.Valid {
		t, err := parseStoredTime(oldest.String)
		if err != nil {
			return llmdispatch.CacheStats{}, fmt.Errorf("cache stats: %w", err)
		}
		stats.Oldest = t
	}
	if newest.Valid {
		t, err := parseStoredTime(newest.String)
		if err != nil {
			return llmdispatch.CacheStats{}, fmt.Errorf("cache stats: %w", err)
		}
		stats.Newest = t
	}
	return stats, nil
}

// parseStoredTime decodes a created_at value stored by the SQLite
// driver: time.Time values are written in Go's default String format,
// and rows using the column's CURRENT_TIMESTAMP default use SQLite's
// "YYYY-MM-DD HH:MM:SS" (UTC).
func parseStoredTime(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02 15:04:05.999999999 -0700 MST", s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", s)
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}
