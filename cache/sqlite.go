package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS span_cache (
	cache_key   TEXT PRIMARY KEY,
	translation TEXT NOT NULL,
	created_at  TEXT NOT NULL
)`

// SQLiteCache is a persistent translation cache in a single SQLite file,
// so repeated conversions of the same book reuse earlier translations.
type SQLiteCache struct {
	db  *sql.DB
	sb  sq.StatementBuilderType
	ttl time.Duration
}

// OpenSQLiteCache opens or creates the cache database at path. The special
// path ":memory:" creates a private in-memory database.
func OpenSQLiteCache(path string, ttlSeconds int) (*SQLiteCache, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("make cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A :memory: database exists per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create span_cache: %w", err)
	}

	return NewSQLiteCacheFromDB(db, ttlSeconds), nil
}

// NewSQLiteCacheFromDB wraps an open database whose span_cache table
// already exists.
func NewSQLiteCacheFromDB(db *sql.DB, ttlSeconds int) *SQLiteCache {
	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 {
		ttl = 0
	}
	return &SQLiteCache{db: db, sb: sq.StatementBuilder, ttl: ttl}
}

func (c *SQLiteCache) live(q sq.SelectBuilder) sq.SelectBuilder {
	if c.ttl > 0 {
		return q.Where(sq.GtOrEq{"created_at": time.Now().UTC().Add(-c.ttl).Format(time.RFC3339)})
	}
	return q
}

// Get retrieves a value from the database. Query errors count as misses.
func (c *SQLiteCache) Get(key string) (string, bool) {
	q := c.live(c.sb.Select("translation").
		From("span_cache").
		Where(sq.Eq{"cache_key": key})).
		Limit(1)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return "", false
	}

	var value string
	if err := c.db.QueryRowContext(context.Background(), sqlStr, args...).Scan(&value); err != nil {
		return "", false
	}
	return value, true
}

// Set stores or replaces a value.
func (c *SQLiteCache) Set(key string, value string) error {
	q := c.sb.Insert("span_cache").
		Columns("cache_key", "translation", "created_at").
		Values(key, value, time.Now().UTC().Format(time.RFC3339)).
		Suffix("ON CONFLICT(cache_key) DO UPDATE SET translation=excluded.translation, created_at=excluded.created_at")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(context.Background(), sqlStr, args...)
	return err
}

// Entries returns all live entries.
func (c *SQLiteCache) Entries() (map[string]string, error) {
	q := c.live(c.sb.Select("cache_key", "translation").From("span_cache"))
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(context.Background(), sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		result[key] = value
	}
	return result, rows.Err()
}

// Prune deletes expired entries and returns how many were removed.
func (c *SQLiteCache) Prune() (int64, error) {
	if c.ttl == 0 {
		return 0, nil
	}
	q := c.sb.Delete("span_cache").
		Where(sq.Lt{"created_at": time.Now().UTC().Add(-c.ttl).Format(time.RFC3339)})
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return 0, err
	}
	res, err := c.db.ExecContext(context.Background(), sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close closes the database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

var _ ExportableCache = (*SQLiteCache)(nil)
