package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ErrCacheMiss is returned when no usable cached snapshot exists.
var ErrCacheMiss = errors.New("snapshot not cached")

// CachedSnapshot is the last good payload of a snapshot path.
type CachedSnapshot struct {
	Path      string
	Body      []byte
	Size      int
	FetchedAt time.Time
}

// SnapshotCache keeps the last good payload of every snapshot path in a
// local sqlite database, so the dashboard still opens when the data lake is
// unreachable.
type SnapshotCache struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// OpenSnapshotCache creates or opens the cache database at dbPath.
func OpenSnapshotCache(dbPath string) (*SnapshotCache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	c := &SnapshotCache{db: db, dbPath: dbPath}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return c, nil
}

// Close closes the database connection.
func (c *SnapshotCache) Close() error {
	return c.db.Close()
}

// Path returns the database file path.
func (c *SnapshotCache) Path() string {
	return c.dbPath
}

func (c *SnapshotCache) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		path TEXT PRIMARY KEY,
		body BLOB NOT NULL,
		fetched_at INTEGER NOT NULL
	);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Put stores body as the latest payload for path.
func (c *SnapshotCache) Put(ctx context.Context, path string, body []byte, fetchedAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO snapshots (path, body, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
		path, body, fetchedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to cache %s: %w", path, err)
	}
	return nil
}

// Get returns the cached payload for path. Entries older than maxAge count as
// misses; maxAge <= 0 accepts any age.
func (c *SnapshotCache) Get(ctx context.Context, path string, maxAge time.Duration) (*CachedSnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var (
		body []byte
		ms   int64
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT body, fetched_at FROM snapshots WHERE path = ?`, path).Scan(&body, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache for %s: %w", path, err)
	}

	fetchedAt := time.UnixMilli(ms)
	if maxAge > 0 && time.Since(fetchedAt) > maxAge {
		return nil, fmt.Errorf("%w: %s is %s old", ErrCacheMiss, path, time.Since(fetchedAt).Round(time.Second))
	}
	return &CachedSnapshot{Path: path, Body: body, Size: len(body), FetchedAt: fetchedAt}, nil
}

// Entries lists cached paths with their sizes and fetch times, newest first.
// Bodies are not loaded.
func (c *SnapshotCache) Entries(ctx context.Context) ([]CachedSnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.db.QueryContext(ctx,
		`SELECT path, fetched_at, length(body) FROM snapshots ORDER BY fetched_at DESC, path`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cache: %w", err)
	}
	defer rows.Close()

	var out []CachedSnapshot
	for rows.Next() {
		var (
			s  CachedSnapshot
			ms int64
		)
		if err := rows.Scan(&s.Path, &ms, &s.Size); err != nil {
			return nil, err
		}
		s.FetchedAt = time.UnixMilli(ms)
		out = append(out, s)
	}
	return out, rows.Err()
}
