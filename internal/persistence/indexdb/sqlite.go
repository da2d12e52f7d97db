// Package indexdb is a sqlite index of generated worlds: which snapshot file
// holds the result of a given generation config, plus a log of runs.
package indexdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// Entry maps a generation cache key to the snapshot that holds its result.
type Entry struct {
	CacheKey  string
	WorldID   string
	Path      string
	Level     int
	Tiles     int
	Rivers    int
	Digest    string
	CreatedAt time.Time
}

// Run is one generate-or-load event.
type Run struct {
	CacheKey string
	WorldID  string
	// Source is "generated" or "snapshot".
	Source   string
	Duration time.Duration
	Digest   string
}

type SQLiteIndex struct {
	db *sql.DB

	ch   chan Run
	wg   sync.WaitGroup
	once sync.Once

	closed  atomic.Bool
	dropped atomic.Uint64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan Run, 1024),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS worlds (
			cache_key TEXT PRIMARY KEY,
			world_id TEXT NOT NULL,
			path TEXT NOT NULL,
			level INTEGER NOT NULL,
			tiles INTEGER NOT NULL,
			rivers INTEGER NOT NULL,
			digest TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			cache_key TEXT NOT NULL,
			world_id TEXT NOT NULL,
			source TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			digest TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS runs_by_key ON runs(cache_key);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// Lookup returns the entry for key. A row whose snapshot file is gone is
// treated as a miss.
func (s *SQLiteIndex) Lookup(ctx context.Context, key string) (Entry, bool, error) {
	var e Entry
	var created string
	row := s.db.QueryRowContext(ctx,
		`SELECT cache_key,world_id,path,level,tiles,rivers,digest,created_at FROM worlds WHERE cache_key=?`, key)
	err := row.Scan(&e.CacheKey, &e.WorldID, &e.Path, &e.Level, &e.Tiles, &e.Rivers, &e.Digest, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return e, false, nil
	}
	if err != nil {
		return e, false, fmt.Errorf("lookup %s: %w", key, err)
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	if _, err := os.Stat(e.Path); err != nil {
		return e, false, nil
	}
	return e, true, nil
}

// Record upserts an entry synchronously; the caller relies on it for the next
// start.
func (s *SQLiteIndex) Record(ctx context.Context, e Entry) error {
	if e.CacheKey == "" || e.Path == "" {
		return fmt.Errorf("record world: empty cache key or path")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO worlds(cache_key,world_id,path,level,tiles,rivers,digest,created_at) VALUES(?,?,?,?,?,?,?,?)`,
		e.CacheKey, e.WorldID, e.Path, e.Level, e.Tiles, e.Rivers, e.Digest, e.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record world %s: %w", e.CacheKey, err)
	}
	return nil
}

// Entries lists every indexed world, newest first.
func (s *SQLiteIndex) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cache_key,world_id,path,level,tiles,rivers,digest,created_at FROM worlds ORDER BY created_at DESC, cache_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		var created string
		if err := rows.Scan(&e.CacheKey, &e.WorldID, &e.Path, &e.Level, &e.Tiles, &e.Rivers, &e.Digest, &created); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// RecordRun queues a run for the writer goroutine; it never blocks.
func (s *SQLiteIndex) RecordRun(r Run) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- r:
	default:
		// Runs are informational; the report log keeps the full record.
		s.dropped.Add(1)
	}
}

// Dropped counts runs discarded because the writer fell behind.
func (s *SQLiteIndex) Dropped() uint64 { return s.dropped.Load() }

func (s *SQLiteIndex) loop() {
	insertRun, _ := s.db.Prepare(`INSERT INTO runs(cache_key,world_id,source,duration_ms,digest,recorded_at) VALUES(?,?,?,?,?,?)`)
	defer func() {
		if insertRun != nil {
			_ = insertRun.Close()
		}
	}()
	for r := range s.ch {
		if insertRun == nil {
			continue
		}
		_, _ = insertRun.Exec(r.CacheKey, r.WorldID, r.Source, r.Duration.Milliseconds(), r.Digest,
			time.Now().UTC().Format(time.RFC3339Nano))
	}
}
