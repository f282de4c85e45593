package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Index is a SQLite-backed collection of picker entries that can be searched
// page by page.
type Index struct {
	db        *sql.DB
	closeOnce sync.Once
	closeErr  error
}

// Open opens (creating if needed) the index database at path and brings its
// schema up to date. The database runs in WAL mode.
func Open(path string) (*Index, error) {
	if path == "" {
		return nil, errors.New("index path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	// modernc.org/sqlite uses _pragma=name(value) syntax
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to index: %w", err)
	}

	idx := &Index{db: db}
	if err := idx.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return idx, nil
}

// Close checkpoints the WAL and closes the database. It is safe to call more
// than once.
func (x *Index) Close() error {
	x.closeOnce.Do(func() {
		if x.db == nil {
			return
		}
		_, _ = x.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		x.closeErr = x.db.Close()
	})
	return x.closeErr
}

// DB returns the underlying connection.
func (x *Index) DB() *sql.DB {
	return x.db
}

var migrations = []struct {
	version int
	sql     string
}{
	{version: 1, sql: migrationV1},
	{version: 2, sql: migrationV2},
}

func (x *Index) migrate(ctx context.Context) error {
	current := 0
	row := x.db.QueryRowContext(ctx, `SELECT version FROM schema_meta ORDER BY version DESC LIMIT 1`)
	if err := row.Scan(&current); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows), isTableNotFoundError(err):
			current = 0
		default:
			return fmt.Errorf("failed to read schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if _, err := x.db.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("migration v%d failed: %w", m.version, err)
		}
		_, err := x.db.ExecContext(ctx, `
			INSERT OR REPLACE INTO schema_meta (version, applied_at_unix_ms)
			VALUES (?, ?)
		`, m.version, time.Now().UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to record migration v%d: %w", m.version, err)
		}
	}
	return nil
}

// SchemaVersion reports the latest applied migration.
func (x *Index) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := x.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_meta`).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

func isTableNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "no such table") || strings.Contains(msg, "does not exist")
}

const migrationV1 = `
CREATE TABLE IF NOT EXISTS schema_meta (
  version INTEGER PRIMARY KEY,
  applied_at_unix_ms INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS entries (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  label TEXT NOT NULL,
  value TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL DEFAULT '',
  added_at_unix_ms INTEGER NOT NULL,
  UNIQUE (label, value, source)
);
`

// migrationV2 adds the ordering indexes used by Search and DeleteSource.
const migrationV2 = `
CREATE INDEX IF NOT EXISTS idx_entries_added ON entries (added_at_unix_ms DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_entries_source ON entries (source);
`
