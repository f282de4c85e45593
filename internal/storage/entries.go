package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Entry is one indexed row.
type Entry struct {
	ID      int64
	Label   string
	Value   string
	Source  string
	AddedAt time.Time
}

// Add inserts entries, refreshing the timestamp of rows that already exist
// with the same label, value and source. Entries without a label are
// skipped. Entries without a timestamp are stamped in slice order so later
// entries sort as more recent. It returns the number of rows written.
func (x *Index) Add(ctx context.Context, entries []Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (label, value, source, added_at_unix_ms)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (label, value, source)
		DO UPDATE SET added_at_unix_ms = MAX(added_at_unix_ms, excluded.added_at_unix_ms)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UnixMilli()
	written := 0
	for i, e := range entries {
		if e.Label == "" {
			continue
		}
		ts := now + int64(i)
		if !e.AddedAt.IsZero() {
			ts = e.AddedAt.UnixMilli()
		}
		if _, err := stmt.ExecContext(ctx, e.Label, e.Value, e.Source, ts); err != nil {
			return 0, fmt.Errorf("failed to insert entry: %w", err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return written, nil
}

// Search returns up to limit entries whose label contains query, most recent
// first, skipping offset rows. The match is case-insensitive for ASCII. The
// second result is the total number of matching rows. A non-positive limit
// returns only the total.
func (x *Index) Search(ctx context.Context, query string, limit, offset int) ([]Entry, int, error) {
	pattern := "%" + escapeLike(query) + "%"

	var total int
	err := x.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entries WHERE label LIKE ? ESCAPE '\'`, pattern,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count matches: %w", err)
	}
	if limit <= 0 || offset >= total {
		return []Entry{}, total, nil
	}
	offset = max(offset, 0)

	rows, err := x.db.QueryContext(ctx, `
		SELECT id, label, value, source, added_at_unix_ms
		FROM entries
		WHERE label LIKE ? ESCAPE '\'
		ORDER BY added_at_unix_ms DESC, id DESC
		LIMIT ? OFFSET ?
	`, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search index: %w", err)
	}
	defer rows.Close()

	out, err := scanEntries(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Count returns the number of indexed entries.
func (x *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := x.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

// DeleteSource removes every entry added under source and returns how many
// were removed.
func (x *Index) DeleteSource(ctx context.Context, source string) (int64, error) {
	res, err := x.db.ExecContext(ctx, `DELETE FROM entries WHERE source = ?`, source)
	if err != nil {
		return 0, fmt.Errorf("failed to delete entries: %w", err)
	}
	return res.RowsAffected()
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	out := []Entry{}
	for rows.Next() {
		var (
			e  Entry
			ms int64
		)
		if err := rows.Scan(&e.ID, &e.Label, &e.Value, &e.Source, &ms); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.AddedAt = time.UnixMilli(ms)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern with ESCAPE '\'.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
