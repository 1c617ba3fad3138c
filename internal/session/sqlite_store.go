package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// storageKey is the fixed key the slice is stored under, in every backend.
const storageKey = "shopfloor:session"

const sliceSchema = `
create table if not exists session_slice (
    storage_key text primary key,
    payload     text not null,
    updated_at  integer not null
);
`

// SQLiteStore persists the session slice in a local SQLite file so the
// terminal session survives process restarts.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the slice database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("session store path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping session db: %w", err)
	}
	if _, err := db.Exec(sliceSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create session schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, slice Slice) error {
	payload, err := json.Marshal(slice)
	if err != nil {
		return fmt.Errorf("encode session slice: %w", err)
	}

	const stmt = `
        insert into session_slice (storage_key, payload, updated_at)
        values (?, ?, unixepoch())
        on conflict (storage_key)
            do update set payload = excluded.payload, updated_at = excluded.updated_at
    `
	if _, err := s.db.ExecContext(ctx, stmt, storageKey, string(payload)); err != nil {
		return fmt.Errorf("save session slice: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (Slice, bool, error) {
	const stmt = `select payload from session_slice where storage_key = ?`

	var payload string
	err := s.db.QueryRowContext(ctx, stmt, storageKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Slice{}, false, nil
	}
	if err != nil {
		return Slice{}, false, fmt.Errorf("load session slice: %w", err)
	}

	var slice Slice
	if err := json.Unmarshal([]byte(payload), &slice); err != nil {
		return Slice{}, false, fmt.Errorf("decode session slice: %w", err)
	}
	return slice, true, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	const stmt = `delete from session_slice where storage_key = ?`
	if _, err := s.db.ExecContext(ctx, stmt, storageKey); err != nil {
		return fmt.Errorf("clear session slice: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
