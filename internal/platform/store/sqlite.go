package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite" // pure Go SQLite driver, no CGO required
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS namespace_blob (
	name TEXT PRIMARY KEY,
	data TEXT NOT NULL
)`

// SQLite is a Store backed by a single-file SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed initializes) the SQLite store at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("can't open sqlite database: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("can't create sqlite schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Read returns the full map stored under ns.
func (s *SQLite) Read(ctx context.Context, ns Namespace) (map[string]json.RawMessage, error) {
	query, args, err := sq.Select("data").
		From("namespace_blob").
		Where(sq.Eq{"name": string(ns)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build namespace query: %w", err)
	}

	var blob string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("can't read namespace %q: %w", ns, err)
	}

	data, err := decodeNamespace([]byte(blob))
	if err != nil {
		return nil, fmt.Errorf("can't decode namespace %q: %w", ns, err)
	}

	return data, nil
}

// Write replaces the full map stored under ns.
func (s *SQLite) Write(ctx context.Context, ns Namespace, data map[string]json.RawMessage) error {
	blob, err := encodeNamespace(data)
	if err != nil {
		return fmt.Errorf("can't encode namespace %q: %w", ns, err)
	}

	query, args, err := sq.Insert("namespace_blob").
		Columns("name", "data").
		Values(string(ns), string(blob)).
		Suffix("ON CONFLICT(name) DO UPDATE SET data = excluded.data").
		ToSql()
	if err != nil {
		return fmt.Errorf("can't build namespace upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("can't write namespace %q: %w", ns, err)
	}

	return nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
