package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pthm/editable"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
    tbl     TEXT NOT NULL,
    id      TEXT NOT NULL,
    body    TEXT NOT NULL,              -- JSON object of field values
    updated INTEGER NOT NULL,           -- UnixNano
    PRIMARY KEY (tbl, id)
);
`

// SQLite stores records as JSON rows in a single table.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path. ":memory:"
// opens a private in-memory database.
func OpenSQLite(path string) (*SQLite, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		dsn += "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: an in-memory database exists per connection, and
	// writers are serialized anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Put upserts a record and returns its id. An empty id allocates the next
// number in the table.
func (s *SQLite) Put(ctx context.Context, table, id string, data editable.Data) (string, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if id == "" {
		var n int64
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE tbl = ?`, table).Scan(&n); err != nil {
			return "", err
		}
		id = strconv.FormatInt(n+1, 10)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO records (tbl, id, body, updated) VALUES (?, ?, ?, ?)
		ON CONFLICT (tbl, id) DO UPDATE SET body = excluded.body, updated = excluded.updated`,
		table, id, string(body), time.Now().UnixNano())
	if err != nil {
		return "", err
	}
	return id, tx.Commit()
}

// Get returns a stored record.
func (s *SQLite) Get(ctx context.Context, table, id string) (editable.Data, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM records WHERE tbl = ? AND id = ?`, table, id).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var d editable.Data
	if err := json.Unmarshal([]byte(body), &d); err != nil {
		return nil, err
	}
	return d, nil
}

// IDs returns the record ids of a table in insertion order.
func (s *SQLite) IDs(ctx context.Context, table string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM records WHERE tbl = ? ORDER BY rowid`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Execute is the body of the sqlite target.
func (s *SQLite) Execute(ctx context.Context, t *editable.BaseTarget, payload editable.Data) (editable.Data, error) {
	table, err := location(t)
	if err != nil {
		return nil, err
	}
	id, _ := payload.ID()
	id, err = s.Put(ctx, table, id, payload.Clean())
	if err != nil {
		return nil, &editable.TargetError{Kind: TypeStoreError, Detail: err.Error(), Payload: payload}
	}
	return reply(payload, id), nil
}

// RegisterSQLite registers s as target kind "sqlite" on ed.
func RegisterSQLite(ed *editable.Editor, s *SQLite) error {
	return ed.HandleTarget(KindSQLite, s.Execute)
}
