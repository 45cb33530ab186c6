package mirror

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps mirror rows in a local SQLite file, one table for all sheets.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the mirror database. Pass ":memory:" in tests.
func OpenSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mirror: %w", err)
	}
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS mirror_rows (
		sheet TEXT NOT NULL,
		row_key TEXT NOT NULL,
		content TEXT NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (sheet, row_key)
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create mirror table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) FindRow(ctx context.Context, sheet, key string) (Row, error) {
	var content string
	err := s.db.QueryRowContext(ctx,
		`SELECT content FROM mirror_rows WHERE sheet = ? AND row_key = ?`, sheet, key,
	).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return Row{}, fmt.Errorf("%s/%s: %w", sheet, key, ErrRowNotFound)
	}
	if err != nil {
		return Row{}, err
	}

	row := Row{Sheet: sheet, Key: key}
	if err := json.Unmarshal([]byte(content), &row.Cells); err != nil {
		return Row{}, fmt.Errorf("decode %s/%s: %w", sheet, key, err)
	}
	return row, nil
}

func (s *SQLiteStore) UpsertRow(ctx context.Context, row Row) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mirror_rows (sheet, row_key, content, updated_at) VALUES (?,?,?,?)
		ON CONFLICT (sheet, row_key) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		row.Sheet, row.Key, row.Content(), time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// Rows lists a sheet ordered by key.
func (s *SQLiteStore) Rows(ctx context.Context, sheet string) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT row_key, content FROM mirror_rows WHERE sheet = ? ORDER BY row_key`, sheet)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var key, content string
		if err := rows.Scan(&key, &content); err != nil {
			return nil, err
		}
		row := Row{Sheet: sheet, Key: key}
		if err := json.Unmarshal([]byte(content), &row.Cells); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", sheet, key, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
