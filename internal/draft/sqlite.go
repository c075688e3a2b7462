package draft

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/debemdeboas/notes-editor/internal/db"
	"github.com/debemdeboas/notes-editor/internal/util/compression"
)

// SQLiteKV stores compressed records in the drafts table.
type SQLiteKV struct {
	db    db.Db
	codec compression.Compressor
}

func NewSQLiteKV(d db.Db, codec compression.Compressor) *SQLiteKV {
	if codec == nil {
		codec = compression.NoneCompressor{}
	}
	return &SQLiteKV{db: d, codec: codec}
}

func (s *SQLiteKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	var raw []byte
	err := s.db.QueryRow(`SELECT value FROM drafts WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read draft %s: %w", key, err)
	}

	value, err := s.codec.Decompress(raw)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decompress draft %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteKV) Set(_ context.Context, key string, value []byte) error {
	raw, err := s.codec.Compress(value)
	if err != nil {
		return fmt.Errorf("failed to compress draft %s: %w", key, err)
	}

	_, err = s.db.Exec(`
INSERT INTO drafts (key, value, modified_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, modified_at = CURRENT_TIMESTAMP`, key, raw)
	if err != nil {
		return fmt.Errorf("failed to write draft %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteKV) Remove(_ context.Context, key string) error {
	if _, err := s.db.Exec(`DELETE FROM drafts WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete draft %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteKV) Keys(_ context.Context, prefix string) ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM drafts WHERE substr(key, 1, ?) = ? ORDER BY key`, len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
