package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	pacingout "yomite/internal/modules/pacing/port/out"
	apperrors "yomite/internal/platform/errors"

	_ "modernc.org/sqlite"
)

const unitSecondsKey = "unit_seconds"

type SQLitePaceStore struct {
	db *sql.DB
}

func NewSQLitePaceStore(dbPath string) (*SQLitePaceStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := &SQLitePaceStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

var _ pacingout.PaceStore = (*SQLitePaceStore)(nil)

func (s *SQLitePaceStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS preferences (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create preferences table: %w", err)
	}
	return nil
}

func (s *SQLitePaceStore) LoadUnitSeconds(ctx context.Context) (float64, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, unitSecondsKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperrors.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("load unit seconds: %w", err)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse unit seconds %q: %w", raw, err)
	}
	return value, nil
}

func (s *SQLitePaceStore) SaveUnitSeconds(ctx context.Context, value float64) error {
	const stmt = `
INSERT INTO preferences (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value;
`
	if _, err := s.db.ExecContext(ctx, stmt, unitSecondsKey, strconv.FormatFloat(value, 'f', -1, 64)); err != nil {
		return fmt.Errorf("save unit seconds: %w", err)
	}
	return nil
}

func (s *SQLitePaceStore) Close() error {
	return s.db.Close()
}
