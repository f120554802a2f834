package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"yomite/internal/modules/deck/domain"
	deckout "yomite/internal/modules/deck/port/out"
	"yomite/internal/platform/clock"
	apperrors "yomite/internal/platform/errors"

	_ "modernc.org/sqlite"
)

// SQLiteStateStore keeps a single practice_state row.
type SQLiteStateStore struct {
	db    *sql.DB
	clock clock.Clock
}

func NewSQLiteStateStore(dbPath string, clk clock.Clock) (*SQLiteStateStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := &SQLiteStateStore{db: db, clock: clk}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

var _ deckout.StateStore = (*SQLiteStateStore)(nil)

func (s *SQLiteStateStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS practice_state (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  deck_ids TEXT NOT NULL,
  current_index INTEGER NOT NULL,
  selected_ids TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create practice_state table: %w", err)
	}
	return nil
}

func (s *SQLiteStateStore) Load(ctx context.Context) (domain.State, error) {
	var deckRaw, selectedRaw string
	var index int
	err := s.db.QueryRowContext(ctx, `SELECT deck_ids, current_index, selected_ids FROM practice_state WHERE id = 1`).
		Scan(&deckRaw, &index, &selectedRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.State{}, apperrors.ErrNotFound
	}
	if err != nil {
		return domain.State{}, fmt.Errorf("load practice state: %w", err)
	}
	state := domain.State{Index: index}
	if err := json.Unmarshal([]byte(deckRaw), &state.DeckIDs); err != nil {
		return domain.State{}, fmt.Errorf("decode deck ids: %w", err)
	}
	if err := json.Unmarshal([]byte(selectedRaw), &state.Selected); err != nil {
		return domain.State{}, fmt.Errorf("decode selected ids: %w", err)
	}
	return state, nil
}

func (s *SQLiteStateStore) Save(ctx context.Context, state domain.State) error {
	deckRaw, err := json.Marshal(nonNil(state.DeckIDs))
	if err != nil {
		return fmt.Errorf("encode deck ids: %w", err)
	}
	selectedRaw, err := json.Marshal(nonNil(state.Selected))
	if err != nil {
		return fmt.Errorf("encode selected ids: %w", err)
	}
	const stmt = `
INSERT INTO practice_state (id, deck_ids, current_index, selected_ids, updated_at)
VALUES (1, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  deck_ids=excluded.deck_ids,
  current_index=excluded.current_index,
  selected_ids=excluded.selected_ids,
  updated_at=excluded.updated_at;
`
	if _, err := s.db.ExecContext(ctx, stmt, string(deckRaw), state.Index, string(selectedRaw), s.clock.Now().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("save practice state: %w", err)
	}
	return nil
}

func (s *SQLiteStateStore) Close() error {
	return s.db.Close()
}

func nonNil(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}
