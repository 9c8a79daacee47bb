package duckdb

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/tinytelemetry/mandelview/internal/model"
)

// LoadView returns the view saved under key. It returns model.ErrNoSavedView
// when nothing is stored and an error wrapping model.ErrCorruptView when the
// payload cannot be decoded.
func (s *Store) LoadView(key string) (model.ViewState, error) {
	ctx, cancel := s.queryCtx()
	defer cancel()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM view_state WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ViewState{}, model.ErrNoSavedView
	}
	if err != nil {
		return model.ViewState{}, fmt.Errorf("load view %q: %w", key, err)
	}
	return model.DecodeView([]byte(payload))
}

// SaveView upserts {scale, xOffset, yOffset} of v under key.
func (s *Store) SaveView(key string, v model.ViewState) error {
	payload, err := model.EncodeView(v)
	if err != nil {
		return fmt.Errorf("encode view: %w", err)
	}

	ctx, cancel := s.queryCtx()
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO view_state (key, payload, updated_at) VALUES (?, ?, current_timestamp)
		ON CONFLICT (key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key, string(payload))
	if err != nil {
		return fmt.Errorf("save view %q: %w", key, err)
	}
	return nil
}
