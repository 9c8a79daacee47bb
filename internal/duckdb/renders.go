package duckdb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tinytelemetry/mandelview/internal/model"
)

const maxRecentRenders = 1000

// RecordRender appends one finished render job to the history.
func (s *Store) RecordRender(rec model.RenderRecord) error {
	ctx, cancel := s.queryCtx()
	defer cancel()

	var elapsed any
	if rec.Completed {
		elapsed = rec.Elapsed.Microseconds()
	}
	stopRow := rec.StopRow
	if rec.Completed {
		stopRow = -1
	}
	startedAt := rec.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT INTO render_runs
		(generation, started_at, scale, x_offset, y_offset, quality, threshold, width, height, palette, completed, elapsed_us, stop_row)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		int64(rec.Generation), startedAt.UTC(),
		rec.View.Scale, rec.View.XOffset, rec.View.YOffset, rec.View.Quality, rec.View.Threshold,
		rec.Width, rec.Height, rec.Palette, rec.Completed, elapsed, stopRow,
	)
	if err != nil {
		return fmt.Errorf("record render gen %d: %w", rec.Generation, err)
	}
	return nil
}

// RecentRenders returns up to limit records, newest first.
func (s *Store) RecentRenders(limit int) ([]model.RenderRecord, error) {
	if limit <= 0 || limit > maxRecentRenders {
		limit = maxRecentRenders
	}

	ctx, cancel := s.queryCtx()
	defer cancel()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT generation, started_at, scale, x_offset, y_offset, quality, threshold,
		       width, height, palette, completed, elapsed_us, stop_row
		FROM render_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent renders: %w", err)
	}
	defer rows.Close()

	var out []model.RenderRecord
	for rows.Next() {
		var (
			rec     model.RenderRecord
			gen     int64
			elapsed sql.NullInt64
		)
		if err := rows.Scan(&gen, &rec.StartedAt,
			&rec.View.Scale, &rec.View.XOffset, &rec.View.YOffset, &rec.View.Quality, &rec.View.Threshold,
			&rec.Width, &rec.Height, &rec.Palette, &rec.Completed, &elapsed, &rec.StopRow); err != nil {
			return nil, fmt.Errorf("scan render: %w", err)
		}
		rec.Generation = uint64(gen)
		if elapsed.Valid {
			rec.Elapsed = time.Duration(elapsed.Int64) * time.Microsecond
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// RenderCount returns the number of recorded renders.
func (s *Store) RenderCount() (int64, error) {
	ctx, cancel := s.queryCtx()
	defer cancel()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM render_runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count renders: %w", err)
	}
	return n, nil
}

// DeleteRendersBefore removes history entries that started before cutoff and
// returns how many were deleted.
func (s *Store) DeleteRendersBefore(cutoff time.Time) (int64, error) {
	ctx, cancel := s.queryCtx()
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM render_runs WHERE started_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete renders: %w", err)
	}
	return res.RowsAffected()
}
