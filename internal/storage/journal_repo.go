package storage

import (
	"context"
	"fmt"
	"time"
)

type JournalRepo struct {
	db execer
}

func NewJournalRepo(db execer) *JournalRepo {
	return &JournalRepo{db: db}
}

func (r *JournalRepo) Insert(ctx context.Context, action string, payload []byte, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO action_log (action, payload, dispatched_at)
		VALUES (?, ?, ?)
	`, action, string(payload), at.UTC())
	if err != nil {
		return 0, fmt.Errorf("journal insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("journal last insert id: %w", err)
	}
	return id, nil
}

// ListRecent returns up to limit entries, newest first.
func (r *JournalRepo) ListRecent(ctx context.Context, limit int) ([]JournalEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, action, COALESCE(payload, ''), dispatched_at
		FROM action_log
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal list: %w", err)
	}
	defer rows.Close()

	var out []JournalEntry
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.Payload, &e.DispatchedAt); err != nil {
			return nil, fmt.Errorf("journal scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal rows: %w", err)
	}
	return out, nil
}

func (r *JournalRepo) CountByAction(ctx context.Context, action string, since time.Time) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM action_log
		WHERE action = ? AND dispatched_at >= ?
	`, action, since.UTC())
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("journal count: %w", err)
	}
	return n, nil
}

func (r *JournalRepo) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM action_log`); err != nil {
		return fmt.Errorf("journal clear: %w", err)
	}
	return nil
}
