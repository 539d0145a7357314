package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type KVRepo struct {
	db execer
}

func NewKVRepo(db execer) *KVRepo {
	return &KVRepo{db: db}
}

// Get returns nil when the key has never been written.
func (r *KVRepo) Get(ctx context.Context, key string) (*Slot, error) {
	row := r.db.QueryRowContext(ctx, `SELECT key, value, updated_at FROM kv WHERE key = ?`, key)
	var (
		s     Slot
		value string
	)
	if err := row.Scan(&s.Key, &value, &s.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}
	s.Value = []byte(value)
	return &s, nil
}

func (r *KVRepo) Put(ctx context.Context, key string, value []byte, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(value), at.UTC())
	if err != nil {
		return fmt.Errorf("kv put %s: %w", key, err)
	}
	return nil
}

func (r *KVRepo) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	return nil
}
