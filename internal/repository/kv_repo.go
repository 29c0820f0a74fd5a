package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andy/invoicer/internal/db"
)

// KVRepo is a SQLite implementation of KVStore
type KVRepo struct {
	db *db.DB
}

// NewKVRepo creates a new KVRepo
func NewKVRepo(database *db.DB) *KVRepo {
	return &KVRepo{db: database}
}

// Get returns the stored value, or ok=false if the key is unset
func (r *KVRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM kv_store WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

// Set saves the value (insert or replace)
func (r *KVRepo) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT OR REPLACE INTO kv_store (key, value, updated_at)
		VALUES (?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query, key, value, formatTime()); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes the key
func (r *KVRepo) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM kv_store WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
