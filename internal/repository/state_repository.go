package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"kiosk-quiz/internal/cache"
	"kiosk-quiz/internal/domain"
)

const (
	getStateQuery    = `SELECT value FROM kiosk_state WHERE key = ?`
	upsertStateQuery = `INSERT INTO kiosk_state (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	deleteStateQuery = `DELETE FROM kiosk_state WHERE key = ?`
)

// sqlxStateRepository implements domain.Store on top of the kiosk_state table.
// Queries are written with ? placeholders and rebound for the connected driver.
type sqlxStateRepository struct {
	db      DBTX
	kioskID string
	now     func() time.Time
}

// NewSQLXStateRepository creates a new state repository. With a non-empty kioskID
// keys are namespaced like the Redis store's, so several kiosks can share a database.
func NewSQLXStateRepository(db DBTX, kioskID string) domain.Store {
	return &sqlxStateRepository{db: db, kioskID: kioskID, now: time.Now}
}

func (r *sqlxStateRepository) key(name string) string {
	if r.kioskID == "" {
		return name
	}
	return cache.GenerateStateKey(r.kioskID, name)
}

// Get retrieves a value by key; a missing row is domain.ErrNotFound.
func (r *sqlxStateRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	if err := r.db.GetContext(ctx, &value, r.db.Rebind(getStateQuery), r.key(key)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("failed to get state %s: %w", key, err)
	}
	return value, nil
}

// Set upserts the value of key.
func (r *sqlxStateRepository) Set(ctx context.Context, key string, value string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(upsertStateQuery), r.key(key), value, r.now().UTC()); err != nil {
		return fmt.Errorf("failed to set state %s: %w", key, err)
	}
	return nil
}

// Delete removes key; deleting a missing key is not an error.
func (r *sqlxStateRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(deleteStateQuery), r.key(key)); err != nil {
		return fmt.Errorf("failed to delete state %s: %w", key, err)
	}
	return nil
}
