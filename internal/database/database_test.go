package database

import (
	"context"
	"path/filepath"
	"testing"

	"kiosk-quiz/internal/domain"
	"kiosk-quiz/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLiteDB_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kiosk_state.db")

	db, err := NewSQLiteDB(ctx, path)
	require.NoError(t, err)

	store := repository.NewSQLXStateRepository(db, "")
	_, err = store.Get(ctx, domain.SessionIDKey)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Set(ctx, domain.SessionIDKey, "first"))
	require.NoError(t, store.Set(ctx, domain.SessionIDKey, "second"))
	require.NoError(t, db.Close())

	// state survives reopening the file
	db, err = NewSQLiteDB(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	val, err := repository.NewSQLXStateRepository(db, "").Get(ctx, domain.SessionIDKey)
	require.NoError(t, err)
	assert.Equal(t, "second", val)
}
