package domain

import (
	"context"
)

// StoreError represents an error originating from the state store.
type StoreError string

func (e StoreError) Error() string {
	return string(e)
}

// ErrNotFound is returned when a key is not present in the store.
const ErrNotFound = StoreError("store: key not found")

// Persisted keys shared across page loads.
const (
	SessionIDKey        = "sessionId"
	FullscreenActiveKey = "fullscreenActive"
)

// Store defines the interface (port) for state that survives a kiosk restart.
// Implementations are adapters (Redis, SQLite, memory). Access is last-write-wins.
type Store interface {
	// Get retrieves the value stored under key.
	// It returns ErrNotFound if the key is not present.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value string) error

	// Delete removes key. It does not return an error if the key is absent.
	Delete(ctx context.Context, key string) error
}
