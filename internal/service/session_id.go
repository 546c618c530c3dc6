package service

import (
	"context"
	"errors"
	"sync"

	"kiosk-quiz/internal/domain"

	"go.uber.org/zap"
)

// SessionIDTracker holds the respondent's session identifier and persists it in the store.
type SessionIDTracker struct {
	mu    sync.Mutex
	store domain.Store
	log   *zap.Logger
	id    string
}

// NewSessionIDTracker loads a previously persisted session id, if any.
// A store failure is logged and treated as "no id yet".
func NewSessionIDTracker(ctx context.Context, store domain.Store, log *zap.Logger) *SessionIDTracker {
	if log == nil {
		log = zap.NewNop()
	}
	t := &SessionIDTracker{store: store, log: log}

	id, err := store.Get(ctx, domain.SessionIDKey)
	switch {
	case err == nil:
		t.id = id
	case errors.Is(err, domain.ErrNotFound):
	default:
		log.Warn("Failed to load session id", zap.Error(err))
	}
	return t
}

// ID returns the held session id, or "" if none has been issued yet
func (t *SessionIDTracker) ID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.id
}

// Adopt keeps id when no session id is held yet and reports whether it did.
// The id stays held for this process even if persisting it fails.
func (t *SessionIDTracker) Adopt(ctx context.Context, id string) bool {
	t.mu.Lock()
	if t.id != "" || id == "" {
		t.mu.Unlock()
		return false
	}
	t.id = id
	t.mu.Unlock()

	if err := t.store.Set(ctx, domain.SessionIDKey, id); err != nil {
		t.log.Warn("Failed to persist session id", zap.String("session_id", id), zap.Error(err))
	} else {
		t.log.Info("Session id adopted", zap.String("session_id", id))
	}
	return true
}
