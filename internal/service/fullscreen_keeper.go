package service

import (
	"context"
	"errors"
	"time"

	"kiosk-quiz/internal/domain"

	"go.uber.org/zap"
)

// DefaultReentryDelay debounces re-entering fullscreen after an exit
const DefaultReentryDelay = 300 * time.Millisecond

const fullscreenActiveValue = "true"

// FullscreenKeeper puts the display back into fullscreen whenever it leaves it,
// as long as fullscreen was entered once. The persisted flag is never cleared here;
// leaving kiosk mode means clearing the store by hand.
type FullscreenKeeper struct {
	display domain.Display
	store   domain.Store
	delay   time.Duration
	log     *zap.Logger
}

// NewFullscreenKeeper creates a keeper for display
func NewFullscreenKeeper(display domain.Display, store domain.Store, delay time.Duration, log *zap.Logger) *FullscreenKeeper {
	if log == nil {
		log = zap.NewNop()
	}
	return &FullscreenKeeper{
		display: display,
		store:   store,
		delay:   delay,
		log:     log.With(zap.String("component", "fullscreen")),
	}
}

// Enter requests fullscreen and (re)sets the persisted flag
func (k *FullscreenKeeper) Enter(ctx context.Context) error {
	err := k.display.RequestFullscreen(ctx)
	if err != nil {
		k.log.Warn("Fullscreen request failed", zap.Error(err))
	}
	if setErr := k.store.Set(ctx, domain.FullscreenActiveKey, fullscreenActiveValue); setErr != nil {
		k.log.Error("Failed to persist fullscreen flag", zap.Error(setErr))
		return errors.Join(err, setErr)
	}
	return err
}

// Active reports whether the persisted flag is set
func (k *FullscreenKeeper) Active(ctx context.Context) bool {
	val, err := k.store.Get(ctx, domain.FullscreenActiveKey)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			k.log.Warn("Failed to read fullscreen flag", zap.Error(err))
		}
		return false
	}
	return val == fullscreenActiveValue
}

// Run restores fullscreen at start-up and after every exit until ctx is done.
// At most one re-entry is pending at a time.
func (k *FullscreenKeeper) Run(ctx context.Context) error {
	if k.Active(ctx) {
		_ = k.Enter(ctx)
	}

	var pending *time.Timer
	var fire <-chan time.Time
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	changes := k.display.Changes()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			if fire != nil || k.display.IsFullscreen() || !k.Active(ctx) {
				continue
			}
			k.log.Debug("Fullscreen exited, scheduling re-entry", zap.Duration("delay", k.delay))
			pending = time.NewTimer(k.delay)
			fire = pending.C
		case <-fire:
			fire = nil
			pending = nil
			_ = k.Enter(ctx)
		}
	}
}
