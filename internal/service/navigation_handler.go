package service

import (
	"context"
	"sync"
	"time"

	"kiosk-quiz/internal/domain"

	"go.uber.org/zap"
)

// Fixed animation delays of a redirect: the pressed control first, then the page transition.
const (
	DefaultPressDelay      = 200 * time.Millisecond
	DefaultTransitionDelay = 100 * time.Millisecond
)

// NavigationHandler maps a directional press on a non-quiz page to the next page
// chosen by the server. Presses are ignored while a navigation is in progress.
type NavigationHandler struct {
	decider         domain.NavigationDecider
	surface         domain.ControlSurface
	navigator       domain.Navigator
	pressDelay      time.Duration
	transitionDelay time.Duration
	sleep           func(ctx context.Context, d time.Duration) error
	log             *zap.Logger

	mu         sync.Mutex
	navigating bool
}

// NewNavigationHandler creates a handler with the given animation delays
func NewNavigationHandler(
	decider domain.NavigationDecider,
	surface domain.ControlSurface,
	navigator domain.Navigator,
	pressDelay, transitionDelay time.Duration,
	log *zap.Logger,
) *NavigationHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &NavigationHandler{
		decider:         decider,
		surface:         surface,
		navigator:       navigator,
		pressDelay:      pressDelay,
		transitionDelay: transitionDelay,
		sleep:           sleepContext,
		log:             log.With(zap.String("component", "navigation")),
	}
}

// Navigating reports whether a press is being handled
func (h *NavigationHandler) Navigating() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.navigating
}

// Press handles one directional press on currentPage
func (h *NavigationHandler) Press(ctx context.Context, currentPage, direction string) error {
	h.mu.Lock()
	if h.navigating {
		h.mu.Unlock()
		h.log.Debug("Ignoring press during navigation", zap.String("direction", direction))
		return nil
	}
	if !h.surface.HasControl(direction) {
		h.mu.Unlock()
		h.log.Debug("No control for direction", zap.String("page", currentPage), zap.String("direction", direction))
		return nil
	}
	h.navigating = true
	h.mu.Unlock()
	defer h.finish()

	h.surface.SetActive(direction, true)
	h.surface.SetNavigating(true)

	h.log.Info("Handling navigation", zap.String("page", currentPage), zap.String("direction", direction))
	decision, err := h.decider.Decide(ctx, currentPage, direction)
	if err != nil {
		h.log.Error("Navigation error", zap.String("page", currentPage), zap.Error(err))
		h.rollback(direction)
		return err
	}
	if decision == nil || decision.Redirect == "" {
		h.rollback(direction)
		return nil
	}

	h.surface.SetTransitioning(true)
	if err := h.sleep(ctx, h.pressDelay); err != nil {
		h.rollback(direction)
		return err
	}
	h.surface.SetActive(direction, false)
	if err := h.sleep(ctx, h.transitionDelay); err != nil {
		h.rollback(direction)
		return err
	}

	if err := h.navigator.Navigate(ctx, decision.Redirect); err != nil {
		h.log.Error("Redirect failed", zap.String("target", decision.Redirect), zap.Error(err))
		h.rollback(direction)
		return err
	}
	return nil
}

func (h *NavigationHandler) rollback(direction string) {
	h.surface.SetActive(direction, false)
	h.surface.SetTransitioning(false)
	h.surface.SetNavigating(false)
}

func (h *NavigationHandler) finish() {
	h.mu.Lock()
	h.navigating = false
	h.mu.Unlock()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
