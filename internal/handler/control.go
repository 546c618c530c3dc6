package handler

import (
	"context"
	"time"

	"kiosk-quiz/internal/dto"
	"kiosk-quiz/internal/logger"
	"kiosk-quiz/internal/middleware"
	"kiosk-quiz/internal/service"
	"kiosk-quiz/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// KioskControl is the part of the kiosk controller exposed over the local control API
type KioskControl interface {
	CurrentPage() string
	Progress() (service.QuizProgress, bool)
	Press(ctx context.Context, choice string) error
	SelectSet(ctx context.Context, setID int) error
	EnterFullscreen(ctx context.Context) error
}

// ControlHandler drives the kiosk over HTTP, as an alternative to the keyboard
// and GPIO buttons. Errors are rendered by middleware.ErrorHandler.
type ControlHandler struct {
	kiosk     KioskControl
	validator *validation.Validator
}

// NewControlHandler creates a new ControlHandler instance
func NewControlHandler(kiosk KioskControl) *ControlHandler {
	return &ControlHandler{
		kiosk:     kiosk,
		validator: validation.NewValidator(),
	}
}

// Register mounts the control routes on router
func (h *ControlHandler) Register(router fiber.Router) {
	router.Get("/health", h.Health)
	router.Get("/state", h.GetState)
	router.Post("/press", h.Press)
	router.Post("/select", h.SelectSet)
	router.Post("/fullscreen", h.EnterFullscreen)
}

// Health handles GET /control/health
func (h *ControlHandler) Health(c *fiber.Ctx) error {
	now := time.Now().UTC()
	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: float64(now.UnixNano()) / float64(time.Second),
		UTCTime:   now.Format(time.RFC3339),
	})
}

// GetState handles GET /control/state
func (h *ControlHandler) GetState(c *fiber.Ctx) error {
	resp := dto.KioskStateResponse{Page: h.kiosk.CurrentPage()}
	if progress, ok := h.kiosk.Progress(); ok {
		resp.Quiz = &dto.QuizProgressResponse{
			State:      progress.State.String(),
			SetID:      progress.SetID,
			Cursor:     progress.Cursor,
			Tally:      progress.Tally,
			Total:      progress.Total,
			RunID:      progress.RunID,
			ResultPage: progress.ResultPage,
		}
	}
	return c.JSON(resp)
}

// Press handles POST /control/press
func (h *ControlHandler) Press(c *fiber.Ctx) error {
	var req dto.PressRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if errs := h.validator.ValidatePressRequest(req.Choice); len(errs) > 0 {
		return errs
	}
	if _, onQuiz := h.kiosk.Progress(); onQuiz {
		if errs := h.validator.ValidateQuizChoice(req.Choice); len(errs) > 0 {
			return errs
		}
	}

	logger.Get().Info("Control press", zap.String("choice", req.Choice), zap.String("page", h.kiosk.CurrentPage()))
	if err := h.kiosk.Press(c.UserContext(), req.Choice); err != nil {
		return err
	}
	return h.GetState(c)
}

// SelectSet handles POST /control/select
func (h *ControlHandler) SelectSet(c *fiber.Ctx) error {
	var req dto.SelectSetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if errs := h.validator.ValidateSelectSetRequest(req.SetID); len(errs) > 0 {
		return errs
	}

	if err := h.kiosk.SelectSet(c.UserContext(), req.SetID); err != nil {
		return err
	}
	return h.GetState(c)
}

// EnterFullscreen handles POST /control/fullscreen
func (h *ControlHandler) EnterFullscreen(c *fiber.Ctx) error {
	if err := h.kiosk.EnterFullscreen(c.UserContext()); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// NewControlApp builds the fiber app serving the control API under /control
func NewControlApp(kiosk KioskControl) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		IdleTimeout:           30 * time.Second,
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())

	NewControlHandler(kiosk).Register(app.Group("/control"))
	return app
}
