package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kiosk-quiz/internal/adapter"
	"kiosk-quiz/internal/cache"
	"kiosk-quiz/internal/config"
	"kiosk-quiz/internal/database"
	"kiosk-quiz/internal/domain"
	"kiosk-quiz/internal/handler"
	"kiosk-quiz/internal/logger"
	"kiosk-quiz/internal/repository"
	"kiosk-quiz/internal/service"
	"kiosk-quiz/internal/view"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// openStore returns the state store for the configured driver and a func releasing it
func openStore(ctx context.Context, cfg *config.Config) (domain.Store, func(), error) {
	switch cfg.Storage.Driver {
	case "redis":
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return adapter.NewRedisStore(client, cfg.Kiosk.ID), func() { _ = client.Close() }, nil
	case "postgres":
		db, err := database.NewPostgresDB(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewSQLXStateRepository(db, cfg.Kiosk.ID), func() { _ = db.Close() }, nil
	case "memory":
		return adapter.NewMemoryStore(), func() {}, nil
	default:
		db, err := database.NewSQLiteDB(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewSQLXStateRepository(db, ""), func() { _ = db.Close() }, nil
	}
}

// readInput dispatches console commands until in is exhausted or the user quits
func readInput(ctx context.Context, in io.Reader, ctrl *service.KioskController, appLogger *zap.Logger) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-lines:
			if !ok {
				return nil
			}
		}

		cmd, err := view.ParseInput(line)
		if err != nil {
			appLogger.Debug("Ignoring console input", zap.String("input", line), zap.Error(err))
			continue
		}
		switch cmd.Kind {
		case view.CommandQuit:
			return errQuit
		case view.CommandFullscreen:
			err = ctrl.EnterFullscreen(ctx)
		case view.CommandSelectSet:
			err = ctrl.SelectSet(ctx, cmd.SetID)
		case view.CommandPress:
			err = ctrl.Press(ctx, cmd.Choice)
		}
		if err != nil {
			appLogger.Warn("Console command failed", zap.String("input", line), zap.Error(err))
		}
	}
}

var errQuit = errors.New("quit requested")

func main() {
	// A .env file next to the binary may carry KIOSK_* overrides
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Failed to load .env file: %v", err)
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		appLogger.Fatal("Failed to open state store", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer closeStore()
	appLogger.Info("State store initialized", zap.String("driver", cfg.Storage.Driver))

	client := adapter.NewKioskAPIClient(cfg.Server.BaseURL, cfg.Server.RequestTimeout)
	healthCtx, cancelHealth := context.WithTimeout(ctx, cfg.Server.RequestTimeout)
	if err := client.Health(healthCtx); err != nil {
		appLogger.Warn("Kiosk server is not healthy yet", zap.String("base_url", cfg.Server.BaseURL), zap.Error(err))
	}
	cancelHealth()

	console := view.NewConsole(os.Stdout, nil)
	session := service.NewSessionIDTracker(ctx, store, appLogger)
	keeper := service.NewFullscreenKeeper(console, store, cfg.Fullscreen.ReentryDelay, appLogger)

	ctrl := service.NewKioskController(
		service.KioskOptions{
			StartPage:     cfg.Kiosk.StartPage,
			QuizPage:      cfg.Kiosk.QuizPage,
			GPIOEnabled:   cfg.Kiosk.GPIOEnabled,
			AutoSelectSet: cfg.AutoSelectSet(),
		},
		client, client, client,
		console, session, keeper,
		cfg.Navigation.PressDelay, cfg.Navigation.TransitionDelay,
		appLogger,
	)
	ctrl.AttachEventStream(adapter.NewEventStream(cfg.EventsURL(), nil), cfg.GPIO.ReconnectDelay)

	appLogger.Info("Starting kiosk",
		zap.String("kiosk_id", cfg.Kiosk.ID),
		zap.String("base_url", cfg.Server.BaseURL),
		zap.Bool("gpio_enabled", cfg.Kiosk.GPIOEnabled),
		zap.Bool("test_mode", cfg.Kiosk.TestMode),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ctrl.Run(gctx) })
	g.Go(func() error { return readInput(gctx, os.Stdin, ctrl, appLogger) })
	if cfg.Control.Enabled {
		app := handler.NewControlApp(ctrl)
		g.Go(func() error {
			appLogger.Info("Starting control API", zap.String("addr", cfg.Control.ListenAddr))
			return app.Listen(cfg.Control.ListenAddr)
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return app.ShutdownWithContext(shutdownCtx)
		})
	}

	start := time.Now()
	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) {
		console.ExitFullscreen()
		appLogger.Fatal("Kiosk stopped with error", zap.Error(err))
	}
	console.ExitFullscreen()
	appLogger.Info("Kiosk exited gracefully", zap.Duration("uptime", time.Since(start)))
}
