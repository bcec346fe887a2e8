// main.go - Disc golf journey progression server
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"discjourney/catalog"
	"discjourney/config"
	"discjourney/database"
	"discjourney/handlers"
	"discjourney/middleware"
	"discjourney/progression"
	"discjourney/services"
	"discjourney/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

const (
	eventBuffer     = 32
	shutdownTimeout = 10 * time.Second
	version         = "1.0.0"
)

func main() {
	foundDotEnv := config.LoadDotEnv()

	cfg, err := config.FromEnv()
	if err != nil {
		fatal(err)
	}

	log, err := utils.NewLogger(cfg.IsProduction())
	if err != nil {
		fatal(err)
	}
	defer func() { _ = log.Sync() }()

	if !foundDotEnv {
		log.Info(".env file not found, using system environment variables")
	}

	warnings, err := cfg.Validate()
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	for _, w := range warnings {
		log.Warn(w)
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	cat, issues, err := catalog.Load(catalog.Options{
		Path:          cfg.CatalogPath,
		ExtraDisabled: catalog.ParseDisabledList(cfg.DisabledAchievements),
	})
	for _, issue := range issues {
		if issue.Warning {
			log.Warn("catalog issue", zap.String("issue", issue.String()))
		} else {
			log.Error("catalog issue", zap.String("issue", issue.String()))
		}
	}
	if err != nil {
		return err
	}
	log.Info("catalog loaded",
		zap.Int("achievements", len(cat.Definitions())),
		zap.Strings("disabled", cat.DisabledIDs()))

	clock, err := progression.NewZoneClock(cfg.ReferenceTZ)
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.DatabaseURL, database.Options{Verbose: !cfg.IsProduction()}, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.CloseDB(); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}()

	clubs := services.NewClubService(db)
	store := services.NewAchievementStore(db, clubs, log)
	queue := services.NewWriteQueue(store, services.CatalogSummarizer(cat, clock), cfg.WriteDebounce, log)
	hub := services.NewEventHub(eventBuffer, log)

	// The queue outlives the signal context so that writes accepted while
	// the server drains are still flushed by Stop.
	queue.Start(context.Background())
	defer queue.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := handlers.New(handlers.Deps{
		DB:           db,
		Auth:         middleware.NewAuth(cfg.JWTSecret, db, log),
		Progress:     services.NewProgressService(cat, store, queue, hub, clock, log),
		Leaderboards: services.NewLeaderboardService(db, clubs, clock),
		Clubs:        clubs,
		Hub:          hub,
		Log:          log,
	})
	app := newApp(cfg, h, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.AppEnv),
			zap.String("reference_tz", clock.Now().Location().String()),
			zap.Duration("write_debounce", cfg.WriteDebounce))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	return app.ShutdownWithTimeout(shutdownTimeout)
}

func newApp(cfg *config.Config, h *handlers.Handler, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler(cfg, log),
		BodyLimit:    1 * 1024 * 1024,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))
	app.Use("/api", middleware.GeneralRateLimit(cfg))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   version,
		})
	})

	h.Routes(app, middleware.AuthRateLimit(cfg))
	return app
}

func errorHandler(cfg *config.Config, log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}

		if code == fiber.StatusInternalServerError {
			log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
			// Don't expose internal errors in production
			if cfg.IsProduction() {
				message = "An error occurred. Please try again later."
			}
		}

		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"error":   message,
		})
	}
}

func fatal(err error) {
	_, _ = os.Stderr.WriteString("FATAL: " + err.Error() + "\n")
	os.Exit(1)
}
