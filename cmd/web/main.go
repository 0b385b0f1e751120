package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"github.com/lmittmann/tint"

	"akash-aiml/resume-score-analyzer/internal/config"
	"akash-aiml/resume-score-analyzer/internal/handlers"
	"akash-aiml/resume-score-analyzer/internal/services"
	"akash-aiml/resume-score-analyzer/views"
)

func main() {
	// Load configuration
	cfg := config.Load()
	setupLogger(cfg)
	slog.Info("✅ Config loaded successfully", "api_url", cfg.API.BaseURL, "env", cfg.Server.Env)

	// Initialize services
	apiClient := services.NewHTTPClient(cfg.API)
	analyzer := services.NewResumeAnalyzer(apiClient)
	slog.Info("✅ Scoring API client initialized", "base_url", apiClient.BaseURL())

	registry := services.NewSessionRegistry(func() *services.FormController {
		return services.NewFormController(analyzer, cfg.Upload.MaxFileSize)
	}, cfg.Session.Expiration)

	ctx := context.Background()
	registry.Start(ctx)

	store := session.New(session.Config{
		Expiration:     cfg.Session.Expiration,
		KeyLookup:      "cookie:" + cfg.Session.CookieName,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		KeyGenerator:   uuid.NewString,
	})

	// Initialize Handlers
	formHandler := handlers.NewFormHandler(store, registry, cfg.Upload.MaxFileSize)
	slog.Info("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Resume Score Analyzer",
		ReadTimeout:  30 * time.Second,
		BodyLimit:    cfg.Upload.BodyLimit(),
		Views:        views.NewEngine(),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Get("/health", handlers.HandleHealth)
	formHandler.Register(app)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		slog.Info("🛑 Shutting down server...")
		registry.Stop()
		if err := app.Shutdown(); err != nil {
			slog.Error("❌ Server forced to shutdown", "error", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	slog.Info("🚀 Server starting", "addr", addr)

	if err := app.Listen(addr); err != nil {
		slog.Error("❌ Failed to start server", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg *config.Config) {
	level := slog.LevelInfo
	if cfg.IsDevelopment() {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05",
		}),
	))
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
