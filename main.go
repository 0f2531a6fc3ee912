package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"invoice-backend/cache"
	"invoice-backend/config"
	"invoice-backend/controllers"
	"invoice-backend/database"
	"invoice-backend/mailer"
	"invoice-backend/middlewares"
	"invoice-backend/pdf"
	"invoice-backend/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// ---- Database
	if err := database.Connect(cfg.DB); err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	if err := database.AutoMigrate(database.DB); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	middlewares.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.TTL)

	// ---- PDF cache: Redis when configured, in-process otherwise
	var store cache.Store = cache.NewMemory()
	if cfg.Redis.URL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := cache.Dial(ctx, cfg.Redis.URL)
		cancel()
		if err != nil {
			slog.Warn("redis unavailable, using in-memory pdf cache", "error", err)
		} else {
			store = rdb
			defer rdb.Close()
		}
	}

	controllers.Setup(controllers.Deps{
		Mailer:      mailer.NewSMTP(cfg.Email, logger),
		PDFCache:    store,
		PDFCacheTTL: cfg.Redis.PDFTTL,
		Renderer:    pdf.NewRenderer(pdf.WithLogger(logger)),
		Domain:      cfg.Domain,
		Logger:      logger,
	})

	// ---- Fiber app with global error handler + body limit
	app := fiber.New(fiber.Config{
		ErrorHandler: middlewares.ErrorHandler,
		BodyLimit:    cfg.BodyLimitBytes,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: false, // using Bearer tokens, not cookies
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
	}))

	// Default KeyGenerator is the client IP.
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWin,
	}))

	routes.Register(app)

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		slog.Info("shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("starting invoice API", "port", cfg.Port, "db_driver", cfg.DB.Driver)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
