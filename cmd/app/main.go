package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/zoobzio/clockz"

	"github.com/wichananm65/bridal-checkout/internal/checkout"
	"github.com/wichananm65/bridal-checkout/internal/config"
	"github.com/wichananm65/bridal-checkout/internal/logger"
	"github.com/wichananm65/bridal-checkout/internal/storefront"
	"github.com/wichananm65/bridal-checkout/internal/validation"
	"github.com/wichananm65/bridal-checkout/internal/wallet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo := openRepository(ctx, cfg, log)
	defer closeRepo()

	api := storefront.NewClient(cfg.StorefrontURL, storefront.WithTimeout(cfg.UpstreamTimeout))
	checkoutService := checkout.NewService(repo, api,
		checkout.WithClock(clockz.RealClock),
		checkout.WithLogger(log),
		checkout.WithValidator(validation.New(cfg.Locale)),
		checkout.WithSubmitTimeout(cfg.SubmitTimeout),
		checkout.WithSessionTTL(cfg.SessionTTL),
	)
	walletService := wallet.NewService(api, log)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	setupCORS(app)
	app.Use(requestLogger(log))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		},
	}))

	checkout.NewHandler(checkoutService).RegisterProtectedRoutes(app)
	wallet.NewHandler(walletService).RegisterProtectedRoutes(app)

	go checkoutService.RunSweeper(ctx, cfg.SweepInterval)

	go func() {
		log.Info("checkout service listening", "addr", cfg.Addr, "storefront", cfg.StorefrontURL)
		if err := app.Listen(cfg.Addr); err != nil {
			log.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

// openRepository uses Postgres when DATABASE_URL is set and keeps drafts in
// memory otherwise.
func openRepository(ctx context.Context, cfg config.Config, log *slog.Logger) (checkout.Repository, func()) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL is not set, checkout sessions are kept in memory")
		return checkout.NewInMemoryRepository(), func() {}
	}

	db := mustOpenDB(cfg.DatabaseURL)
	repo := checkout.NewPostgresRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		panic(err)
	}
	return repo, func() { db.Close() }
}

func mustOpenDB(dbURL string) *sql.DB {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		panic(err)
	}

	if err := db.Ping(); err != nil {
		panic(err)
	}

	return db
}

func requestLogger(log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Info("request",
			"method", c.Method(),
			"path", c.OriginalURL(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start))
		return err
	}
}
