package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"riskintel-backend/internal/access"
	"riskintel-backend/internal/admin"
	"riskintel-backend/internal/analytics"
	"riskintel-backend/internal/api"
	"riskintel-backend/internal/audit"
	"riskintel-backend/internal/auth"
	"riskintel-backend/internal/config"
	"riskintel-backend/internal/prefs"
	"riskintel-backend/internal/storage"
	"riskintel-backend/internal/store"
	"riskintel-backend/internal/theme"
)

func main() {
	ctx := context.Background()

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Config loaded (port: %d, db: %s:%d/%s)", cfg.Server.Port, cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)

	// 2. Connect to database
	db, err := store.New(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	// 3. Bootstrap system tables
	if err := db.Bootstrap(ctx); err != nil {
		log.Fatalf("Failed to bootstrap system tables: %v", err)
	}
	log.Println("System tables ready")

	// 4. Audit trail (nil buffer when disabled — a nil *Buffer is a no-op)
	var auditBuf *audit.Buffer
	if cfg.Audit.Enabled {
		auditBuf = audit.NewBuffer(db.Pool, cfg.Audit.BufferSize, cfg.Audit.FlushIntervalMs)
		defer auditBuf.Stop()
	}

	// 5. Access gate
	gate := access.NewGate(auditBuf)

	// 6. Server-default theme resolver, persisted across restarts. There is
	// no platform color-scheme signal in a server process, so light is the
	// system fallback.
	resolver := theme.NewResolver(storage.NewFileStore(cfg.Theme.StatePath), nil)
	defer resolver.Close()
	if theme.ValidMode(theme.Mode(cfg.Theme.DefaultMode)) && resolver.Mode() == theme.ModeSystem {
		resolver.SetMode(theme.Mode(cfg.Theme.DefaultMode))
	}

	// 7. Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))

	// 8. Health check and public default theme
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/api/theme", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"data": fiber.Map{
			"mode":     resolver.Mode(),
			"resolved": resolver.ResolvedMode(),
			"tokens":   resolver.Theme(),
		}})
	})

	// 9. Auth routes and middleware
	authMW := auth.Middleware(db, cfg.JWTSecret)
	authHandler := auth.NewHandler(db, cfg.JWTSecret, auditBuf)
	auth.RegisterRoutes(app, authHandler, authMW)

	// 10. Current-user preferences, onboarding, theme
	prefsHandler := prefs.NewHandler(prefs.NewRepo(db))
	prefs.RegisterRoutes(app, prefsHandler, authMW)

	// 11. Analytics widgets and alert rules
	analyticsHandler := analytics.NewHandler(db)
	analytics.RegisterRoutes(app, analyticsHandler, authMW, gate)

	// 12. User administration
	adminHandler := admin.NewHandler(db)
	admin.RegisterRoutes(app, adminHandler, authMW, gate)

	// 13. Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Starting server on %s", addr)
	log.Fatal(app.Listen(addr))
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	var appErr *api.AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.Status).JSON(api.ErrorResponse{Error: appErr})
	}

	log.Printf("ERROR: %v", err)
	return c.Status(code).JSON(api.ErrorResponse{
		Error: &api.AppError{
			Code:    "INTERNAL_ERROR",
			Message: "Internal server error",
		},
	})
}
