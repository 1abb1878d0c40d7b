package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/turismap/internal/adapters/http"
	natsadapter "github.com/samirrijal/turismap/internal/adapters/nats"
	"github.com/samirrijal/turismap/internal/adapters/overpass"
	"github.com/samirrijal/turismap/internal/adapters/postgres"
	"github.com/samirrijal/turismap/internal/adapters/valkey"
	"github.com/samirrijal/turismap/internal/core/categories"
	"github.com/samirrijal/turismap/internal/core/ports"
	"github.com/samirrijal/turismap/internal/core/usecases"
	"github.com/samirrijal/turismap/internal/pkg/config"
	"github.com/samirrijal/turismap/internal/pkg/logging"
	"github.com/samirrijal/turismap/internal/pkg/metrics"
	"github.com/samirrijal/turismap/internal/pkg/telemetry"
	"github.com/samirrijal/turismap/internal/pkg/token"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load("turismap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, os.Getenv("LOG_FORMAT"), "turismap-api")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Session store; logout is a no-op without it
	var sessions ports.SessionStore
	var sessionsPinger http.Pinger
	if store, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer store.Close()
		sessions, sessionsPinger = store, store
	}

	// NATS; search and favorite events are dropped without it
	var publisher ports.EventPublisher
	var natsConn *nats.Conn
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		publisher, natsConn = pub, pub.Conn()
	}

	tokens, err := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	if err != nil {
		log.Fatalf("token manager: %v", err)
	}
	if cfg.Server.IsProduction() && cfg.Auth.JWTSecret == config.DefaultJWTSecret {
		slog.Warn("running in production with the default JWT secret")
	}

	source := overpass.New(cfg.Overpass.URL, cfg.Overpass.Timeout(), overpass.WithUserAgent(cfg.Overpass.UserAgent))
	slog.Info("data source configured", "overpass", source.String())

	// Use cases
	placeSvc := usecases.NewPlaceService(source, categories.Default(), publisher)
	authSvc := usecases.NewAuthService(postgres.NewUserRepo(db), sessions, tokens, cfg.Auth.BcryptCost)
	favoriteSvc := usecases.NewFavoriteService(postgres.NewFavoriteRepo(db), publisher)

	deps := &http.Dependencies{
		Places:    placeSvc,
		Auth:      authSvc,
		Favorites: favoriteSvc,
		NATS:      natsConn,
		DB:        db,
		Sessions:  sessionsPinger,
		Options: http.Options{
			Environment:   cfg.Server.Environment,
			Version:       version,
			DefaultRadius: cfg.Places.DefaultRadius,
			MaxRadius:     cfg.Places.MaxRadius,
		},
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "TurisMap API",
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Pool gauges
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Stat())
			}
		}
	}()

	// Graceful shutdown
	go func() {
		addr := cfg.Server.Addr()
		slog.Info("API server starting", "addr", addr, "environment", cfg.Server.Environment)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	// Events still in flight finish before the NATS connection drains
	placeSvc.Wait()
	favoriteSvc.Wait()

	slog.Info("server stopped")
}
