package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/coupon-api/internal/config"
	"github.com/fairyhunter13/coupon-api/internal/handler"
	"github.com/fairyhunter13/coupon-api/internal/metrics"
	"github.com/fairyhunter13/coupon-api/internal/middleware"
	"github.com/fairyhunter13/coupon-api/internal/model"
	"github.com/fairyhunter13/coupon-api/internal/repository"
	"github.com/fairyhunter13/coupon-api/internal/service"
	validation "github.com/fairyhunter13/coupon-api/internal/validator"
	"github.com/fairyhunter13/coupon-api/pkg/database"
)

// dbConnectRetries bounds startup attempts against PostgreSQL.
const dbConnectRetries = 5

// couponStore is what both store backends provide.
type couponStore interface {
	service.CouponRepositoryInterface
	handler.Pinger
}

// openStore builds the configured coupon store and returns a func releasing its resources.
func openStore(ctx context.Context, cfg *config.Config) (couponStore, func(), error) {
	now := time.Now().UTC()

	switch cfg.Store.Driver {
	case config.StorePostgres:
		pool, err := database.NewPool(ctx, cfg.DB.DSN(), dbConnectRetries)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewCouponRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		if cfg.Store.Seed {
			if err := repo.SeedIfEmpty(ctx, repository.SeedCoupons(now)); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}
		return repo, func() {
			log.Info().Msg("closing database connections...")
			pool.Close()
		}, nil

	case config.StoreMemory:
		var seed []model.Coupon
		if cfg.Store.Seed {
			seed = repository.SeedCoupons(now)
		}
		return repository.NewMemoryCouponRepository(seed...), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// newApp assembles the fiber app: middleware, health, metrics and the coupon routes.
func newApp(cfg *config.Config, store couponStore, m *metrics.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Coupon API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: handler.ErrorHandler,
	})

	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(middleware.Logger())
	if cfg.Metrics.Enabled {
		app.Use(middleware.Metrics(m))
	}
	app.Use(middleware.Tracing(otel.GetTracerProvider(), otel.GetTextMapPropagator()))
	// Innermost, so a recovered panic reaches the access log and metrics as a 500.
	app.Use(recover.New())

	if cfg.Metrics.Enabled {
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(m.Handler()))
	}

	healthHandler := handler.NewHealthHandler(store)
	app.Get("/health", healthHandler.Check)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	api := app.Group(cfg.API.BasePath, limiter.Handler())

	couponService := service.NewCouponService(store, m)
	couponHandler := handler.NewCouponHandler(couponService, validation.New())
	handler.RegisterCouponRoutes(api, couponHandler)

	return app
}
