package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dvalenzuela-dev/shopbag-backend/api/routes"
	cartsvc "github.com/dvalenzuela-dev/shopbag-backend/internal/cart"
	"github.com/dvalenzuela-dev/shopbag-backend/internal/cartsync"
	"github.com/dvalenzuela-dev/shopbag-backend/internal/pricing"
	product "github.com/dvalenzuela-dev/shopbag-backend/internal/products"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/config"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/db"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/logger"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/metrics"
	pkgredis "github.com/dvalenzuela-dev/shopbag-backend/pkg/redis"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/storefront"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if cfg.DB.AutoMigrate {
		if err := dbClient.AutoMigrate(context.Background(), logg); err != nil {
			logg.Error(context.Background(), "failed to migrate database", err)
			os.Exit(1)
		}
	}

	var (
		cacheP    pkgredis.Pinger
		idemStore pkgredis.IdempotencyStore
	)
	if cfg.Redis.Enabled() {
		redisClient, err := pkgredis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		cacheP = redisClient
		idemStore = redisClient
	} else {
		logg.Warn(context.Background(), "redis not configured, idempotency replay guard disabled")
	}

	remote, err := buildStorefront(cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build storefront client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	syncMetrics := metrics.NewSyncMetrics(registry)

	productService, err := product.NewService(product.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	shipping := pricing.FreeAbove(cfg.Pricing.ShippingFreeThreshold, cfg.Pricing.ShippingFlatFee)
	cartService, err := cartsvc.NewService(
		cartsvc.NewRepository(dbClient.DB()),
		product.NewRepository(dbClient.DB()),
		logg,
		cfg.Pricing.TaxRate,
		shipping,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	syncService, err := cartsync.NewService(cartService, remote, logg, syncMetrics, cfg.Remote.Timeout)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart sync service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg, logg,
			dbClient, cacheP, idemStore,
			registry,
			productService, cartService, syncService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

// buildStorefront picks the remote implementation. Which one runs is an
// explicit startup decision, so tests and dev environments never hit a live
// upstream by accident.
func buildStorefront(cfg *config.Config, logg *logger.Logger) (storefront.Client, error) {
	if cfg.Remote.UseMock {
		logg.Warn(context.Background(), "using in-memory mock storefront")
		return storefront.NewMock(nil), nil
	}
	return storefront.NewHTTPClient(cfg.Remote, logg)
}
