package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	product "github.com/dvalenzuela-dev/shopbag-backend/internal/products"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/config"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/db"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/db/models"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/logger"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/storefront"
)

// seed pulls the upstream catalog and upserts it into the local store.
func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if cfg.DB.AutoMigrate {
		if err := dbClient.AutoMigrate(ctx, logg); err != nil {
			logg.Error(ctx, "failed to migrate database", err)
			os.Exit(1)
		}
	}

	remote, err := storefront.NewHTTPClient(cfg.Remote, logg)
	if err != nil {
		logg.Error(ctx, "failed to build storefront client", err)
		os.Exit(1)
	}

	productService, err := product.NewService(product.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(ctx, "failed to create product service", err)
		os.Exit(1)
	}

	if err := run(ctx, logg, remote, productService); err != nil {
		logg.Error(ctx, "seed failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logg *logger.Logger, remote storefront.Client, svc product.Service) error {
	remoteProducts, err := remote.FetchProducts(ctx)
	if err != nil {
		return err
	}

	var failures error
	rows := make([]models.Product, 0, len(remoteProducts))
	for _, rp := range remoteProducts {
		row, err := toModel(rp)
		if err != nil {
			failures = multierr.Append(failures, err)
			continue
		}
		rows = append(rows, row)
	}

	count, err := svc.ImportCatalog(ctx, rows)
	if err != nil {
		return multierr.Append(failures, err)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"fetched":  len(remoteProducts),
		"imported": count,
	})
	logg.Info(ctx, "catalog seeded")
	return failures
}

func toModel(rp storefront.RemoteProduct) (models.Product, error) {
	if strings.TrimSpace(rp.ID) == "" {
		return models.Product{}, fmt.Errorf("remote product %q has no id", rp.Title)
	}
	if rp.Price.IsNegative() {
		return models.Product{}, fmt.Errorf("remote product %s has negative price %s", rp.ID, rp.Price)
	}
	return models.Product{
		ID:              rp.ID,
		Title:           rp.Title,
		Description:     rp.Description,
		Brand:           rp.Brand,
		Category:        rp.Category,
		Price:           rp.Price,
		DiscountPercent: rp.DiscountPercent,
		Rating:          rp.Rating,
		Stock:           rp.Stock,
		Thumbnail:       rp.Thumbnail,
		Images:          rp.Images,
	}, nil
}
