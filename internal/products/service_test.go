package product

import (
	"context"
	"io"
	"testing"

	"github.com/dvalenzuela-dev/shopbag-backend/pkg/db/models"
	pkgerrors "github.com/dvalenzuela-dev/shopbag-backend/pkg/errors"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	conn := openTestDB(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo, logger.New(logger.Options{Output: io.Discard}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo
}

func TestGetProduct(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	seeded := mustCreateTestProduct(t, repo.db)

	t.Run("found", func(t *testing.T) {
		got, err := svc.GetProduct(ctx, seeded.ID)
		if err != nil {
			t.Fatalf("expected product, got %v", err)
		}
		if got.Title != seeded.Title {
			t.Fatalf("expected title %q, got %q", seeded.Title, got.Title)
		}
	})

	t.Run("missingID", func(t *testing.T) {
		_, err := svc.GetProduct(ctx, "  ")
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
		if typed.Message() != "Product ID cannot be empty" {
			t.Fatalf("unexpected message %q", typed.Message())
		}
	})

	t.Run("unknownID", func(t *testing.T) {
		_, err := svc.GetProduct(ctx, "does-not-exist")
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
			t.Fatalf("expected not found error, got %v", err)
		}
	})
}

func TestListProductsFilters(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	mustCreateTestProduct(t, repo.db, func(p *models.Product) {
		p.Title = "iPhone 15"
		p.Brand = "Apple"
		p.Category = "smartphones"
	})
	mustCreateTestProduct(t, repo.db, func(p *models.Product) {
		p.Title = "Galaxy S24"
		p.Brand = "Samsung"
		p.Category = "smartphones"
	})
	mustCreateTestProduct(t, repo.db, func(p *models.Product) {
		p.Title = "Office Chair"
		p.Brand = "Herman Miller"
		p.Category = "furniture"
	})

	t.Run("all", func(t *testing.T) {
		rows, err := svc.ListProducts(ctx, ListProductsInput{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("expected 3 products, got %d", len(rows))
		}
	})

	t.Run("byCategory", func(t *testing.T) {
		rows, err := svc.ListProducts(ctx, ListProductsInput{Category: "furniture"})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(rows) != 1 || rows[0].Title != "Office Chair" {
			t.Fatalf("unexpected rows %+v", rows)
		}
	})

	t.Run("searchMatchesBrand", func(t *testing.T) {
		rows, err := svc.ListProducts(ctx, ListProductsInput{Query: "samsung"})
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(rows) != 1 || rows[0].Title != "Galaxy S24" {
			t.Fatalf("unexpected rows %+v", rows)
		}
	})

	t.Run("queryWinsOverCategory", func(t *testing.T) {
		rows, err := svc.ListProducts(ctx, ListProductsInput{Category: "furniture", Query: "iphone"})
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(rows) != 1 || rows[0].Title != "iPhone 15" {
			t.Fatalf("unexpected rows %+v", rows)
		}
	})
}

func TestListCategories(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	mustCreateTestProduct(t, repo.db, func(p *models.Product) { p.Category = "smartphones" })
	mustCreateTestProduct(t, repo.db, func(p *models.Product) { p.Category = "smartphones" })
	mustCreateTestProduct(t, repo.db, func(p *models.Product) { p.Category = "furniture" })

	categories, err := svc.ListCategories(ctx)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(categories) != 2 || categories[0] != "furniture" || categories[1] != "smartphones" {
		t.Fatalf("unexpected categories %v", categories)
	}
}

func TestFavorites(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	seeded := mustCreateTestProduct(t, repo.db)

	t.Run("toggleOn", func(t *testing.T) {
		got, err := svc.ToggleFavorite(ctx, seeded.ID)
		if err != nil {
			t.Fatalf("toggle: %v", err)
		}
		if !got.IsFavorite {
			t.Fatal("expected product to be favorited")
		}
		favs, err := svc.ListFavorites(ctx)
		if err != nil {
			t.Fatalf("list favorites: %v", err)
		}
		if len(favs) != 1 || favs[0].ID != seeded.ID {
			t.Fatalf("unexpected favorites %+v", favs)
		}
	})

	t.Run("toggleOff", func(t *testing.T) {
		got, err := svc.ToggleFavorite(ctx, seeded.ID)
		if err != nil {
			t.Fatalf("toggle: %v", err)
		}
		if got.IsFavorite {
			t.Fatal("expected favorite to be cleared")
		}
	})

	t.Run("unknownProduct", func(t *testing.T) {
		err := svc.SetFavorite(ctx, "nope", true)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestImportCatalog(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	seeded := mustCreateTestProduct(t, repo.db, func(p *models.Product) {
		p.Title = "Old Title"
		p.IsFavorite = true
	})

	incoming := []models.Product{
		{
			ID:    seeded.ID,
			Title: "New Title",
			Price: decimal.RequireFromString("25.00"),
		},
		{
			ID:    "p-fresh",
			Title: "Fresh Product",
			Price: decimal.RequireFromString("9.99"),
		},
		{
			// no ID, skipped
			Title: "Orphan",
		},
	}

	count, err := svc.ImportCatalog(ctx, incoming)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 imported, got %d", count)
	}

	updated, err := svc.GetProduct(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if updated.Title != "New Title" {
		t.Fatalf("expected upsert to replace title, got %q", updated.Title)
	}
	if !updated.IsFavorite {
		t.Fatal("expected favorite flag to survive the import")
	}
	if !updated.Price.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("expected refreshed price, got %s", updated.Price)
	}

	if _, err := svc.GetProduct(ctx, "p-fresh"); err != nil {
		t.Fatalf("expected fresh product, got %v", err)
	}
}

func TestClearCatalog(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	mustCreateTestProduct(t, repo.db)
	mustCreateTestProduct(t, repo.db)

	if err := svc.ClearCatalog(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	rows, err := svc.ListProducts(ctx, ListProductsInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty catalog, got %d rows", len(rows))
	}
}
