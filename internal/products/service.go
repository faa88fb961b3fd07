package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dvalenzuela-dev/shopbag-backend/pkg/db/models"
	pkgerrors "github.com/dvalenzuela-dev/shopbag-backend/pkg/errors"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/logger"
	"gorm.io/gorm"
)

// Service exposes catalog read and favorite operations.
type Service interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, input ListProductsInput) ([]models.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	ListFavorites(ctx context.Context) ([]models.Product, error)
	SetFavorite(ctx context.Context, id string, favorite bool) error
	ToggleFavorite(ctx context.Context, id string) (*models.Product, error)
	ImportCatalog(ctx context.Context, products []models.Product) (int, error)
	ClearCatalog(ctx context.Context) error
}

// ListProductsInput narrows the catalog listing. Category and Query are
// mutually exclusive filters; when both are set Query wins.
type ListProductsInput struct {
	Category string
	Query    string
}

type service struct {
	repo   *Repository
	logger *logger.Logger
}

// NewService constructs a product service instance.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logger: logg}, nil
}

// GetProduct loads a single product by ID.
func (s *service) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Product ID cannot be empty")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": id})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

// ListProducts returns the catalog, optionally filtered by category or a
// free-text query.
func (s *service) ListProducts(ctx context.Context, input ListProductsInput) ([]models.Product, error) {
	var (
		rows []models.Product
		err  error
	)
	switch {
	case strings.TrimSpace(input.Query) != "":
		rows, err = s.repo.Search(ctx, input.Query)
	case strings.TrimSpace(input.Category) != "":
		rows, err = s.repo.ListByCategory(ctx, strings.TrimSpace(input.Category))
	default:
		rows, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, nil
}

// ListCategories returns the distinct catalog categories.
func (s *service) ListCategories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return categories, nil
}

// ListFavorites returns products flagged as favorites.
func (s *service) ListFavorites(ctx context.Context) ([]models.Product, error) {
	rows, err := s.repo.ListFavorites(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list favorites")
	}
	return rows, nil
}

// SetFavorite flags or unflags a product as a favorite.
func (s *service) SetFavorite(ctx context.Context, id string, favorite bool) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "Product ID cannot be empty")
	}
	updated, err := s.repo.SetFavorite(ctx, id, favorite)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set favorite")
	}
	if !updated {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
			WithDetails(map[string]any{"product_id": id})
	}
	return nil
}

// ToggleFavorite flips the favorite flag and returns the updated product.
func (s *service) ToggleFavorite(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.SetFavorite(ctx, id, !product.IsFavorite); err != nil {
		return nil, err
	}
	product.IsFavorite = !product.IsFavorite
	return product, nil
}

// ImportCatalog upserts the given products and returns how many were written.
// Rows missing an ID are skipped with a warning.
func (s *service) ImportCatalog(ctx context.Context, products []models.Product) (int, error) {
	valid := make([]models.Product, 0, len(products))
	for _, p := range products {
		if strings.TrimSpace(p.ID) == "" {
			s.logger.Warn(s.logger.WithField(ctx, "title", p.Title), "skipping product without id")
			continue
		}
		valid = append(valid, p)
	}
	if len(valid) == 0 {
		return 0, nil
	}
	if err := s.repo.UpsertAll(ctx, valid); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "import catalog")
	}
	return len(valid), nil
}

// ClearCatalog removes every product.
func (s *service) ClearCatalog(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear catalog")
	}
	return nil
}
