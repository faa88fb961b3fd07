package product

import (
	"context"
	"strings"

	"github.com/dvalenzuela-dev/shopbag-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository wires together product persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads a single product by its identifier.
func (r *Repository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads the products matching the given identifiers. Missing IDs
// are silently absent from the result.
func (r *Repository) FindByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&rows).
		Error
	return rows, err
}

// List returns all products ordered by title.
func (r *Repository) List(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Order("title ASC").
		Find(&rows).
		Error
	return rows, err
}

// ListByCategory returns the products in a category ordered by title.
func (r *Repository) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("category = ?", category).
		Order("title ASC").
		Find(&rows).
		Error
	return rows, err
}

// Search matches the query case-insensitively against title, brand, and
// description.
func (r *Repository) Search(ctx context.Context, query string) ([]models.Product, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("LOWER(title) LIKE ? OR LOWER(brand) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern, pattern).
		Order("title ASC").
		Find(&rows).
		Error
	return rows, err
}

// ListCategories returns the distinct category names in alphabetical order.
func (r *Repository) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).
		Error
	return categories, err
}

// Upsert inserts the product or updates the existing row with the same ID.
// The favorite flag is preserved on conflict so catalog refreshes do not
// clobber a local toggle.
func (r *Repository) Upsert(ctx context.Context, product *models.Product) (*models.Product, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "description", "brand", "category",
				"price", "discount_percent", "rating", "stock",
				"thumbnail", "images", "updated_at",
			}),
		}).
		Create(product).
		Error
	if err != nil {
		return nil, err
	}
	return product, nil
}

// UpsertAll upserts the given products in a single batch.
func (r *Repository) UpsertAll(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "description", "brand", "category",
				"price", "discount_percent", "rating", "stock",
				"thumbnail", "images", "updated_at",
			}),
		}).
		Create(&products).
		Error
}

// SetFavorite sets the favorite flag on a product and reports whether a row
// was updated.
func (r *Repository) SetFavorite(ctx context.Context, id string, favorite bool) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("is_favorite", favorite)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListFavorites returns the products currently flagged as favorites.
func (r *Repository) ListFavorites(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("is_favorite = ?", true).
		Order("title ASC").
		Find(&rows).
		Error
	return rows, err
}

// DeleteAll removes every product row.
func (r *Repository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&models.Product{}).
		Error
}
