package cart

import (
	"context"
	"time"

	"github.com/dvalenzuela-dev/shopbag-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository manages persistent cart line items.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByProduct loads the line for a product, if any.
func (r *Repository) FindByProduct(ctx context.Context, productID string) (*models.CartLineItem, error) {
	var line models.CartLineItem
	if err := r.db.WithContext(ctx).First(&line, "product_id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

// Upsert writes the line. The unique index on product_id turns a second add
// for the same product into a quantity update; added_at keeps its original
// value on conflict.
func (r *Repository) Upsert(ctx context.Context, line *models.CartLineItem) (*models.CartLineItem, error) {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	if line.AddedAt.IsZero() {
		line.AddedAt = time.Now().UTC()
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
		}).
		Create(line).
		Error
	if err != nil {
		return nil, err
	}
	return line, nil
}

// DeleteByProduct removes the line for a product. Deleting an absent line is
// not an error.
func (r *Repository) DeleteByProduct(ctx context.Context, productID string) error {
	return r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.CartLineItem{}).
		Error
}

// DeleteAll empties the cart.
func (r *Repository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&models.CartLineItem{}).
		Error
}

// ListItems returns all lines, most recently added first.
func (r *Repository) ListItems(ctx context.Context) ([]models.CartLineItem, error) {
	var rows []models.CartLineItem
	err := r.db.WithContext(ctx).
		Order("added_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// ReplaceAll deletes existing lines and inserts the provided ones
// transactionally. Used when adopting a remote cart snapshot.
func (r *Repository) ReplaceAll(ctx context.Context, lines []models.CartLineItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.CartLineItem{}).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		now := time.Now().UTC()
		for i := range lines {
			if lines[i].ID == uuid.Nil {
				lines[i].ID = uuid.New()
			}
			if lines[i].AddedAt.IsZero() {
				lines[i].AddedAt = now
			}
		}
		return tx.Create(&lines).Error
	})
}
