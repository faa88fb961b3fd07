package product

import (
	"fmt"
	"testing"
	"time"

	"github.com/dvalenzuela-dev/shopbag-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func mustCreateTestProduct(t *testing.T, tx *gorm.DB, mutate ...func(*models.Product)) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:          fmt.Sprintf("p-%s", uuid.NewString()),
		Title:       "Test Product",
		Description: "A product used in tests",
		Brand:       "Testbrand",
		Category:    "smartphones",
		Price:       decimal.RequireFromString("19.99"),
		Rating:      4.5,
		Stock:       12,
		IsFavorite:  false,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	for _, fn := range mutate {
		fn(product)
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}
