package models

import (
	"time"

	"github.com/google/uuid"
)

// CartLineItem pairs a product with a quantity. The unique index on product_id
// enforces at most one line per product; quantity changes are upserts.
type CartLineItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID string    `gorm:"column:product_id;not null;uniqueIndex:cart_line_items_product_key"`
	Product   *Product  `gorm:"foreignKey:ProductID;references:ID;constraint:OnDelete:CASCADE"`
	Quantity  int       `gorm:"column:quantity;not null"`
	AddedAt   time.Time `gorm:"column:added_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
