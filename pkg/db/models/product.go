package models

import (
	"time"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Product mirrors a catalog listing pulled from the upstream storefront.
// IDs are upstream-assigned strings, never generated locally.
type Product struct {
	ID              string          `gorm:"column:id;primaryKey"`
	Title           string          `gorm:"column:title;not null"`
	Description     string          `gorm:"column:description"`
	Brand           string          `gorm:"column:brand"`
	Category        string          `gorm:"column:category;index:products_category_idx"`
	Price           decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	DiscountPercent decimal.Decimal `gorm:"column:discount_percent;type:numeric(5,2)"`
	Rating          float64         `gorm:"column:rating"`
	Stock           int             `gorm:"column:stock;not null;default:0"`
	Thumbnail       *string         `gorm:"column:thumbnail"`
	Images          []string        `gorm:"column:images;serializer:json"`
	IsFavorite      bool            `gorm:"column:is_favorite;not null;default:false"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// FinalPrice applies the percentage discount when one is set.
func (p Product) FinalPrice() decimal.Decimal {
	if p.DiscountPercent.IsPositive() {
		factor := oneHundred.Sub(p.DiscountPercent).Div(oneHundred)
		return p.Price.Mul(factor).Round(2)
	}
	return p.Price.Round(2)
}
