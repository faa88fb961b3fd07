package pricing

import (
	"github.com/shopspring/decimal"
)

// Line carries the already-discounted unit price and quantity of one cart line.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// CartStats is the derived aggregate over a set of cart lines. It is computed
// on every read and never persisted.
type CartStats struct {
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
}

// ShippingPolicy maps a subtotal to a shipping charge. The rate schedule is
// owned by configuration, not by the engine.
type ShippingPolicy func(subtotal decimal.Decimal) decimal.Decimal

// FlatRate ships everything for the same fee.
func FlatRate(fee decimal.Decimal) ShippingPolicy {
	return func(decimal.Decimal) decimal.Decimal {
		return fee.Round(2)
	}
}

// FreeAbove waives the flat fee once the subtotal reaches the threshold.
func FreeAbove(threshold, fee decimal.Decimal) ShippingPolicy {
	return func(subtotal decimal.Decimal) decimal.Decimal {
		if subtotal.GreaterThanOrEqual(threshold) {
			return decimal.Zero
		}
		return fee.Round(2)
	}
}

// ComputeStats derives the cart aggregate from the given lines. It is pure:
// identical inputs always produce identical output.
func ComputeStats(lines []Line, taxRate decimal.Decimal, shipping ShippingPolicy) CartStats {
	subtotal := decimal.Zero
	itemCount := 0
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		itemCount += line.Quantity
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	subtotal = subtotal.Round(2)

	shippingFee := decimal.Zero
	if shipping != nil && itemCount > 0 {
		shippingFee = shipping(subtotal).Round(2)
	}

	tax := subtotal.Mul(taxRate).Round(2)
	total := subtotal.Add(shippingFee).Add(tax).Round(2)

	return CartStats{
		ItemCount: itemCount,
		Subtotal:  subtotal,
		Shipping:  shippingFee,
		Tax:       tax,
		Total:     total,
	}
}
