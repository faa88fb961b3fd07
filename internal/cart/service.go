package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dvalenzuela-dev/shopbag-backend/internal/pricing"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/db/models"
	pkgerrors "github.com/dvalenzuela-dev/shopbag-backend/pkg/errors"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/logger"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Line pairs a cart line item with its resolved product.
type Line struct {
	Item    models.CartLineItem `json:"item"`
	Product models.Product      `json:"product"`
}

// Snapshot is the full cart view delivered to readers and subscribers.
type Snapshot struct {
	Lines []Line            `json:"lines"`
	Stats pricing.CartStats `json:"stats"`
}

type productLoader interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Product, error)
}

// Service exposes local cart mutations and reads.
type Service interface {
	AddOrUpdate(ctx context.Context, productID string, qtyDelta int) (*models.CartLineItem, error)
	SetQuantity(ctx context.Context, productID string, quantity int) (*models.CartLineItem, error)
	Remove(ctx context.Context, productID string) error
	Clear(ctx context.Context) error
	ReplaceAll(ctx context.Context, lines []models.CartLineItem) error
	ListWithProducts(ctx context.Context) ([]Line, error)
	Stats(ctx context.Context) (pricing.CartStats, error)
	Snapshot(ctx context.Context) (*Snapshot, error)
	Subscribe(ctx context.Context) <-chan types.Result[Snapshot]
}

type service struct {
	repo     *Repository
	products productLoader
	logger   *logger.Logger
	taxRate  decimal.Decimal
	shipping pricing.ShippingPolicy
	writes   *keyedMutex
	events   *broadcaster
}

// NewService builds the cart service backed by the provided stack.
func NewService(repo *Repository, products productLoader, logg *logger.Logger, taxRate decimal.Decimal, shipping pricing.ShippingPolicy) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if taxRate.IsNegative() {
		return nil, fmt.Errorf("tax rate cannot be negative")
	}
	return &service{
		repo:     repo,
		products: products,
		logger:   logg,
		taxRate:  taxRate,
		shipping: shipping,
		writes:   newKeyedMutex(),
		events:   newBroadcaster(),
	}, nil
}

// AddOrUpdate adds the product to the cart or adjusts the quantity of the
// existing line by qtyDelta. A fresh line never starts below one.
func (s *service) AddOrUpdate(ctx context.Context, productID string, qtyDelta int) (*models.CartLineItem, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Product ID cannot be empty")
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": productID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	unlock := s.writes.Lock(productID)
	defer unlock()

	existing, err := s.repo.FindByProduct(ctx, productID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}

	var line *models.CartLineItem
	if existing == nil {
		quantity := qtyDelta
		if quantity < 1 {
			quantity = 1
		}
		line = &models.CartLineItem{
			ProductID: productID,
			Quantity:  quantity,
			AddedAt:   time.Now().UTC(),
		}
	} else {
		next := existing.Quantity + qtyDelta
		if next <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "Quantity must be greater than zero").
				WithDetails(map[string]any{"product_id": productID, "quantity": next})
		}
		existing.Quantity = next
		line = existing
	}

	saved, err := s.repo.Upsert(ctx, line)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart line")
	}
	s.notify(ctx)
	return saved, nil
}

// SetQuantity pins the line quantity. Zero or negative removes the line.
func (s *service) SetQuantity(ctx context.Context, productID string, quantity int) (*models.CartLineItem, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, s.Remove(ctx, productID)
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": productID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	unlock := s.writes.Lock(productID)
	defer unlock()

	existing, err := s.repo.FindByProduct(ctx, productID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}

	line := existing
	if line == nil {
		line = &models.CartLineItem{
			ProductID: productID,
			AddedAt:   time.Now().UTC(),
		}
	}
	line.Quantity = quantity

	saved, err := s.repo.Upsert(ctx, line)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart line")
	}
	s.notify(ctx)
	return saved, nil
}

// Remove deletes the product's line. Removing an absent line is a no-op.
func (s *service) Remove(ctx context.Context, productID string) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "Product ID cannot be empty")
	}

	unlock := s.writes.Lock(productID)
	defer unlock()

	if err := s.repo.DeleteByProduct(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart line")
	}
	s.notify(ctx)
	return nil
}

// Clear empties the cart.
func (s *service) Clear(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	s.notify(ctx)
	return nil
}

// ReplaceAll swaps the cart contents for the provided lines. Used when a
// remote snapshot is adopted wholesale.
func (s *service) ReplaceAll(ctx context.Context, lines []models.CartLineItem) error {
	for _, line := range lines {
		if strings.TrimSpace(line.ProductID) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "Product ID cannot be empty")
		}
		if line.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "Quantity must be greater than zero").
				WithDetails(map[string]any{"product_id": line.ProductID, "quantity": line.Quantity})
		}
	}
	if err := s.repo.ReplaceAll(ctx, lines); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace cart")
	}
	s.notify(ctx)
	return nil
}

// ListWithProducts joins lines with their products, newest first. Lines whose
// product is gone from the catalog are skipped and logged, not fatal.
func (s *service) ListWithProducts(ctx context.Context) ([]Line, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart lines")
	}
	if len(items) == 0 {
		return []Line{}, nil
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart products")
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]Line, 0, len(items))
	for _, item := range items {
		p, ok := byID[item.ProductID]
		if !ok {
			s.logger.Warn(s.logger.WithProductID(ctx, item.ProductID), "cart line references missing product")
			continue
		}
		item.Product = nil
		lines = append(lines, Line{Item: item, Product: p})
	}
	return lines, nil
}

// Stats recomputes the cart totals from the current lines.
func (s *service) Stats(ctx context.Context) (pricing.CartStats, error) {
	lines, err := s.ListWithProducts(ctx)
	if err != nil {
		return pricing.CartStats{}, err
	}
	return s.computeStats(lines), nil
}

// Snapshot returns the joined lines together with their totals.
func (s *service) Snapshot(ctx context.Context) (*Snapshot, error) {
	lines, err := s.ListWithProducts(ctx)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Lines: lines, Stats: s.computeStats(lines)}, nil
}

// Subscribe returns a channel receiving an update after every mutation until
// ctx is cancelled. Updates carry a snapshot on success and the read error
// when building one failed.
func (s *service) Subscribe(ctx context.Context) <-chan types.Result[Snapshot] {
	return s.events.Subscribe(ctx)
}

func (s *service) computeStats(lines []Line) pricing.CartStats {
	priced := make([]pricing.Line, 0, len(lines))
	for _, line := range lines {
		priced = append(priced, pricing.Line{
			UnitPrice: line.Product.FinalPrice(),
			Quantity:  line.Item.Quantity,
		})
	}
	return pricing.ComputeStats(priced, s.taxRate, s.shipping)
}

// notify publishes a fresh snapshot to subscribers. A failure to build the
// snapshot is delivered as a failure update so a read problem never fails a
// write that already committed.
func (s *service) notify(ctx context.Context) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		s.logger.Error(ctx, "failed to publish cart snapshot", err)
		s.events.Publish(types.Failure[Snapshot](err))
		return
	}
	s.events.Publish(types.Success(*snapshot))
}
