package controllers

import (
	"time"

	cartsvc "github.com/dvalenzuela-dev/shopbag-backend/internal/cart"
	"github.com/dvalenzuela-dev/shopbag-backend/internal/cartsync"
	"github.com/dvalenzuela-dev/shopbag-backend/internal/pricing"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/db/models"
	pkgerrors "github.com/dvalenzuela-dev/shopbag-backend/pkg/errors"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/types"
	"github.com/shopspring/decimal"
)

type productResponse struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	Brand           string          `json:"brand,omitempty"`
	Category        string          `json:"category,omitempty"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	FinalPrice      decimal.Decimal `json:"final_price"`
	Rating          float64         `json:"rating"`
	Stock           int             `json:"stock"`
	Thumbnail       *string         `json:"thumbnail,omitempty"`
	Images          []string        `json:"images,omitempty"`
	IsFavorite      bool            `json:"is_favorite"`
}

func newProductResponse(p models.Product) productResponse {
	return productResponse{
		ID:              p.ID,
		Title:           p.Title,
		Description:     p.Description,
		Brand:           p.Brand,
		Category:        p.Category,
		Price:           p.Price,
		DiscountPercent: p.DiscountPercent,
		FinalPrice:      p.FinalPrice(),
		Rating:          p.Rating,
		Stock:           p.Stock,
		Thumbnail:       p.Thumbnail,
		Images:          p.Images,
		IsFavorite:      p.IsFavorite,
	}
}

func newProductListResponse(products []models.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, newProductResponse(p))
	}
	return out
}

type cartLineResponse struct {
	ID        string          `json:"id"`
	Product   productResponse `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	AddedAt   time.Time       `json:"added_at"`
}

type cartResponse struct {
	Lines []cartLineResponse `json:"lines"`
	Stats pricing.CartStats  `json:"stats"`
	Sync  *syncStatus        `json:"sync,omitempty"`
}

// syncStatus reports how the remote push went for a mutation that already
// committed locally.
type syncStatus struct {
	RemoteSynced bool            `json:"remote_synced"`
	Superseded   bool            `json:"superseded,omitempty"`
	Error        *types.APIError `json:"error,omitempty"`
}

func newCartResponse(snapshot *cartsvc.Snapshot, outcome *cartsync.Outcome) cartResponse {
	resp := cartResponse{Lines: []cartLineResponse{}}
	if snapshot != nil {
		resp.Stats = snapshot.Stats
		for _, line := range snapshot.Lines {
			qty := decimal.NewFromInt(int64(line.Item.Quantity))
			resp.Lines = append(resp.Lines, cartLineResponse{
				ID:        line.Item.ID.String(),
				Product:   newProductResponse(line.Product),
				Quantity:  line.Item.Quantity,
				LineTotal: line.Product.FinalPrice().Mul(qty).Round(2),
				AddedAt:   line.Item.AddedAt,
			})
		}
	}
	if outcome != nil {
		resp.Sync = newSyncStatus(outcome)
	}
	return resp
}

func newSyncStatus(outcome *cartsync.Outcome) *syncStatus {
	status := &syncStatus{
		RemoteSynced: outcome.RemoteSynced,
		Superseded:   outcome.Superseded,
	}
	if outcome.RemoteErr != nil {
		typed := pkgerrors.As(outcome.RemoteErr)
		if typed == nil {
			typed = pkgerrors.Wrap(pkgerrors.CodeRemote, outcome.RemoteErr, "remote cart sync failed")
		}
		status.Error = &types.APIError{
			Code:    string(typed.Code()),
			Message: pkgerrors.MetadataFor(typed.Code()).PublicMessage,
		}
	}
	return status
}
