package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dvalenzuela-dev/shopbag-backend/api/responses"
	"github.com/dvalenzuela-dev/shopbag-backend/api/validators"
	cartsvc "github.com/dvalenzuela-dev/shopbag-backend/internal/cart"
	"github.com/dvalenzuela-dev/shopbag-backend/internal/cartsync"
	pkgerrors "github.com/dvalenzuela-dev/shopbag-backend/pkg/errors"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/logger"
)

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  *int   `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}

// CartGet returns the current cart with totals.
func CartGet(local cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if local == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		snapshot, err := local.Snapshot(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(snapshot, nil))
	}
}

// CartStats returns the priced totals without the line detail.
func CartStats(local cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if local == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		stats, err := local.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// CartAddItem adds a product to the cart (or bumps its quantity) and mirrors
// the change upstream. Remote trouble is reported in the sync block; the
// local change already committed.
func CartAddItem(sync cartsync.Service, local cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sync == nil || local == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		// An omitted quantity means one unit; an explicit non-positive
		// quantity is rejected before anything commits.
		quantity := 1
		if payload.Quantity != nil {
			if *payload.Quantity <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Quantity must be greater than zero"))
				return
			}
			quantity = *payload.Quantity
		}

		outcome, err := sync.Add(r.Context(), payload.ProductID, quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := local.Snapshot(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(snapshot, outcome))
	}
}

// CartUpdateItem pins the quantity of a line. Quantity zero removes it.
func CartUpdateItem(sync cartsync.Service, local cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sync == nil || local == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outcome, err := sync.SetQuantity(r.Context(), chi.URLParam(r, "productID"), payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := local.Snapshot(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(snapshot, outcome))
	}
}

// CartRemoveItem deletes a line. Removing an absent line succeeds.
func CartRemoveItem(sync cartsync.Service, local cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sync == nil || local == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		outcome, err := sync.Remove(r.Context(), chi.URLParam(r, "productID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := local.Snapshot(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(snapshot, outcome))
	}
}

// CartClear empties the cart on both sides.
func CartClear(sync cartsync.Service, local cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sync == nil || local == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		outcome, err := sync.Clear(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := local.Snapshot(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(snapshot, outcome))
	}
}

// CartRefresh pulls the remote cart and adopts it as the local state.
func CartRefresh(sync cartsync.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sync == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		snapshot, err := sync.Refresh(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(snapshot, nil))
	}
}
