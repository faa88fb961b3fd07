package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	cartsvc "github.com/dvalenzuela-dev/shopbag-backend/internal/cart"
	"github.com/dvalenzuela-dev/shopbag-backend/internal/cartsync"
	"github.com/dvalenzuela-dev/shopbag-backend/internal/pricing"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/db/models"
	pkgerrors "github.com/dvalenzuela-dev/shopbag-backend/pkg/errors"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type stubCartService struct {
	snapshot cartsvc.Snapshot
	err      error
	events   chan types.Result[cartsvc.Snapshot]
}

func (s *stubCartService) AddOrUpdate(ctx context.Context, productID string, qtyDelta int) (*models.CartLineItem, error) {
	return nil, s.err
}

func (s *stubCartService) SetQuantity(ctx context.Context, productID string, quantity int) (*models.CartLineItem, error) {
	return nil, s.err
}

func (s *stubCartService) Remove(ctx context.Context, productID string) error { return s.err }
func (s *stubCartService) Clear(ctx context.Context) error                    { return s.err }

func (s *stubCartService) ReplaceAll(ctx context.Context, lines []models.CartLineItem) error {
	return s.err
}

func (s *stubCartService) ListWithProducts(ctx context.Context) ([]cartsvc.Line, error) {
	return s.snapshot.Lines, s.err
}

func (s *stubCartService) Stats(ctx context.Context) (pricing.CartStats, error) {
	return s.snapshot.Stats, s.err
}

func (s *stubCartService) Snapshot(ctx context.Context) (*cartsvc.Snapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &s.snapshot, nil
}

func (s *stubCartService) Subscribe(ctx context.Context) <-chan types.Result[cartsvc.Snapshot] {
	if s.events != nil {
		return s.events
	}
	ch := make(chan types.Result[cartsvc.Snapshot])
	close(ch)
	return ch
}

type stubSyncService struct {
	outcome    *cartsync.Outcome
	snapshot   *cartsvc.Snapshot
	err        error
	lastOp     string
	lastID     string
	lastAmount int
}

func (s *stubSyncService) Add(ctx context.Context, productID string, qtyDelta int) (*cartsync.Outcome, error) {
	s.lastOp, s.lastID, s.lastAmount = "add", productID, qtyDelta
	return s.outcome, s.err
}

func (s *stubSyncService) SetQuantity(ctx context.Context, productID string, quantity int) (*cartsync.Outcome, error) {
	s.lastOp, s.lastID, s.lastAmount = "set", productID, quantity
	return s.outcome, s.err
}

func (s *stubSyncService) Remove(ctx context.Context, productID string) (*cartsync.Outcome, error) {
	s.lastOp, s.lastID = "remove", productID
	return s.outcome, s.err
}

func (s *stubSyncService) Clear(ctx context.Context) (*cartsync.Outcome, error) {
	s.lastOp = "clear"
	return s.outcome, s.err
}

func (s *stubSyncService) Refresh(ctx context.Context) (*cartsvc.Snapshot, error) {
	s.lastOp = "refresh"
	return s.snapshot, s.err
}

func sampleSnapshot() cartsvc.Snapshot {
	return cartsvc.Snapshot{
		Lines: []cartsvc.Line{
			{
				Item: models.CartLineItem{
					ID:        uuid.New(),
					ProductID: "p-1",
					Quantity:  2,
				},
				Product: models.Product{
					ID:    "p-1",
					Title: "Phone",
					Price: decimal.RequireFromString("10.00"),
				},
			},
		},
		Stats: pricing.CartStats{ItemCount: 2, Subtotal: decimal.RequireFromString("20.00")},
	}
}

func TestCartAddItem(t *testing.T) {
	local := &stubCartService{snapshot: sampleSnapshot()}
	sync := &stubSyncService{outcome: &cartsync.Outcome{RemoteSynced: true}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items",
		strings.NewReader(`{"product_id":"p-1","quantity":2}`))
	rec := httptest.NewRecorder()
	CartAddItem(sync, local, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if sync.lastOp != "add" || sync.lastID != "p-1" || sync.lastAmount != 2 {
		t.Fatalf("unexpected call %s %s %d", sync.lastOp, sync.lastID, sync.lastAmount)
	}

	var body struct {
		Data cartResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data.Lines) != 1 || body.Data.Lines[0].Quantity != 2 {
		t.Fatalf("unexpected lines %+v", body.Data.Lines)
	}
	if body.Data.Sync == nil || !body.Data.Sync.RemoteSynced {
		t.Fatalf("expected synced sync block, got %+v", body.Data.Sync)
	}
	if !body.Data.Lines[0].LineTotal.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("unexpected line total %s", body.Data.Lines[0].LineTotal)
	}
}

func TestCartAddItemDefaultsQuantityToOne(t *testing.T) {
	local := &stubCartService{snapshot: sampleSnapshot()}
	sync := &stubSyncService{outcome: &cartsync.Outcome{RemoteSynced: true}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items",
		strings.NewReader(`{"product_id":"p-1"}`))
	rec := httptest.NewRecorder()
	CartAddItem(sync, local, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if sync.lastAmount != 1 {
		t.Fatalf("expected default quantity 1, got %d", sync.lastAmount)
	}
}

func TestCartAddItemValidatesBody(t *testing.T) {
	local := &stubCartService{snapshot: sampleSnapshot()}
	sync := &stubSyncService{outcome: &cartsync.Outcome{RemoteSynced: true}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items",
		strings.NewReader(`{"quantity":2}`))
	rec := httptest.NewRecorder()
	CartAddItem(sync, local, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing product_id, got %d", rec.Code)
	}
	if sync.lastOp != "" {
		t.Fatalf("expected no mutation on invalid payload, got %s", sync.lastOp)
	}
}

func TestCartAddItemRejectsNonPositiveQuantity(t *testing.T) {
	for _, quantity := range []string{"0", "-3"} {
		local := &stubCartService{snapshot: sampleSnapshot()}
		sync := &stubSyncService{outcome: &cartsync.Outcome{RemoteSynced: true}}

		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items",
			strings.NewReader(`{"product_id":"p-1","quantity":`+quantity+`}`))
		rec := httptest.NewRecorder()
		CartAddItem(sync, local, testLogger()).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("quantity %s: expected 400, got %d", quantity, rec.Code)
		}
		if sync.lastOp != "" {
			t.Fatalf("quantity %s: expected no mutation, got %s", quantity, sync.lastOp)
		}
		if !strings.Contains(rec.Body.String(), "Quantity must be greater than zero") {
			t.Fatalf("quantity %s: unexpected body %s", quantity, rec.Body.String())
		}
	}
}

func TestCartAddItemReportsRemoteFailure(t *testing.T) {
	local := &stubCartService{snapshot: sampleSnapshot()}
	sync := &stubSyncService{outcome: &cartsync.Outcome{
		RemoteErr: pkgerrors.New(pkgerrors.CodeRemote, "push cart line"),
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items",
		strings.NewReader(`{"product_id":"p-1","quantity":1}`))
	rec := httptest.NewRecorder()
	CartAddItem(sync, local, testLogger()).ServeHTTP(rec, req)

	// local mutation committed, so the request still succeeds
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var body struct {
		Data cartResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Sync == nil || body.Data.Sync.RemoteSynced {
		t.Fatalf("expected unsynced sync block, got %+v", body.Data.Sync)
	}
	if body.Data.Sync.Error == nil || body.Data.Sync.Error.Code != string(pkgerrors.CodeRemote) {
		t.Fatalf("expected remote failure in sync block, got %+v", body.Data.Sync.Error)
	}
}

func TestCartUpdateItemUnknownProduct(t *testing.T) {
	local := &stubCartService{snapshot: sampleSnapshot()}
	sync := &stubSyncService{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/cart/items/ghost",
		strings.NewReader(`{"quantity":3}`))
	req = withURLParam(req, "productID", "ghost")
	rec := httptest.NewRecorder()
	CartUpdateItem(sync, local, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeNotFound) {
		t.Fatalf("unexpected code %s", body.Error.Code)
	}
}

func TestCartGet(t *testing.T) {
	local := &stubCartService{snapshot: sampleSnapshot()}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	CartGet(local, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Data cartResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Sync != nil {
		t.Fatalf("read path has no sync block, got %+v", body.Data.Sync)
	}
	if body.Data.Stats.ItemCount != 2 {
		t.Fatalf("unexpected stats %+v", body.Data.Stats)
	}
}

func TestCartStats(t *testing.T) {
	local := &stubCartService{snapshot: sampleSnapshot()}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/stats", nil)
	rec := httptest.NewRecorder()
	CartStats(local, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Data pricing.CartStats `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.ItemCount != 2 || !body.Data.Subtotal.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("unexpected stats %+v", body.Data)
	}
}

func TestCartRefresh(t *testing.T) {
	snapshot := sampleSnapshot()
	sync := &stubSyncService{snapshot: &snapshot}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/refresh", nil)
	rec := httptest.NewRecorder()
	CartRefresh(sync, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if sync.lastOp != "refresh" {
		t.Fatalf("expected refresh call, got %q", sync.lastOp)
	}
}
