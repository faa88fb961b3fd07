package cartsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dvalenzuela-dev/shopbag-backend/internal/cart"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/db/models"
	pkgerrors "github.com/dvalenzuela-dev/shopbag-backend/pkg/errors"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/logger"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/metrics"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/storefront"
	"go.uber.org/multierr"
)

const defaultRemoteTimeout = 10 * time.Second

// Outcome reports a mutation that already committed locally, plus how the
// remote push went. RemoteErr is only set on a genuine remote failure; a
// superseded push is not a failure.
type Outcome struct {
	Line         *models.CartLineItem
	RemoteSynced bool
	Superseded   bool
	RemoteErr    error
}

// Service mirrors local cart mutations to the upstream storefront.
//
// The local store is the source of truth: every mutation commits locally
// first and the remote push happens after, so a dead upstream never blocks
// or rolls back the cart. A newer mutation for the same product cancels the
// pending push for it.
type Service interface {
	Add(ctx context.Context, productID string, qtyDelta int) (*Outcome, error)
	SetQuantity(ctx context.Context, productID string, quantity int) (*Outcome, error)
	Remove(ctx context.Context, productID string) (*Outcome, error)
	Clear(ctx context.Context) (*Outcome, error)
	Refresh(ctx context.Context) (*cart.Snapshot, error)
}

type remoteCall struct {
	op     string
	cancel context.CancelFunc
}

type service struct {
	local   cart.Service
	remote  storefront.Client
	logger  *logger.Logger
	metrics *metrics.SyncMetrics
	timeout time.Duration

	mu       sync.Mutex
	inflight map[string]*remoteCall
}

// NewService builds the synchronization layer over the local cart and the
// remote storefront client.
func NewService(local cart.Service, remote storefront.Client, logg *logger.Logger, m *metrics.SyncMetrics, timeout time.Duration) (Service, error) {
	if local == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if remote == nil {
		return nil, fmt.Errorf("storefront client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}
	return &service{
		local:    local,
		remote:   remote,
		logger:   logg,
		metrics:  m,
		timeout:  timeout,
		inflight: make(map[string]*remoteCall),
	}, nil
}

// Add commits the quantity delta locally, then pushes it upstream. The add
// path only accepts positive deltas; rejecting before the local commit keeps
// both sides untouched and the pushed delta equal to the committed one.
func (s *service) Add(ctx context.Context, productID string, qtyDelta int) (*Outcome, error) {
	if qtyDelta <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Quantity must be greater than zero")
	}
	line, err := s.local.AddOrUpdate(ctx, productID, qtyDelta)
	if err != nil {
		return nil, err
	}
	outcome := &Outcome{Line: line}
	s.push(ctx, "add", productID, outcome, func(rctx context.Context) error {
		return s.remote.AddItem(rctx, productID, qtyDelta)
	})
	return outcome, nil
}

// SetQuantity commits the new quantity locally, then pushes it upstream.
// Zero or negative quantities remove the line on both sides.
func (s *service) SetQuantity(ctx context.Context, productID string, quantity int) (*Outcome, error) {
	line, err := s.local.SetQuantity(ctx, productID, quantity)
	if err != nil {
		return nil, err
	}
	outcome := &Outcome{Line: line}
	if quantity <= 0 {
		s.push(ctx, "remove", productID, outcome, func(rctx context.Context) error {
			return s.remote.RemoveItem(rctx, productID)
		})
		return outcome, nil
	}
	s.push(ctx, "set_quantity", productID, outcome, func(rctx context.Context) error {
		return s.remote.UpdateItem(rctx, productID, quantity)
	})
	return outcome, nil
}

// Remove deletes the line locally, then pushes the removal upstream.
func (s *service) Remove(ctx context.Context, productID string) (*Outcome, error) {
	if err := s.local.Remove(ctx, productID); err != nil {
		return nil, err
	}
	outcome := &Outcome{}
	s.push(ctx, "remove", productID, outcome, func(rctx context.Context) error {
		return s.remote.RemoveItem(rctx, productID)
	})
	return outcome, nil
}

// Clear empties the cart locally, then removes each line upstream. Partial
// remote failures are collected rather than aborting the rest.
func (s *service) Clear(ctx context.Context) (*Outcome, error) {
	lines, err := s.local.ListWithProducts(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.local.Clear(ctx); err != nil {
		return nil, err
	}

	outcome := &Outcome{}
	s.push(ctx, "clear", "", outcome, func(rctx context.Context) error {
		var combined error
		for _, line := range lines {
			if err := s.remote.RemoveItem(rctx, line.Item.ProductID); err != nil {
				combined = multierr.Append(combined, err)
			}
		}
		return combined
	})
	return outcome, nil
}

// Refresh pulls the remote cart and adopts it wholesale, replacing the local
// lines. Remote lines with non-positive quantities are dropped.
func (s *service) Refresh(ctx context.Context) (*cart.Snapshot, error) {
	remoteLines, err := s.remote.FetchCart(ctx)
	if err != nil {
		return nil, err
	}

	lines := make([]models.CartLineItem, 0, len(remoteLines))
	for _, rl := range remoteLines {
		if rl.Quantity < 1 {
			s.logger.Warn(s.logger.WithProductID(ctx, rl.ProductID), "dropping remote line with non-positive quantity")
			continue
		}
		lines = append(lines, models.CartLineItem{
			ProductID: rl.ProductID,
			Quantity:  rl.Quantity,
		})
	}

	if err := s.local.ReplaceAll(ctx, lines); err != nil {
		return nil, err
	}
	return s.local.Snapshot(ctx)
}

// push runs the remote call with supersede semantics and records the result
// on the outcome. The call uses its own deadline detached from the request
// context so a client disconnect does not abandon a committed mutation.
func (s *service) push(ctx context.Context, op, productID string, outcome *Outcome, fn func(ctx context.Context) error) {
	rctx, finish := s.begin(ctx, op, productID)
	defer finish()

	start := time.Now()
	err := fn(rctx)
	s.metrics.ObserveDuration(op, time.Since(start))

	switch {
	case err == nil:
		outcome.RemoteSynced = true
		s.metrics.IncSuccess(op)
	case errors.Is(err, context.Canceled):
		outcome.Superseded = true
		s.logger.Debug(s.logger.WithProductID(ctx, productID), "remote push superseded")
	default:
		s.metrics.IncFailure(op)
		if pkgerrors.As(err) == nil {
			err = pkgerrors.Wrap(pkgerrors.CodeRemote, err, "remote cart sync failed")
		}
		outcome.RemoteErr = err
		s.logger.Error(s.logger.WithProductID(ctx, productID), "remote cart sync failed", err)
	}
}

// begin registers the in-flight remote call for the key, cancelling any
// pending one. Clear uses the empty key and cancels everything.
func (s *service) begin(ctx context.Context, op, productID string) (context.Context, func()) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	call := &remoteCall{op: op, cancel: cancel}

	s.mu.Lock()
	if productID == "" {
		for key, prev := range s.inflight {
			prev.cancel()
			s.metrics.IncSuperseded(prev.op)
			delete(s.inflight, key)
		}
	} else if prev, ok := s.inflight[productID]; ok {
		prev.cancel()
		s.metrics.IncSuperseded(prev.op)
	}
	s.inflight[productID] = call
	s.mu.Unlock()

	return rctx, func() {
		cancel()
		s.mu.Lock()
		if s.inflight[productID] == call {
			delete(s.inflight, productID)
		}
		s.mu.Unlock()
	}
}
