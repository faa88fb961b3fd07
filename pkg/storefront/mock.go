package storefront

import (
	"context"
	"sync"
)

// Mock is an in-memory storefront used in dev mode and tests. Which
// implementation runs is an explicit configuration decision made at startup.
type Mock struct {
	mu       sync.Mutex
	lines    map[string]int
	products []RemoteProduct

	// FailNext forces the next mutation to return the given error.
	FailNext error
}

// NewMock seeds an empty in-memory storefront.
func NewMock(products []RemoteProduct) *Mock {
	return &Mock{
		lines:    make(map[string]int),
		products: products,
	}
}

func (m *Mock) FetchCart(ctx context.Context) ([]RemoteLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RemoteLine, 0, len(m.lines))
	for id, qty := range m.lines {
		out = append(out, RemoteLine{ProductID: id, Quantity: qty})
	}
	return out, nil
}

func (m *Mock) AddItem(ctx context.Context, productID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.lines[productID] += quantity
	return nil
}

func (m *Mock) UpdateItem(ctx context.Context, productID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if quantity <= 0 {
		delete(m.lines, productID)
		return nil
	}
	m.lines[productID] = quantity
	return nil
}

func (m *Mock) RemoveItem(ctx context.Context, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	delete(m.lines, productID)
	return nil
}

func (m *Mock) FetchProducts(ctx context.Context) ([]RemoteProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RemoteProduct(nil), m.products...), nil
}

func (m *Mock) Ping(ctx context.Context) error {
	return nil
}

// Quantity reports the mock's current quantity for a product.
func (m *Mock) Quantity(productID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lines[productID]
}

func (m *Mock) takeFailure() error {
	err := m.FailNext
	m.FailNext = nil
	return err
}
