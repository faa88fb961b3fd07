package storefront

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dvalenzuela-dev/shopbag-backend/pkg/config"
	pkgerrors "github.com/dvalenzuela-dev/shopbag-backend/pkg/errors"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/logger"
)

func newTestClient(t *testing.T, handler http.Handler) (*HTTPClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(config.RemoteConfig{BaseURL: server.URL}, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return client, server
}

func TestNewHTTPClientRequiresBaseURL(t *testing.T) {
	_, err := NewHTTPClient(config.RemoteConfig{}, logger.New(logger.Options{ServiceName: "test"}))
	require.Error(t, err)

	_, err = NewHTTPClient(config.RemoteConfig{BaseURL: "http://x"}, nil)
	require.Error(t, err)
}

func TestAddItemBuildsExpectedRequest(t *testing.T) {
	var gotMethod, gotPath, gotQuantity string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuantity = r.URL.Query().Get("quantity")
		w.Write([]byte(`{"success":true}`))
	}))

	require.NoError(t, client.AddItem(context.Background(), "p1", 3))
	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "/cart/add/p1", gotPath)
	require.Equal(t, "3", gotQuantity)
}

func TestMutationMapsRejectionToRemoteError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false}`))
	}))

	err := client.RemoveItem(context.Background(), "p1")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeRemote, typed.Code())
}

func TestMutationMapsServerErrorToRemoteError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	err := client.UpdateItem(context.Background(), "p1", 2)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeRemote, typed.Code())
}

func TestFetchCartDecodesLines(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/cart", r.URL.Path)
		w.Write([]byte(`{"success":true,"items":[{"product_id":"p1","quantity":2},{"product_id":"p2","quantity":1}]}`))
	}))

	lines, err := client.FetchCart(context.Background())
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.Equal(t, "p1", lines[0].ProductID)
	require.Equal(t, 2, lines[0].Quantity)
}

func TestFetchProductsDecodesCatalog(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/products", r.URL.Path)
		w.Write([]byte(`{"products":[{"id":"p1","title":"Mug","price":"12.50","discount_percentage":"10","stock":4}]}`))
	}))

	products, err := client.FetchProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, "Mug", products[0].Title)
	require.True(t, products[0].Price.Equal(mustDecimal("12.50")))
}

func mustDecimal(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestRequestIsContextCancellable(t *testing.T) {
	started := make(chan struct{})
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	err := client.AddItem(ctx, "p1", 1)
	require.Error(t, err)
}
