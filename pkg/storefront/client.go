package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvalenzuela-dev/shopbag-backend/pkg/config"
	pkgerrors "github.com/dvalenzuela-dev/shopbag-backend/pkg/errors"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/logger"
)

var (
	errBaseURLRequired = errors.New("storefront base url is required")
	errLoggerRequired  = errors.New("storefront logger is required")
)

// RemoteLine is a cart entry as reported by the upstream cart API.
type RemoteLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// RemoteProduct is a catalog entry as reported by the upstream product API.
type RemoteProduct struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Brand           string          `json:"brand"`
	Category        string          `json:"category"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent decimal.Decimal `json:"discount_percentage"`
	Rating          float64         `json:"rating"`
	Stock           int             `json:"stock"`
	Thumbnail       *string         `json:"thumbnail,omitempty"`
	Images          []string        `json:"images,omitempty"`
}

// Client is the surface the sync service consumes. The upstream responses are
// opaque success/failure; payload details beyond the line list are ignored.
type Client interface {
	FetchCart(ctx context.Context) ([]RemoteLine, error)
	AddItem(ctx context.Context, productID string, quantity int) error
	UpdateItem(ctx context.Context, productID string, quantity int) error
	RemoveItem(ctx context.Context, productID string) error
	FetchProducts(ctx context.Context) ([]RemoteProduct, error)
	Ping(ctx context.Context) error
}

// HTTPClient talks to the real upstream storefront.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	logger  *logger.Logger
}

// NewHTTPClient validates the configuration and builds the upstream client.
func NewHTTPClient(cfg config.RemoteConfig, logg *logger.Logger) (*HTTPClient, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parsing storefront base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logg,
	}, nil
}

type cartResponse struct {
	Success bool         `json:"success"`
	Items   []RemoteLine `json:"items"`
}

type productsResponse struct {
	Products []RemoteProduct `json:"products"`
}

// FetchCart pulls the full upstream cart.
func (c *HTTPClient) FetchCart(ctx context.Context) ([]RemoteLine, error) {
	var payload cartResponse
	if err := c.do(ctx, http.MethodGet, "/cart", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

// AddItem registers quantity units of the product on the upstream cart.
func (c *HTTPClient) AddItem(ctx context.Context, productID string, quantity int) error {
	return c.mutate(ctx, "/cart/add/"+url.PathEscape(productID), &quantity)
}

// UpdateItem sets the upstream quantity for the product.
func (c *HTTPClient) UpdateItem(ctx context.Context, productID string, quantity int) error {
	return c.mutate(ctx, "/cart/update/"+url.PathEscape(productID), &quantity)
}

// RemoveItem drops the product from the upstream cart.
func (c *HTTPClient) RemoveItem(ctx context.Context, productID string) error {
	return c.mutate(ctx, "/cart/remove/"+url.PathEscape(productID), nil)
}

// FetchProducts pulls the upstream catalog, used for seed and refresh.
func (c *HTTPClient) FetchProducts(ctx context.Context) ([]RemoteProduct, error) {
	var payload productsResponse
	if err := c.do(ctx, http.MethodGet, "/products", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Products, nil
}

// Ping probes the upstream for the readiness check.
func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/cart", nil, &cartResponse{})
}

func (c *HTTPClient) mutate(ctx context.Context, path string, quantity *int) error {
	query := url.Values{}
	if quantity != nil {
		query.Set("quantity", strconv.Itoa(*quantity))
	}
	var payload cartResponse
	if err := c.do(ctx, http.MethodPost, path, query, &payload); err != nil {
		return err
	}
	if !payload.Success {
		return pkgerrors.New(pkgerrors.CodeRemote, "upstream rejected cart mutation")
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, dest any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build storefront request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeRemote, err, fmt.Sprintf("%s %s", method, path))
	}
	defer resp.Body.Close()

	c.logger.Debug(c.logger.WithFields(ctx, map[string]any{
		"method": method,
		"path":   path,
		"status": resp.StatusCode,
	}), "storefront.call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return pkgerrors.New(pkgerrors.CodeRemote, fmt.Sprintf("%s %s: unexpected status %d", method, path, resp.StatusCode))
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeRemote, err, "decode storefront response")
	}
	return nil
}
