package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dvalenzuela-dev/shopbag-backend/api/controllers"
	"github.com/dvalenzuela-dev/shopbag-backend/api/middleware"
	cartsvc "github.com/dvalenzuela-dev/shopbag-backend/internal/cart"
	"github.com/dvalenzuela-dev/shopbag-backend/internal/cartsync"
	product "github.com/dvalenzuela-dev/shopbag-backend/internal/products"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/config"
	"github.com/dvalenzuela-dev/shopbag-backend/pkg/logger"
	pkgredis "github.com/dvalenzuela-dev/shopbag-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP pkgredis.Pinger,
	cacheP pkgredis.Pinger,
	idemStore pkgredis.IdempotencyStore,
	registry *prometheus.Registry,
	productService product.Service,
	cartService cartsvc.Service,
	syncService cartsync.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, cacheP, logg))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(productService, logg))
			r.Get("/categories", controllers.ProductCategories(productService, logg))
			r.Get("/favorites", controllers.ProductFavorites(productService, logg))
			r.Get("/{productID}", controllers.ProductGet(productService, logg))
			r.Post("/{productID}/favorite", controllers.ProductToggleFavorite(productService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(cartService, logg))
			r.Get("/stats", controllers.CartStats(cartService, logg))
			r.Get("/events", controllers.CartEvents(cartService, logg))
			r.Delete("/", controllers.CartClear(syncService, cartService, logg))
			r.Post("/refresh", controllers.CartRefresh(syncService, logg))

			r.Route("/items", func(r chi.Router) {
				r.Post("/", controllers.CartAddItem(syncService, cartService, logg))
				r.Put("/{productID}", controllers.CartUpdateItem(syncService, cartService, logg))
				r.Delete("/{productID}", controllers.CartRemoveItem(syncService, cartService, logg))
			})
		})

		r.Post("/contact", controllers.Contact(logg))
	})

	return r
}
