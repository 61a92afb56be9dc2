package handler

import (
	"log/slog"
	"net/http"
	"net/netip"

	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/logger"
	"github.com/msomdec/storefront/internal/metrics"
	"github.com/msomdec/storefront/internal/service"
)

// Deps bundles what the HTTP layer needs.
type Deps struct {
	Auth     *service.AuthService
	Hoodies  *service.CatalogService
	Products *service.CatalogService
	Orders   *service.OrderService
	Blobs    domain.BlobStore
	// RedirectBlobs sends /uploads/ requests to the blob store's own URLs.
	RedirectBlobs bool
	Health        Pinger
	Metrics       *metrics.Metrics
	CookieSecure  bool
	// TrustedProxies may set X-Forwarded-For for rate limiting.
	TrustedProxies []netip.Prefix
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, d Deps) {
	health := NewHealthHandler(d.Health)
	mux.HandleFunc("GET /healthz", health.HandleHealthz)
	mux.Handle("GET /metrics", d.Metrics.Handler())

	authH := NewAuthHandler(d.Auth, d.CookieSecure)
	mux.HandleFunc("POST /api/auth/register", authH.HandleRegister)
	mux.HandleFunc("POST /api/auth/login", authH.HandleLogin)
	mux.HandleFunc("GET /api/auth/me", authH.HandleMe)
	mux.HandleFunc("POST /api/auth/logout", authH.HandleLogout)

	hoodies := NewCatalogHandler(d.Hoodies)
	registerCatalog(mux, "/api/hoodies", hoodies)

	products := NewCatalogHandler(d.Products)
	registerCatalog(mux, "/api/products", products)
	registerCatalog(mux, "/api/photos", products)
	mux.HandleFunc("GET /api/products/{id}/photos", products.HandleListPhotos)
	mux.HandleFunc("POST /api/products/{id}/photos", RequireAdmin(products.HandleAddPhotos))
	mux.HandleFunc("DELETE /api/products/{id}/photos/{photoId}", RequireAdmin(products.HandleRemovePhoto))

	orders := NewOrderHandler(d.Orders)
	mux.HandleFunc("POST /api/orders", orders.HandleSubmit)
	mux.HandleFunc("GET /api/orders", RequireAdmin(orders.HandleList))
	mux.HandleFunc("GET /api/orders/{id}", RequireAdmin(orders.HandleGet))
	mux.HandleFunc("POST /api/orders/{id}/deliver", RequireAdmin(orders.HandleDeliver))
	mux.HandleFunc("POST /api/orders/{id}/restore", RequireAdmin(orders.HandleRestore))
	mux.HandleFunc("DELETE /api/orders/{id}", RequireAdmin(orders.HandleDelete))

	blobs := NewBlobHandler(d.Blobs, d.RedirectBlobs)
	mux.HandleFunc("GET /uploads/{key...}", blobs.HandleServe)

	dash := NewDashboardHandler(d.Orders, d.Hoodies, d.Products)
	mux.HandleFunc("GET /admin", RequireAdmin(dash.HandleDashboard))
	mux.HandleFunc("POST /admin/orders/{id}/deliver", RequireAdmin(dash.HandleDeliver))
	mux.HandleFunc("POST /admin/orders/{id}/restore", RequireAdmin(dash.HandleRestore))
	mux.HandleFunc("DELETE /admin/orders/{id}", RequireAdmin(dash.HandleDelete))
}

func registerCatalog(mux *http.ServeMux, base string, h *CatalogHandler) {
	mux.HandleFunc("GET "+base, h.HandleList)
	mux.HandleFunc("GET "+base+"/{id}", h.HandleGet)
	mux.HandleFunc("POST "+base, RequireAdmin(h.HandleCreate))
	mux.HandleFunc("PATCH "+base+"/{id}", RequireAdmin(h.HandleUpdate))
	mux.HandleFunc("DELETE "+base+"/{id}", RequireAdmin(h.HandleDelete))
}

// NewHandler builds the mux and wraps it in the middleware chain, outermost
// first: request logger, panic recovery, security headers, rate limit,
// principal resolution, metrics. A nil limiter disables rate limiting.
func NewHandler(d Deps, base *slog.Logger, limiter *service.TokenBucket) http.Handler {
	mux := http.NewServeMux()
	RegisterRoutes(mux, d)

	// Metrics wraps the mux directly so the matched pattern is visible.
	var h http.Handler = d.Metrics.Middleware(mux)
	h = Authenticate(d.Auth, h)
	if limiter != nil {
		h = RateLimit(limiter, d.TrustedProxies, h)
	}
	h = SecurityHeaders(h)
	h = Recover(h)
	return logger.Middleware(base)(h)
}
